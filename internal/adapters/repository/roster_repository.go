package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/coursereg/registrar/internal/domain/entities"
	"github.com/coursereg/registrar/internal/infrastructure/logger"
	"github.com/spf13/afero"
)

// JSONRosterRepository stores the roster as a JSON array in a single file.
// Every save rewrites the whole file.
type JSONRosterRepository struct {
	fs     afero.Fs
	path   string
	logger *logger.Logger
}

// NewJSONRosterRepository creates a repository backed by path on fs
func NewJSONRosterRepository(fs afero.Fs, path string, log *logger.Logger) *JSONRosterRepository {
	return &JSONRosterRepository{
		fs:     fs,
		path:   path,
		logger: log.WithComponent("roster_repository").WithFields("path", path),
	}
}

// Path returns the roster file location
func (r *JSONRosterRepository) Path() string {
	return r.path
}

// Load appends the registrations stored in the file to roster.
func (r *JSONRosterRepository) Load(ctx context.Context, roster *entities.Roster) error {
	if err := ctx.Err(); err != nil {
		return &entities.Error{Kind: entities.KindUndefined, Op: "load roster", Err: err}
	}

	f, err := r.fs.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return r.create(ctx, *roster, err)
		}
		r.logger.WithError(err).Error("Failed to open roster file")
		return &entities.Error{Kind: entities.KindUndefined, Op: "open roster", Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		r.logger.WithError(err).Error("Failed to read roster file")
		return &entities.Error{Kind: entities.KindUndefined, Op: "read roster", Err: err}
	}

	var loaded entities.Roster
	if err := json.Unmarshal(data, &loaded); err != nil {
		r.logger.WithError(err).Warn("Roster file is not valid JSON")
		return &entities.Error{Kind: entities.KindFormat, Op: "decode roster", Err: err}
	}

	*roster = append(*roster, loaded...)
	r.logger.Debugw("Roster loaded", "records", len(loaded))
	return nil
}

// create writes roster to a missing file and reports that it was absent
func (r *JSONRosterRepository) create(ctx context.Context, roster entities.Roster, notFound error) error {
	r.logger.Infow("Roster file not found, creating it")
	if err := r.Save(ctx, roster); err != nil {
		return fmt.Errorf("create missing roster file: %w", err)
	}
	return &entities.Error{Kind: entities.KindFileNotFound, Op: "open roster", Err: notFound}
}

// Save overwrites the file with roster. The handle is closed exactly once;
// a failed close is reported when the write itself succeeded.
func (r *JSONRosterRepository) Save(ctx context.Context, roster entities.Roster) (err error) {
	if err := ctx.Err(); err != nil {
		return &entities.Error{Kind: entities.KindUndefined, Op: "save roster", Err: err}
	}

	if roster == nil {
		roster = entities.Roster{}
	}
	data, err := json.MarshalIndent(roster, "", "  ")
	if err != nil {
		return &entities.Error{Kind: entities.KindUndefined, Op: "encode roster", Err: err}
	}

	f, err := r.fs.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		r.logger.WithError(err).Error("Failed to open roster file for writing")
		return &entities.Error{Kind: entities.KindUndefined, Op: "save roster", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			r.logger.WithError(cerr).Error("Failed to close roster file")
			err = &entities.Error{Kind: entities.KindUndefined, Op: "close roster", Err: cerr}
		}
	}()

	if _, err := f.Write(data); err != nil {
		r.logger.WithError(err).Error("Failed to write roster file")
		return &entities.Error{Kind: entities.KindUndefined, Op: "write roster", Err: err}
	}

	r.logger.Debugw("Roster saved", "records", len(roster))
	return nil
}
