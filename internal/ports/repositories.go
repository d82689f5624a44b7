package ports

import (
	"context"

	"github.com/coursereg/registrar/internal/domain/entities"
)

// RosterRepository defines the interface for roster persistence
type RosterRepository interface {
	// Load appends the stored registrations to roster. When the backing
	// store is missing it is created and an entities.ErrFileNotFound kind
	// error is returned with roster left unchanged.
	Load(ctx context.Context, roster *entities.Roster) error
	// Save replaces the stored registrations with roster
	Save(ctx context.Context, roster entities.Roster) error
}
