package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/coursereg/registrar/internal/domain/entities"
	"github.com/coursereg/registrar/internal/infrastructure/logger"
	"github.com/coursereg/registrar/internal/ports"
)

// Menu choices
const (
	ChoiceRegister = "1"
	ChoiceShow     = "2"
	ChoiceSave     = "3"
	ChoiceExit     = "4"
)

// Messages shown to the user
const (
	MsgFileNotFound  = "JSON File not found, creating JSON file"
	MsgFormatError   = "File is not in right format and can't load students, please review file for error"
	MsgLoadUndefined = "Undefined Error"
	MsgSaveUndefined = "Undefined Error Data was not saved"
	MsgInvalidChoice = "Please only choose option 1, 2, or 3"
	MsgProgramEnded  = "Program Ended"
)

// RegistrationService holds the roster for one session and drives the
// register/show/save cycle.
type RegistrationService struct {
	roster   entities.Roster
	repo     ports.RosterRepository
	console  ports.Console
	recorder ports.MetricsRecorder
	logger   *logger.Logger
}

// NewRegistrationService creates a new registration service with an empty roster
func NewRegistrationService(repo ports.RosterRepository, console ports.Console, recorder ports.MetricsRecorder, logger *logger.Logger) *RegistrationService {
	return &RegistrationService{
		roster:   entities.Roster{},
		repo:     repo,
		console:  console,
		recorder: recorder,
		logger:   logger.WithComponent("registration_service"),
	}
}

// Roster returns a copy of the in-memory roster
func (s *RegistrationService) Roster() entities.Roster {
	return s.roster.Clone()
}

// Load reads the stored roster into memory and reports problems on the
// console. A missing file is recovered by creating it and yields nil;
// format and undefined errors are returned after being reported.
func (s *RegistrationService) Load(ctx context.Context) error {
	err := s.repo.Load(ctx, &s.roster)

	switch entities.KindOf(err) {
	case entities.KindFileNotFound:
		s.console.ReportError(MsgFileNotFound, err)
		s.recorder.RecordLoad(ports.ResultCreated, s.roster.Len())
		return nil
	case entities.KindFormat:
		s.console.ReportError(MsgFormatError, err)
		s.recorder.RecordLoad(ports.ResultFormat, s.roster.Len())
		s.logger.WithError(err).Warn("Roster file has invalid format")
	default:
		if err == nil {
			s.recorder.RecordLoad(ports.ResultLoaded, s.roster.Len())
			s.logger.Infow("Roster loaded", "records", s.roster.Len())
			return nil
		}
		s.console.ReportError(MsgLoadUndefined, err)
		s.recorder.RecordLoad(ports.ResultUndefined, s.roster.Len())
		s.logger.WithError(err).Error("Failed to load roster")
	}

	return fmt.Errorf("failed to load roster: %w", err)
}

// Register validates reg and appends it to the in-memory roster
func (s *RegistrationService) Register(ctx context.Context, reg entities.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}

	s.roster.Add(reg)
	s.recorder.RecordRegistration(s.roster.Len())
	s.logger.Infow("Student registered",
		"first_name", reg.FirstName,
		"last_name", reg.LastName,
		"course_name", reg.CourseName,
		"roster_size", s.roster.Len(),
	)
	return nil
}

// Save overwrites the stored roster and confirms every registration on
// the console. Failures are reported and returned.
func (s *RegistrationService) Save(ctx context.Context) error {
	err := s.repo.Save(ctx, s.roster)
	s.recorder.RecordSave(err)
	if err != nil {
		s.console.ReportError(MsgSaveUndefined, err)
		s.logger.WithError(err).Error("Failed to save roster")
		return fmt.Errorf("failed to save roster: %w", err)
	}

	s.console.ShowRegistered(s.roster)
	s.logger.Infow("Roster saved", "records", s.roster.Len())
	return nil
}

// Show prints the roster
func (s *RegistrationService) Show() {
	s.console.ShowRoster(s.roster)
}

// Run loads the roster and serves the menu until the exit choice, end of
// input or cancellation of ctx. Load and save failures are reported and
// the loop continues.
func (s *RegistrationService) Run(ctx context.Context) error {
	_ = s.Load(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.console.ShowMenu()
		choice, err := s.console.ReadMenuChoice()
		if err != nil {
			return s.finish(err)
		}

		switch choice {
		case ChoiceRegister:
			reg, err := s.console.ReadRegistration()
			if err != nil {
				return s.finish(err)
			}
			if err := s.Register(ctx, reg); err != nil {
				s.console.ReportError(err.Error(), err)
			}
		case ChoiceShow:
			s.Show()
		case ChoiceSave:
			_ = s.Save(ctx)
		case ChoiceExit:
			return s.finish(nil)
		default:
			s.console.Println(MsgInvalidChoice)
		}
	}
}

// finish ends the session. End of input counts as a normal exit.
func (s *RegistrationService) finish(err error) error {
	if err != nil && !errors.Is(err, io.EOF) {
		s.logger.WithError(err).Error("Session aborted")
		return fmt.Errorf("read console input: %w", err)
	}
	s.console.Println(MsgProgramEnded)
	s.logger.Infow("Session ended", "records", s.roster.Len())
	return nil
}
