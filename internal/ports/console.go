package ports

import "github.com/coursereg/registrar/internal/domain/entities"

// Console defines the interactive input/output surface of a session
type Console interface {
	ShowMenu()
	ReadMenuChoice() (string, error)
	ReadRegistration() (entities.Registration, error)
	ShowRoster(roster entities.Roster)
	ShowRegistered(roster entities.Roster)
	ReportError(message string, err error)
	Println(a ...interface{})
}
