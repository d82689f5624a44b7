package entities

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Field names used in validation errors and prompts
const (
	FieldFirstName = "first name"
	FieldLastName  = "last name"
)

// nameRule accepts non-empty strings made only of letters
const nameRule = "required,alphaunicode"

var validate = validator.New()

// Registration represents one student enrolled in one course
type Registration struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	CourseName string `json:"course_name"`
}

// Validate checks the name fields of a registration
func (r Registration) Validate() error {
	if err := ValidateName(FieldFirstName, r.FirstName); err != nil {
		return err
	}
	return ValidateName(FieldLastName, r.LastName)
}

// CSV renders the registration as "first,last,course"
func (r Registration) CSV() string {
	return fmt.Sprintf("%s,%s,%s", r.FirstName, r.LastName, r.CourseName)
}

// ValidateName reports a validation error unless value is a non-empty,
// letters-only string.
func ValidateName(field, value string) error {
	if err := validate.Var(value, nameRule); err != nil {
		return &Error{
			Kind: KindValidation,
			Op:   "validate " + field,
			Err:  fmt.Errorf("%s must be alphabetic", field),
		}
	}
	return nil
}

// Roster is the ordered list of registrations held by a session.
// Duplicates are allowed.
type Roster []Registration

// Add appends a registration to the end of the roster
func (r *Roster) Add(reg Registration) {
	*r = append(*r, reg)
}

// Len returns the number of registrations
func (r Roster) Len() int {
	return len(r)
}

// Clone returns a copy that does not share storage with r
func (r Roster) Clone() Roster {
	out := make(Roster, len(r))
	copy(out, r)
	return out
}
