package console

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/coursereg/registrar/internal/domain/entities"
)

// Menu is the fixed menu shown before every choice
const Menu = `
---- Course Registration Program ----
  Select from the following menu:
    1. Register a Student for a Course.
    2. Show current data.
    3. Save data to a file.
    4. Exit the program.
-----------------------------------------
`

// Prompts
const (
	PromptMenuChoice = "What would you like to do: "
	PromptFirstName  = "Enter the student's first name: "
	PromptLastName   = "Enter the student's last name: "
	PromptCourseName = "Please enter the name of the course: "
)

// Console reads lines from in and writes everything to out
type Console struct {
	in  *bufio.Scanner
	out io.Writer
}

// New creates a console over the given streams. Lines are not length
// limited.
func New(in io.Reader, out io.Writer) *Console {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), math.MaxInt)
	return &Console{
		in:  scanner,
		out: out,
	}
}

// ShowMenu prints the menu
func (c *Console) ShowMenu() {
	fmt.Fprint(c.out, Menu+"\n")
}

// ReadMenuChoice prompts for and returns the raw menu choice line
func (c *Console) ReadMenuChoice() (string, error) {
	return c.prompt(PromptMenuChoice)
}

// ReadRegistration collects a new registration. Names are re-prompted
// until they pass validation; the course name is taken as entered.
func (c *Console) ReadRegistration() (entities.Registration, error) {
	var reg entities.Registration
	var err error

	if reg.FirstName, err = c.promptName(PromptFirstName, entities.FieldFirstName); err != nil {
		return entities.Registration{}, err
	}
	if reg.LastName, err = c.promptName(PromptLastName, entities.FieldLastName); err != nil {
		return entities.Registration{}, err
	}
	if reg.CourseName, err = c.prompt(PromptCourseName); err != nil {
		return entities.Registration{}, err
	}
	return reg, nil
}

func (c *Console) promptName(prompt, field string) (string, error) {
	for {
		value, err := c.prompt(prompt)
		if err != nil {
			return "", err
		}
		if err := entities.ValidateName(field, value); err != nil {
			fmt.Fprintln(c.out, entities.RootCause(err))
			continue
		}
		return value, nil
	}
}

// prompt writes label and reads one line. io.EOF is returned once input
// is exhausted.
func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		fmt.Fprintln(c.out)
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return c.in.Text(), nil
}

// ShowRoster prints the roster as a structural dump followed by one
// "first,last,course" line per registration.
func (c *Console) ShowRoster(roster entities.Roster) {
	fmt.Fprintln(c.out, "\nThe current data is:")
	fmt.Fprintf(c.out, "List Data: %+v\n", roster)
	fmt.Fprintln(c.out, "String Format:")
	for _, reg := range roster {
		fmt.Fprintln(c.out, reg.CSV())
	}
}

// ShowRegistered prints one confirmation line per saved registration
func (c *Console) ShowRegistered(roster entities.Roster) {
	for _, reg := range roster {
		fmt.Fprintf(c.out, "You have registered %s %s for %s.\n", reg.FirstName, reg.LastName, reg.CourseName)
	}
}

// ReportError prints message, then the error, its description and its
// category.
func (c *Console) ReportError(message string, err error) {
	fmt.Fprintln(c.out, message)
	if err == nil {
		return
	}
	kind := entities.KindOf(err)
	fmt.Fprintln(c.out, err)
	fmt.Fprintln(c.out, kind.Description())
	fmt.Fprintf(c.out, "%s (%T)\n", kind, entities.RootCause(err))
}

// Println writes a plain line
func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

