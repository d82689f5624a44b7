package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/coursereg/registrar/internal/domain/entities"
	"github.com/coursereg/registrar/internal/infrastructure/logger"
	"github.com/xuri/excelize/v2"
)

// SheetName is the sheet written by Export
const SheetName = "Enrollments"

var header = []interface{}{"First Name", "Last Name", "Course Name"}

// Workbook converts rosters to and from XLSX workbooks
type Workbook struct {
	logger *logger.Logger
}

// NewWorkbook creates a workbook codec
func NewWorkbook(log *logger.Logger) *Workbook {
	return &Workbook{logger: log.WithComponent("spreadsheet")}
}

// Export writes roster to w as a single-sheet workbook with a header row
func (wb *Workbook) Export(roster entities.Roster, w io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			wb.logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, reg := range roster {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		row := []interface{}{reg.FirstName, reg.LastName, reg.CourseName}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	wb.logger.Infow("Roster exported", "records", len(roster))
	return nil
}

// Import reads registrations from the first sheet of the workbook in r.
// The first row is a header. Rows whose names fail validation are skipped
// and counted.
func (wb *Workbook) Import(r io.Reader) (entities.Roster, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			wb.logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	roster := entities.Roster{}
	skipped := 0
	for i, row := range rows {
		if i == 0 {
			continue
		}

		cells := make([]string, 3)
		copy(cells, row)
		reg := entities.Registration{
			FirstName:  strings.TrimSpace(cells[0]),
			LastName:   strings.TrimSpace(cells[1]),
			CourseName: strings.TrimSpace(cells[2]),
		}

		if err := reg.Validate(); err != nil {
			wb.logger.WithError(err).Warnw("Skipping invalid row", "row", i+1)
			skipped++
			continue
		}
		roster.Add(reg)
	}

	wb.logger.Infow("Roster imported", "records", len(roster), "skipped", skipped)
	return roster, skipped, nil
}
