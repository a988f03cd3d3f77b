package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrInvalidFileFormat is returned when the upload is not a usable workbook
var ErrInvalidFileFormat = errors.New("invalid spreadsheet format")

const sheetName = "Results"

// Import columns. remarks is optional.
const (
	ColumnRollNumber    = "roll_number"
	ColumnInternalMarks = "internal_marks"
	ColumnExternalMarks = "external_marks"
	ColumnRemarks       = "remarks"
)

var requiredColumns = []string{ColumnRollNumber, ColumnInternalMarks, ColumnExternalMarks}

var exportHeader = []string{
	ColumnRollNumber, "student_name", ColumnInternalMarks, ColumnExternalMarks,
	"total_marks", "max_total", "percentage", "grade", "published", ColumnRemarks,
}

// ResultRow is one line of an exported results sheet
type ResultRow struct {
	RollNumber    string
	StudentName   string
	InternalMarks float64
	ExternalMarks float64
	TotalMarks    float64
	MaxTotal      int
	Percentage    float64
	Grade         string
	Published     bool
	Remarks       string
}

// WriteResults renders a workbook with a title line followed by a header row
// and one row per result.
func WriteResults(title string, rows []ResultRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}

	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, err
	}
	if err := writeRow(f, 2, toAny(exportHeader)); err != nil {
		return nil, err
	}
	for i, r := range rows {
		values := []any{
			r.RollNumber, r.StudentName, r.InternalMarks, r.ExternalMarks,
			r.TotalMarks, r.MaxTotal, round2(r.Percentage), r.Grade, r.Published, r.Remarks,
		}
		if err := writeRow(f, i+3, values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheetName, cell, &values)
}

// MarksRow is one parsed line of an import sheet. Row is the 1-based sheet row.
type MarksRow struct {
	Row           int
	RollNumber    string
	InternalMarks float64
	ExternalMarks float64
	Remarks       *string
}

// RowError reports a line that could not be parsed
type RowError struct {
	Row        int
	RollNumber string
	Err        error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// ParseMarks reads the first sheet of r. The header row is the first row that
// contains roll_number; rows above it (such as an export title) are skipped,
// so an exported workbook can be edited and imported back. Bad rows are
// returned as RowErrors and do not stop the parse.
func ParseMarks(r io.Reader) ([]MarksRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFileFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrInvalidFileFormat
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}

	headerAt := -1
	columns := map[string]int{}
	for i, row := range rows {
		m := map[string]int{}
		for j, col := range row {
			m[strings.ToLower(strings.TrimSpace(col))] = j
		}
		if _, ok := m[ColumnRollNumber]; ok {
			headerAt, columns = i, m
			break
		}
	}
	if headerAt < 0 {
		return nil, nil, fmt.Errorf("%w: missing required column: %s", ErrInvalidFileFormat, ColumnRollNumber)
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, nil, fmt.Errorf("%w: missing required column: %s", ErrInvalidFileFormat, col)
		}
	}

	var (
		parsed []MarksRow
		bad    []RowError
	)
	for i, row := range rows[headerAt+1:] {
		rowNum := headerAt + i + 2
		if blank(row) {
			continue
		}
		m, err := parseRow(row, columns, rowNum)
		if err != nil {
			bad = append(bad, RowError{Row: rowNum, RollNumber: value(row, columns, ColumnRollNumber), Err: err})
			continue
		}
		parsed = append(parsed, *m)
	}
	return parsed, bad, nil
}

func parseRow(row []string, columns map[string]int, rowNum int) (*MarksRow, error) {
	roll := value(row, columns, ColumnRollNumber)
	if roll == "" {
		return nil, errors.New("roll_number is required")
	}
	internal, err := parseMarks(value(row, columns, ColumnInternalMarks), ColumnInternalMarks)
	if err != nil {
		return nil, err
	}
	external, err := parseMarks(value(row, columns, ColumnExternalMarks), ColumnExternalMarks)
	if err != nil {
		return nil, err
	}

	m := &MarksRow{
		Row:           rowNum,
		RollNumber:    roll,
		InternalMarks: internal,
		ExternalMarks: external,
	}
	if remarks := value(row, columns, ColumnRemarks); remarks != "" {
		m.Remarks = &remarks
	}
	return m, nil
}

func parseMarks(raw, column string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required", column)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %s", column, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number, got %s", column, raw)
	}
	return v, nil
}

func value(row []string, columns map[string]int, name string) string {
	if idx, ok := columns[name]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func round2(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	r, _ := strconv.ParseFloat(s, 64)
	return r
}
