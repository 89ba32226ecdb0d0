package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Reader turns an uploaded file into raw rows of string cells. The first
// row is expected to be a header row but that is the caller's concern.
type Reader interface {
	Read(r io.Reader) ([][]string, error)
}

// ForFilename picks a reader by file extension.
func ForFilename(name string) (Reader, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return NewCSVReader(), nil
	case ".xlsx", ".xlsm":
		return NewXLSXReader(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

type csvReader struct{}

func NewCSVReader() Reader {
	return csvReader{}
}

func (csvReader) Read(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		// Strip the UTF-8 BOM Excel likes to prepend.
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

type xlsxReader struct{}

func NewXLSXReader() Reader {
	return xlsxReader{}
}

// Read parses the first sheet of an xlsx workbook.
func (xlsxReader) Read(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
