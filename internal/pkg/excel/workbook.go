package excel

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// MaxSheetNameLength is the longest sheet name Excel accepts.
	MaxSheetNameLength = 31
	maxColumnWidth     = 50
	defaultSheet       = "Sheet1"
)

// Sheet is one tabular worksheet: a header row followed by data rows.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// Workbook writes styled sheets into an in-memory xlsx file. Every sheet gets
// a bold grey bordered header, a frozen first row and fitted column widths.
type Workbook struct {
	f           *excelize.File
	headerStyle int
	sheets      int
}

func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#D9D9D9"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	return &Workbook{f: f, headerStyle: headerStyle}, nil
}

// AddSheet appends s to the workbook. The name is sanitised and made unique,
// and the name actually used is returned.
func (w *Workbook) AddSheet(s Sheet) (string, error) {
	name := w.uniqueName(SheetName(s.Name))

	if w.sheets == 0 {
		if err := w.f.SetSheetName(defaultSheet, name); err != nil {
			return "", fmt.Errorf("failed to rename default sheet: %w", err)
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return "", fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	w.sheets++

	widths := make([]int, len(s.Headers))
	measure := func(col int, v interface{}) {
		if col >= len(widths) {
			widths = append(widths, make([]int, col-len(widths)+1)...)
		}
		if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[col] {
			widths[col] = n
		}
	}

	header := make([]interface{}, len(s.Headers))
	for i, h := range s.Headers {
		header[i] = h
		measure(i, h)
	}
	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return "", fmt.Errorf("failed to write header of %q: %w", name, err)
	}
	if len(s.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(s.Headers), 1)
		if err != nil {
			return "", err
		}
		if err := w.f.SetCellStyle(name, "A1", last, w.headerStyle); err != nil {
			return "", fmt.Errorf("failed to style header of %q: %w", name, err)
		}
	}

	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := w.f.SetSheetRow(name, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write row %d of %q: %w", i+2, name, err)
		}
		for col, v := range row {
			if v != nil {
				measure(col, v)
			}
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return "", err
		}
		if err := w.f.SetColWidth(name, col, col, float64(min(width+2, maxColumnWidth))); err != nil {
			return "", fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := w.f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return "", fmt.Errorf("failed to freeze header of %q: %w", name, err)
	}

	return name, nil
}

func (w *Workbook) uniqueName(name string) string {
	exists := func(n string) bool {
		if w.sheets == 0 {
			return false
		}
		for _, s := range w.f.GetSheetList() {
			if strings.EqualFold(s, n) {
				return true
			}
		}
		return false
	}

	candidate := name
	for i := 2; exists(candidate); i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncate(name, MaxSheetNameLength-len(suffix)) + suffix
	}
	return candidate
}

// Bytes serialises the workbook.
func (w *Workbook) Bytes() ([]byte, error) {
	if w.sheets > 0 {
		w.f.SetActiveSheet(0)
	}
	var buf bytes.Buffer
	if err := w.f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *Workbook) Close() error {
	return w.f.Close()
}

var sheetNameReplacer = strings.NewReplacer(
	":", "-", "\\", "-", "/", "-", "?", "-", "*", "-", "[", "-", "]", "-",
)

// SheetName replaces characters Excel forbids in sheet names and truncates
// the result to 31 characters. A blank name becomes "Sheet".
func SheetName(name string) string {
	name = strings.TrimSpace(sheetNameReplacer.Replace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Sheet"
	}
	return truncate(name, MaxSheetNameLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
