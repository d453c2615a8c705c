package directory

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Source describes where a department keeps its roster inside a workbook.
type Source struct {
	// Sheets are read in order and concatenated. When none of them exist
	// Fallback is used, and failing that the first sheet.
	Sheets   []string
	Fallback string

	IDColumn          string
	DesignationColumn string
	LocationColumn    string
	ManagerColumn     string
}

// DefaultSource returns the roster layout of a department.
func DefaultSource(dep Department) Source {
	switch dep {
	case DepartmentOCC:
		return Source{
			IDColumn:          "Emp Id",
			DesignationColumn: "Designation",
			LocationColumn:    "Division",
			ManagerColumn:     "AM",
		}
	case DepartmentTrainOperation:
		return Source{
			Sheets:            []string{"TO", "TA"},
			IDColumn:          "Emp Id",
			DesignationColumn: "Designation",
			LocationColumn:    "crew control",
			ManagerColumn:     "am",
		}
	default:
		return Source{
			Sheets:            []string{"SC", "EFO"},
			Fallback:          "Combined",
			IDColumn:          "Emp Id",
			DesignationColumn: "Designation",
			LocationColumn:    "Station",
			ManagerColumn:     "AM",
		}
	}
}

// LoadWorkbook reads a roster workbook into a Memory directory.
func LoadWorkbook(r io.Reader, src Source) (Memory, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster workbook: %w", err)
	}
	defer f.Close()
	return loadFile(f, src)
}

// LoadWorkbookFile reads a roster workbook from disk.
func LoadWorkbookFile(path string, src Source) (Memory, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster workbook %s: %w", path, err)
	}
	defer f.Close()
	return loadFile(f, src)
}

func loadFile(f *excelize.File, src Source) (Memory, error) {
	mem := Memory{}
	for _, sheet := range pickSheets(f.GetSheetList(), src) {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		loadRows(mem, rows, src)
	}
	return mem, nil
}

func pickSheets(available []string, src Source) []string {
	has := func(name string) bool {
		for _, s := range available {
			if strings.EqualFold(s, name) {
				return true
			}
		}
		return false
	}

	var picked []string
	for _, s := range src.Sheets {
		if has(s) {
			picked = append(picked, s)
		}
	}
	if len(picked) > 0 {
		return picked
	}
	if src.Fallback != "" && has(src.Fallback) {
		return []string{src.Fallback}
	}
	if len(available) > 0 {
		return available[:1]
	}
	return nil
}

// loadRows treats the first row as the header. Rows without an ID are skipped.
func loadRows(mem Memory, rows [][]string, src Source) {
	if len(rows) == 0 {
		return
	}
	header := rows[0]
	col := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}
	idCol := col(src.IDColumn)
	if idCol < 0 {
		return
	}
	desCol, locCol, mgrCol := col(src.DesignationColumn), col(src.LocationColumn), col(src.ManagerColumn)

	for _, row := range rows[1:] {
		id := CleanPersonnelNumber(at(row, idCol))
		if id == "" {
			continue
		}
		mem[id] = Details{
			Designation: strings.TrimSpace(at(row, desCol)),
			Location:    strings.TrimSpace(at(row, locCol)),
			Manager:     strings.TrimSpace(at(row, mgrCol)),
		}
	}
}

func at(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
