/*
Package directory resolves personnel numbers to employee details.

PURPOSE:
  Attendance tables only carry names and personnel numbers. Designation,
  work location and manager come from department rosters maintained
  elsewhere. This package defines the lookup the analyzers consume and
  ships two sources: an in-memory map and a workbook loader.

KEY CLEANING RULE:
  Roster workbooks store IDs as numbers, so "1001" often arrives as
  "1001.0". Keys and queries are cleaned by cutting at the first "." and
  trimming whitespace.

LOOKUP MISSES:
  A miss is never an error. It resolves to Designation "N/A" with empty
  Location and Manager.

SEE ALSO:
  - workbook.go: excelize loader per department
  - store/sqlite: persisted directory entries
  - attendance/analyzer.go: enrichment of the stats table
*/
package directory

import (
	"errors"
	"fmt"
	"strings"
)

// NotAvailable is the designation reported for unknown employees.
const NotAvailable = "N/A"

// Details is what a department roster knows about an employee.
type Details struct {
	Designation string `json:"designation"`
	Location    string `json:"location"`
	Manager     string `json:"manager"`
}

// Missing is the sentinel for a lookup miss.
func Missing() Details {
	return Details{Designation: NotAvailable}
}

// Directory resolves a personnel number. Implementations must tolerate any
// input and return Missing() when nothing matches.
type Directory interface {
	Lookup(personnelNumber string) Details
}

// CleanPersonnelNumber strips any fractional suffix and surrounding space.
func CleanPersonnelNumber(s string) string {
	before, _, _ := strings.Cut(s, ".")
	return strings.TrimSpace(before)
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

// Department identifies a roster owner.
type Department string

const (
	DepartmentStations       Department = "stations"
	DepartmentOCC            Department = "occ"
	DepartmentTrainOperation Department = "train_operations"
)

// ErrUnknownDepartment is returned for an unrecognized department name.
var ErrUnknownDepartment = errors.New("unknown department")

// Departments lists every supported department.
var Departments = []Department{DepartmentStations, DepartmentOCC, DepartmentTrainOperation}

// ParseDepartment accepts the canonical names and the display names.
func ParseDepartment(s string) (Department, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	switch key {
	case "stations", "station":
		return DepartmentStations, nil
	case "occ":
		return DepartmentOCC, nil
	case "train_operations", "train_ops", "trainops":
		return DepartmentTrainOperation, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDepartment, s)
	}
}

// =============================================================================
// MEMORY DIRECTORY
// =============================================================================

// Memory is a map-backed Directory keyed by cleaned personnel number.
type Memory map[string]Details

// NewMemory copies entries, cleaning every key. Later duplicates win.
func NewMemory(entries map[string]Details) Memory {
	m := make(Memory, len(entries))
	for k, v := range entries {
		m[CleanPersonnelNumber(k)] = v
	}
	return m
}

// Put stores details under the cleaned key.
func (m Memory) Put(personnelNumber string, d Details) {
	m[CleanPersonnelNumber(personnelNumber)] = d
}

// Lookup implements Directory.
func (m Memory) Lookup(personnelNumber string) Details {
	if d, ok := m[CleanPersonnelNumber(personnelNumber)]; ok {
		return d
	}
	return Missing()
}

// None is a Directory that knows nobody.
type None struct{}

// Lookup implements Directory.
func (None) Lookup(string) Details { return Missing() }
