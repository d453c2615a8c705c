/*
Package attendance classifies roster cell codes and aggregates them into
per-employee and per-day attendance statistics.

PURPOSE:
  A roster cell holds a short code such as "M-NASH", "WO", "SL1" or
  "N-RITH22:00-07:00". This package turns that text into a tagged value
  (ParsedCode) and builds everything downstream on the tag, never on the
  raw string.

KEY CONCEPTS IN THIS FILE (code.go):
  - Kind: Empty, WeeklyOff, Absent, Leave, Shift, Unknown
  - ParsedCode: kind plus shift letter, station and the raw text
  - Classify: the code grammar (first match wins)

GRAMMAR (applied to the upper-cased, trimmed input):
  1. ""                          -> Empty
  2. WO, WO-..., "WO ..."        -> WeeklyOff
  3. AB, AB-..., "AB ..."        -> Absent
  4. SL CL EL OH CO PH (or prefix) -> Leave
  5. M E N G as first character  -> Shift, station after the first hyphen
  6. anything else               -> Unknown (raw kept for diagnostics)

STATION QUIRK:
  When the station text carries an embedded timing ("RITH22:00-07:00") only
  the part before the colon is kept, and literal "00" and "-" are removed
  from it. Downstream station matching relies on the resulting names, so
  the behavior is kept as-is and pinned by tests.

SEE ALSO:
  - stats.go: per-employee aggregation
  - rosterreport/: the Train Operations roster, which uses its own looser rules
*/
package attendance

import (
	"strings"

	"github.com/warp/attendance-engine/grid"
)

// =============================================================================
// KIND
// =============================================================================

// Kind is the classification of a single roster cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindWeeklyOff
	KindAbsent
	KindLeave
	KindShift
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindWeeklyOff:
		return "weekly_off"
	case KindAbsent:
		return "absent"
	case KindLeave:
		return "leave"
	case KindShift:
		return "shift"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// MarshalText lets Kind appear as a readable string in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// =============================================================================
// CODE TABLES
// =============================================================================

// ShiftInfo describes one shift letter.
type ShiftInfo struct {
	Letter string
	Name   string
}

// Shifts lists the shift letters in reporting order.
var Shifts = []ShiftInfo{
	{Letter: "M", Name: "Morning Shift (07:00-15:00)"},
	{Letter: "E", Name: "Evening Shift (15:00-22:00)"},
	{Letter: "N", Name: "Night Shift (22:00-07:00)"},
	{Letter: "G", Name: "General Shift (09:00-17:00)"},
}

// LeaveInfo describes one leave code.
type LeaveInfo struct {
	Code string
	Name string
}

// LeaveCodes lists the leave codes recognized by the grammar, in match order.
var LeaveCodes = []LeaveInfo{
	{Code: "SL", Name: "Sick Leave"},
	{Code: "CL", Name: "Casual Leave"},
	{Code: "EL", Name: "Earned Leave"},
	{Code: "OH", Name: "Off/Holiday"},
	{Code: "CO", Name: "Compensatory Off"},
	{Code: "PH", Name: "Public Holiday"},
}

const (
	weeklyOffCode = "WO"
	absentCode    = "AB"

	WeeklyOffName = "Weekly Off"
	AbsentName    = "Absent (Unauthorized)"
)

// ShiftName returns the display name for a shift letter, or "N/A".
func ShiftName(letter string) string {
	for _, s := range Shifts {
		if s.Letter == letter {
			return s.Name
		}
	}
	return "N/A"
}

// LeaveName returns the display name for a leave code, or the code itself.
func LeaveName(code string) string {
	for _, l := range LeaveCodes {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

// =============================================================================
// PARSED CODE
// =============================================================================

// ParsedCode is the classified form of a roster cell.
type ParsedCode struct {
	Kind    Kind   `json:"kind"`
	Shift   string `json:"shift,omitempty"`   // M, E, N or G when Kind == KindShift
	Station string `json:"station,omitempty"` // only for shifts
	Leave   string `json:"leave,omitempty"`   // matched leave code when Kind == KindLeave
	Raw     string `json:"raw"`               // upper-cased, trimmed input
}

// IsWorkingDay reports whether the code is a shift.
func (p ParsedCode) IsWorkingDay() bool { return p.Kind == KindShift }

// IsAbsent reports whether the code is an absence.
func (p ParsedCode) IsAbsent() bool { return p.Kind == KindAbsent }

// IsOnLeave reports whether the code is a leave.
func (p ParsedCode) IsOnLeave() bool { return p.Kind == KindLeave }

// IsWeeklyOff reports whether the code is a weekly off.
func (p ParsedCode) IsWeeklyOff() bool { return p.Kind == KindWeeklyOff }

// Counts reports whether the code contributes to total days.
// Empty and Unknown codes do not.
func (p ParsedCode) Counts() bool {
	return p.Kind != KindEmpty && p.Kind != KindUnknown
}

// =============================================================================
// CLASSIFY
// =============================================================================

// Classify parses a raw roster cell. It never fails; unrecognized text is
// returned as KindUnknown with the raw text kept.
func Classify(raw string) ParsedCode {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return ParsedCode{Kind: KindEmpty}
	}

	if isMarker(code, weeklyOffCode) {
		return ParsedCode{Kind: KindWeeklyOff, Raw: code}
	}
	if isMarker(code, absentCode) {
		return ParsedCode{Kind: KindAbsent, Raw: code}
	}

	for _, l := range LeaveCodes {
		if strings.HasPrefix(code, l.Code) {
			return ParsedCode{Kind: KindLeave, Leave: l.Code, Raw: code}
		}
	}

	letter := code[:1]
	for _, s := range Shifts {
		if s.Letter == letter {
			return ParsedCode{Kind: KindShift, Shift: letter, Station: station(code), Raw: code}
		}
	}

	return ParsedCode{Kind: KindUnknown, Raw: code}
}

// ClassifyCell classifies an extracted cell. Absent cells are Empty.
func ClassifyCell(c grid.Cell) ParsedCode {
	return Classify(c.String())
}

// isMarker matches "XX", "XX-..." and "XX ...".
func isMarker(code, marker string) bool {
	return code == marker ||
		strings.HasPrefix(code, marker+"-") ||
		strings.HasPrefix(code, marker+" ")
}

// station returns the text after the first hyphen. Embedded timings are cut
// at the colon, then "00" and "-" are removed.
func station(code string) string {
	_, rest, ok := strings.Cut(code, "-")
	if !ok {
		return ""
	}
	if before, _, timed := strings.Cut(rest, ":"); timed {
		rest = strings.ReplaceAll(before, "00", "")
		rest = strings.ReplaceAll(rest, "-", "")
	}
	return rest
}
