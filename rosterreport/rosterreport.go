/*
Package rosterreport analyzes the Train Operations duty roster.

PURPOSE:
  Train Operations rosters carry duty codes rather than attendance codes:
  "RR-01", "SR-14 05:00-13:00", "WDM-13", "HSB A-1". Each non-leave code is
  bucketed into a duty family by its prefix, and leave codes are tallied by
  type. The rules here are deliberately separate from the attendance
  grammar: this department appends suffixes to leave codes ("LMCL"), so
  leave detection falls back to substring containment.

SHIFT PREFIX:
  The leading "letters/spaces, optional hyphen, digits" run is taken
  (^[A-Za-z\s]+-?\d+). HSB codes keep their letter ("HSB A-1" -> "HSB A");
  all others keep the leading capitals ("WDM-13" -> "WDM").

LEAVE TYPE:
  Exact code first, then the first configured code contained in the text,
  in configured order.

OUTPUT:
  - summary:   employees, period, shift/leave/blank/record totals
  - daily:     per day slot shift total, per-leave-type counts, blanks
  - breakdown: per family and per leave type counts
  - employees: per employee family and leave counts with a Total

SEE ALSO:
  - factory/: department profiles that override the families
  - attendance/: the general attendance grammar
*/
package rosterreport

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/warp/attendance-engine/extract"
	"github.com/warp/attendance-engine/grid"
)

// =============================================================================
// CONFIG
// =============================================================================

// Family is a named set of duty prefixes.
type Family struct {
	Name     string   `json:"name"`
	Prefixes []string `json:"prefixes"`
}

// Config holds the department code tables.
type Config struct {
	Families   []Family `json:"families"`
	OtherName  string   `json:"other_name"`
	LeaveCodes []string `json:"leave_codes"`
}

const (
	FamilyRRTS = "Working Shift RRTS"
	FamilyMRTS = "Working Shift MRTS"
	OtherShift = "Other Shifts"
)

// DefaultConfig returns the Train Operations tables.
func DefaultConfig() Config {
	return Config{
		Families: []Family{
			{Name: FamilyRRTS, Prefixes: []string{"SR", "WDR", "RR", "HSB A", "HSB B"}},
			{Name: FamilyMRTS, Prefixes: []string{"SM", "WDM", "HSB M"}},
		},
		OtherName:  OtherShift,
		LeaveCodes: []string{"CL", "SL", "WL", "CO", "EL", "AP", "LM", "WO"},
	}
}

var (
	shiftCodePattern = regexp.MustCompile(`^[A-Za-z\s]+-?\d+`)
	capitalsPattern  = regexp.MustCompile(`^[A-Z]+`)
)

// =============================================================================
// ANALYZER
// =============================================================================

// Analyzer applies one department's code tables.
type Analyzer struct {
	cfg    Config
	family map[string]string
	leaves map[string]bool
}

// New creates an analyzer. Blank fields of cfg fall back to the defaults.
func New(cfg Config) *Analyzer {
	def := DefaultConfig()
	if len(cfg.Families) == 0 {
		cfg.Families = def.Families
	}
	if cfg.OtherName == "" {
		cfg.OtherName = def.OtherName
	}
	if len(cfg.LeaveCodes) == 0 {
		cfg.LeaveCodes = def.LeaveCodes
	}
	cfg.LeaveCodes = append([]string(nil), cfg.LeaveCodes...)

	a := &Analyzer{cfg: cfg, family: make(map[string]string), leaves: make(map[string]bool)}
	for _, f := range cfg.Families {
		for _, p := range f.Prefixes {
			if _, taken := a.family[p]; !taken {
				a.family[p] = f.Name
			}
		}
	}
	for i, c := range cfg.LeaveCodes {
		c = strings.ToUpper(strings.TrimSpace(c))
		a.cfg.LeaveCodes[i] = c
		a.leaves[c] = true
	}
	return a
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Categories returns the family names followed by the "other" bucket.
func (a *Analyzer) Categories() []string {
	out := make([]string, 0, len(a.cfg.Families)+1)
	for _, f := range a.cfg.Families {
		out = append(out, f.Name)
	}
	return append(out, a.cfg.OtherName)
}

// IsLeave reports whether a code is a leave: exact match, then containment.
func (a *Analyzer) IsLeave(code string) bool {
	return a.LeaveType(code) != ""
}

// LeaveType returns the leave code a value denotes, or "" if it is not a leave.
func (a *Analyzer) LeaveType(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	if s == "" {
		return ""
	}
	if a.leaves[s] {
		return s
	}
	for _, c := range a.cfg.LeaveCodes {
		if strings.Contains(s, c) {
			return c
		}
	}
	return ""
}

// ShiftCode extracts the duty prefix, or "" when the value has none.
func ShiftCode(value string) string {
	s := strings.TrimSpace(value)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r", ""))

	m := shiftCodePattern.FindString(s)
	if m == "" {
		return ""
	}
	code := strings.TrimSpace(m)
	if strings.HasPrefix(code, "HSB") {
		head, _, _ := strings.Cut(code, "-")
		if len(head) <= 5 {
			return head
		}
		return head[:5] + strings.TrimSpace(head[5:])
	}
	return capitalsPattern.FindString(code)
}

// Category returns the duty family for a non-leave value.
func (a *Analyzer) Category(value string) string {
	if name, ok := a.family[ShiftCode(value)]; ok {
		return name
	}
	return a.cfg.OtherName
}

type slot int

const (
	slotBlank slot = iota
	slotLeave
	slotShift
)

func (a *Analyzer) classify(value string) (slot, string) {
	if strings.TrimSpace(value) == "" {
		return slotBlank, ""
	}
	if lt := a.LeaveType(value); lt != "" {
		return slotLeave, lt
	}
	return slotShift, a.Category(value)
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the roster-level view of a batch.
type Summary struct {
	TotalEmployees int    `json:"total_employees"`
	Period         string `json:"period"`
	TotalShifts    int    `json:"total_shifts"`
	TotalLeaves    int    `json:"total_leaves"`
	TotalBlank     int    `json:"total_blank"`
	TotalRecords   int    `json:"total_records"`
}

// Summarize counts shifts, leaves and blanks over every day slot.
func (a *Analyzer) Summarize(b extract.Batch) Summary {
	sum := Summary{TotalEmployees: len(b.Records), Period: period(b)}
	for _, r := range b.Records {
		for _, v := range r.Days {
			switch kind, _ := a.classify(v); kind {
			case slotBlank:
				sum.TotalBlank++
			case slotLeave:
				sum.TotalLeaves++
			case slotShift:
				sum.TotalShifts++
			}
		}
	}
	sum.TotalRecords = sum.TotalShifts + sum.TotalLeaves + sum.TotalBlank
	return sum
}

// period is "first to last" over the date labels, or "N days".
func period(b extract.Batch) string {
	var labels []string
	for _, l := range b.DayLabels {
		if l != "" {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return strconv.Itoa(b.MaxDays) + " days"
	}
	return labels[0] + " to " + labels[len(labels)-1]
}

// SummaryTable renders the summary as Metric/Value rows.
func SummaryTable(s Summary) *grid.Table {
	table := grid.NewTable("Metric", "Value")
	add := func(metric string, value any) {
		table.Append(grid.NewRecord().Set("Metric", metric).Set("Value", value))
	}
	add("Total Employees", s.TotalEmployees)
	add("Period", s.Period)
	add("Total Shifts", s.TotalShifts)
	add("Total Leaves", s.TotalLeaves)
	add("Total Blank", s.TotalBlank)
	add("Total Records", s.TotalRecords)
	return table
}

// =============================================================================
// DAILY TREND
// =============================================================================

// DayTally is the roster view of one day slot.
type DayTally struct {
	Day         string         `json:"day"`
	TotalShifts int            `json:"total_shifts"`
	Leaves      map[string]int `json:"leaves"`
	Blank       int            `json:"blank"`
}

// DailyTrend tallies every day slot of the batch.
func (a *Analyzer) DailyTrend(b extract.Batch) []DayTally {
	out := make([]DayTally, 0, b.MaxDays)
	for day := 0; day < b.MaxDays; day++ {
		t := DayTally{Day: b.Label(day), Leaves: make(map[string]int)}
		for _, r := range b.Records {
			v := ""
			if day < len(r.Days) {
				v = r.Days[day]
			}
			switch kind, lt := a.classify(v); kind {
			case slotBlank:
				t.Blank++
			case slotLeave:
				t.Leaves[lt]++
			case slotShift:
				t.TotalShifts++
			}
		}
		out = append(out, t)
	}
	return out
}

// DailyTrendTable renders the daily trend. Leave columns are sorted per day,
// so the table's column set is the union in first-seen order.
func DailyTrendTable(days []DayTally) *grid.Table {
	table := grid.NewTable("Day", "Total Shifts")
	for _, d := range days {
		rec := grid.NewRecord().Set("Day", d.Day).Set("Total Shifts", d.TotalShifts)
		for _, lt := range sortedKeys(d.Leaves) {
			rec.Set(lt, d.Leaves[lt])
		}
		rec.Set("Blank", d.Blank)
		table.Append(rec)
	}
	return table
}

// =============================================================================
// DISTRIBUTION
// =============================================================================

// Count is a named tally.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Distribution splits every non-blank slot into duty families and leave types.
type Distribution struct {
	Shifts []Count `json:"shifts"` // every category, configured order
	Leaves []Count `json:"leaves"` // leave types seen, sorted
}

// Distribute counts categories and leave types over the batch.
func (a *Analyzer) Distribute(b extract.Batch) Distribution {
	cats := make(map[string]int)
	leaves := make(map[string]int)
	for _, r := range b.Records {
		for _, v := range r.Days {
			switch kind, name := a.classify(v); kind {
			case slotLeave:
				leaves[name]++
			case slotShift:
				cats[name]++
			}
		}
	}

	d := Distribution{Shifts: []Count{}, Leaves: []Count{}}
	for _, c := range a.Categories() {
		d.Shifts = append(d.Shifts, Count{Name: c, Count: cats[c]})
	}
	for _, lt := range sortedKeys(leaves) {
		d.Leaves = append(d.Leaves, Count{Name: lt, Count: leaves[lt]})
	}
	return d
}

// CountTable renders tallies under the given heading.
func CountTable(heading string, counts []Count) *grid.Table {
	table := grid.NewTable(heading, "Count")
	for _, c := range counts {
		table.Append(grid.NewRecord().Set(heading, c.Name).Set("Count", c.Count))
	}
	return table
}

// =============================================================================
// EMPLOYEE BREAKDOWN
// =============================================================================

// EmployeeTable renders per-employee family and leave counts. Leave columns
// cover every leave type seen anywhere in the batch.
func (a *Analyzer) EmployeeTable(b extract.Batch) *grid.Table {
	seen := make(map[string]int)
	for _, r := range b.Records {
		for _, v := range r.Days {
			if lt := a.LeaveType(v); lt != "" {
				seen[lt]++
			}
		}
	}
	leaveTypes := sortedKeys(seen)
	cats := a.Categories()

	table := grid.NewTable(append(append([]string{"Employee", "Personnel_Number"}, cats...), append(leaveTypes, "Total")...)...)
	for _, r := range b.Records {
		counts := make(map[string]int)
		total := 0
		for _, v := range r.Days {
			kind, name := a.classify(v)
			if kind == slotBlank {
				continue
			}
			counts[name]++
			total++
		}

		rec := grid.NewRecord().
			Set("Employee", r.Employee).
			Set("Personnel_Number", r.PersonnelNumber)
		for _, c := range cats {
			rec.Set(c, counts[c])
		}
		for _, lt := range leaveTypes {
			rec.Set(lt, counts[lt])
		}
		rec.Set("Total", total)
		table.Append(rec)
	}
	return table
}

// Sheets renders every roster table in workbook order.
func (a *Analyzer) Sheets(b extract.Batch) []grid.Sheet {
	dist := a.Distribute(b)
	return []grid.Sheet{
		{Name: "Summary", Table: SummaryTable(a.Summarize(b))},
		{Name: "Daily Trends", Table: DailyTrendTable(a.DailyTrend(b))},
		{Name: "Shift Analysis", Table: CountTable("Category", dist.Shifts)},
		{Name: "Leave Analysis", Table: CountTable("Leave Type", dist.Leaves)},
		{Name: "Employee Details", Table: a.EmployeeTable(b)},
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
