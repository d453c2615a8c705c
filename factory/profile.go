/*
Package factory provides JSON to Go department profile conversion.

PURPOSE:
  A profile tells the engine how one kind of PDF export is laid out and how
  it is reported: which table layout the parser uses, how wide the
  trip-chart shift block is, how many employees the rankings keep, and (for
  roster exports) which duty families and leave codes the roster report
  recognises. Profiles are JSON so operations staff can add a variant
  without a code change; they are stored by store/sqlite and selected per
  request by the API.

JSON SCHEMA:
  {
    "id": "train-ops-roster",
    "name": "Train Operations Roster",
    "department": "train_operations",
    "layout": "simple",
    "top_n": 10,
    "roster": {
      "families": [
        {"name": "Working Shift RRTS", "prefixes": ["SR", "WDR", "RR", "HSB A", "HSB B"]},
        {"name": "Working Shift MRTS", "prefixes": ["SM", "WDM", "HSB M"]}
      ],
      "other_name": "Other Shifts",
      "leave_codes": ["CL", "SL", "WL", "CO", "EL", "AP", "LM", "WO"]
    }
  }

VALIDATION:
  Struct rules run through validation.Struct (validator/v10 tags). A layout
  or department that does not parse fails with ErrUnknownLayout or
  directory.ErrUnknownDepartment; every failure also matches
  ErrInvalidProfile.

USAGE:
  f := factory.NewProfileFactory()
  p, err := f.ParseProfile(factory.TrainOpsRosterJSON("train-ops-roster", "Train Operations Roster"))
  res := p.Parser().Parse(tables)
  report := p.RosterAnalyzer().Sheets(extract.Normalize(res))

SEE ALSO:
  - factory/presets.go: built-in department profiles
  - store/sqlite/sqlite.go: profile persistence
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/directory"
	"github.com/warp/attendance-engine/extract"
	"github.com/warp/attendance-engine/rosterreport"
	"github.com/warp/attendance-engine/validation"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ProfileJSON is the JSON representation of a profile.
type ProfileJSON struct {
	ID           string      `json:"id" validate:"required,max=64"`
	Name         string      `json:"name" validate:"required"`
	Department   string      `json:"department" validate:"required"`
	Layout       string      `json:"layout,omitempty"`
	ShiftColumns int         `json:"shift_columns,omitempty" validate:"gte=0,lte=8"`
	TopN         int         `json:"top_n,omitempty" validate:"gte=0"`
	Roster       *RosterJSON `json:"roster,omitempty"`
}

// RosterJSON configures the roster report.
type RosterJSON struct {
	Families   []FamilyJSON `json:"families,omitempty" validate:"dive"`
	OtherName  string       `json:"other_name,omitempty"`
	LeaveCodes []string     `json:"leave_codes,omitempty" validate:"dive,required"`
}

// FamilyJSON is one duty family.
type FamilyJSON struct {
	Name     string   `json:"name" validate:"required"`
	Prefixes []string `json:"prefixes" validate:"min=1,dive,required"`
}

// =============================================================================
// PROFILE
// =============================================================================

// Profile is a parsed, validated department profile.
type Profile struct {
	ID           string
	Name         string
	Department   directory.Department
	Layout       extract.Layout
	ShiftColumns int
	TopN         int

	// Roster is nil when the profile has no roster section; RosterAnalyzer
	// then falls back to rosterreport.DefaultConfig.
	Roster *rosterreport.Config
}

// Parser returns a table parser configured for this profile.
func (p *Profile) Parser() *extract.Parser {
	return &extract.Parser{Layout: p.Layout, ShiftColumns: p.ShiftColumns}
}

// Analyzer returns an attendance analyzer for one month.
func (p *Profile) Analyzer(month string, dir directory.Directory) *attendance.Analyzer {
	a := attendance.NewAnalyzer(month, dir)
	if p.TopN > 0 {
		a.TopN = p.TopN
	}
	return a
}

// RosterAnalyzer returns the roster report analyzer for this profile.
func (p *Profile) RosterAnalyzer() *rosterreport.Analyzer {
	if p.Roster == nil {
		return rosterreport.New(rosterreport.DefaultConfig())
	}
	return rosterreport.New(*p.Roster)
}

// =============================================================================
// PROFILE FACTORY
// =============================================================================

// ProfileFactory converts JSON profiles to Go structs.
type ProfileFactory struct{}

// NewProfileFactory creates a new profile factory.
func NewProfileFactory() *ProfileFactory {
	return &ProfileFactory{}
}

// ParseProfile parses a JSON string into a Profile.
func (f *ProfileFactory) ParseProfile(jsonStr string) (*Profile, error) {
	var pj ProfileJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("%w: failed to parse profile JSON: %w", ErrInvalidProfile, err)
	}
	return f.FromJSON(pj)
}

// FromJSON validates pj and converts it to a Profile.
func (f *ProfileFactory) FromJSON(pj ProfileJSON) (*Profile, error) {
	if err := validation.Struct(pj); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	layout, err := extract.ParseLayout(pj.Layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	dep, err := directory.ParseDepartment(pj.Department)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	p := &Profile{
		ID:           pj.ID,
		Name:         pj.Name,
		Department:   dep,
		Layout:       layout,
		ShiftColumns: pj.ShiftColumns,
		TopN:         pj.TopN,
	}
	if pj.Roster != nil {
		cfg := parseRoster(*pj.Roster)
		p.Roster = &cfg
	}
	return p, nil
}

// ToJSON converts a Profile back to its JSON representation.
func (f *ProfileFactory) ToJSON(p *Profile) ProfileJSON {
	pj := ProfileJSON{
		ID:           p.ID,
		Name:         p.Name,
		Department:   string(p.Department),
		Layout:       string(p.Layout),
		ShiftColumns: p.ShiftColumns,
		TopN:         p.TopN,
	}
	if p.Roster != nil {
		rj := &RosterJSON{
			OtherName:  p.Roster.OtherName,
			LeaveCodes: append([]string(nil), p.Roster.LeaveCodes...),
		}
		for _, fam := range p.Roster.Families {
			rj.Families = append(rj.Families, FamilyJSON{
				Name:     fam.Name,
				Prefixes: append([]string(nil), fam.Prefixes...),
			})
		}
		pj.Roster = rj
	}
	return pj
}

// =============================================================================
// PARSE HELPERS
// =============================================================================

// parseRoster fills omitted roster fields from the defaults.
func parseRoster(rj RosterJSON) rosterreport.Config {
	cfg := rosterreport.DefaultConfig()
	if len(rj.Families) > 0 {
		cfg.Families = make([]rosterreport.Family, len(rj.Families))
		for i, fj := range rj.Families {
			cfg.Families[i] = rosterreport.Family{
				Name:     fj.Name,
				Prefixes: append([]string(nil), fj.Prefixes...),
			}
		}
	}
	if rj.OtherName != "" {
		cfg.OtherName = rj.OtherName
	}
	if len(rj.LeaveCodes) > 0 {
		cfg.LeaveCodes = append([]string(nil), rj.LeaveCodes...)
	}
	return cfg
}
