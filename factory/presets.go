/*
presets.go - Built-in department profiles

PURPOSE:
  JSON for the four export variants the departments produce today. The
  server seeds these into the profile store on first start; callers can
  copy one and change it.

AVAILABLE PROFILES:
  StationsJSON:          Station controller attendance, simple layout
  OCCJSON:               Operations control centre attendance, simple layout
  TrainOpsRosterJSON:    Train Operations duty roster, simple layout + roster tables
  TrainOpsTripChartJSON: Train Operations trip chart, shift block before the days

SEE ALSO:
  - profile.go: ParseProfile
*/
package factory

import (
	"encoding/json"

	"github.com/warp/attendance-engine/rosterreport"
)

// Preset IDs.
const (
	PresetStations       = "stations"
	PresetOCC            = "occ"
	PresetTrainOpsRoster = "train-ops-roster"
	PresetTrainOpsTrip   = "train-ops-trip-chart"
)

// StationsJSON returns JSON for the Stations attendance profile.
func StationsJSON(id, name string) string {
	return presetJSON(map[string]any{
		"id":         id,
		"name":       name,
		"department": "stations",
		"layout":     "simple",
	})
}

// OCCJSON returns JSON for the OCC attendance profile.
func OCCJSON(id, name string) string {
	return presetJSON(map[string]any{
		"id":         id,
		"name":       name,
		"department": "occ",
		"layout":     "simple",
	})
}

// TrainOpsRosterJSON returns JSON for the Train Operations roster profile.
func TrainOpsRosterJSON(id, name string) string {
	cfg := rosterreport.DefaultConfig()
	families := make([]map[string]any, len(cfg.Families))
	for i, f := range cfg.Families {
		families[i] = map[string]any{"name": f.Name, "prefixes": f.Prefixes}
	}
	return presetJSON(map[string]any{
		"id":         id,
		"name":       name,
		"department": "train_operations",
		"layout":     "simple",
		"roster": map[string]any{
			"families":    families,
			"other_name":  cfg.OtherName,
			"leave_codes": cfg.LeaveCodes,
		},
	})
}

// TrainOpsTripChartJSON returns JSON for the Train Operations trip chart profile.
// shiftColumns 0 detects the shift block width from the table header.
func TrainOpsTripChartJSON(id, name string, shiftColumns int) string {
	return presetJSON(map[string]any{
		"id":            id,
		"name":          name,
		"department":    "train_operations",
		"layout":        "trip_chart",
		"shift_columns": shiftColumns,
	})
}

// Presets returns the JSON of every built-in profile.
func Presets() []string {
	return []string{
		StationsJSON(PresetStations, "Stations Attendance"),
		OCCJSON(PresetOCC, "OCC Attendance"),
		TrainOpsRosterJSON(PresetTrainOpsRoster, "Train Operations Roster"),
		TrainOpsTripChartJSON(PresetTrainOpsTrip, "Train Operations Trip Chart", 0),
	}
}

func presetJSON(pj map[string]any) string {
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}
