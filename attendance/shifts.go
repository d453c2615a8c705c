package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/extract"
)

// ShiftShare is one row of the shift distribution.
type ShiftShare struct {
	Code       string          `json:"shift_code"`
	Name       string          `json:"shift_name"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// ShiftDistribution counts worked shifts per letter over the whole batch.
// A batch without any shift yields no rows.
func ShiftDistribution(b extract.Batch) []ShiftShare {
	counts := make(map[string]int)
	total := 0
	for _, r := range b.Records {
		for _, raw := range r.Days {
			if code := Classify(raw); code.Kind == KindShift {
				counts[code.Shift]++
				total++
			}
		}
	}

	out := []ShiftShare{}
	if total == 0 {
		return out
	}
	for _, sh := range Shifts {
		out = append(out, ShiftShare{
			Code:       sh.Letter,
			Name:       sh.Name,
			Count:      counts[sh.Letter],
			Percentage: Rate(counts[sh.Letter], total),
		})
	}
	return out
}
