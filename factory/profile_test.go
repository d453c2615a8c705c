package factory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/directory"
	"github.com/warp/attendance-engine/extract"
	"github.com/warp/attendance-engine/rosterreport"
	"github.com/warp/attendance-engine/validation"
)

func TestParseProfile_Presets(t *testing.T) {
	f := NewProfileFactory()

	for _, js := range Presets() {
		p, err := f.ParseProfile(js)
		require.NoError(t, err, js)
		assert.NotEmpty(t, p.ID)
	}
}

func TestParseProfile_TrainOpsRoster(t *testing.T) {
	// GIVEN: the roster preset
	p, err := NewProfileFactory().ParseProfile(TrainOpsRosterJSON("r", "Roster"))
	require.NoError(t, err)

	// THEN: the roster analyzer uses the configured tables
	assert.Equal(t, directory.DepartmentTrainOperation, p.Department)
	assert.Equal(t, extract.LayoutSimple, p.Layout)
	require.NotNil(t, p.Roster)
	a := p.RosterAnalyzer()
	assert.Equal(t, rosterreport.FamilyMRTS, a.Category("WDM-4"))
	assert.Equal(t, "AP", a.LeaveType("AP"))
}

func TestParseProfile_TripChart(t *testing.T) {
	p, err := NewProfileFactory().ParseProfile(TrainOpsTripChartJSON("t", "Trip", 2))
	require.NoError(t, err)

	parser := p.Parser()
	assert.Equal(t, extract.LayoutTripChart, parser.Layout)
	assert.Equal(t, 2, parser.ShiftColumns)
	assert.Nil(t, p.Roster)
	assert.Equal(t, rosterreport.DefaultConfig().LeaveCodes, p.RosterAnalyzer().Config().LeaveCodes)
}

func TestParseProfile_CustomRosterKeepsDefaultsForOmittedFields(t *testing.T) {
	js := `{
		"id": "depot", "name": "Depot", "department": "Train Operations",
		"roster": {"families": [{"name": "Depot", "prefixes": ["DP"]}]}
	}`

	p, err := NewProfileFactory().ParseProfile(js)
	require.NoError(t, err)

	assert.Equal(t, extract.LayoutSimple, p.Layout)
	assert.Equal(t, []rosterreport.Family{{Name: "Depot", Prefixes: []string{"DP"}}}, p.Roster.Families)
	assert.Equal(t, rosterreport.OtherShift, p.Roster.OtherName)
	assert.Len(t, p.Roster.LeaveCodes, 8)
}

func TestParseProfile_Errors(t *testing.T) {
	f := NewProfileFactory()

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := f.ParseProfile(`{"id":`)
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.ParseProfile(`{"layout": "simple", "shift_columns": 12}`)
		require.ErrorIs(t, err, ErrInvalidProfile)

		var verr *validation.Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{
			"id is required",
			"name is required",
			"department is required",
			"shift_columns must be less than or equal to 8",
		}, verr.Messages())
	})

	t.Run("family without prefixes", func(t *testing.T) {
		_, err := f.ParseProfile(`{"id":"x","name":"x","department":"occ","roster":{"families":[{"name":"A"}]}}`)
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("unknown layout", func(t *testing.T) {
		_, err := f.ParseProfile(`{"id":"x","name":"x","department":"occ","layout":"grid"}`)
		assert.ErrorIs(t, err, ErrUnknownLayout)
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("unknown department", func(t *testing.T) {
		_, err := f.ParseProfile(`{"id":"x","name":"x","department":"depot"}`)
		assert.ErrorIs(t, err, directory.ErrUnknownDepartment)
	})
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := NewProfileFactory()
	p, err := f.ParseProfile(TrainOpsRosterJSON("r", "Roster"))
	require.NoError(t, err)

	again, err := f.FromJSON(f.ToJSON(p))
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestProfile_Analyzer(t *testing.T) {
	p := &Profile{TopN: 3}
	assert.Equal(t, 3, p.Analyzer("Oct", nil).TopN)

	p.TopN = 0
	assert.Equal(t, 10, p.Analyzer("Oct", nil).TopN)
}
