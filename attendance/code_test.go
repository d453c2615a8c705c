package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/attendance-engine/grid"
)

func TestClassify_LeaveCodesAndPrefixes(t *testing.T) {
	for _, l := range LeaveCodes {
		assert.Equal(t, KindLeave, Classify(l.Code).Kind, l.Code)
		assert.Equal(t, KindLeave, Classify(l.Code+"1").Kind, l.Code+"1")
		assert.Equal(t, l.Code, Classify(l.Code+"1").Leave)
	}
}

func TestClassify_WeeklyOffAndAbsent(t *testing.T) {
	assert.Equal(t, KindWeeklyOff, Classify("WO").Kind)
	assert.Equal(t, KindWeeklyOff, Classify("wo-x").Kind)
	assert.Equal(t, KindWeeklyOff, Classify("WO NASH").Kind)
	assert.Equal(t, KindAbsent, Classify("AB").Kind)
	assert.Equal(t, KindAbsent, Classify("ab ").Kind)
	assert.Equal(t, KindAbsent, Classify("AB-1").Kind)

	// "WOX" is neither a marker form nor a shift letter
	assert.Equal(t, KindUnknown, Classify("WOX").Kind)
}

func TestClassify_ShiftWithStation(t *testing.T) {
	got := Classify("M-NASH")
	assert.Equal(t, KindShift, got.Kind)
	assert.Equal(t, "M", got.Shift)
	assert.Equal(t, "NASH", got.Station)
	assert.True(t, got.IsWorkingDay())
}

func TestClassify_StationWithEmbeddedTiming(t *testing.T) {
	// "00" and "-" are stripped from the text before the colon
	got := Classify("N-RITH22:00-07:00")
	assert.Equal(t, KindShift, got.Kind)
	assert.Equal(t, "N", got.Shift)
	assert.Equal(t, "RITH22", got.Station)

	assert.Equal(t, "KARX", Classify("e-KA00R-x:15").Station)
	assert.Equal(t, "", Classify("G").Station)
	assert.Equal(t, "NASH-B", Classify("M-NASH-B").Station)
}

func TestClassify_EmptyAndUnknown(t *testing.T) {
	assert.Equal(t, KindEmpty, Classify("").Kind)
	assert.Equal(t, KindEmpty, Classify("   ").Kind)
	assert.Equal(t, KindEmpty, ClassifyCell(grid.Null()).Kind)

	got := Classify(" xyz ")
	assert.Equal(t, KindUnknown, got.Kind)
	assert.Equal(t, "XYZ", got.Raw)
	assert.False(t, got.Counts())
}

func TestClassify_LeaveBeatsShiftLetter(t *testing.T) {
	// EL starts with a shift letter but is matched as leave first
	got := Classify("EL")
	assert.Equal(t, KindLeave, got.Kind)
	assert.True(t, got.IsOnLeave())
}

func TestShiftAndLeaveNames(t *testing.T) {
	assert.Equal(t, "Night Shift (22:00-07:00)", ShiftName("N"))
	assert.Equal(t, "N/A", ShiftName(""))
	assert.Equal(t, "Sick Leave", LeaveName("SL"))
	assert.Equal(t, "XX", LeaveName("XX"))
	assert.Equal(t, "weekly_off", KindWeeklyOff.String())
}
