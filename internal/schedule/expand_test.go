package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda-service/internal/models"
)

func clock(t *testing.T, s string) models.ClockTime {
	t.Helper()
	c, err := models.ParseClock(s)
	require.NoError(t, err)
	return c
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

// monday is 2025-06-02.
const monday = "2025-06-02"

func mondayMorningTemplate(t *testing.T, interval int) models.AvailabilityTemplate {
	t.Helper()
	return models.AvailabilityTemplate{
		ID:                  "tpl-1",
		DoctorID:            "doc-1",
		Weekday:             1,
		Period:              models.PeriodMorning,
		Active:              true,
		StartTime:           clock(t, "08:00"),
		EndTime:             clock(t, "10:00"),
		PatientLimit:        4,
		SlotIntervalMinutes: interval,
	}
}

func TestExpand_SingleMondayMorning(t *testing.T) {
	templates := []models.AvailabilityTemplate{mondayMorningTemplate(t, 30)}

	slots := Expand("doc-1", templates, date(t, monday), date(t, monday))

	require.Len(t, slots, 4)
	var times []string
	for _, s := range slots {
		times = append(times, s.Time.String())
		assert.Equal(t, models.SlotFree, s.Status)
		assert.Equal(t, models.PeriodMorning, s.Period)
	}
	// 10:00 is excluded: the period end is exclusive.
	assert.Equal(t, []string{"08:00", "08:30", "09:00", "09:30"}, times)
}

func TestExpand_TrailingPartialIntervalDropped(t *testing.T) {
	tpl := mondayMorningTemplate(t, 30)
	tpl.EndTime = clock(t, "09:50")

	slots := Expand("doc-1", []models.AvailabilityTemplate{tpl}, date(t, monday), date(t, monday))

	require.Len(t, slots, 3)
	assert.Equal(t, "09:00", slots[2].Time.String())
}

func TestExpand_InvertedRangeIsEmpty(t *testing.T) {
	templates := []models.AvailabilityTemplate{mondayMorningTemplate(t, 30)}

	slots := Expand("doc-1", templates, date(t, "2025-06-09"), date(t, monday))

	assert.Empty(t, slots)
}

func TestExpand_DayWithoutTemplateYieldsNoSlots(t *testing.T) {
	templates := []models.AvailabilityTemplate{mondayMorningTemplate(t, 30)}

	// Tuesday has no template; not an error, just zero slots.
	slots := Expand("doc-1", templates, date(t, "2025-06-03"), date(t, "2025-06-03"))

	assert.Empty(t, slots)
}

func TestExpand_InactiveTemplateSkipped(t *testing.T) {
	tpl := mondayMorningTemplate(t, 30)
	tpl.Active = false

	slots := Expand("doc-1", []models.AvailabilityTemplate{tpl}, date(t, monday), date(t, monday))

	assert.Empty(t, slots)
}

func TestExpand_PeriodsConcatenateInFixedOrder(t *testing.T) {
	afternoon := models.AvailabilityTemplate{
		ID: "tpl-2", DoctorID: "doc-1", Weekday: 1, Period: models.PeriodAfternoon,
		Active: true, StartTime: clock(t, "14:00"), EndTime: clock(t, "15:00"),
		PatientLimit: 2, SlotIntervalMinutes: 30,
	}
	// Afternoon listed first; output must still be morning first.
	templates := []models.AvailabilityTemplate{afternoon, mondayMorningTemplate(t, 30)}

	slots := Expand("doc-1", templates, date(t, monday), date(t, monday))

	require.Len(t, slots, 6)
	assert.Equal(t, models.PeriodMorning, slots[0].Period)
	assert.Equal(t, "08:00", slots[0].Time.String())
	assert.Equal(t, models.PeriodAfternoon, slots[4].Period)
	assert.Equal(t, "14:00", slots[4].Time.String())
}

func TestExpand_MultiWeekOrderedByDate(t *testing.T) {
	templates := []models.AvailabilityTemplate{mondayMorningTemplate(t, 30)}

	slots := Expand("doc-1", templates, date(t, monday), date(t, "2025-06-15"))

	require.Len(t, slots, 8) // two Mondays in the range
	assert.Equal(t, date(t, monday), slots[0].Date)
	assert.Equal(t, date(t, "2025-06-09"), slots[4].Date)
	assert.True(t, slots[3].Date.Before(slots[4].Date))
}

func TestExpand_Idempotent(t *testing.T) {
	templates := []models.AvailabilityTemplate{mondayMorningTemplate(t, 20)}

	first := Expand("doc-1", templates, date(t, monday), date(t, "2025-06-30"))
	second := Expand("doc-1", templates, date(t, monday), date(t, "2025-06-30"))

	assert.Equal(t, first, second)
}

func TestExpandN_StopsAtPreviewCount(t *testing.T) {
	templates := []models.AvailabilityTemplate{mondayMorningTemplate(t, 5)}

	slots := ExpandN("doc-1", templates, date(t, monday), date(t, "2026-06-01"), 3)

	require.Len(t, slots, 3)
	assert.Equal(t, "08:10", slots[2].Time.String())
}

func TestExpansion_RestartableCursor(t *testing.T) {
	templates := []models.AvailabilityTemplate{mondayMorningTemplate(t, 30)}

	exp := NewTemplateExpansion("doc-1", templates, date(t, monday), date(t, monday))
	first, ok := exp.Next()
	require.True(t, ok)
	assert.Equal(t, "08:00", first.Time.String())

	second, ok := exp.Next()
	require.True(t, ok)
	assert.Equal(t, "08:30", second.Time.String())

	rest := drain(exp, -1)
	assert.Len(t, rest, 2)
	_, ok = exp.Next()
	assert.False(t, ok)
}

func TestExpandRule_PerDayOverrideWins(t *testing.T) {
	rule := models.ServiceRule{
		DoctorID: "doc-1",
		Service:  "ECG",
		Mode:     models.ModeFixedTime,
		FixedIntervalMinutes: 15,
		Periods: map[models.Period]models.PeriodConfig{
			models.PeriodMorning: {Active: true, StartTime: clock(t, "08:00"), EndTime: clock(t, "12:00"), PatientLimit: 8},
		},
		PerDayPeriods: map[int]map[models.Period]models.PeriodConfig{
			1: {
				models.PeriodMorning: {Active: true, StartTime: clock(t, "09:00"), EndTime: clock(t, "10:00"), PatientLimit: 2},
			},
		},
	}

	slots := ExpandRule("doc-1", rule, nil, date(t, monday), date(t, monday))

	require.Len(t, slots, 4)
	assert.Equal(t, "09:00", slots[0].Time.String())
	assert.Equal(t, "ECG", slots[0].Service)
}

func TestExpandRule_InheritFallsBackToTemplates(t *testing.T) {
	templates := []models.AvailabilityTemplate{mondayMorningTemplate(t, 30)}
	rule := models.ServiceRule{DoctorID: "doc-1", Service: "Consulta", Mode: models.ModeInherit}

	slots := ExpandRule("doc-1", rule, templates, date(t, monday), date(t, monday))

	require.Len(t, slots, 4)
	assert.Equal(t, "Consulta", slots[0].Service)
	assert.Equal(t, "08:00", slots[0].Time.String())
}

func TestExpandRule_InactiveDaySkipped(t *testing.T) {
	templates := []models.AvailabilityTemplate{mondayMorningTemplate(t, 30)}
	rule := models.ServiceRule{
		DoctorID:   "doc-1",
		Service:    "Consulta",
		Mode:       models.ModeInherit,
		ActiveDays: []int{3}, // Wednesday only
	}

	slots := ExpandRule("doc-1", rule, templates, date(t, monday), date(t, monday))

	assert.Empty(t, slots)
}
