package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda-service/internal/models"
)

func TestReconcile_ResolvesSlotStates(t *testing.T) {
	rs := clinicRuleSet(t)
	candidates := Expand("doc-1", rs.Templates, date(t, monday), date(t, monday))
	require.Len(t, candidates, 4)

	appointments := []models.Appointment{appt(t, "Consulta", monday, "08:30")}

	slots, state := Reconcile(candidates, appointments, nil, rs.Services)

	assert.Equal(t, models.SlotFree, slots[0].Status)
	assert.Equal(t, models.SlotBooked, slots[1].Status)
	assert.Equal(t, models.SlotFree, slots[2].Status)
	assert.True(t, state.Occupied(date(t, monday), clock(t, "08:30")))
}

func TestReconcile_ClosureWinsOverBooking(t *testing.T) {
	rs := clinicRuleSet(t)
	candidates := Expand("doc-1", rs.Templates, date(t, monday), date(t, monday))

	appointments := []models.Appointment{appt(t, "Consulta", monday, "08:30")}
	closures := []models.Closure{{
		DoctorID: "doc-1",
		From:     date(t, "2025-06-01"),
		To:       date(t, "2025-06-07"),
		Reason:   "congresso",
	}}

	slots, _ := Reconcile(candidates, appointments, closures, rs.Services)

	for _, s := range slots {
		assert.Equal(t, models.SlotClosed, s.Status)
	}
}

func TestReconcile_ClosureOutsideRangeHasNoEffect(t *testing.T) {
	rs := clinicRuleSet(t)
	candidates := Expand("doc-1", rs.Templates, date(t, monday), date(t, monday))

	closures := []models.Closure{{
		DoctorID: "doc-1",
		From:     date(t, "2025-07-01"),
		To:       date(t, "2025-07-15"),
	}}

	slots, _ := Reconcile(candidates, nil, closures, rs.Services)

	for _, s := range slots {
		assert.Equal(t, models.SlotFree, s.Status)
	}
}

func TestReconcile_CancelledAppointmentsIgnored(t *testing.T) {
	rs := clinicRuleSet(t)
	candidates := Expand("doc-1", rs.Templates, date(t, monday), date(t, monday))

	cancelled := appt(t, "Consulta", monday, "08:30")
	cancelled.Status = models.AppointmentCancelled

	slots, state := Reconcile(candidates, []models.Appointment{cancelled}, nil, rs.Services)

	assert.Equal(t, models.SlotFree, slots[1].Status)
	assert.Zero(t, state.PoolCount("Consulta", models.PeriodMorning, date(t, monday)))
}

func TestBookingState_SharedPoolCountedOnce(t *testing.T) {
	rs := clinicRuleSet(t)
	state := stateWith(rs,
		appt(t, "Consulta", monday, "08:00"),
		appt(t, "Retorno", monday, "08:30"),
	)

	// Both services resolve to the same pool root, so the pool count is
	// the sum and each appointment is counted exactly once.
	assert.Equal(t, 2, state.PoolCount("Consulta", models.PeriodMorning, date(t, monday)))
	assert.Equal(t, 2, state.PoolCount("Retorno", models.PeriodMorning, date(t, monday)))
	assert.Equal(t, 1, state.ServiceCount("Consulta", models.PeriodMorning, date(t, monday)))
	assert.Equal(t, 1, state.ServiceCount("Retorno", models.PeriodMorning, date(t, monday)))
}

func TestBookingState_IndependentServicesDoNotShareCounts(t *testing.T) {
	rs := clinicRuleSet(t)
	state := stateWith(rs,
		appt(t, "Consulta", monday, "08:00"),
		appt(t, "ECG", monday, "08:30"),
	)

	assert.Equal(t, 1, state.PoolCount("Consulta", models.PeriodMorning, date(t, monday)))
	assert.Equal(t, 1, state.PoolCount("ECG", models.PeriodMorning, date(t, monday)))
}

func TestBookingState_CountsArePerPeriodAndDate(t *testing.T) {
	rs := clinicRuleSet(t)
	afternoon := appt(t, "Consulta", monday, "14:00")
	afternoon.Period = models.PeriodAfternoon
	nextWeek := appt(t, "Consulta", "2025-06-09", "08:00")
	state := stateWith(rs, appt(t, "Consulta", monday, "08:00"), afternoon, nextWeek)

	assert.Equal(t, 1, state.PoolCount("Consulta", models.PeriodMorning, date(t, monday)))
	assert.Equal(t, 1, state.PoolCount("Consulta", models.PeriodAfternoon, date(t, monday)))
	assert.Equal(t, 1, state.PoolCount("Consulta", models.PeriodMorning, date(t, "2025-06-09")))
}
