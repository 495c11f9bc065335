package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda-service/internal/models"
)

func intp(v int) *int { return &v }

// clinicRuleSet is the shared fixture: a doctor seeing patients Monday
// mornings, with a consultation service inheriting the template, a
// fixed-time ECG with its own morning window, and a follow-up service
// sharing the consultation pool.
func clinicRuleSet(t *testing.T) models.RuleSet {
	t.Helper()
	return models.RuleSet{
		DoctorID:  "doc-1",
		Templates: []models.AvailabilityTemplate{mondayMorningTemplate(t, 30)},
		Services: map[string]models.ServiceRule{
			"Consulta": {
				DoctorID: "doc-1", Service: "Consulta", Mode: models.ModeInherit,
				OnlineBookingAllowed: true,
			},
			"Retorno": {
				DoctorID: "doc-1", Service: "Retorno", Mode: models.ModeInherit,
				SharedCapacityWith: "Consulta", OwnSubLimit: intp(2),
			},
			"ECG": {
				DoctorID: "doc-1", Service: "ECG", Mode: models.ModeFixedTime,
				FixedIntervalMinutes: 30,
				Periods: map[models.Period]models.PeriodConfig{
					models.PeriodMorning: {Active: true, StartTime: clock(t, "08:00"), EndTime: clock(t, "12:00"), PatientLimit: 2},
				},
			},
			"Teste Ergométrico": {
				DoctorID: "doc-1", Service: "Teste Ergométrico", Mode: models.ModeFixedTime,
				FixedIntervalMinutes: 30,
				Periods: map[models.Period]models.PeriodConfig{
					models.PeriodMorning: {Active: true, StartTime: clock(t, "08:00"), EndTime: clock(t, "12:00"), PatientLimit: 4},
				},
			},
		},
		InsuranceExclusions: []models.InsuranceExclusionRule{
			{Service: "Teste Ergométrico", ExcludedPlans: []string{"BASIC"}},
		},
		Bundles: []models.MandatoryBundleRule{
			{Plan: "UNIMED", TriggerService: "Consulta", RequiredService: "ECG",
				Explanation: "UNIMED exige ECG junto com a consulta"},
		},
		Intervals: []models.MinimumIntervalRule{
			{FromService: "ECG", ToService: "Teste Ergométrico", MinimumDays: 15},
		},
		Age: models.AgeEligibility{ServesChildren: true, ServesAdults: true},
	}
}

func bookingReq(t *testing.T, services []string, day, at string) models.BookingRequest {
	t.Helper()
	return models.BookingRequest{
		DoctorID:         "doc-1",
		PatientID:        "pat-1",
		Services:         services,
		Date:             date(t, day),
		Time:             clock(t, at),
		PatientBirthDate: date(t, "1990-03-10"),
		InsurancePlan:    "PARTICULAR",
	}
}

func appt(t *testing.T, service, day, at string) models.Appointment {
	t.Helper()
	return models.Appointment{
		ID: "apt-" + service + at, DoctorID: "doc-1", PatientID: "pat-other",
		Service: service, Date: date(t, day), Time: clock(t, at),
		Period: models.PeriodMorning, Status: models.AppointmentConfirmed,
	}
}

func stateWith(rs models.RuleSet, appts ...models.Appointment) *BookingState {
	state := NewBookingState(rs.Services)
	for _, a := range appts {
		state.Add(a)
	}
	return state
}

func TestEvaluate_AdmitsValidRequest(t *testing.T) {
	rs := clinicRuleSet(t)
	req := bookingReq(t, []string{"Consulta"}, monday, "08:30")

	d := Evaluate(req, rs, nil, stateWith(rs))

	assert.Equal(t, OutcomeAdmit, d.Outcome)
}

func TestEvaluate_Deterministic(t *testing.T) {
	rs := clinicRuleSet(t)
	req := bookingReq(t, []string{"ECG"}, monday, "09:00")
	state := stateWith(rs, appt(t, "ECG", monday, "08:00"))

	first := Evaluate(req, rs, nil, state)
	second := Evaluate(req, rs, nil, state)

	assert.Equal(t, first, second)
}

func TestEvaluate_AgeBelowMinimum(t *testing.T) {
	rs := clinicRuleSet(t)
	rs.Age.MinimumAge = intp(12)
	req := bookingReq(t, []string{"Consulta"}, monday, "08:30")
	req.PatientBirthDate = date(t, "2020-01-15")

	d := Evaluate(req, rs, nil, stateWith(rs))

	require.True(t, d.IsDeny())
	assert.Equal(t, ReasonAgeIneligible, d.Reason)
}

func TestEvaluate_AgeComputedAtAppointmentDate(t *testing.T) {
	rs := clinicRuleSet(t)
	rs.Age.MinimumAge = intp(18)
	req := bookingReq(t, []string{"Consulta"}, monday, "08:30")
	// Turns 18 four days after the appointment.
	req.PatientBirthDate = date(t, "2007-06-06")

	d := Evaluate(req, rs, nil, stateWith(rs))

	require.True(t, d.IsDeny())
	assert.Equal(t, ReasonAgeIneligible, d.Reason)
}

func TestEvaluate_DoctorNotServingChildren(t *testing.T) {
	rs := clinicRuleSet(t)
	rs.Age.ServesChildren = false
	req := bookingReq(t, []string{"Consulta"}, monday, "08:30")
	req.PatientBirthDate = date(t, "2015-01-01")

	d := Evaluate(req, rs, nil, stateWith(rs))

	require.True(t, d.IsDeny())
	assert.Equal(t, ReasonAgeIneligible, d.Reason)
}

func TestEvaluate_AgeDenialNotOverridable(t *testing.T) {
	rs := clinicRuleSet(t)
	rs.Age.ServesChildren = false
	req := bookingReq(t, []string{"Consulta"}, monday, "08:30")
	req.PatientBirthDate = date(t, "2015-01-01")
	req.ForceOverride = true

	d := Evaluate(req, rs, nil, stateWith(rs))

	assert.Equal(t, OutcomeDeny, d.Outcome)
}

func TestEvaluate_InsuranceExcluded(t *testing.T) {
	rs := clinicRuleSet(t)
	req := bookingReq(t, []string{"Teste Ergométrico"}, monday, "08:30")
	req.InsurancePlan = "BASIC"
	req.ForceOverride = true // must not help

	d := Evaluate(req, rs, nil, stateWith(rs))

	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonInsuranceExcluded, d.Reason)
}

func TestEvaluate_BundleRequired(t *testing.T) {
	rs := clinicRuleSet(t)
	req := bookingReq(t, []string{"Consulta"}, monday, "08:30")
	req.InsurancePlan = "UNIMED"

	d := Evaluate(req, rs, nil, stateWith(rs))

	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonBundleRequired, d.Reason)
	assert.Equal(t, "UNIMED exige ECG junto com a consulta", d.Message)
}

func TestEvaluate_BundleSatisfiedByMultiServiceRequest(t *testing.T) {
	rs := clinicRuleSet(t)
	req := bookingReq(t, []string{"Consulta", "ECG"}, monday, "08:30")
	req.InsurancePlan = "UNIMED"

	d := Evaluate(req, rs, nil, stateWith(rs))

	assert.Equal(t, OutcomeAdmit, d.Outcome)
}

func TestEvaluate_BundleDenialNotOverridable(t *testing.T) {
	rs := clinicRuleSet(t)
	req := bookingReq(t, []string{"Consulta"}, monday, "08:30")
	req.InsurancePlan = "UNIMED"
	req.ForceOverride = true

	d := Evaluate(req, rs, nil, stateWith(rs))

	assert.Equal(t, OutcomeDeny, d.Outcome)
}

func TestEvaluate_MinimumIntervalTooSoon(t *testing.T) {
	rs := clinicRuleSet(t)
	history := []models.Appointment{appt(t, "ECG", "2025-06-02", "08:00")}
	// 9 days later; the rule requires 15.
	req := bookingReq(t, []string{"Teste Ergométrico"}, "2025-06-11", "08:30")

	d := Evaluate(req, rs, history, stateWith(rs))

	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonIntervalViolation, d.Reason)
}

func TestEvaluate_MinimumIntervalElapsed(t *testing.T) {
	rs := clinicRuleSet(t)
	history := []models.Appointment{appt(t, "ECG", "2025-06-02", "08:00")}
	// 2025-06-23 is a Monday, 21 days after the ECG.
	req := bookingReq(t, []string{"Teste Ergométrico"}, "2025-06-23", "08:30")

	d := Evaluate(req, rs, history, stateWith(rs))

	assert.Equal(t, OutcomeAdmit, d.Outcome)
}

func TestEvaluate_MinimumIntervalIsDirectional(t *testing.T) {
	rs := clinicRuleSet(t)
	// Prior Teste Ergométrico does not block a later ECG.
	history := []models.Appointment{appt(t, "Teste Ergométrico", "2025-06-02", "08:00")}
	req := bookingReq(t, []string{"ECG"}, "2025-06-09", "08:30")

	d := Evaluate(req, rs, history, stateWith(rs))

	assert.Equal(t, OutcomeAdmit, d.Outcome)
}

func TestEvaluate_IntervalDenialNotOverridable(t *testing.T) {
	rs := clinicRuleSet(t)
	history := []models.Appointment{appt(t, "ECG", "2025-06-02", "08:00")}
	req := bookingReq(t, []string{"Teste Ergométrico"}, "2025-06-11", "08:30")
	req.ForceOverride = true

	d := Evaluate(req, rs, history, stateWith(rs))

	assert.Equal(t, OutcomeDeny, d.Outcome)
}

func TestEvaluate_UnknownServiceDeniesOutsideSchedule(t *testing.T) {
	rs := clinicRuleSet(t)
	req := bookingReq(t, []string{"Endoscopia"}, monday, "08:30")

	d := Evaluate(req, rs, nil, stateWith(rs))

	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonOutsideSchedule, d.Reason)
}

func TestEvaluate_TimeOutsidePeriod(t *testing.T) {
	rs := clinicRuleSet(t)
	req := bookingReq(t, []string{"Consulta"}, monday, "13:00")

	d := Evaluate(req, rs, nil, stateWith(rs))

	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonOutsideSchedule, d.Reason)
}

func TestEvaluate_MisalignedTime(t *testing.T) {
	rs := clinicRuleSet(t)
	req := bookingReq(t, []string{"ECG"}, monday, "08:10")

	d := Evaluate(req, rs, nil, stateWith(rs))

	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonOutsideSchedule, d.Reason)
}

func TestEvaluate_WeekdayNotActiveForService(t *testing.T) {
	rs := clinicRuleSet(t)
	rule := rs.Services["ECG"]
	rule.ActiveDays = []int{3}
	rs.Services["ECG"] = rule
	req := bookingReq(t, []string{"ECG"}, monday, "08:30")

	d := Evaluate(req, rs, nil, stateWith(rs))

	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonOutsideSchedule, d.Reason)
}

func TestEvaluate_CapacityExceeded(t *testing.T) {
	rs := clinicRuleSet(t)
	state := stateWith(rs,
		appt(t, "ECG", monday, "08:00"),
		appt(t, "ECG", monday, "08:30"),
	)
	req := bookingReq(t, []string{"ECG"}, monday, "09:00")

	d := Evaluate(req, rs, nil, state)

	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonCapacityExceeded, d.Reason)
}

func TestEvaluate_CapacityExceededOverridable(t *testing.T) {
	rs := clinicRuleSet(t)
	state := stateWith(rs,
		appt(t, "ECG", monday, "08:00"),
		appt(t, "ECG", monday, "08:30"),
	)
	req := bookingReq(t, []string{"ECG"}, monday, "09:00")
	req.ForceOverride = true

	d := Evaluate(req, rs, nil, state)

	require.Equal(t, OutcomeAdmitWithWarning, d.Outcome)
	assert.Equal(t, ReasonCapacityExceeded, d.Reason)
}

func TestEvaluate_SharedPoolCountsAcrossServices(t *testing.T) {
	rs := clinicRuleSet(t)
	// Template limit is 4; Consulta and Retorno share the pool.
	state := stateWith(rs,
		appt(t, "Consulta", monday, "08:00"),
		appt(t, "Consulta", monday, "08:30"),
		appt(t, "Retorno", monday, "09:00"),
		appt(t, "Retorno", monday, "09:30"),
	)
	req := bookingReq(t, []string{"Consulta"}, monday, "09:00")

	d := Evaluate(req, rs, nil, state)

	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonCapacityExceeded, d.Reason)
}

func TestEvaluate_SubLimitExceeded(t *testing.T) {
	rs := clinicRuleSet(t)
	// Pool has room (2 of 4) but Retorno hit its own sub-limit of 2.
	state := stateWith(rs,
		appt(t, "Retorno", monday, "08:00"),
		appt(t, "Retorno", monday, "08:30"),
	)
	req := bookingReq(t, []string{"Retorno"}, monday, "09:00")

	d := Evaluate(req, rs, nil, state)

	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonSubLimitExceeded, d.Reason)
}

func TestEvaluate_SlotOccupied(t *testing.T) {
	rs := clinicRuleSet(t)
	state := stateWith(rs, appt(t, "Consulta", monday, "09:00"))
	req := bookingReq(t, []string{"Consulta"}, monday, "09:00")

	d := Evaluate(req, rs, nil, state)

	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonSlotOccupied, d.Reason)
}

func TestEvaluate_SlotOccupiedOverridable(t *testing.T) {
	rs := clinicRuleSet(t)
	state := stateWith(rs, appt(t, "Consulta", monday, "09:00"))
	req := bookingReq(t, []string{"Consulta"}, monday, "09:00")
	req.ForceOverride = true

	d := Evaluate(req, rs, nil, state)

	require.Equal(t, OutcomeAdmitWithWarning, d.Outcome)
	assert.Equal(t, ReasonSlotOccupied, d.Reason)
}

func TestEvaluate_CancelledAppointmentsFreeTheSlot(t *testing.T) {
	rs := clinicRuleSet(t)
	cancelled := appt(t, "Consulta", monday, "09:00")
	cancelled.Status = models.AppointmentCancelled
	state := stateWith(rs, cancelled)
	req := bookingReq(t, []string{"Consulta"}, monday, "09:00")

	d := Evaluate(req, rs, nil, state)

	assert.Equal(t, OutcomeAdmit, d.Outcome)
}

func TestAgeAt(t *testing.T) {
	birth := date(t, "2000-06-15")
	assert.Equal(t, 24, AgeAt(birth, date(t, "2025-06-14")))
	assert.Equal(t, 25, AgeAt(birth, date(t, "2025-06-15")))
	assert.Equal(t, 25, AgeAt(birth, date(t, "2025-12-01")))
}
