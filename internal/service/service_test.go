package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda-service/api"
	"agenda-service/internal/models"
	"agenda-service/pkg/response"
)

func validTemplateRequest() *api.AvailabilityTemplateRequest {
	return &api.AvailabilityTemplateRequest{
		DoctorID:            "dr-1",
		Weekday:             1,
		Period:              "morning",
		Active:              true,
		StartTime:           "08:00",
		EndTime:             "12:00",
		PatientLimit:        10,
		SlotIntervalMinutes: 15,
	}
}

func TestTemplateFromRequest_Valid(t *testing.T) {
	tpl, err := templateFromRequest(validTemplateRequest())
	require.NoError(t, err)

	assert.Equal(t, models.PeriodMorning, tpl.Period)
	assert.Equal(t, models.ClockTime(8*60), tpl.StartTime)
	assert.Equal(t, models.ClockTime(12*60), tpl.EndTime)
}

func TestTemplateFromRequest_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*api.AvailabilityTemplateRequest)
	}{
		{"missing doctor", func(r *api.AvailabilityTemplateRequest) { r.DoctorID = "" }},
		{"weekday out of range", func(r *api.AvailabilityTemplateRequest) { r.Weekday = 7 }},
		{"unknown period", func(r *api.AvailabilityTemplateRequest) { r.Period = "night" }},
		{"zero patient limit", func(r *api.AvailabilityTemplateRequest) { r.PatientLimit = 0 }},
		{"disallowed interval", func(r *api.AvailabilityTemplateRequest) { r.SlotIntervalMinutes = 7 }},
		{"malformed start time", func(r *api.AvailabilityTemplateRequest) { r.StartTime = "8am" }},
		{"inverted range", func(r *api.AvailabilityTemplateRequest) { r.StartTime = "14:00"; r.EndTime = "12:00" }},
		{"empty range", func(r *api.AvailabilityTemplateRequest) { r.StartTime = "12:00"; r.EndTime = "12:00" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validTemplateRequest()
			tc.mutate(req)

			_, err := templateFromRequest(req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, response.ErrValidation))
		})
	}
}

func TestRuleSetFromRequest_Valid(t *testing.T) {
	req := &api.RuleSetRequest{
		Services: []api.ServiceRuleDTO{
			{Service: "Consulta", Mode: "inherit", OnlineBookingAllowed: true},
			{
				Service:              "ECG",
				Mode:                 "fixed_time",
				FixedIntervalMinutes: 30,
				ActiveDays:           []int{1, 3},
				Periods: map[string]api.PeriodConfigDTO{
					"morning": {Active: true, StartTime: "08:00", EndTime: "12:00", PatientLimit: 4},
				},
			},
		},
		Intervals: []api.IntervalRuleDTO{
			{FromService: "Consulta", ToService: "ECG", MinimumDays: 15},
		},
	}

	rs, err := ruleSetFromRequest("dr-1", req)
	require.NoError(t, err)

	require.Len(t, rs.Services, 2)
	ecg := rs.Services["ECG"]
	assert.Equal(t, models.ModeFixedTime, ecg.Mode)
	assert.Equal(t, []int{1, 3}, ecg.ActiveDays)

	cfg, ok := ecg.Periods[models.PeriodMorning]
	require.True(t, ok)
	assert.Equal(t, models.ClockTime(8*60), cfg.StartTime)
	assert.Equal(t, 4, cfg.PatientLimit)

	require.Len(t, rs.Intervals, 1)
	assert.Equal(t, 15, rs.Intervals[0].MinimumDays)
}

func TestRuleSetFromRequest_Invalid(t *testing.T) {
	cases := []struct {
		name string
		req  *api.RuleSetRequest
	}{
		{
			"duplicate service",
			&api.RuleSetRequest{Services: []api.ServiceRuleDTO{
				{Service: "Consulta", Mode: "inherit"},
				{Service: "Consulta", Mode: "inherit"},
			}},
		},
		{
			"unnamed service",
			&api.RuleSetRequest{Services: []api.ServiceRuleDTO{{Service: "", Mode: "inherit"}}},
		},
		{
			"unknown mode",
			&api.RuleSetRequest{Services: []api.ServiceRuleDTO{{Service: "Consulta", Mode: "queue"}}},
		},
		{
			"fixed_time without interval",
			&api.RuleSetRequest{Services: []api.ServiceRuleDTO{{Service: "ECG", Mode: "fixed_time"}}},
		},
		{
			"active day out of range",
			&api.RuleSetRequest{Services: []api.ServiceRuleDTO{
				{Service: "Consulta", Mode: "inherit", ActiveDays: []int{9}},
			}},
		},
		{
			"bad per-day key",
			&api.RuleSetRequest{Services: []api.ServiceRuleDTO{{
				Service: "Consulta", Mode: "estimated_time",
				PerDayPeriods: map[string]map[string]api.PeriodConfigDTO{
					"monday": {"morning": {Active: true, StartTime: "08:00", EndTime: "12:00"}},
				},
			}}},
		},
		{
			"inverted period range",
			&api.RuleSetRequest{Services: []api.ServiceRuleDTO{{
				Service: "Consulta", Mode: "estimated_time",
				Periods: map[string]api.PeriodConfigDTO{
					"morning": {Active: true, StartTime: "12:00", EndTime: "08:00"},
				},
			}}},
		},
		{
			"incomplete bundle",
			&api.RuleSetRequest{Bundles: []api.BundleRuleDTO{{Plan: "UNIMED", TriggerService: "Consulta"}}},
		},
		{
			"non-positive interval",
			&api.RuleSetRequest{Intervals: []api.IntervalRuleDTO{
				{FromService: "A", ToService: "B", MinimumDays: 0},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ruleSetFromRequest("dr-1", tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, response.ErrValidation))
		})
	}
}

func TestRuleSetRoundTrip(t *testing.T) {
	sub := 2
	req := &api.RuleSetRequest{
		Services: []api.ServiceRuleDTO{
			{Service: "Consulta", Mode: "inherit", OnlineBookingAllowed: true},
			{Service: "Retorno", Mode: "inherit", SharedCapacityWith: "Consulta", OwnSubLimit: &sub},
		},
		InsuranceExclusions: []api.InsuranceExclusionDTO{
			{Service: "Teste", ExcludedPlans: []string{"BASIC"}},
		},
		Age: &api.AgeEligibilityDTO{ServesChildren: false, ServesAdults: true},
	}

	rs, err := ruleSetFromRequest("dr-1", req)
	require.NoError(t, err)

	resp := ruleSetToResponse(rs)
	assert.Equal(t, "dr-1", resp.DoctorID)
	assert.Len(t, resp.Services, 2)
	assert.False(t, resp.Age.ServesChildren)

	var retorno *api.ServiceRuleDTO
	for i := range resp.Services {
		if resp.Services[i].Service == "Retorno" {
			retorno = &resp.Services[i]
		}
	}
	require.NotNil(t, retorno)
	assert.Equal(t, "Consulta", retorno.SharedCapacityWith)
	require.NotNil(t, retorno.OwnSubLimit)
	assert.Equal(t, 2, *retorno.OwnSubLimit)
}

func TestBookingFromRequest(t *testing.T) {
	req := &api.BookingRequest{
		DoctorID:         "dr-1",
		PatientID:        "p-1",
		Services:         []string{"Consulta"},
		Date:             "2025-06-02",
		Time:             "08:30",
		PatientBirthDate: "1990-01-15",
		InsurancePlan:    "UNIMED",
	}

	domainReq, err := bookingFromRequest(req)
	require.NoError(t, err)

	assert.Equal(t, models.ClockTime(8*60+30), domainReq.Time)
	assert.Equal(t, 2025, domainReq.Date.Year())
	assert.Equal(t, 1990, domainReq.PatientBirthDate.Year())

	t.Run("no services", func(t *testing.T) {
		bad := *req
		bad.Services = nil
		_, err := bookingFromRequest(&bad)
		assert.True(t, errors.Is(err, response.ErrBadRequest))
	})

	t.Run("bad time", func(t *testing.T) {
		bad := *req
		bad.Time = "25:99"
		_, err := bookingFromRequest(&bad)
		assert.True(t, errors.Is(err, response.ErrBadRequest))
	})
}
