package api

// Times of day travel as "15:04" strings, dates as "2006-01-02"; the
// service layer parses them into domain values.

type WalkInInfoDTO struct {
	ClinicalStartTime string `json:"clinical_start_time,omitempty"`
	TicketWindowStart string `json:"ticket_window_start,omitempty"`
	TicketWindowEnd   string `json:"ticket_window_end,omitempty"`
}

type PeriodConfigDTO struct {
	Active       bool           `json:"active"`
	StartTime    string         `json:"start_time"`
	EndTime      string         `json:"end_time"`
	PatientLimit int            `json:"patient_limit"`
	WalkIn       *WalkInInfoDTO `json:"walk_in,omitempty"`
}

type AvailabilityTemplateRequest struct {
	DoctorID            string `json:"doctor_id"`
	Weekday             int    `json:"weekday"`
	Period              string `json:"period"`
	Active              bool   `json:"active"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	PatientLimit        int    `json:"patient_limit"`
	SlotIntervalMinutes int    `json:"slot_interval_minutes"`
}

type AvailabilityTemplateResponse struct {
	ID                  string `json:"id"`
	DoctorID            string `json:"doctor_id"`
	Weekday             int    `json:"weekday"`
	Period              string `json:"period"`
	Active              bool   `json:"active"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	PatientLimit        int    `json:"patient_limit"`
	SlotIntervalMinutes int    `json:"slot_interval_minutes"`
}

type ServiceRuleDTO struct {
	Service              string                                `json:"service"`
	Mode                 string                                `json:"mode"`
	FixedIntervalMinutes int                                   `json:"fixed_interval_minutes,omitempty"`
	ActiveDays           []int                                 `json:"active_days,omitempty"`
	Periods              map[string]PeriodConfigDTO            `json:"periods,omitempty"`
	PerDayPeriods        map[string]map[string]PeriodConfigDTO `json:"per_day_periods,omitempty"`
	OnlineBookingAllowed bool                                  `json:"online_booking_allowed"`
	SharedCapacityWith   string                                `json:"shared_capacity_with,omitempty"`
	OwnSubLimit          *int                                  `json:"own_sub_limit,omitempty"`
}

type InsuranceExclusionDTO struct {
	Service       string   `json:"service"`
	ExcludedPlans []string `json:"excluded_plans"`
}

type BundleRuleDTO struct {
	Plan            string `json:"plan"`
	TriggerService  string `json:"trigger_service"`
	RequiredService string `json:"required_service"`
	Explanation     string `json:"explanation,omitempty"`
}

type IntervalRuleDTO struct {
	FromService string `json:"from_service"`
	ToService   string `json:"to_service"`
	MinimumDays int    `json:"minimum_days"`
}

type AgeEligibilityDTO struct {
	MinimumAge     *int `json:"minimum_age,omitempty"`
	MaximumAge     *int `json:"maximum_age,omitempty"`
	ServesChildren bool `json:"serves_children"`
	ServesAdults   bool `json:"serves_adults"`
}

type RuleSetRequest struct {
	Services            []ServiceRuleDTO        `json:"services"`
	InsuranceExclusions []InsuranceExclusionDTO `json:"insurance_exclusions,omitempty"`
	Bundles             []BundleRuleDTO         `json:"bundles,omitempty"`
	Intervals           []IntervalRuleDTO       `json:"intervals,omitempty"`
	Age                 *AgeEligibilityDTO      `json:"age_eligibility,omitempty"`
}

type RuleSetResponse struct {
	DoctorID            string                  `json:"doctor_id"`
	Services            []ServiceRuleDTO        `json:"services"`
	InsuranceExclusions []InsuranceExclusionDTO `json:"insurance_exclusions,omitempty"`
	Bundles             []BundleRuleDTO         `json:"bundles,omitempty"`
	Intervals           []IntervalRuleDTO       `json:"intervals,omitempty"`
	Age                 AgeEligibilityDTO       `json:"age_eligibility"`
}

type SlotResponse struct {
	ID         string  `json:"id,omitempty"`
	DoctorID   string  `json:"doctor_id"`
	Service    string  `json:"service,omitempty"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Period     string  `json:"period"`
	Status     string  `json:"status"`
	BookingID  *string `json:"booking_id,omitempty"`
	TemplateID *string `json:"template_id,omitempty"`
}

type SlotGenerateRequest struct {
	DoctorID string `json:"doctor_id"`
	Service  string `json:"service,omitempty"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type AvailabilityQuery struct {
	DoctorID string
	Service  string
	From     string
	To       string
	Preview  int
}

type BookingRequest struct {
	DoctorID         string   `json:"doctor_id"`
	PatientID        string   `json:"patient_id"`
	Services         []string `json:"services"`
	Date             string   `json:"date"`
	Time             string   `json:"time"`
	PatientBirthDate string   `json:"patient_birth_date"`
	InsurancePlan    string   `json:"insurance_plan"`
	ForceOverride    bool     `json:"force_override,omitempty"`
}

type DecisionResponse struct {
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

type BookingResponse struct {
	ID        string `json:"id"`
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
	Service   string `json:"service"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Period    string `json:"period"`
	Status    string `json:"status"`
}

type BookingCommitResponse struct {
	Decision DecisionResponse  `json:"decision"`
	Bookings []BookingResponse `json:"bookings,omitempty"`
}

type RescheduleRequest struct {
	BookingID string `json:"booking_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

type ClosureRequest struct {
	DoctorID string `json:"doctor_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Reason   string `json:"reason,omitempty"`
}

type ClosureResponse struct {
	ID       string `json:"id"`
	DoctorID string `json:"doctor_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Reason   string `json:"reason,omitempty"`
}

type AttendanceRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
}

type AttendanceResponse struct {
	ID            string `json:"id"`
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
}
