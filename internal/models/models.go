package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime is a time of day in minutes since midnight. Templates and
// period configs carry these instead of full timestamps so the same
// weekly shape applies to any date.
type ClockTime int

func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

// PeriodOrder fixes the concatenation order inside a day.
var PeriodOrder = []Period{PeriodMorning, PeriodAfternoon, PeriodEvening}

func ValidPeriod(p Period) bool {
	return p == PeriodMorning || p == PeriodAfternoon || p == PeriodEvening
}

type SchedulingMode string

const (
	ModeInherit       SchedulingMode = "inherit"
	ModeWalkIn        SchedulingMode = "walk_in"
	ModeFixedTime     SchedulingMode = "fixed_time"
	ModeEstimatedTime SchedulingMode = "estimated_time"
)

func ValidSchedulingMode(m SchedulingMode) bool {
	switch m {
	case ModeInherit, ModeWalkIn, ModeFixedTime, ModeEstimatedTime:
		return true
	}
	return false
}

// AllowedSlotIntervals are the slot granularities templates may use.
var AllowedSlotIntervals = []int{1, 5, 10, 15, 20, 30}

func ValidSlotInterval(minutes int) bool {
	for _, v := range AllowedSlotIntervals {
		if minutes == v {
			return true
		}
	}
	return false
}

// AvailabilityTemplate is one cell of a doctor's weekly recurring shape:
// one (weekday, period) with working hours, a patient limit and the slot
// granularity. Weekday follows time.Weekday numbering, 0 = Sunday.
type AvailabilityTemplate struct {
	ID                  string    `db:"id"`
	DoctorID            string    `db:"doctor_id"`
	Weekday             int       `db:"weekday"`
	Period              Period    `db:"period"`
	Active              bool      `db:"active"`
	StartTime           ClockTime `db:"start_time"`
	EndTime             ClockTime `db:"end_time"`
	PatientLimit        int       `db:"patient_limit"`
	SlotIntervalMinutes int       `db:"slot_interval_minutes"`
}

// WalkInInfo carries advisory walk-in fields shown to patients. The
// admission evaluator never reads it.
type WalkInInfo struct {
	ClinicalStartTime *ClockTime `json:"clinical_start_time,omitempty"`
	TicketWindowStart *ClockTime `json:"ticket_window_start,omitempty"`
	TicketWindowEnd   *ClockTime `json:"ticket_window_end,omitempty"`
}

type PeriodConfig struct {
	Active       bool        `json:"active"`
	StartTime    ClockTime   `json:"start_time"`
	EndTime      ClockTime   `json:"end_time"`
	PatientLimit int         `json:"patient_limit"`
	WalkIn       *WalkInInfo `json:"walk_in,omitempty"`
}

// ServiceRule configures how one service of a doctor is scheduled.
// Either Periods (uniform across days) or PerDayPeriods (per-weekday
// override) is consulted; a non-empty PerDayPeriods wins. A rule in
// inherit mode falls back to the doctor's availability templates.
type ServiceRule struct {
	DoctorID             string
	Service              string
	Mode                 SchedulingMode
	FixedIntervalMinutes int
	ActiveDays           []int
	Periods              map[Period]PeriodConfig
	PerDayPeriods        map[int]map[Period]PeriodConfig
	OnlineBookingAllowed bool
	SharedCapacityWith   string
	OwnSubLimit          *int
}

// PeriodsFor resolves the period configs effective on a weekday.
func (r ServiceRule) PeriodsFor(weekday int) map[Period]PeriodConfig {
	if len(r.PerDayPeriods) > 0 {
		return r.PerDayPeriods[weekday]
	}
	return r.Periods
}

// ActiveOn reports whether the rule admits bookings on a weekday.
// An empty ActiveDays set means every day its periods allow.
func (r ServiceRule) ActiveOn(weekday int) bool {
	if len(r.ActiveDays) == 0 {
		return true
	}
	for _, d := range r.ActiveDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// InsuranceExclusionRule lists plans a service does not accept even when
// the doctor accepts them in general.
type InsuranceExclusionRule struct {
	Service       string
	ExcludedPlans []string
}

func (r InsuranceExclusionRule) Excludes(plan string) bool {
	for _, p := range r.ExcludedPlans {
		if p == plan {
			return true
		}
	}
	return false
}

// MandatoryBundleRule requires RequiredService to be booked together with
// TriggerService under the named insurance plan.
type MandatoryBundleRule struct {
	Plan            string
	TriggerService  string
	RequiredService string
	Explanation     string
}

// MinimumIntervalRule declares the minimum number of days between a
// patient's FromService appointment and a later ToService appointment.
// The rule is directional; the reverse order is not constrained.
type MinimumIntervalRule struct {
	FromService string
	ToService   string
	MinimumDays int
}

type AgeEligibility struct {
	MinimumAge     *int
	MaximumAge     *int
	ServesChildren bool
	ServesAdults   bool
}

// RuleSet is the full scheduling configuration of one doctor, the input
// the admission evaluator works against.
type RuleSet struct {
	DoctorID            string
	Templates           []AvailabilityTemplate
	Services            map[string]ServiceRule
	InsuranceExclusions []InsuranceExclusionRule
	Bundles             []MandatoryBundleRule
	Intervals           []MinimumIntervalRule
	Age                 AgeEligibility
}

type SlotStatus string

const (
	SlotFree   SlotStatus = "FREE"
	SlotBooked SlotStatus = "BOOKED"
	SlotClosed SlotStatus = "CLOSED"
)

// Slot is one concrete bookable (doctor, date, time) unit.
type Slot struct {
	ID         string     `db:"id"`
	DoctorID   string     `db:"doctor_id"`
	Service    string     `db:"service"`
	Date       time.Time  `db:"date"`
	Time       ClockTime  `db:"start_time"`
	Period     Period     `db:"period"`
	Status     SlotStatus `db:"status"`
	TemplateID *string    `db:"template_id"`
	BookingID  *string    `db:"booking_id"`
}

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

type Appointment struct {
	ID        string            `db:"id"`
	DoctorID  string            `db:"doctor_id"`
	PatientID string            `db:"patient_id"`
	Service   string            `db:"service"`
	Date      time.Time         `db:"date"`
	Time      ClockTime         `db:"start_time"`
	Period    Period            `db:"period"`
	Status    AppointmentStatus `db:"status"`
	CreatedAt time.Time         `db:"created_at"`
}

// Active reports whether the appointment still occupies its slot.
func (a Appointment) Active() bool {
	return a.Status != AppointmentCancelled
}

// Closure is an externally declared range during which a doctor's
// schedule is closed (vacation, congress, maintenance).
type Closure struct {
	ID       string    `db:"id"`
	DoctorID string    `db:"doctor_id"`
	From     time.Time `db:"date_from"`
	To       time.Time `db:"date_to"`
	Reason   string    `db:"reason"`
}

// Covers reports whether the closure covers a calendar date.
func (c Closure) Covers(date time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	from := time.Date(c.From.Year(), c.From.Month(), c.From.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(c.To.Year(), c.To.Month(), c.To.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(from) && !d.After(to)
}

// BookingRequest is the ephemeral admission input. Services holds one
// entry for a plain booking or several for a bundled multi-exam request.
type BookingRequest struct {
	DoctorID         string
	PatientID        string
	Services         []string
	Date             time.Time
	Time             ClockTime
	PatientBirthDate time.Time
	InsurancePlan    string
	ForceOverride    bool
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
)

// Attendance records whether the patient showed up for an appointment.
type Attendance struct {
	ID            string           `db:"id"`
	AppointmentID string           `db:"appointment_id"`
	Status        AttendanceStatus `db:"status"`
	Notes         string           `db:"notes"`
}
