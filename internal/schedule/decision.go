package schedule

// ReasonCode identifies why a booking request was denied (or why it was
// admitted only with a warning after a force override).
type ReasonCode string

const (
	ReasonAgeIneligible     ReasonCode = "age_ineligible"
	ReasonInsuranceExcluded ReasonCode = "insurance_excluded"
	ReasonBundleRequired    ReasonCode = "bundle_required"
	ReasonIntervalViolation ReasonCode = "interval_violation"
	ReasonOutsideSchedule   ReasonCode = "outside_schedule"
	ReasonCapacityExceeded  ReasonCode = "capacity_exceeded"
	ReasonSubLimitExceeded  ReasonCode = "sub_limit_exceeded"
	ReasonSlotOccupied      ReasonCode = "slot_occupied"
)

// Overridable reports whether a force override may downgrade a denial
// with this reason to an admit-with-warning. Eligibility and clinical
// rules are never overridable.
func (c ReasonCode) Overridable() bool {
	switch c {
	case ReasonCapacityExceeded, ReasonSubLimitExceeded, ReasonSlotOccupied:
		return true
	}
	return false
}

type Outcome string

const (
	OutcomeAdmit            Outcome = "ADMIT"
	OutcomeAdmitWithWarning Outcome = "ADMIT_WITH_WARNING"
	OutcomeDeny             Outcome = "DENY"
)

// Decision is the evaluator's verdict. Denials are values, not errors;
// the caller decides whether to re-prompt, suggest alternatives or
// retry with a force override.
type Decision struct {
	Outcome Outcome    `json:"outcome"`
	Reason  ReasonCode `json:"reason,omitempty"`
	Message string     `json:"message,omitempty"`
}

func Admitted() Decision {
	return Decision{Outcome: OutcomeAdmit}
}

func AdmittedWithWarning(reason ReasonCode, message string) Decision {
	return Decision{Outcome: OutcomeAdmitWithWarning, Reason: reason, Message: message}
}

func Denied(reason ReasonCode, message string) Decision {
	return Decision{Outcome: OutcomeDeny, Reason: reason, Message: message}
}

func (d Decision) IsDeny() bool {
	return d.Outcome == OutcomeDeny
}

func (d Decision) IsAdmit() bool {
	return d.Outcome == OutcomeAdmit || d.Outcome == OutcomeAdmitWithWarning
}
