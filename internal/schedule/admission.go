package schedule

import (
	"fmt"
	"time"

	"agenda-service/internal/models"
)

// adultAge is the child/adult boundary used by the serves flags.
const adultAge = 18

// Evaluate decides whether a booking request is admissible against a
// doctor's full rule set and the current booking state. It is pure:
// identical inputs always produce the identical decision.
//
// Checks run in a fixed order and short-circuit on the first denial,
// except that overridable denials (capacity, sub-limit, exact-slot
// conflict) are downgraded to a warning when the request carries a
// force override. Eligibility and clinical denials are final.
func Evaluate(req models.BookingRequest, rs models.RuleSet, history []models.Appointment, state *BookingState) Decision {
	var warning *Decision

	override := func(d Decision) *Decision {
		if req.ForceOverride && d.Reason.Overridable() {
			w := AdmittedWithWarning(d.Reason, d.Message)
			if warning == nil {
				warning = &w
			}
			return nil
		}
		return &d
	}

	age := AgeAt(req.PatientBirthDate, req.Date)
	if d := checkAge(rs.Age, age); d != nil {
		return *d
	}

	for _, svc := range req.Services {
		if d := checkInsurance(rs.InsuranceExclusions, svc, req.InsurancePlan); d != nil {
			return *d
		}
	}

	for _, svc := range req.Services {
		if d := checkBundle(rs.Bundles, svc, req); d != nil {
			return *d
		}
	}

	if d := checkInterval(rs.Intervals, req, history); d != nil {
		return *d
	}

	templates := templateSpansByDay(rs.Templates)
	weekday := int(dateOnly(req.Date).Weekday())

	for _, svc := range req.Services {
		period, d := checkSchedule(rs, templates, svc, weekday, req.Time)
		if d != nil {
			return *d
		}

		if d := checkCapacity(rs, state, svc, period, weekday, req); d != nil {
			if final := override(*d); final != nil {
				return *final
			}
		}
	}

	if state.Occupied(dateOnly(req.Date), req.Time) {
		d := Denied(ReasonSlotOccupied,
			fmt.Sprintf("slot %s %s is already occupied", dateKey(req.Date), req.Time))
		if final := override(d); final != nil {
			return *final
		}
	}

	if warning != nil {
		return *warning
	}
	return Admitted()
}

// AgeAt computes the calendar age at a reference date: the birthday not
// yet reached subtracts one year.
func AgeAt(birth, at time.Time) int {
	age := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		age--
	}
	return age
}

func checkAge(e models.AgeEligibility, age int) *Decision {
	if e.MinimumAge != nil && age < *e.MinimumAge {
		d := Denied(ReasonAgeIneligible,
			fmt.Sprintf("patient age %d is below the minimum of %d", age, *e.MinimumAge))
		return &d
	}
	if e.MaximumAge != nil && age > *e.MaximumAge {
		d := Denied(ReasonAgeIneligible,
			fmt.Sprintf("patient age %d is above the maximum of %d", age, *e.MaximumAge))
		return &d
	}
	if age < adultAge && !e.ServesChildren {
		d := Denied(ReasonAgeIneligible, "doctor does not see child patients")
		return &d
	}
	if age >= adultAge && !e.ServesAdults {
		d := Denied(ReasonAgeIneligible, "doctor does not see adult patients")
		return &d
	}
	return nil
}

func checkInsurance(exclusions []models.InsuranceExclusionRule, service, plan string) *Decision {
	for _, rule := range exclusions {
		if rule.Service == service && rule.Excludes(plan) {
			d := Denied(ReasonInsuranceExcluded,
				fmt.Sprintf("plan %q is not accepted for service %q", plan, service))
			return &d
		}
	}
	return nil
}

func checkBundle(bundles []models.MandatoryBundleRule, service string, req models.BookingRequest) *Decision {
	for _, rule := range bundles {
		if rule.Plan != req.InsurancePlan || rule.TriggerService != service {
			continue
		}
		if !containsService(req.Services, rule.RequiredService) {
			msg := rule.Explanation
			if msg == "" {
				msg = fmt.Sprintf("plan %q requires %q to be booked together with %q",
					rule.Plan, rule.RequiredService, rule.TriggerService)
			}
			d := Denied(ReasonBundleRequired, msg)
			return &d
		}
	}
	return nil
}

// checkInterval enforces the minimum gap between a prior appointment for
// a rule's from-service and the requested date for its to-service. The
// rule is strictly directional: a prior to-service appointment never
// blocks a later from-service booking.
func checkInterval(intervals []models.MinimumIntervalRule, req models.BookingRequest, history []models.Appointment) *Decision {
	reqDate := dateOnly(req.Date)
	for _, rule := range intervals {
		if !containsService(req.Services, rule.ToService) {
			continue
		}
		for _, appt := range history {
			if !appt.Active() || appt.Service != rule.FromService {
				continue
			}
			gap := int(reqDate.Sub(dateOnly(appt.Date)).Hours() / 24)
			if gap >= 0 && gap < rule.MinimumDays {
				d := Denied(ReasonIntervalViolation,
					fmt.Sprintf("%q requires at least %d days after %q; only %d elapsed",
						rule.ToService, rule.MinimumDays, rule.FromService, gap))
				return &d
			}
		}
	}
	return nil
}

// checkSchedule verifies the requested time falls inside an active
// period of the service's resolved schedule, aligned to the service's
// slot granularity. It returns the matched period for the capacity
// check. Unknown services deny defensively rather than erroring; the
// configuration layer is responsible for rejecting malformed rules.
func checkSchedule(rs models.RuleSet, templates map[int][]daySpan, service string, weekday int, t models.ClockTime) (models.Period, *Decision) {
	rule, ok := rs.Services[service]
	if !ok {
		d := Denied(ReasonOutsideSchedule, fmt.Sprintf("no schedule configured for service %q", service))
		return "", &d
	}
	if !rule.ActiveOn(weekday) {
		d := Denied(ReasonOutsideSchedule, fmt.Sprintf("service %q is not offered on this weekday", service))
		return "", &d
	}

	for _, span := range ruleSpans(rule, templates, weekday) {
		if t < span.start || t >= span.end {
			continue
		}
		if span.interval > 0 && int(t-span.start)%span.interval != 0 {
			d := Denied(ReasonOutsideSchedule,
				fmt.Sprintf("time %s is not aligned to the %d-minute grid of service %q", t, span.interval, service))
			return "", &d
		}
		return span.period, nil
	}

	d := Denied(ReasonOutsideSchedule,
		fmt.Sprintf("time %s falls outside the schedule of service %q", t, service))
	return "", &d
}

// checkCapacity resolves the service's pool root, compares the pool
// occupancy against the root's period limit, and then the service's own
// count against its sub-limit when one is declared.
func checkCapacity(rs models.RuleSet, state *BookingState, service string, period models.Period, weekday int, req models.BookingRequest) *Decision {
	date := dateOnly(req.Date)
	root := state.RootFor(service)

	limit := periodLimit(rs, root, weekday, period)
	if limit > 0 && state.PoolCount(service, period, date) >= limit {
		d := Denied(ReasonCapacityExceeded,
			fmt.Sprintf("capacity pool %q is full for %s %s (%d of %d)",
				root, dateKey(date), period, state.PoolCount(service, period, date), limit))
		return &d
	}

	rule := rs.Services[service]
	if rule.OwnSubLimit != nil && state.ServiceCount(service, period, date) >= *rule.OwnSubLimit {
		d := Denied(ReasonSubLimitExceeded,
			fmt.Sprintf("service %q reached its own sub-limit of %d within pool %q", service, *rule.OwnSubLimit, root))
		return &d
	}

	return nil
}

// periodLimit finds the authoritative patient limit of a service for a
// weekday and period: the service's own period config when it has one,
// else the matching availability template. Zero means unconfigured,
// treated as unlimited.
func periodLimit(rs models.RuleSet, service string, weekday int, period models.Period) int {
	if rule, ok := rs.Services[service]; ok && rule.Mode != models.ModeInherit {
		if cfg, ok := rule.PeriodsFor(weekday)[period]; ok && cfg.Active {
			return cfg.PatientLimit
		}
	}
	for _, tpl := range rs.Templates {
		if tpl.Active && tpl.Weekday == weekday && tpl.Period == period {
			return tpl.PatientLimit
		}
	}
	return 0
}

// PeriodAt resolves which period of a service's effective schedule
// contains a time of day, for callers that need to label a committed
// appointment with its period.
func PeriodAt(rs models.RuleSet, service string, weekday int, t models.ClockTime) (models.Period, bool) {
	rule, ok := rs.Services[service]
	if !ok {
		return "", false
	}
	for _, span := range ruleSpans(rule, templateSpansByDay(rs.Templates), weekday) {
		if t >= span.start && t < span.end {
			return span.period, true
		}
	}
	return "", false
}

func containsService(services []string, name string) bool {
	for _, s := range services {
		if s == name {
			return true
		}
	}
	return false
}
