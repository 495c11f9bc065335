package schedule

import (
	"sort"
	"time"

	"agenda-service/internal/models"
)

// daySpan is one generatable stretch of a day: a period window plus the
// slot step inside it.
type daySpan struct {
	period     models.Period
	start      models.ClockTime
	end        models.ClockTime
	interval   int
	templateID *string
	service    string
}

// Expansion walks a doctor's recurring weekly shape over a date range and
// yields concrete slots one at a time, ascending by date then time.
// Callers that only need a preview stop early; nothing past the cursor is
// materialized.
type Expansion struct {
	doctorID string
	spanFor  func(weekday int) []daySpan

	day    time.Time
	end    time.Time
	loaded bool
	spans  []daySpan
	si     int
	cur    models.ClockTime
}

func newExpansion(doctorID string, spanFor func(int) []daySpan, from, to time.Time) *Expansion {
	return &Expansion{
		doctorID: doctorID,
		spanFor:  spanFor,
		day:      dateOnly(from),
		end:      dateOnly(to),
	}
}

// Next returns the next slot in the expansion, or false when the range is
// exhausted. An inverted range yields no slots.
func (e *Expansion) Next() (models.Slot, bool) {
	for !e.day.After(e.end) {
		if !e.loaded {
			e.spans = e.spanFor(int(e.day.Weekday()))
			e.si = 0
			e.resetSpan()
			e.loaded = true
		}

		for e.si < len(e.spans) {
			sp := e.spans[e.si]
			// A step is emitted only when the full interval fits
			// before the period end; the trailing partial is dropped.
			if sp.interval > 0 && int(e.cur)+sp.interval <= int(sp.end) {
				slot := models.Slot{
					DoctorID:   e.doctorID,
					Service:    sp.service,
					Date:       e.day,
					Time:       e.cur,
					Period:     sp.period,
					Status:     models.SlotFree,
					TemplateID: sp.templateID,
				}
				e.cur += models.ClockTime(sp.interval)
				return slot, true
			}
			e.si++
			e.resetSpan()
		}

		e.day = e.day.AddDate(0, 0, 1)
		e.loaded = false
	}

	return models.Slot{}, false
}

func (e *Expansion) resetSpan() {
	if e.si < len(e.spans) {
		e.cur = e.spans[e.si].start
	}
}

// NewTemplateExpansion expands a doctor's availability templates.
func NewTemplateExpansion(doctorID string, templates []models.AvailabilityTemplate, from, to time.Time) *Expansion {
	byDay := templateSpansByDay(templates)
	return newExpansion(doctorID, func(weekday int) []daySpan {
		return byDay[weekday]
	}, from, to)
}

// NewRuleExpansion expands one service rule, falling back to the doctor's
// templates when the rule inherits the general schedule.
func NewRuleExpansion(doctorID string, rule models.ServiceRule, templates []models.AvailabilityTemplate, from, to time.Time) *Expansion {
	byDay := templateSpansByDay(templates)
	return newExpansion(doctorID, func(weekday int) []daySpan {
		return ruleSpans(rule, byDay, weekday)
	}, from, to)
}

// Expand materializes the whole template expansion for a range.
func Expand(doctorID string, templates []models.AvailabilityTemplate, from, to time.Time) []models.Slot {
	return drain(NewTemplateExpansion(doctorID, templates, from, to), -1)
}

// ExpandN materializes at most n slots, for previews.
func ExpandN(doctorID string, templates []models.AvailabilityTemplate, from, to time.Time, n int) []models.Slot {
	return drain(NewTemplateExpansion(doctorID, templates, from, to), n)
}

// ExpandRule materializes the whole expansion of one service rule.
func ExpandRule(doctorID string, rule models.ServiceRule, templates []models.AvailabilityTemplate, from, to time.Time) []models.Slot {
	return drain(NewRuleExpansion(doctorID, rule, templates, from, to), -1)
}

func drain(e *Expansion, limit int) []models.Slot {
	var slots []models.Slot
	for {
		if limit >= 0 && len(slots) >= limit {
			return slots
		}
		slot, ok := e.Next()
		if !ok {
			return slots
		}
		slots = append(slots, slot)
	}
}

func templateSpansByDay(templates []models.AvailabilityTemplate) map[int][]daySpan {
	byDay := make(map[int][]daySpan)
	for i := range templates {
		t := templates[i]
		if !t.Active {
			continue
		}
		id := t.ID
		var tplID *string
		if id != "" {
			tplID = &id
		}
		byDay[t.Weekday] = append(byDay[t.Weekday], daySpan{
			period:     t.Period,
			start:      t.StartTime,
			end:        t.EndTime,
			interval:   t.SlotIntervalMinutes,
			templateID: tplID,
		})
	}
	for d := range byDay {
		sortSpans(byDay[d])
	}
	return byDay
}

func ruleSpans(rule models.ServiceRule, templatesByDay map[int][]daySpan, weekday int) []daySpan {
	if !rule.ActiveOn(weekday) {
		return nil
	}

	periods := rule.PeriodsFor(weekday)
	if rule.Mode == models.ModeInherit || len(periods) == 0 {
		spans := make([]daySpan, 0, len(templatesByDay[weekday]))
		for _, sp := range templatesByDay[weekday] {
			sp.service = rule.Service
			spans = append(spans, sp)
		}
		return spans
	}

	spans := make([]daySpan, 0, len(periods))
	for period, cfg := range periods {
		if !cfg.Active {
			continue
		}
		spans = append(spans, daySpan{
			period:   period,
			start:    cfg.StartTime,
			end:      cfg.EndTime,
			interval: ruleInterval(rule, templatesByDay[weekday], period),
			service:  rule.Service,
		})
	}
	sortSpans(spans)
	return spans
}

// ruleInterval picks the slot step for a rule's period: the fixed
// interval when configured, otherwise the matching template's step.
func ruleInterval(rule models.ServiceRule, templateSpans []daySpan, period models.Period) int {
	if rule.Mode == models.ModeFixedTime && rule.FixedIntervalMinutes > 0 {
		return rule.FixedIntervalMinutes
	}
	if rule.FixedIntervalMinutes > 0 {
		return rule.FixedIntervalMinutes
	}
	for _, sp := range templateSpans {
		if sp.period == period {
			return sp.interval
		}
	}
	return 30
}

func sortSpans(spans []daySpan) {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].period != spans[j].period {
			return periodIndex(spans[i].period) < periodIndex(spans[j].period)
		}
		return spans[i].start < spans[j].start
	})
}

func periodIndex(p models.Period) int {
	for i, q := range models.PeriodOrder {
		if p == q {
			return i
		}
	}
	return len(models.PeriodOrder)
}

// dateOnly normalizes a timestamp to its calendar date at UTC midnight.
// The engine compares dates, never instants.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
