package schedule

import (
	"fmt"
	"time"

	"agenda-service/internal/models"
)

// BookingState is the read-side projection the evaluator's capacity and
// conflict checks run against: occupancy counts per capacity pool,
// period and date, plus exact-slot occupancy. It is built once per
// evaluation from the current active appointments and never mutated by
// the evaluator itself.
type BookingState struct {
	roots      map[string]string
	rules      map[string]models.ServiceRule
	pool       map[string]int
	perService map[string]int
	occupied   map[string]bool
}

func NewBookingState(rules map[string]models.ServiceRule) *BookingState {
	return &BookingState{
		roots:      make(map[string]string),
		rules:      rules,
		pool:       make(map[string]int),
		perService: make(map[string]int),
		occupied:   make(map[string]bool),
	}
}

// Add counts one appointment. Cancelled appointments free their slot and
// are ignored.
func (s *BookingState) Add(appt models.Appointment) {
	if !appt.Active() {
		return
	}
	root := s.RootFor(appt.Service)
	s.pool[poolKey(root, appt.Period, appt.Date)]++
	s.perService[poolKey(appt.Service, appt.Period, appt.Date)]++
	s.occupied[slotKey(appt.Date, appt.Time)] = true
}

// RootFor resolves and caches the capacity-pool root of a service.
func (s *BookingState) RootFor(service string) string {
	if root, ok := s.roots[service]; ok {
		return root
	}
	root := ResolvePoolRoot(s.rules, service)
	s.roots[service] = root
	return root
}

// PoolCount returns how many admitted appointments already occupy the
// service's capacity pool for a period and date, across every service
// sharing the pool. A single appointment is counted once, under its
// pool root.
func (s *BookingState) PoolCount(service string, period models.Period, date time.Time) int {
	return s.pool[poolKey(s.RootFor(service), period, date)]
}

// ServiceCount returns the service's own share of its pool.
func (s *BookingState) ServiceCount(service string, period models.Period, date time.Time) int {
	return s.perService[poolKey(service, period, date)]
}

// Occupied reports whether the exact (date, time) slot is taken.
func (s *BookingState) Occupied(date time.Time, t models.ClockTime) bool {
	return s.occupied[slotKey(date, t)]
}

func poolKey(name string, period models.Period, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s", name, period, dateKey(date))
}

func slotKey(date time.Time, t models.ClockTime) string {
	return fmt.Sprintf("%s|%s", dateKey(date), t)
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Reconcile merges expanded candidate slots with the active appointments
// and closure ranges of a doctor, resolving each candidate's state and
// returning the booking state the evaluator needs. Closures win over
// bookings: a booked slot inside a closure still renders closed.
func Reconcile(candidates []models.Slot, appointments []models.Appointment, closures []models.Closure, rules map[string]models.ServiceRule) ([]models.Slot, *BookingState) {
	state := NewBookingState(rules)
	for _, appt := range appointments {
		state.Add(appt)
	}

	out := make([]models.Slot, len(candidates))
	for i, slot := range candidates {
		switch {
		case closedAt(closures, slot.Date):
			slot.Status = models.SlotClosed
		case state.Occupied(slot.Date, slot.Time):
			slot.Status = models.SlotBooked
		default:
			slot.Status = models.SlotFree
		}
		out[i] = slot
	}

	return out, state
}

func closedAt(closures []models.Closure, date time.Time) bool {
	for _, c := range closures {
		if c.Covers(date) {
			return true
		}
	}
	return false
}
