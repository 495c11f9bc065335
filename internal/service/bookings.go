package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agenda-service/api"
	"agenda-service/internal/models"
	"agenda-service/internal/schedule"
	"agenda-service/internal/storage/postgres"
	"agenda-service/pkg/response"
)

// bookingLockTTL bounds how long a commit may hold its slot lock.
const bookingLockTTL = 10 * time.Second

// EvaluateBooking is the dry-run: it answers whether the request would
// be admitted right now, without taking the lock or writing anything.
func (s *Service) EvaluateBooking(ctx context.Context, req *api.BookingRequest) (*api.DecisionResponse, error) {
	const op = "service.EvaluateBooking"

	domainReq, err := bookingFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	decision, _, err := s.evaluate(ctx, domainReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return decisionToResponse(decision), nil
}

// CreateBooking commits a booking: it serializes on the slot via the
// distributed lock, re-evaluates inside the critical section so a
// concurrent commit cannot slip past a stale read, and writes one
// appointment per requested service in a single transaction.
func (s *Service) CreateBooking(ctx context.Context, req *api.BookingRequest) (*api.BookingCommitResponse, error) {
	const op = "service.CreateBooking"

	domainReq, err := bookingFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lockKey := fmt.Sprintf("booking:%s:%s:%s",
		domainReq.DoctorID, domainReq.Date.Format("2006-01-02"), domainReq.Time)

	acquired, err := s.locker.Lock(ctx, lockKey, bookingLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: acquire lock: %w", op, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	decision, rs, err := s.evaluate(ctx, domainReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if decision.IsDeny() {
		return &api.BookingCommitResponse{Decision: *decisionToResponse(decision)}, nil
	}

	weekday := int(domainReq.Date.Weekday())

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	bookings := make([]api.BookingResponse, 0, len(domainReq.Services))
	for _, svc := range domainReq.Services {
		period, _ := schedule.PeriodAt(*rs, svc, weekday, domainReq.Time)

		appt := &models.Appointment{
			DoctorID:  domainReq.DoctorID,
			PatientID: domainReq.PatientID,
			Service:   svc,
			Date:      domainReq.Date,
			Time:      domainReq.Time,
			Period:    period,
			Status:    models.AppointmentPending,
		}

		id, err := s.store.CreateAppointment(ctx, tx, appt)
		if err != nil {
			return nil, fmt.Errorf("%s: create appointment: %w", op, err)
		}
		appt.ID = id

		bookings = append(bookings, *appointmentToResponse(appt))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return &api.BookingCommitResponse{
		Decision: *decisionToResponse(decision),
		Bookings: bookings,
	}, nil
}

// evaluate assembles the evaluator's inputs and runs it: the doctor's
// rule set, the patient's appointment history for interval rules, and
// the day's booking state. Closures deny before the evaluator runs.
func (s *Service) evaluate(ctx context.Context, req models.BookingRequest) (schedule.Decision, *models.RuleSet, error) {
	rs, err := s.store.GetRuleSet(ctx, req.DoctorID)
	if err != nil {
		return schedule.Decision{}, nil, err
	}

	closures, err := s.store.ListClosures(ctx, req.DoctorID, &req.Date, &req.Date)
	if err != nil {
		return schedule.Decision{}, nil, err
	}
	for _, c := range closures {
		if c.Covers(req.Date) {
			return schedule.Denied(schedule.ReasonOutsideSchedule,
				fmt.Sprintf("doctor's schedule is closed on %s", req.Date.Format("2006-01-02"))), rs, nil
		}
	}

	history, err := s.store.ListAppointments(ctx, postgres.AppointmentFilters{
		DoctorID: &req.DoctorID, PatientID: &req.PatientID,
	})
	if err != nil {
		return schedule.Decision{}, nil, err
	}

	dayAppointments, err := s.store.ListAppointments(ctx, postgres.AppointmentFilters{
		DoctorID: &req.DoctorID, From: &req.Date, To: &req.Date,
	})
	if err != nil {
		return schedule.Decision{}, nil, err
	}

	state := schedule.NewBookingState(rs.Services)
	for _, appt := range dayAppointments {
		state.Add(appt)
	}

	return schedule.Evaluate(req, *rs, history, state), rs, nil
}

func (s *Service) GetBooking(ctx context.Context, id string) (*api.BookingResponse, error) {
	const op = "service.GetBooking"

	appt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return appointmentToResponse(appt), nil
}

type BookingFilters struct {
	DoctorID  string
	PatientID string
	From      string
	To        string
	Status    string
}

func (s *Service) ListBookings(ctx context.Context, filters BookingFilters) ([]*api.BookingResponse, error) {
	const op = "service.ListBookings"

	storeFilters, err := appointmentFilters(filters)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	appointments, err := s.store.ListAppointments(ctx, storeFilters)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.BookingResponse, 0, len(appointments))
	for i := range appointments {
		result = append(result, appointmentToResponse(&appointments[i]))
	}

	return result, nil
}

// ListPatientAppointments is the patient-history view interval rules
// are explained with: every appointment of one patient with a doctor.
func (s *Service) ListPatientAppointments(ctx context.Context, patientID, doctorID string) ([]*api.BookingResponse, error) {
	const op = "service.ListPatientAppointments"

	filters := postgres.AppointmentFilters{PatientID: &patientID}
	if doctorID != "" {
		filters.DoctorID = &doctorID
	}

	appointments, err := s.store.ListAppointments(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.BookingResponse, 0, len(appointments))
	for i := range appointments {
		result = append(result, appointmentToResponse(&appointments[i]))
	}

	return result, nil
}

// CancelBooking frees the slot: cancelled appointments stop counting
// against capacity immediately.
func (s *Service) CancelBooking(ctx context.Context, id string) error {
	const op = "service.CancelBooking"

	if err := s.store.UpdateAppointmentStatus(ctx, id, models.AppointmentCancelled); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) ConfirmBooking(ctx context.Context, id string) error {
	const op = "service.ConfirmBooking"

	appt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if appt.Status == models.AppointmentCancelled {
		return fmt.Errorf("%s: %w: cancelled booking cannot be confirmed", op, response.ErrConflict)
	}

	if err := s.store.UpdateAppointmentStatus(ctx, id, models.AppointmentConfirmed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) DeleteBooking(ctx context.Context, id string) error {
	const op = "service.DeleteBooking"

	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RescheduleBooking moves an existing appointment to a new slot. The new
// slot is evaluated like a fresh booking, with the appointment itself
// excluded from the state so it does not block its own move.
func (s *Service) RescheduleBooking(ctx context.Context, req *api.RescheduleRequest) (*api.BookingCommitResponse, error) {
	const op = "service.RescheduleBooking"

	appt, err := s.store.GetAppointment(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if appt.Status == models.AppointmentCancelled {
		return nil, fmt.Errorf("%s: %w: cancelled booking cannot be rescheduled", op, response.ErrConflict)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: invalid date", op, response.ErrBadRequest)
	}
	t, err := models.ParseClock(req.Time)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, response.ErrBadRequest, err)
	}

	lockKey := fmt.Sprintf("booking:%s:%s:%s", appt.DoctorID, date.Format("2006-01-02"), t)

	acquired, err := s.locker.Lock(ctx, lockKey, bookingLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: acquire lock: %w", op, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	rs, err := s.store.GetRuleSet(ctx, appt.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	closures, err := s.store.ListClosures(ctx, appt.DoctorID, &date, &date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	decision, err := s.evaluateMove(ctx, appt, rs, closures, date, t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if decision.IsDeny() {
		return &api.BookingCommitResponse{Decision: *decisionToResponse(decision)}, nil
	}

	weekday := int(date.Weekday())
	period, _ := schedule.PeriodAt(*rs, appt.Service, weekday, t)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.store.RescheduleAppointment(ctx, tx, appt.ID, date, t, period); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	moved, err := s.store.GetAppointment(ctx, appt.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.BookingCommitResponse{
		Decision: *decisionToResponse(decision),
		Bookings: []api.BookingResponse{*appointmentToResponse(moved)},
	}, nil
}

func (s *Service) evaluateMove(ctx context.Context, appt *models.Appointment, rs *models.RuleSet, closures []models.Closure, date time.Time, t models.ClockTime) (schedule.Decision, error) {
	for _, c := range closures {
		if c.Covers(date) {
			return schedule.Denied(schedule.ReasonOutsideSchedule,
				fmt.Sprintf("doctor's schedule is closed on %s", date.Format("2006-01-02"))), nil
		}
	}

	dayAppointments, err := s.store.ListAppointments(ctx, postgres.AppointmentFilters{
		DoctorID: &appt.DoctorID, From: &date, To: &date,
	})
	if err != nil {
		return schedule.Decision{}, err
	}

	state := schedule.NewBookingState(rs.Services)
	for _, other := range dayAppointments {
		if other.ID == appt.ID {
			continue
		}
		state.Add(other)
	}

	req := models.BookingRequest{
		DoctorID:  appt.DoctorID,
		PatientID: appt.PatientID,
		Services:  []string{appt.Service},
		Date:      date,
		Time:      t,
	}

	// Eligibility and interval checks already passed at creation and the
	// stored appointment carries neither birth date nor insurance plan,
	// so the move is evaluated for schedule and capacity only.
	rsMove := *rs
	rsMove.Age = models.AgeEligibility{ServesChildren: true, ServesAdults: true}

	return schedule.Evaluate(req, rsMove, nil, state), nil
}

func bookingFromRequest(req *api.BookingRequest) (models.BookingRequest, error) {
	var domainReq models.BookingRequest

	if req.DoctorID == "" || req.PatientID == "" {
		return domainReq, fmt.Errorf("%w: doctor_id and patient_id are required", response.ErrBadRequest)
	}
	if len(req.Services) == 0 {
		return domainReq, fmt.Errorf("%w: at least one service is required", response.ErrBadRequest)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return domainReq, fmt.Errorf("%w: invalid date", response.ErrBadRequest)
	}
	t, err := models.ParseClock(req.Time)
	if err != nil {
		return domainReq, fmt.Errorf("%w: %v", response.ErrBadRequest, err)
	}
	birth, err := parseDate(req.PatientBirthDate)
	if err != nil {
		return domainReq, fmt.Errorf("%w: invalid patient_birth_date", response.ErrBadRequest)
	}

	return models.BookingRequest{
		DoctorID:         req.DoctorID,
		PatientID:        req.PatientID,
		Services:         req.Services,
		Date:             date,
		Time:             t,
		PatientBirthDate: birth,
		InsurancePlan:    req.InsurancePlan,
		ForceOverride:    req.ForceOverride,
	}, nil
}

func appointmentFilters(filters BookingFilters) (postgres.AppointmentFilters, error) {
	var storeFilters postgres.AppointmentFilters

	if filters.DoctorID != "" {
		storeFilters.DoctorID = &filters.DoctorID
	}
	if filters.PatientID != "" {
		storeFilters.PatientID = &filters.PatientID
	}
	if filters.From != "" {
		from, err := parseDate(filters.From)
		if err != nil {
			return storeFilters, fmt.Errorf("%w: invalid from", response.ErrBadRequest)
		}
		storeFilters.From = &from
	}
	if filters.To != "" {
		to, err := parseDate(filters.To)
		if err != nil {
			return storeFilters, fmt.Errorf("%w: invalid to", response.ErrBadRequest)
		}
		storeFilters.To = &to
	}
	if filters.Status != "" {
		storeFilters.Status = &filters.Status
	}

	return storeFilters, nil
}

func appointmentToResponse(appt *models.Appointment) *api.BookingResponse {
	return &api.BookingResponse{
		ID:        appt.ID,
		DoctorID:  appt.DoctorID,
		PatientID: appt.PatientID,
		Service:   appt.Service,
		Date:      appt.Date.Format("2006-01-02"),
		Time:      appt.Time.String(),
		Period:    string(appt.Period),
		Status:    string(appt.Status),
	}
}

func decisionToResponse(d schedule.Decision) *api.DecisionResponse {
	return &api.DecisionResponse{
		Outcome: string(d.Outcome),
		Reason:  string(d.Reason),
		Message: d.Message,
	}
}
