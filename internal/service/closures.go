package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agenda-service/api"
	"agenda-service/internal/models"
	"agenda-service/pkg/response"
)

// Closures

func (s *Service) CreateClosure(ctx context.Context, req *api.ClosureRequest) (*api.ClosureResponse, error) {
	const op = "service.CreateClosure"

	closure, err := closureFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.CreateClosure(ctx, closure)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetClosure(ctx, id)
}

func (s *Service) GetClosure(ctx context.Context, id string) (*api.ClosureResponse, error) {
	const op = "service.GetClosure"

	closure, err := s.store.GetClosure(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return closureToResponse(closure), nil
}

func (s *Service) ListClosures(ctx context.Context, doctorID, from, to string) ([]*api.ClosureResponse, error) {
	const op = "service.ListClosures"

	var fromDate, toDate *time.Time
	if from != "" {
		d, err := parseDate(from)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: invalid from", op, response.ErrBadRequest)
		}
		fromDate = &d
	}
	if to != "" {
		d, err := parseDate(to)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: invalid to", op, response.ErrBadRequest)
		}
		toDate = &d
	}

	closures, err := s.store.ListClosures(ctx, doctorID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.ClosureResponse, 0, len(closures))
	for i := range closures {
		result = append(result, closureToResponse(&closures[i]))
	}

	return result, nil
}

func (s *Service) UpdateClosure(ctx context.Context, id string, req *api.ClosureRequest) (*api.ClosureResponse, error) {
	const op = "service.UpdateClosure"

	closure, err := closureFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	closure.ID = id

	if err := s.store.UpdateClosure(ctx, closure); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetClosure(ctx, id)
}

func (s *Service) DeleteClosure(ctx context.Context, id string) error {
	const op = "service.DeleteClosure"

	if err := s.store.DeleteClosure(ctx, id); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func closureFromRequest(req *api.ClosureRequest) (*models.Closure, error) {
	if req.DoctorID == "" {
		return nil, fmt.Errorf("%w: doctor_id is required", response.ErrValidation)
	}

	from, err := parseDate(req.From)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid from", response.ErrValidation)
	}
	to, err := parseDate(req.To)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid to", response.ErrValidation)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to is before from", response.ErrValidation)
	}

	return &models.Closure{
		DoctorID: req.DoctorID,
		From:     from,
		To:       to,
		Reason:   req.Reason,
	}, nil
}

func closureToResponse(closure *models.Closure) *api.ClosureResponse {
	return &api.ClosureResponse{
		ID:       closure.ID,
		DoctorID: closure.DoctorID,
		From:     closure.From.Format("2006-01-02"),
		To:       closure.To.Format("2006-01-02"),
		Reason:   closure.Reason,
	}
}

// Attendance

func (s *Service) CreateAttendance(ctx context.Context, req *api.AttendanceRequest) (*api.AttendanceResponse, error) {
	const op = "service.CreateAttendance"

	status := models.AttendanceStatus(req.Status)
	switch status {
	case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate:
	default:
		return nil, fmt.Errorf("%s: %w: invalid attendance status %q", op, response.ErrValidation, req.Status)
	}

	if _, err := s.store.GetAppointment(ctx, req.AppointmentID); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.CreateAttendance(ctx, &models.Attendance{
		AppointmentID: req.AppointmentID,
		Status:        status,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAttendance(ctx, id)
}

func (s *Service) GetAttendance(ctx context.Context, id string) (*api.AttendanceResponse, error) {
	const op = "service.GetAttendance"

	attendance, err := s.store.GetAttendance(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return attendanceToResponse(attendance), nil
}

func (s *Service) ListAttendance(ctx context.Context, doctorID, from, to string) ([]*api.AttendanceResponse, error) {
	const op = "service.ListAttendance"

	var doctor *string
	if doctorID != "" {
		doctor = &doctorID
	}

	var fromDate, toDate *time.Time
	if from != "" {
		d, err := parseDate(from)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: invalid from", op, response.ErrBadRequest)
		}
		fromDate = &d
	}
	if to != "" {
		d, err := parseDate(to)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: invalid to", op, response.ErrBadRequest)
		}
		toDate = &d
	}

	records, err := s.store.ListAttendance(ctx, doctor, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.AttendanceResponse, 0, len(records))
	for i := range records {
		result = append(result, attendanceToResponse(&records[i]))
	}

	return result, nil
}

func attendanceToResponse(attendance *models.Attendance) *api.AttendanceResponse {
	return &api.AttendanceResponse{
		ID:            attendance.ID,
		AppointmentID: attendance.AppointmentID,
		Status:        string(attendance.Status),
		Notes:         attendance.Notes,
	}
}
