package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agenda-service/api"
	"agenda-service/internal/lock"
	"agenda-service/internal/models"
	"agenda-service/internal/schedule"
	"agenda-service/internal/storage/postgres"
	"agenda-service/pkg/response"
)

type Service struct {
	store  Store
	locker lock.Locker
}

func NewService(store Store, locker lock.Locker) *Service {
	return &Service{store: store, locker: locker}
}

type Store interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)

	// Availability Templates
	CreateAvailabilityTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) (string, error)
	GetAvailabilityTemplate(ctx context.Context, id string) (*models.AvailabilityTemplate, error)
	ListAvailabilityTemplates(ctx context.Context, doctorID string) ([]models.AvailabilityTemplate, error)
	UpdateAvailabilityTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error
	DeleteAvailabilityTemplate(ctx context.Context, id string) error

	// Rule Sets
	GetRuleSet(ctx context.Context, doctorID string) (*models.RuleSet, error)
	ReplaceRuleSet(ctx context.Context, tx *sql.Tx, rs *models.RuleSet) error
	GetAgeEligibility(ctx context.Context, doctorID string) (*models.AgeEligibility, error)
	SetAgeEligibility(ctx context.Context, doctorID string, age *models.AgeEligibility) error

	// Appointments
	CreateAppointment(ctx context.Context, tx *sql.Tx, appt *models.Appointment) (string, error)
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, filters postgres.AppointmentFilters) ([]models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error
	RescheduleAppointment(ctx context.Context, tx *sql.Tx, id string, date time.Time, start models.ClockTime, period models.Period) error
	DeleteAppointment(ctx context.Context, id string) error

	// Slots
	CreateSlot(ctx context.Context, tx *sql.Tx, slot *models.Slot) (string, error)

	// Closures
	CreateClosure(ctx context.Context, closure *models.Closure) (string, error)
	GetClosure(ctx context.Context, id string) (*models.Closure, error)
	ListClosures(ctx context.Context, doctorID string, from, to *time.Time) ([]models.Closure, error)
	UpdateClosure(ctx context.Context, closure *models.Closure) error
	DeleteClosure(ctx context.Context, id string) error

	// Attendance
	CreateAttendance(ctx context.Context, attendance *models.Attendance) (string, error)
	GetAttendance(ctx context.Context, id string) (*models.Attendance, error)
	ListAttendance(ctx context.Context, doctorID *string, from, to *time.Time) ([]models.Attendance, error)
}

// Availability Templates

func (s *Service) CreateAvailabilityTemplate(ctx context.Context, req *api.AvailabilityTemplateRequest) (*api.AvailabilityTemplateResponse, error) {
	const op = "service.CreateAvailabilityTemplate"

	tpl, err := templateFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.CreateAvailabilityTemplate(ctx, tpl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityTemplate(ctx, id)
}

func (s *Service) GetAvailabilityTemplate(ctx context.Context, id string) (*api.AvailabilityTemplateResponse, error) {
	const op = "service.GetAvailabilityTemplate"

	tpl, err := s.store.GetAvailabilityTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return templateToResponse(tpl), nil
}

func (s *Service) ListAvailabilityTemplates(ctx context.Context, doctorID string) ([]*api.AvailabilityTemplateResponse, error) {
	const op = "service.ListAvailabilityTemplates"

	templates, err := s.store.ListAvailabilityTemplates(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.AvailabilityTemplateResponse, 0, len(templates))
	for i := range templates {
		result = append(result, templateToResponse(&templates[i]))
	}

	return result, nil
}

func (s *Service) UpdateAvailabilityTemplate(ctx context.Context, id string, req *api.AvailabilityTemplateRequest) (*api.AvailabilityTemplateResponse, error) {
	const op = "service.UpdateAvailabilityTemplate"

	if _, err := s.store.GetAvailabilityTemplate(ctx, id); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tpl, err := templateFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tpl.ID = id

	if err := s.store.UpdateAvailabilityTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityTemplate(ctx, id)
}

func (s *Service) DeleteAvailabilityTemplate(ctx context.Context, id string) error {
	const op = "service.DeleteAvailabilityTemplate"

	if err := s.store.DeleteAvailabilityTemplate(ctx, id); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// templateFromRequest validates at configuration-write time, so the
// expander can assume valid templates.
func templateFromRequest(req *api.AvailabilityTemplateRequest) (*models.AvailabilityTemplate, error) {
	if req.DoctorID == "" {
		return nil, fmt.Errorf("%w: doctor_id is required", response.ErrValidation)
	}
	if req.Weekday < 0 || req.Weekday > 6 {
		return nil, fmt.Errorf("%w: weekday must be 0..6", response.ErrValidation)
	}
	period := models.Period(req.Period)
	if !models.ValidPeriod(period) {
		return nil, fmt.Errorf("%w: invalid period %q", response.ErrValidation, req.Period)
	}
	if req.PatientLimit < 1 {
		return nil, fmt.Errorf("%w: patient_limit must be at least 1", response.ErrValidation)
	}
	if !models.ValidSlotInterval(req.SlotIntervalMinutes) {
		return nil, fmt.Errorf("%w: slot_interval_minutes must be one of %v", response.ErrValidation, models.AllowedSlotIntervals)
	}

	start, err := models.ParseClock(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", response.ErrValidation, err)
	}
	end, err := models.ParseClock(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", response.ErrValidation, err)
	}
	if start >= end {
		return nil, fmt.Errorf("%w: start_time must be before end_time", response.ErrValidation)
	}

	return &models.AvailabilityTemplate{
		DoctorID:            req.DoctorID,
		Weekday:             req.Weekday,
		Period:              period,
		Active:              req.Active,
		StartTime:           start,
		EndTime:             end,
		PatientLimit:        req.PatientLimit,
		SlotIntervalMinutes: req.SlotIntervalMinutes,
	}, nil
}

func templateToResponse(tpl *models.AvailabilityTemplate) *api.AvailabilityTemplateResponse {
	return &api.AvailabilityTemplateResponse{
		ID:                  tpl.ID,
		DoctorID:            tpl.DoctorID,
		Weekday:             tpl.Weekday,
		Period:              string(tpl.Period),
		Active:              tpl.Active,
		StartTime:           tpl.StartTime.String(),
		EndTime:             tpl.EndTime.String(),
		PatientLimit:        tpl.PatientLimit,
		SlotIntervalMinutes: tpl.SlotIntervalMinutes,
	}
}

// Rule Sets

func (s *Service) GetRuleSet(ctx context.Context, doctorID string) (*api.RuleSetResponse, error) {
	const op = "service.GetRuleSet"

	rs, err := s.store.GetRuleSet(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ruleSetToResponse(rs), nil
}

// ReplaceRuleSet validates and swaps a doctor's whole rule
// configuration. The capacity graph is checked here, before anything is
// written; the evaluator never sees a cyclic graph.
func (s *Service) ReplaceRuleSet(ctx context.Context, doctorID string, req *api.RuleSetRequest) (*api.RuleSetResponse, error) {
	const op = "service.ReplaceRuleSet"

	rs, err := ruleSetFromRequest(doctorID, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Inherit-mode pool roots take their limits from the stored
	// templates, so the graph check needs them.
	rs.Templates, err = s.store.ListAvailabilityTemplates(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := schedule.ValidateCapacityGraph(rs.Services, rs.Templates); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, response.ErrValidation, err)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.store.ReplaceRuleSet(ctx, tx, rs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.Age != nil {
		age := ageFromDTO(req.Age)
		if err := s.store.SetAgeEligibility(ctx, doctorID, &age); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetRuleSet(ctx, doctorID)
}

func (s *Service) GetAgeEligibility(ctx context.Context, doctorID string) (*api.AgeEligibilityDTO, error) {
	const op = "service.GetAgeEligibility"

	age, err := s.store.GetAgeEligibility(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if age == nil {
		// Unconfigured doctors see everyone.
		return &api.AgeEligibilityDTO{ServesChildren: true, ServesAdults: true}, nil
	}

	dto := ageToDTO(*age)
	return &dto, nil
}

func (s *Service) SetAgeEligibility(ctx context.Context, doctorID string, req *api.AgeEligibilityDTO) (*api.AgeEligibilityDTO, error) {
	const op = "service.SetAgeEligibility"

	if req.MinimumAge != nil && req.MaximumAge != nil && *req.MinimumAge > *req.MaximumAge {
		return nil, fmt.Errorf("%s: %w: minimum_age exceeds maximum_age", op, response.ErrValidation)
	}

	age := ageFromDTO(req)
	if err := s.store.SetAgeEligibility(ctx, doctorID, &age); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAgeEligibility(ctx, doctorID)
}

// Slots

// GenerateSlots expands and persists a doctor's concrete slots over a
// date range. When a service is named, that service's rule drives the
// expansion; otherwise the doctor's availability templates do.
func (s *Service) GenerateSlots(ctx context.Context, req *api.SlotGenerateRequest) (string, error) {
	const op = "service.GenerateSlots"

	from, err := parseDate(req.From)
	if err != nil {
		return "", fmt.Errorf("%s: invalid from: %w", op, err)
	}
	to, err := parseDate(req.To)
	if err != nil {
		return "", fmt.Errorf("%s: invalid to: %w", op, err)
	}
	if to.Before(from) {
		return "", fmt.Errorf("%s: %w: to is before from", op, response.ErrValidation)
	}

	rs, err := s.store.GetRuleSet(ctx, req.DoctorID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var exp *schedule.Expansion
	if req.Service != "" {
		rule, ok := rs.Services[req.Service]
		if !ok {
			return "", fmt.Errorf("%s: %w: unknown service %q", op, response.ErrValidation, req.Service)
		}
		exp = schedule.NewRuleExpansion(req.DoctorID, rule, rs.Templates, from, to)
	} else {
		exp = schedule.NewTemplateExpansion(req.DoctorID, rs.Templates, from, to)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for {
		slot, ok := exp.Next()
		if !ok {
			break
		}
		if _, err := s.store.CreateSlot(ctx, tx, &slot); err != nil {
			return "", fmt.Errorf("%s: create slot: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: commit: %w", op, err)
	}

	jobID := fmt.Sprintf("job-%d", time.Now().Unix())
	return jobID, nil
}

// ListAvailability returns the reconciled live view: every candidate
// slot in the range with its resolved state. Nothing is persisted.
func (s *Service) ListAvailability(ctx context.Context, query *api.AvailabilityQuery) ([]*api.SlotResponse, error) {
	const op = "service.ListAvailability"

	from, err := parseDate(query.From)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid from: %w", op, err)
	}
	to, err := parseDate(query.To)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid to: %w", op, err)
	}

	rs, err := s.store.GetRuleSet(ctx, query.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var candidates []models.Slot
	if query.Service != "" {
		rule, ok := rs.Services[query.Service]
		if !ok {
			return nil, fmt.Errorf("%s: %w: unknown service %q", op, response.ErrValidation, query.Service)
		}
		candidates = drainExpansion(schedule.NewRuleExpansion(query.DoctorID, rule, rs.Templates, from, to), query.Preview)
	} else {
		candidates = drainExpansion(schedule.NewTemplateExpansion(query.DoctorID, rs.Templates, from, to), query.Preview)
	}

	appointments, err := s.store.ListAppointments(ctx, postgres.AppointmentFilters{
		DoctorID: &query.DoctorID, From: &from, To: &to,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	closures, err := s.store.ListClosures(ctx, query.DoctorID, &from, &to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots, _ := schedule.Reconcile(candidates, appointments, closures, rs.Services)

	result := make([]*api.SlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, slotToResponse(&slots[i]))
	}

	return result, nil
}

func drainExpansion(exp *schedule.Expansion, limit int) []models.Slot {
	var slots []models.Slot
	for {
		if limit > 0 && len(slots) >= limit {
			return slots
		}
		slot, ok := exp.Next()
		if !ok {
			return slots
		}
		slots = append(slots, slot)
	}
}

func slotToResponse(slot *models.Slot) *api.SlotResponse {
	return &api.SlotResponse{
		ID:         slot.ID,
		DoctorID:   slot.DoctorID,
		Service:    slot.Service,
		Date:       slot.Date.Format("2006-01-02"),
		Time:       slot.Time.String(),
		Period:     string(slot.Period),
		Status:     string(slot.Status),
		BookingID:  slot.BookingID,
		TemplateID: slot.TemplateID,
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// DTO conversion

func ruleSetFromRequest(doctorID string, req *api.RuleSetRequest) (*models.RuleSet, error) {
	rs := &models.RuleSet{
		DoctorID: doctorID,
		Services: make(map[string]models.ServiceRule, len(req.Services)),
		Age:      models.AgeEligibility{ServesChildren: true, ServesAdults: true},
	}

	for _, dto := range req.Services {
		rule, err := ruleFromDTO(doctorID, dto)
		if err != nil {
			return nil, err
		}
		if _, dup := rs.Services[rule.Service]; dup {
			return nil, fmt.Errorf("%w: duplicate rule for service %q", response.ErrValidation, rule.Service)
		}
		rs.Services[rule.Service] = rule
	}

	for _, dto := range req.InsuranceExclusions {
		rs.InsuranceExclusions = append(rs.InsuranceExclusions, models.InsuranceExclusionRule{
			Service:       dto.Service,
			ExcludedPlans: dto.ExcludedPlans,
		})
	}

	for _, dto := range req.Bundles {
		if dto.Plan == "" || dto.TriggerService == "" || dto.RequiredService == "" {
			return nil, fmt.Errorf("%w: bundle rules need plan, trigger_service and required_service", response.ErrValidation)
		}
		rs.Bundles = append(rs.Bundles, models.MandatoryBundleRule{
			Plan:            dto.Plan,
			TriggerService:  dto.TriggerService,
			RequiredService: dto.RequiredService,
			Explanation:     dto.Explanation,
		})
	}

	for _, dto := range req.Intervals {
		if dto.MinimumDays < 1 {
			return nil, fmt.Errorf("%w: minimum_days must be at least 1", response.ErrValidation)
		}
		rs.Intervals = append(rs.Intervals, models.MinimumIntervalRule{
			FromService: dto.FromService,
			ToService:   dto.ToService,
			MinimumDays: dto.MinimumDays,
		})
	}

	if req.Age != nil {
		rs.Age = ageFromDTO(req.Age)
	}

	return rs, nil
}

func ruleFromDTO(doctorID string, dto api.ServiceRuleDTO) (models.ServiceRule, error) {
	var rule models.ServiceRule

	if dto.Service == "" {
		return rule, fmt.Errorf("%w: service name is required", response.ErrValidation)
	}
	mode := models.SchedulingMode(dto.Mode)
	if !models.ValidSchedulingMode(mode) {
		return rule, fmt.Errorf("%w: invalid scheduling mode %q for service %q", response.ErrValidation, dto.Mode, dto.Service)
	}
	if mode == models.ModeFixedTime && dto.FixedIntervalMinutes < 1 {
		return rule, fmt.Errorf("%w: fixed_time service %q needs fixed_interval_minutes", response.ErrValidation, dto.Service)
	}
	for _, d := range dto.ActiveDays {
		if d < 0 || d > 6 {
			return rule, fmt.Errorf("%w: active_days must be 0..6 for service %q", response.ErrValidation, dto.Service)
		}
	}

	periods, err := periodsFromDTO(dto.Periods)
	if err != nil {
		return rule, fmt.Errorf("service %q: %w", dto.Service, err)
	}

	var perDay map[int]map[models.Period]models.PeriodConfig
	if len(dto.PerDayPeriods) > 0 {
		perDay = make(map[int]map[models.Period]models.PeriodConfig, len(dto.PerDayPeriods))
		for dayKey, dayPeriods := range dto.PerDayPeriods {
			day, err := parseWeekday(dayKey)
			if err != nil {
				return rule, fmt.Errorf("service %q: %w", dto.Service, err)
			}
			converted, err := periodsFromDTO(dayPeriods)
			if err != nil {
				return rule, fmt.Errorf("service %q day %d: %w", dto.Service, day, err)
			}
			perDay[day] = converted
		}
	}

	return models.ServiceRule{
		DoctorID:             doctorID,
		Service:              dto.Service,
		Mode:                 mode,
		FixedIntervalMinutes: dto.FixedIntervalMinutes,
		ActiveDays:           dto.ActiveDays,
		Periods:              periods,
		PerDayPeriods:        perDay,
		OnlineBookingAllowed: dto.OnlineBookingAllowed,
		SharedCapacityWith:   dto.SharedCapacityWith,
		OwnSubLimit:          dto.OwnSubLimit,
	}, nil
}

func periodsFromDTO(dtos map[string]api.PeriodConfigDTO) (map[models.Period]models.PeriodConfig, error) {
	if len(dtos) == 0 {
		return nil, nil
	}

	periods := make(map[models.Period]models.PeriodConfig, len(dtos))
	for name, dto := range dtos {
		period := models.Period(name)
		if !models.ValidPeriod(period) {
			return nil, fmt.Errorf("%w: invalid period %q", response.ErrValidation, name)
		}

		cfg := models.PeriodConfig{
			Active:       dto.Active,
			PatientLimit: dto.PatientLimit,
		}

		if dto.Active {
			start, err := models.ParseClock(dto.StartTime)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", response.ErrValidation, err)
			}
			end, err := models.ParseClock(dto.EndTime)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", response.ErrValidation, err)
			}
			if start >= end {
				return nil, fmt.Errorf("%w: period %q start_time must be before end_time", response.ErrValidation, name)
			}
			cfg.StartTime = start
			cfg.EndTime = end
		}

		if dto.WalkIn != nil {
			walkIn := &models.WalkInInfo{}
			if dto.WalkIn.ClinicalStartTime != "" {
				t, err := models.ParseClock(dto.WalkIn.ClinicalStartTime)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", response.ErrValidation, err)
				}
				walkIn.ClinicalStartTime = &t
			}
			if dto.WalkIn.TicketWindowStart != "" {
				t, err := models.ParseClock(dto.WalkIn.TicketWindowStart)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", response.ErrValidation, err)
				}
				walkIn.TicketWindowStart = &t
			}
			if dto.WalkIn.TicketWindowEnd != "" {
				t, err := models.ParseClock(dto.WalkIn.TicketWindowEnd)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", response.ErrValidation, err)
				}
				walkIn.TicketWindowEnd = &t
			}
			cfg.WalkIn = walkIn
		}

		periods[period] = cfg
	}

	return periods, nil
}

func parseWeekday(s string) (int, error) {
	if len(s) == 1 && s[0] >= '0' && s[0] <= '6' {
		return int(s[0] - '0'), nil
	}
	return 0, fmt.Errorf("%w: invalid weekday key %q", response.ErrValidation, s)
}

func ruleSetToResponse(rs *models.RuleSet) *api.RuleSetResponse {
	resp := &api.RuleSetResponse{
		DoctorID: rs.DoctorID,
		Age:      ageToDTO(rs.Age),
	}

	for _, rule := range rs.Services {
		resp.Services = append(resp.Services, ruleToDTO(rule))
	}
	for _, rule := range rs.InsuranceExclusions {
		resp.InsuranceExclusions = append(resp.InsuranceExclusions, api.InsuranceExclusionDTO{
			Service:       rule.Service,
			ExcludedPlans: rule.ExcludedPlans,
		})
	}
	for _, rule := range rs.Bundles {
		resp.Bundles = append(resp.Bundles, api.BundleRuleDTO{
			Plan:            rule.Plan,
			TriggerService:  rule.TriggerService,
			RequiredService: rule.RequiredService,
			Explanation:     rule.Explanation,
		})
	}
	for _, rule := range rs.Intervals {
		resp.Intervals = append(resp.Intervals, api.IntervalRuleDTO{
			FromService: rule.FromService,
			ToService:   rule.ToService,
			MinimumDays: rule.MinimumDays,
		})
	}

	return resp
}

func ruleToDTO(rule models.ServiceRule) api.ServiceRuleDTO {
	dto := api.ServiceRuleDTO{
		Service:              rule.Service,
		Mode:                 string(rule.Mode),
		FixedIntervalMinutes: rule.FixedIntervalMinutes,
		ActiveDays:           rule.ActiveDays,
		OnlineBookingAllowed: rule.OnlineBookingAllowed,
		SharedCapacityWith:   rule.SharedCapacityWith,
		OwnSubLimit:          rule.OwnSubLimit,
	}

	if len(rule.Periods) > 0 {
		dto.Periods = periodsToDTO(rule.Periods)
	}
	if len(rule.PerDayPeriods) > 0 {
		dto.PerDayPeriods = make(map[string]map[string]api.PeriodConfigDTO, len(rule.PerDayPeriods))
		for day, periods := range rule.PerDayPeriods {
			dto.PerDayPeriods[fmt.Sprintf("%d", day)] = periodsToDTO(periods)
		}
	}

	return dto
}

func periodsToDTO(periods map[models.Period]models.PeriodConfig) map[string]api.PeriodConfigDTO {
	dtos := make(map[string]api.PeriodConfigDTO, len(periods))
	for period, cfg := range periods {
		dto := api.PeriodConfigDTO{
			Active:       cfg.Active,
			StartTime:    cfg.StartTime.String(),
			EndTime:      cfg.EndTime.String(),
			PatientLimit: cfg.PatientLimit,
		}
		if cfg.WalkIn != nil {
			walkIn := &api.WalkInInfoDTO{}
			if cfg.WalkIn.ClinicalStartTime != nil {
				walkIn.ClinicalStartTime = cfg.WalkIn.ClinicalStartTime.String()
			}
			if cfg.WalkIn.TicketWindowStart != nil {
				walkIn.TicketWindowStart = cfg.WalkIn.TicketWindowStart.String()
			}
			if cfg.WalkIn.TicketWindowEnd != nil {
				walkIn.TicketWindowEnd = cfg.WalkIn.TicketWindowEnd.String()
			}
			dto.WalkIn = walkIn
		}
		dtos[string(period)] = dto
	}
	return dtos
}

func ageFromDTO(dto *api.AgeEligibilityDTO) models.AgeEligibility {
	return models.AgeEligibility{
		MinimumAge:     dto.MinimumAge,
		MaximumAge:     dto.MaximumAge,
		ServesChildren: dto.ServesChildren,
		ServesAdults:   dto.ServesAdults,
	}
}

func ageToDTO(age models.AgeEligibility) api.AgeEligibilityDTO {
	return api.AgeEligibilityDTO{
		MinimumAge:     age.MinimumAge,
		MaximumAge:     age.MaximumAge,
		ServesChildren: age.ServesChildren,
		ServesAdults:   age.ServesAdults,
	}
}
