package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"agenda-service/internal/models"
	"agenda-service/pkg/response"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// #### availability templates ####

func (s *Storage) CreateAvailabilityTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) (string, error) {
	const op = "storage.postgres.CreateAvailabilityTemplate"

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO availability_templates
			(id, doctor_id, weekday, period, active, start_minute, end_minute, patient_limit, slot_interval_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, tpl.DoctorID, tpl.Weekday, string(tpl.Period), tpl.Active,
		int(tpl.StartTime), int(tpl.EndTime), tpl.PatientLimit, tpl.SlotIntervalMinutes,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetAvailabilityTemplate(ctx context.Context, id string) (*models.AvailabilityTemplate, error) {
	const op = "storage.postgres.GetAvailabilityTemplate"

	var tpl models.AvailabilityTemplate
	var period string
	var start, end int

	err := s.db.QueryRowContext(ctx, `
		SELECT id, doctor_id, weekday, period, active, start_minute, end_minute, patient_limit, slot_interval_minutes
		FROM availability_templates WHERE id=$1`, id,
	).Scan(&tpl.ID, &tpl.DoctorID, &tpl.Weekday, &period, &tpl.Active, &start, &end, &tpl.PatientLimit, &tpl.SlotIntervalMinutes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tpl.Period = models.Period(period)
	tpl.StartTime = models.ClockTime(start)
	tpl.EndTime = models.ClockTime(end)

	return &tpl, nil
}

func (s *Storage) ListAvailabilityTemplates(ctx context.Context, doctorID string) ([]models.AvailabilityTemplate, error) {
	const op = "storage.postgres.ListAvailabilityTemplates"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doctor_id, weekday, period, active, start_minute, end_minute, patient_limit, slot_interval_minutes
		FROM availability_templates WHERE doctor_id=$1
		ORDER BY weekday, period`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var templates []models.AvailabilityTemplate
	for rows.Next() {
		var tpl models.AvailabilityTemplate
		var period string
		var start, end int
		if err := rows.Scan(&tpl.ID, &tpl.DoctorID, &tpl.Weekday, &period, &tpl.Active, &start, &end, &tpl.PatientLimit, &tpl.SlotIntervalMinutes); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tpl.Period = models.Period(period)
		tpl.StartTime = models.ClockTime(start)
		tpl.EndTime = models.ClockTime(end)
		templates = append(templates, tpl)
	}

	return templates, rows.Err()
}

func (s *Storage) UpdateAvailabilityTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error {
	const op = "storage.postgres.UpdateAvailabilityTemplate"

	res, err := s.db.ExecContext(ctx, `
		UPDATE availability_templates
		SET doctor_id=$1, weekday=$2, period=$3, active=$4, start_minute=$5, end_minute=$6,
			patient_limit=$7, slot_interval_minutes=$8
		WHERE id=$9`,
		tpl.DoctorID, tpl.Weekday, string(tpl.Period), tpl.Active, int(tpl.StartTime), int(tpl.EndTime),
		tpl.PatientLimit, tpl.SlotIntervalMinutes, tpl.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteAvailabilityTemplate(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteAvailabilityTemplate"

	res, err := s.db.ExecContext(ctx, `DELETE FROM availability_templates WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### service rules / rule set ####

// Period maps persist as jsonb; day sets as int arrays.

func (s *Storage) GetRuleSet(ctx context.Context, doctorID string) (*models.RuleSet, error) {
	const op = "storage.postgres.GetRuleSet"

	templates, err := s.ListAvailabilityTemplates(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rs := &models.RuleSet{
		DoctorID:  doctorID,
		Templates: templates,
		Services:  make(map[string]models.ServiceRule),
		Age:       models.AgeEligibility{ServesChildren: true, ServesAdults: true},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT service, mode, fixed_interval_minutes, active_days, periods, per_day_periods,
			online_booking_allowed, shared_capacity_with, own_sub_limit
		FROM service_rules WHERE doctor_id=$1`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rule models.ServiceRule
		var mode string
		var activeDays pq.Int64Array
		var periodsRaw, perDayRaw []byte
		var sharedWith sql.NullString
		var subLimit sql.NullInt64

		if err := rows.Scan(&rule.Service, &mode, &rule.FixedIntervalMinutes, &activeDays,
			&periodsRaw, &perDayRaw, &rule.OnlineBookingAllowed, &sharedWith, &subLimit); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		rule.DoctorID = doctorID
		rule.Mode = models.SchedulingMode(mode)
		for _, d := range activeDays {
			rule.ActiveDays = append(rule.ActiveDays, int(d))
		}
		if len(periodsRaw) > 0 {
			if err := json.Unmarshal(periodsRaw, &rule.Periods); err != nil {
				return nil, fmt.Errorf("%s: periods: %w", op, err)
			}
		}
		if len(perDayRaw) > 0 {
			if err := json.Unmarshal(perDayRaw, &rule.PerDayPeriods); err != nil {
				return nil, fmt.Errorf("%s: per_day_periods: %w", op, err)
			}
		}
		if sharedWith.Valid {
			rule.SharedCapacityWith = sharedWith.String
		}
		if subLimit.Valid {
			v := int(subLimit.Int64)
			rule.OwnSubLimit = &v
		}

		rs.Services[rule.Service] = rule
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.loadExclusions(ctx, rs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.loadBundles(ctx, rs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.loadIntervals(ctx, rs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	age, err := s.GetAgeEligibility(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if age != nil {
		rs.Age = *age
	}

	return rs, nil
}

func (s *Storage) loadExclusions(ctx context.Context, rs *models.RuleSet) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT service, excluded_plans FROM insurance_exclusions WHERE doctor_id=$1`, rs.DoctorID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rule models.InsuranceExclusionRule
		var plans pq.StringArray
		if err := rows.Scan(&rule.Service, &plans); err != nil {
			return err
		}
		rule.ExcludedPlans = []string(plans)
		rs.InsuranceExclusions = append(rs.InsuranceExclusions, rule)
	}
	return rows.Err()
}

func (s *Storage) loadBundles(ctx context.Context, rs *models.RuleSet) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT plan, trigger_service, required_service, explanation
		FROM bundle_rules WHERE doctor_id=$1`, rs.DoctorID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rule models.MandatoryBundleRule
		if err := rows.Scan(&rule.Plan, &rule.TriggerService, &rule.RequiredService, &rule.Explanation); err != nil {
			return err
		}
		rs.Bundles = append(rs.Bundles, rule)
	}
	return rows.Err()
}

func (s *Storage) loadIntervals(ctx context.Context, rs *models.RuleSet) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_service, to_service, minimum_days
		FROM interval_rules WHERE doctor_id=$1`, rs.DoctorID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rule models.MinimumIntervalRule
		if err := rows.Scan(&rule.FromService, &rule.ToService, &rule.MinimumDays); err != nil {
			return err
		}
		rs.Intervals = append(rs.Intervals, rule)
	}
	return rows.Err()
}

// ReplaceRuleSet swaps a doctor's whole rule configuration in one
// transaction. The caller validates the capacity graph first.
func (s *Storage) ReplaceRuleSet(ctx context.Context, tx *sql.Tx, rs *models.RuleSet) error {
	const op = "storage.postgres.ReplaceRuleSet"

	for _, table := range []string{"service_rules", "insurance_exclusions", "bundle_rules", "interval_rules"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE doctor_id=$1`, table), rs.DoctorID); err != nil {
			return fmt.Errorf("%s: clear %s: %w", op, table, err)
		}
	}

	for _, rule := range rs.Services {
		periodsRaw, err := json.Marshal(rule.Periods)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		perDayRaw, err := json.Marshal(rule.PerDayPeriods)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		days := make(pq.Int64Array, 0, len(rule.ActiveDays))
		for _, d := range rule.ActiveDays {
			days = append(days, int64(d))
		}

		var sharedWith sql.NullString
		if rule.SharedCapacityWith != "" {
			sharedWith = sql.NullString{String: rule.SharedCapacityWith, Valid: true}
		}
		var subLimit sql.NullInt64
		if rule.OwnSubLimit != nil {
			subLimit = sql.NullInt64{Int64: int64(*rule.OwnSubLimit), Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO service_rules
				(doctor_id, service, mode, fixed_interval_minutes, active_days, periods, per_day_periods,
				 online_booking_allowed, shared_capacity_with, own_sub_limit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			rs.DoctorID, rule.Service, string(rule.Mode), rule.FixedIntervalMinutes, days,
			periodsRaw, perDayRaw, rule.OnlineBookingAllowed, sharedWith, subLimit,
		)
		if err != nil {
			return fmt.Errorf("%s: insert rule %q: %w", op, rule.Service, err)
		}
	}

	for _, rule := range rs.InsuranceExclusions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO insurance_exclusions (doctor_id, service, excluded_plans)
			VALUES ($1, $2, $3)`,
			rs.DoctorID, rule.Service, pq.StringArray(rule.ExcludedPlans))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	for _, rule := range rs.Bundles {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bundle_rules (doctor_id, plan, trigger_service, required_service, explanation)
			VALUES ($1, $2, $3, $4, $5)`,
			rs.DoctorID, rule.Plan, rule.TriggerService, rule.RequiredService, rule.Explanation)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	for _, rule := range rs.Intervals {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO interval_rules (doctor_id, from_service, to_service, minimum_days)
			VALUES ($1, $2, $3, $4)`,
			rs.DoctorID, rule.FromService, rule.ToService, rule.MinimumDays)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// #### age eligibility ####

func (s *Storage) GetAgeEligibility(ctx context.Context, doctorID string) (*models.AgeEligibility, error) {
	const op = "storage.postgres.GetAgeEligibility"

	var age models.AgeEligibility
	var minAge, maxAge sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		SELECT minimum_age, maximum_age, serves_children, serves_adults
		FROM age_eligibility WHERE doctor_id=$1`, doctorID,
	).Scan(&minAge, &maxAge, &age.ServesChildren, &age.ServesAdults)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if minAge.Valid {
		v := int(minAge.Int64)
		age.MinimumAge = &v
	}
	if maxAge.Valid {
		v := int(maxAge.Int64)
		age.MaximumAge = &v
	}

	return &age, nil
}

func (s *Storage) SetAgeEligibility(ctx context.Context, doctorID string, age *models.AgeEligibility) error {
	const op = "storage.postgres.SetAgeEligibility"

	var minAge, maxAge sql.NullInt64
	if age.MinimumAge != nil {
		minAge = sql.NullInt64{Int64: int64(*age.MinimumAge), Valid: true}
	}
	if age.MaximumAge != nil {
		maxAge = sql.NullInt64{Int64: int64(*age.MaximumAge), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO age_eligibility (doctor_id, minimum_age, maximum_age, serves_children, serves_adults)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (doctor_id)
		DO UPDATE SET minimum_age = EXCLUDED.minimum_age,
			maximum_age = EXCLUDED.maximum_age,
			serves_children = EXCLUDED.serves_children,
			serves_adults = EXCLUDED.serves_adults`,
		doctorID, minAge, maxAge, age.ServesChildren, age.ServesAdults)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// #### appointments ####

func (s *Storage) CreateAppointment(ctx context.Context, tx *sql.Tx, appt *models.Appointment) (string, error) {
	const op = "storage.postgres.CreateAppointment"

	id := uuid.New().String()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, service, date, start_minute, period, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		id, appt.DoctorID, appt.PatientID, appt.Service, appt.Date, int(appt.Time), string(appt.Period), string(appt.Status))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	const op = "storage.postgres.GetAppointment"

	appt, err := scanAppointment(s.db.QueryRowContext(ctx, `
		SELECT id, doctor_id, patient_id, service, date, start_minute, period, status, created_at
		FROM appointments WHERE id=$1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return appt, nil
}

type AppointmentFilters struct {
	DoctorID  *string
	PatientID *string
	From      *time.Time
	To        *time.Time
	Status    *string
}

func (s *Storage) ListAppointments(ctx context.Context, filters AppointmentFilters) ([]models.Appointment, error) {
	const op = "storage.postgres.ListAppointments"

	query := `
		SELECT id, doctor_id, patient_id, service, date, start_minute, period, status, created_at
		FROM appointments WHERE 1=1`
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.DoctorID != nil {
		query += ` AND doctor_id=` + next(*filters.DoctorID)
	}
	if filters.PatientID != nil {
		query += ` AND patient_id=` + next(*filters.PatientID)
	}
	if filters.From != nil {
		query += ` AND date >= ` + next(*filters.From)
	}
	if filters.To != nil {
		query += ` AND date <= ` + next(*filters.To)
	}
	if filters.Status != nil {
		query += ` AND status=` + next(*filters.Status)
	}
	query += ` ORDER BY date, start_minute`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var appointments []models.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		appointments = append(appointments, *appt)
	}

	return appointments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	var appt models.Appointment
	var start int
	var period, status string

	if err := row.Scan(&appt.ID, &appt.DoctorID, &appt.PatientID, &appt.Service,
		&appt.Date, &start, &period, &status, &appt.CreatedAt); err != nil {
		return nil, err
	}

	appt.Time = models.ClockTime(start)
	appt.Period = models.Period(period)
	appt.Status = models.AppointmentStatus(status)

	return &appt, nil
}

func (s *Storage) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	const op = "storage.postgres.UpdateAppointmentStatus"

	res, err := s.db.ExecContext(ctx, `UPDATE appointments SET status=$1 WHERE id=$2`, string(status), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) RescheduleAppointment(ctx context.Context, tx *sql.Tx, id string, date time.Time, start models.ClockTime, period models.Period) error {
	const op = "storage.postgres.RescheduleAppointment"

	res, err := tx.ExecContext(ctx, `
		UPDATE appointments SET date=$1, start_minute=$2, period=$3 WHERE id=$4`,
		date, int(start), string(period), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteAppointment(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteAppointment"

	res, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### slots ####

func (s *Storage) CreateSlot(ctx context.Context, tx *sql.Tx, slot *models.Slot) (string, error) {
	const op = "storage.postgres.CreateSlot"

	id := uuid.New().String()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO slots (id, doctor_id, service, date, start_minute, period, status, template_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (doctor_id, date, start_minute, service) DO NOTHING`,
		id, slot.DoctorID, slot.Service, slot.Date, int(slot.Time), string(slot.Period), string(slot.Status), slot.TemplateID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// #### closures ####

func (s *Storage) CreateClosure(ctx context.Context, closure *models.Closure) (string, error) {
	const op = "storage.postgres.CreateClosure"

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO closures (id, doctor_id, date_from, date_to, reason)
		VALUES ($1, $2, $3, $4, $5)`,
		id, closure.DoctorID, closure.From, closure.To, closure.Reason)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetClosure(ctx context.Context, id string) (*models.Closure, error) {
	const op = "storage.postgres.GetClosure"

	var closure models.Closure
	err := s.db.QueryRowContext(ctx, `
		SELECT id, doctor_id, date_from, date_to, reason FROM closures WHERE id=$1`, id,
	).Scan(&closure.ID, &closure.DoctorID, &closure.From, &closure.To, &closure.Reason)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &closure, nil
}

func (s *Storage) ListClosures(ctx context.Context, doctorID string, from, to *time.Time) ([]models.Closure, error) {
	const op = "storage.postgres.ListClosures"

	query := `SELECT id, doctor_id, date_from, date_to, reason FROM closures WHERE doctor_id=$1`
	args := []any{doctorID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND date_to >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND date_from <= $%d`, len(args))
	}
	query += ` ORDER BY date_from`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var closures []models.Closure
	for rows.Next() {
		var closure models.Closure
		if err := rows.Scan(&closure.ID, &closure.DoctorID, &closure.From, &closure.To, &closure.Reason); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		closures = append(closures, closure)
	}

	return closures, rows.Err()
}

func (s *Storage) UpdateClosure(ctx context.Context, closure *models.Closure) error {
	const op = "storage.postgres.UpdateClosure"

	res, err := s.db.ExecContext(ctx, `
		UPDATE closures SET doctor_id=$1, date_from=$2, date_to=$3, reason=$4 WHERE id=$5`,
		closure.DoctorID, closure.From, closure.To, closure.Reason, closure.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteClosure(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteClosure"

	res, err := s.db.ExecContext(ctx, `DELETE FROM closures WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### attendance ####

func (s *Storage) CreateAttendance(ctx context.Context, attendance *models.Attendance) (string, error) {
	const op = "storage.postgres.CreateAttendance"

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (id, appointment_id, status, notes)
		VALUES ($1, $2, $3, $4)`,
		id, attendance.AppointmentID, string(attendance.Status), attendance.Notes)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetAttendance(ctx context.Context, id string) (*models.Attendance, error) {
	const op = "storage.postgres.GetAttendance"

	var attendance models.Attendance
	var status string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, appointment_id, status, notes FROM attendance WHERE id=$1`, id,
	).Scan(&attendance.ID, &attendance.AppointmentID, &status, &attendance.Notes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	attendance.Status = models.AttendanceStatus(status)

	return &attendance, nil
}

func (s *Storage) ListAttendance(ctx context.Context, doctorID *string, from, to *time.Time) ([]models.Attendance, error) {
	const op = "storage.postgres.ListAttendance"

	query := `
		SELECT a.id, a.appointment_id, a.status, a.notes
		FROM attendance a
		JOIN appointments ap ON ap.id = a.appointment_id
		WHERE 1=1`
	var args []any

	if doctorID != nil {
		args = append(args, *doctorID)
		query += fmt.Sprintf(` AND ap.doctor_id=$%d`, len(args))
	}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND ap.date >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND ap.date <= $%d`, len(args))
	}
	query += ` ORDER BY ap.date, ap.start_minute`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Attendance
	for rows.Next() {
		var attendance models.Attendance
		var status string
		if err := rows.Scan(&attendance.ID, &attendance.AppointmentID, &status, &attendance.Notes); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		attendance.Status = models.AttendanceStatus(status)
		result = append(result, attendance)
	}

	return result, rows.Err()
}
