package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

const appointmentColumns = `id, patient_id, doctor_id, created_by, appointment_date,
	appointment_time, time_slot, status, notes, created_at`

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (id, patient_id, doctor_id, created_by, appointment_date,
			appointment_time, time_slot, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.PatientID,
		apt.DoctorID,
		apt.CreatedBy,
		apt.AppointmentDate,
		apt.AppointmentTime,
		apt.TimeSlot,
		apt.Status,
		apt.Notes,
		apt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)
	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, noRows(err)
	}
	return &apt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters, page repository.Page) ([]*model.Appointment, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	n := 0

	add := func(clause string, v interface{}) {
		n++
		where += fmt.Sprintf(" AND %s = $%d", clause, n)
		args = append(args, v)
	}

	if filters != nil {
		if filters.PatientID != uuid.Nil {
			add("patient_id", filters.PatientID)
		}
		if filters.DoctorID != uuid.Nil {
			add("doctor_id", filters.DoctorID)
		}
		if filters.Status != "" {
			add("status", filters.Status)
		}
		if filters.Date != nil {
			add("appointment_date", *filters.Date)
		}
	}

	query := fmt.Sprintf(`
		SELECT %s FROM appointments %s
		ORDER BY appointment_date DESC, appointment_time DESC
		OFFSET $%d LIMIT $%d`, appointmentColumns, where, n+1, n+2)

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, append(args, page.Skip, page.Limit)...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM appointments %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments SET
			appointment_date = $1, appointment_time = $2, time_slot = $3,
			status = $4, notes = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		apt.AppointmentDate,
		apt.AppointmentTime,
		apt.TimeSlot,
		apt.Status,
		apt.Notes,
		apt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `UPDATE appointments SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return nil
}
