package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `
	id, user_id, title, description, kind, start_time, end_time, duration, status,
	meeting_link, name, email, phone, cancellation_reason, rejection_reason,
	reschedule_requested_time, reschedule_reason, created_at, updated_at`

type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(pool)}
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Title,
		&a.Description,
		&a.Kind,
		&a.StartTime,
		&a.EndTime,
		&a.Duration,
		&a.Status,
		&a.MeetingLink,
		&a.Name,
		&a.Email,
		&a.Phone,
		&a.CancellationReason,
		&a.RejectionReason,
		&a.RescheduleRequestedTime,
		&a.RescheduleReason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]*model.Appointment, error) {
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}

	return appointments, nil
}

// Create создаёт новую запись
func (r *AppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, user_id, title, description, kind, start_time, end_time, duration, status,
			meeting_link, name, email, phone
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	err := r.QueryRow(
		ctx, query,
		a.ID,
		a.UserID,
		a.Title,
		a.Description,
		a.Kind,
		a.StartTime,
		a.EndTime,
		a.Duration,
		a.Status,
		a.MeetingLink,
		a.Name,
		a.Email,
		a.Phone,
	).Scan(&a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		return mapCalendarError("create appointment", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	a, err := scanAppointment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return a, nil
}

// List получает все записи, новые первыми
func (r *AppointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY created_at DESC`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return collectAppointments(rows)
}

// ListByUser получает записи пользователя, новые первыми
func (r *AppointmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by user: %w", err)
	}

	return collectAppointments(rows)
}

// ListActiveBetween получает pending и approved записи, пересекающие [from, to)
func (r *AppointmentRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE status IN ('pending', 'approved')
		  AND start_time < $2
		  AND end_time > $1
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}

	return collectAppointments(rows)
}

// Update сохраняет изменения записи, если её статус всё ещё равен from.
// Возвращает false, если запись успел изменить другой запрос.
func (r *AppointmentRepository) Update(ctx context.Context, a *model.Appointment, from model.AppointmentStatus) (bool, error) {
	query := `
		UPDATE appointments
		SET status = $1,
		    start_time = $2,
		    end_time = $3,
		    meeting_link = $4,
		    cancellation_reason = $5,
		    rejection_reason = $6,
		    reschedule_requested_time = $7,
		    reschedule_reason = $8,
		    updated_at = now()
		WHERE id = $9 AND status = $10
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		a.Status,
		a.StartTime,
		a.EndTime,
		a.MeetingLink,
		a.CancellationReason,
		a.RejectionReason,
		a.RescheduleRequestedTime,
		a.RescheduleReason,
		a.ID,
		from,
	).Scan(&a.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, mapCalendarError("update appointment", err)
	}

	return true, nil
}
