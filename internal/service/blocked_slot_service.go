package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/lifecycle"
	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBlockReasonLength = 500

// CreateBlockedSlotInput данные новой блокировки
type CreateBlockedSlotInput struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Reason    string    `json:"reason"`
}

type BlockedSlotService struct {
	blocks       BlockedSlotRepository
	appointments AppointmentRepository
	calendar     Calendar
	logger       *zap.Logger
}

func NewBlockedSlotService(
	blocks BlockedSlotRepository,
	appointments AppointmentRepository,
	calendar Calendar,
	logger *zap.Logger,
) *BlockedSlotService {
	return &BlockedSlotService{
		blocks:       blocks,
		appointments: appointments,
		calendar:     calendar,
		logger:       logger,
	}
}

func requireAdmin(actor lifecycle.Actor) error {
	if !actor.Role.IsAdmin() {
		return fmt.Errorf("%w: administrator role required", ErrForbidden)
	}
	return nil
}

// Create блокирует промежуток, если он не пересекает активные записи
func (s *BlockedSlotService) Create(ctx context.Context, actor lifecycle.Actor, in CreateBlockedSlotInput) (*model.BlockedSlot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	interval, err := schedule.NewInterval(in.StartTime, in.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	reason := strings.TrimSpace(in.Reason)
	if len([]rune(reason)) > maxBlockReasonLength {
		return nil, validationError("reason cannot exceed %d characters", maxBlockReasonLength)
	}

	actorID := actor.ID
	block := &model.BlockedSlot{
		StartTime: interval.Start,
		EndTime:   interval.End,
		Reason:    reason,
		CreatedBy: &actorID,
	}

	err = s.calendar.WithCalendarLock(ctx, func(ctx context.Context) error {
		active, err := s.appointments.ListActiveBetween(ctx, interval.Start, interval.End)
		if err != nil {
			return fmt.Errorf("list active appointments: %w", err)
		}
		if err := schedule.CheckNoOverlap(interval, model.Occupied(active), uuid.Nil); err != nil {
			return err
		}
		return s.blocks.Create(ctx, block)
	})
	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create blocked slot: %w", err)
	}

	s.logger.Info("Blocked slot created",
		zap.String("blocked_slot_id", block.ID.String()),
		zap.String("created_by", actor.ID.String()),
		zap.Time("start", block.StartTime),
		zap.Time("end", block.EndTime),
	)

	return block, nil
}

// Delete снимает блокировку. Записи, отклонённые из-за неё, не восстанавливаются.
func (s *BlockedSlotService) Delete(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	deleted, err := s.blocks.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete blocked slot: %w", err)
	}
	if !deleted {
		return notFound("blocked slot")
	}

	s.logger.Info("Blocked slot deleted",
		zap.String("blocked_slot_id", id.String()),
		zap.String("deleted_by", actor.ID.String()),
	)

	return nil
}

// List возвращает блокировки внутри [from, to]. Нулевые границы не ограничивают выборку
func (s *BlockedSlotService) List(ctx context.Context, from, to time.Time) ([]*model.BlockedSlot, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, validationError("to must not be before from")
	}

	blocks, err := s.blocks.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list blocked slots: %w", err)
	}

	if blocks == nil {
		blocks = []*model.BlockedSlot{}
	}
	return blocks, nil
}
