package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/app"
	"github.com/Freeeeeet/calendar_booking/internal/lifecycle"
	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/repository"
	"github.com/Freeeeeet/calendar_booking/internal/service"
	"github.com/Freeeeeet/calendar_booking/internal/service/servicetest"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Тесты очищают таблицы, поэтому нужна отдельная база: TEST_DB_DSN
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	migrator, err := app.NewMigrator(pool, zap.NewNop())
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	defer migrator.Close()
	if err := migrator.Run(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := pool.Exec(ctx, `TRUNCATE notifications, blocked_slots, appointments, users CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

type pgEnv struct {
	appointments *service.AppointmentService
	users        *service.UserService
	repo         *repository.AppointmentRepository
}

func newPgEnv(t *testing.T) *pgEnv {
	pool := testPool(t)
	logger := zap.NewNop()

	appointmentRepo := repository.NewAppointmentRepository(pool)
	appointments := service.NewAppointmentService(
		appointmentRepo,
		repository.NewBlockedSlotRepository(pool),
		repository.NewCalendar(pool),
		&servicetest.Recorder{},
		logger,
	)
	appointments.SetClock(func() time.Time { return time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC) })

	return &pgEnv{
		appointments: appointments,
		users:        service.NewUserService(repository.NewUserRepository(pool), nil, logger),
		repo:         appointmentRepo,
	}
}

func (e *pgEnv) provision(t *testing.T, name string) lifecycle.Actor {
	t.Helper()
	user, err := e.users.EnsureUser(context.Background(), service.Profile{
		ID:    uuid.New(),
		Role:  model.RoleUser,
		Name:  name,
		Email: name + "@example.com",
	})
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	return lifecycle.Actor{ID: user.ID, Role: user.Role}
}

func booking(start time.Time) service.CreateAppointmentInput {
	return service.CreateAppointmentInput{
		Title:     "Consultation",
		Kind:      model.AppointmentKindOffline,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Duration:  30,
		Name:      "Jane",
		Email:     "jane@example.com",
	}
}

// 7 января 2030 года понедельник
var day = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

func TestConcurrentNonOverlappingBookingsAllSucceed(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		actor := e.provision(t, "user"+uuid.NewString()[:8])
		start := day.Add(9*time.Hour + time.Duration(i)*30*time.Minute)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.appointments.Create(ctx, actor, booking(start))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("booking %d: %v", i, err)
		}
	}

	active, err := e.repo.ListActiveBetween(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != n {
		t.Fatalf("expected %d active appointments, got %d", n, len(active))
	}
}

func TestConcurrentOverlappingBookingsOneWins(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()
	start := day.Add(10 * time.Hour)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		actor := e.provision(t, "user"+uuid.NewString()[:8])
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.appointments.Create(ctx, actor, booking(start))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, service.ErrSlotConflict):
			t.Fatalf("booking %d: expected slot conflict, got %v", i, err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one winner, got %d", succeeded)
	}
}

func TestProvisionedUserCanBook(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()

	// Без строки в users запись нарушает внешний ключ
	ghost := lifecycle.Actor{ID: uuid.New(), Role: model.RoleUser}
	if _, err := e.appointments.Create(ctx, ghost, booking(day.Add(11*time.Hour))); err == nil {
		t.Fatal("booking of an unprovisioned user must fail")
	}

	actor := e.provision(t, "fresh")
	if _, err := e.appointments.Create(ctx, actor, booking(day.Add(11*time.Hour))); err != nil {
		t.Fatalf("booking of a provisioned user: %v", err)
	}
}
