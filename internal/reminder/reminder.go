// Package reminder periodically reminds approvers of leave requests that have
// been waiting for too long.
package reminder

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/gestion-humana/portal/backend/internal/config"
	"github.com/gestion-humana/portal/backend/internal/domain"
)

type Store interface {
	GetStalePendingLeaveRequests(before time.Time) ([]*domain.LeaveRequest, error)
	GetUserByID(id int64) (*domain.User, error)
	GetApprovers(user *domain.User) ([]*domain.User, error)
}

type Notifier interface {
	PendingReminder(ctx context.Context, approver *domain.User, pending []*domain.LeaveRequest) error
}

type Reminder struct {
	store        Store
	notifier     Notifier
	pendingAfter time.Duration
	runTimeout   time.Duration
	now          func() time.Time
}

func New(cfg *config.Config, store Store, notifier Notifier) *Reminder {
	return &Reminder{
		store:        store,
		notifier:     notifier,
		pendingAfter: time.Duration(cfg.Reminder.PendingAfterDays) * 24 * time.Hour,
		runTimeout:   time.Duration(cfg.Reminder.RunTimeoutSeconds) * time.Second,
		now:          time.Now,
	}
}

// Run sends one reminder per approver covering every request pending for
// longer than the configured delay. It returns the number of reminders sent.
func (r *Reminder) Run(ctx context.Context) (int, error) {
	pending, err := r.store.GetStalePendingLeaveRequests(r.now().Add(-r.pendingAfter))
	if err != nil {
		return 0, err
	}

	approvers := make(map[int64]*domain.User)
	byApprover := make(map[int64][]*domain.LeaveRequest)
	approversOf := make(map[int64][]*domain.User)

	for _, lr := range pending {
		list, ok := approversOf[lr.UserID]
		if !ok {
			requester, err := r.store.GetUserByID(lr.UserID)
			if err != nil {
				return 0, err
			}
			list, err = r.store.GetApprovers(requester)
			if err != nil {
				return 0, err
			}
			approversOf[lr.UserID] = list
		}

		for _, a := range list {
			approvers[a.ID] = a
			byApprover[a.ID] = append(byApprover[a.ID], lr)
		}
	}

	ids := make([]int64, 0, len(byApprover))
	for id := range byApprover {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	sent := 0
	var errs []error
	for _, id := range ids {
		if err := r.notifier.PendingReminder(ctx, approvers[id], byApprover[id]); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}

	return sent, errors.Join(errs...)
}

// Start schedules Run every day at the configured hour of loc.
func Start(cfg *config.Config, loc *time.Location, r *Reminder) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(cfg.Reminder.Hour, 0, 0),
			),
		),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), r.runTimeout)
			defer cancel()

			sent, err := r.Run(ctx)
			if err != nil {
				slog.Error("recordatorio de solicitudes pendientes con errores", "sent", sent, "error", err)
				return
			}
			slog.Info("recordatorio de solicitudes pendientes enviado", "sent", sent)
		}),
		gocron.WithName("leave-pending-reminder"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	return s, nil
}
