package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestion-humana/portal/backend/internal/config"
	"github.com/gestion-humana/portal/backend/internal/domain"
)

type fakeStore struct {
	before   time.Time
	requests []*domain.LeaveRequest
	users    map[int64]*domain.User
	admins   []*domain.User
	lookups  int
}

func (f *fakeStore) GetStalePendingLeaveRequests(before time.Time) ([]*domain.LeaveRequest, error) {
	f.before = before
	return f.requests, nil
}

func (f *fakeStore) GetUserByID(id int64) (*domain.User, error) {
	f.lookups++
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (f *fakeStore) GetApprovers(user *domain.User) ([]*domain.User, error) {
	if user.SupervisorID != nil {
		return []*domain.User{f.users[*user.SupervisorID]}, nil
	}
	return f.admins, nil
}

type reminderCall struct {
	approverID int64
	requestIDs []int64
}

type fakeNotifier struct {
	calls  []reminderCall
	failOn int64
}

func (f *fakeNotifier) PendingReminder(ctx context.Context, approver *domain.User, pending []*domain.LeaveRequest) error {
	if approver.ID == f.failOn {
		return errors.New("queue unavailable")
	}
	ids := make([]int64, 0, len(pending))
	for _, lr := range pending {
		ids = append(ids, lr.ID)
	}
	f.calls = append(f.calls, reminderCall{approverID: approver.ID, requestIDs: ids})
	return nil
}

func newFixture() (*fakeStore, *config.Config) {
	bossID := int64(2)
	store := &fakeStore{
		users: map[int64]*domain.User{
			2:  {ID: 2, Role: domain.RoleSupervisor},
			10: {ID: 10, Role: domain.RoleEmployee, SupervisorID: &bossID},
			11: {ID: 11, Role: domain.RoleEmployee, SupervisorID: &bossID},
			12: {ID: 12, Role: domain.RoleEmployee},
		},
		admins: []*domain.User{{ID: 1, Role: domain.RoleAdministrator}, {ID: 3, Role: domain.RoleAdministrator}},
		requests: []*domain.LeaveRequest{
			{ID: 100, UserID: 10},
			{ID: 101, UserID: 11},
			{ID: 102, UserID: 10},
			{ID: 103, UserID: 12},
		},
	}

	cfg := &config.Config{}
	cfg.Reminder.PendingAfterDays = 2
	cfg.Reminder.RunTimeoutSeconds = 30
	return store, cfg
}

func TestRunGroupsByApprover(t *testing.T) {
	store, cfg := newFixture()
	notifier := &fakeNotifier{}

	r := New(cfg, store, notifier)
	now := time.Date(2025, time.October, 20, 8, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	sent, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Equal(t, now.Add(-48*time.Hour), store.before)

	assert.Equal(t, []reminderCall{
		{approverID: 1, requestIDs: []int64{103}},
		{approverID: 2, requestIDs: []int64{100, 101, 102}},
		{approverID: 3, requestIDs: []int64{103}},
	}, notifier.calls)

	// requesters are looked up once each
	assert.Equal(t, 3, store.lookups)
}

func TestRunKeepsGoingAfterFailure(t *testing.T) {
	store, cfg := newFixture()
	notifier := &fakeNotifier{failOn: 2}

	sent, err := New(cfg, store, notifier).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue unavailable")
	assert.Equal(t, 2, sent)
	assert.Len(t, notifier.calls, 2)
}

func TestRunWithNothingPending(t *testing.T) {
	_, cfg := newFixture()
	notifier := &fakeNotifier{}

	sent, err := New(cfg, &fakeStore{}, notifier).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, notifier.calls)
}

func TestStartSchedulesDailyJob(t *testing.T) {
	store, cfg := newFixture()
	cfg.Reminder.Hour = 8

	s, err := Start(cfg, time.UTC, New(cfg, store, &fakeNotifier{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "leave-pending-reminder", jobs[0].Name())

	next, err := jobs[0].NextRun()
	require.NoError(t, err)
	assert.Equal(t, 8, next.In(time.UTC).Hour())
	assert.Zero(t, next.Minute())
}
