package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/domain/notification"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

type fakeDispatcher struct {
	calls int
	err   error
}

func (f *fakeDispatcher) DispatchDue(context.Context) (notification.DispatchResult, error) {
	f.calls++
	return notification.DispatchResult{Sent: 2}, f.err
}

type fakePromoter struct{ calls int }

func (f *fakePromoter) PromoteDue(context.Context) (int64, error) {
	f.calls++
	return 3, nil
}

type fakeOutbox struct{ calls int }

func (f *fakeOutbox) ProcessBatch(context.Context) (postgres.RelayStats, error) {
	f.calls++
	return postgres.RelayStats{Published: 1}, nil
}

type fakeTokens struct{ calls int }

func (f *fakeTokens) CleanupExpiredTokens(context.Context) (int, error) {
	f.calls++
	return 0, nil
}

type observation struct {
	task string
	err  error
}

type fakeObserver struct{ seen []observation }

func (f *fakeObserver) ObserveJob(task string, _ time.Time, err error) {
	f.seen = append(f.seen, observation{task, err})
}

func TestSchedule_SkipsEmptySpecs(t *testing.T) {
	regs := Schedule(ScheduleConfig{
		NotificationsDispatch: "@every 1m",
		OutboxRelay:           "@every 30s",
	})

	require.Len(t, regs, 2)
	assert.Equal(t, TaskNotificationsDispatch, regs[0].Task.Type())
	assert.Equal(t, TaskOutboxRelay, regs[1].Task.Type())
	assert.Equal(t, "@every 30s", regs[1].Spec)
}

func TestHandlers_OnlyConfiguredSweeps(t *testing.T) {
	h := &Handlers{Messages: &fakePromoter{}}

	handlers := h.TaskHandlers()
	require.Len(t, handlers, 1)
	assert.Equal(t, TaskMessagesPromote, handlers[0].Type)
}

func TestHandlers_ObserveOutcome(t *testing.T) {
	failing := &fakeDispatcher{err: errors.New("redis down")}
	obs := &fakeObserver{}
	h := &Handlers{Notifications: failing, Tokens: &fakeTokens{}, Observer: obs}

	for _, th := range h.TaskHandlers() {
		_ = th.Handler(context.Background(), NewTask(th.Type))
	}

	require.Len(t, obs.seen, 2)
	assert.Equal(t, TaskNotificationsDispatch, obs.seen[0].task)
	assert.Error(t, obs.seen[0].err)
	assert.Equal(t, TaskAuthCleanupTokens, obs.seen[1].task)
	assert.NoError(t, obs.seen[1].err)
}

func TestWorker_RoutesTasks(t *testing.T) {
	mr := miniredis.RunT(t)

	dispatcher := &fakeDispatcher{}
	promoter := &fakePromoter{}
	outbox := &fakeOutbox{}
	tokens := &fakeTokens{}
	h := &Handlers{Notifications: dispatcher, Messages: promoter, Outbox: outbox, Tokens: tokens}

	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Handlers:  h.TaskHandlers(),
		Cron: Schedule(ScheduleConfig{
			NotificationsDispatch: "@every 1m",
			MessagesPromote:       "@every 1m",
			OutboxRelay:           "@every 1m",
			AuthCleanupTokens:     "@hourly",
		}),
	})
	require.NoError(t, err)

	ctx := context.Background()
	for _, taskType := range []string{TaskNotificationsDispatch, TaskMessagesPromote, TaskOutboxRelay, TaskAuthCleanupTokens} {
		require.NoError(t, w.ProcessTask(ctx, NewTask(taskType)))
	}

	assert.Equal(t, 1, dispatcher.calls)
	assert.Equal(t, 1, promoter.calls)
	assert.Equal(t, 1, outbox.calls)
	assert.Equal(t, 1, tokens.calls)

	assert.Error(t, w.ProcessTask(ctx, NewTask("unknown:task")))
}

func TestNewWorker_InvalidCron(t *testing.T) {
	_, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Cron:      []CronRegistration{{Spec: "not a cron", Task: NewTask(TaskOutboxRelay)}},
	})
	assert.Error(t, err)
}
