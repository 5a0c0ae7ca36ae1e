package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
)

type memRepo struct {
	items map[id.ID]*Notification
}

func (r *memRepo) Create(_ context.Context, n *Notification) error {
	r.items[n.ID] = n
	return nil
}

func (r *memRepo) GetByID(_ context.Context, notificationID id.ID) (*Notification, error) {
	n, ok := r.items[notificationID]
	if !ok {
		return nil, apperror.NewNotFound("notifications", notificationID.String())
	}
	return n, nil
}

func (r *memRepo) ListByUser(_ context.Context, userID id.ID, unreadOnly bool, _, _ int) ([]*Notification, int64, error) {
	var out []*Notification
	for _, n := range r.items {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memRepo) MarkRead(_ context.Context, notificationID id.ID) error {
	r.items[notificationID].Read = true
	return nil
}

func (r *memRepo) Delete(_ context.Context, notificationID id.ID) error {
	delete(r.items, notificationID)
	return nil
}

func (r *memRepo) ListDue(_ context.Context, now time.Time, _ int) ([]*Notification, error) {
	var out []*Notification
	for _, n := range r.items {
		if n.Due(now) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memRepo) MarkCompleted(_ context.Context, notificationID id.ID) error {
	r.items[notificationID].IsCompleted = true
	return nil
}

type recordingPublisher struct {
	topics []string
	fail   map[string]bool
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	if p.fail[topic] {
		return errors.New("broker down")
	}
	p.topics = append(p.topics, topic)
	return nil
}

func TestDispatchDueMarksCompletedAfterPublish(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	repo := &memRepo{items: map[id.ID]*Notification{}}
	ok, failing := id.New(), id.New()
	pub := &recordingPublisher{fail: map[string]bool{Topic(failing): true}}
	svc := NewService(repo, pub)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	due, err := svc.Create(ctx, ok, Input{Title: "Debt", Message: "Pay", ScheduledTime: &past})
	require.NoError(t, err)
	later, err := svc.Create(ctx, ok, Input{Title: "Later", Message: "Soon", ScheduledTime: &future})
	require.NoError(t, err)
	stuck, err := svc.Create(ctx, failing, Input{Title: "Debt", Message: "Pay", ScheduledTime: &past})
	require.NoError(t, err)

	res, err := svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{Sent: 1, Failed: 1}, res)
	assert.Equal(t, []string{Topic(ok)}, pub.topics)
	assert.True(t, repo.items[due.ID].IsCompleted)
	assert.False(t, repo.items[later.ID].IsCompleted)
	assert.False(t, repo.items[stuck.ID].IsCompleted)

	pub.fail = nil
	res, err = svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.True(t, repo.items[stuck.ID].IsCompleted)
}

func TestReadNotificationsAreNotDispatched(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	repo := &memRepo{items: map[id.ID]*Notification{}}
	pub := &recordingPublisher{}
	svc := NewService(repo, pub)
	svc.now = func() time.Time { return now }
	user := id.New()

	n, err := svc.Create(context.Background(), user, Input{Title: "t", Message: "m", ScheduledTime: &past})
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(context.Background(), user, n.ID))

	res, err := svc.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Sent)
	assert.Empty(t, pub.topics)
}

func TestOwnership(t *testing.T) {
	repo := &memRepo{items: map[id.ID]*Notification{}}
	svc := NewService(repo, &recordingPublisher{})
	user := id.New()

	n, err := svc.Create(context.Background(), user, Input{Title: "t", Message: "m"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), id.New(), n.ID)
	assert.True(t, apperror.IsNotFound(err))

	list, total, err := svc.List(context.Background(), user, false, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.EqualValues(t, 1, total)

	require.NoError(t, svc.Delete(context.Background(), user, n.ID))
	assert.Empty(t, repo.items)

	_, err = svc.Create(context.Background(), user, Input{})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
