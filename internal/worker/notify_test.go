package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"marina-guard/backend/pkg/mq"
)

type fakeSender struct {
	err  error
	sent []*mail.Msg
}

func (f *fakeSender) Send(_ context.Context, msg *mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeDelivery struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (d *fakeDelivery) Ack(bool) error { d.acked = true; return nil }

func (d *fakeDelivery) Nack(_ bool, requeue bool) error {
	d.nacked = true
	d.requeue = requeue
	return nil
}

func approvedEvent(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(mq.Event{
		Type: mq.EventTimesheetApproved,
		To:   []string{"guard@marina.test"},
		Data: map[string]string{"employee": "Pat Guard", "week_start": "2026-05-31", "reviewer": "Sam"},
	})
	require.NoError(t, err)
	return body
}

func TestProcess_Sends(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, "noreply@marina.test", zap.NewNop())

	assert.Equal(t, Ack, n.Process(context.Background(), approvedEvent(t), false))
	assert.Len(t, sender.sent, 1)
}

func TestProcess_DropsBadInput(t *testing.T) {
	n := NewNotifier(&fakeSender{}, "noreply@marina.test", zap.NewNop())

	assert.Equal(t, Drop, n.Process(context.Background(), []byte("{not json"), false))
	assert.Equal(t, Drop, n.Process(context.Background(), []byte(`{"type":"nope","to":["a@marina.test"]}`), false))
	assert.Equal(t, Drop, n.Process(context.Background(), []byte(`{"type":"incident.filed","to":[]}`), false))
}

func TestProcess_RetriesOnce(t *testing.T) {
	n := NewNotifier(&fakeSender{err: errors.New("smtp down")}, "noreply@marina.test", zap.NewNop())

	assert.Equal(t, Requeue, n.Process(context.Background(), approvedEvent(t), false))
	assert.Equal(t, Drop, n.Process(context.Background(), approvedEvent(t), true))
}

func TestSettle(t *testing.T) {
	d := &fakeDelivery{}
	require.NoError(t, Settle(d, Ack))
	assert.True(t, d.acked)

	d = &fakeDelivery{}
	require.NoError(t, Settle(d, Requeue))
	assert.True(t, d.nacked)
	assert.True(t, d.requeue)

	d = &fakeDelivery{}
	require.NoError(t, Settle(d, Drop))
	assert.True(t, d.nacked)
	assert.False(t, d.requeue)
}
