package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	body, err := json.Marshal(Event{
		Type:       EventTimesheetApproved,
		To:         []string{"guard@marina.test"},
		Data:       map[string]string{"week_start": "2024-03-03"},
		OccurredAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	e, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, EventTimesheetApproved, e.Type)
	assert.Equal(t, []string{"guard@marina.test"}, e.To)
	assert.Equal(t, "2024-03-03", e.Data["week_start"])
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":      "{",
		"no type":       `{"to":["a@b.c"]}`,
		"no recipients": `{"type":"incident.filed","to":[]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	assert.NoError(t, n.Publish(context.Background(), Event{Type: EventIncidentFiled}))
}
