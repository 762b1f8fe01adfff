package servicetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/timetracker/internal/queue"
	"github.com/iliyamo/timetracker/internal/service"
)

var _ service.Publisher = (*Recorder)(nil)

func TestRecorderKeepsOrder(t *testing.T) {
	var r Recorder
	_ = r.Publish(context.Background(), queue.ActivityEvent{Kind: queue.DayCreated})
	_ = r.Publish(context.Background(), queue.ActivityEvent{Kind: queue.TaskCreated})
	assert.Equal(t, []string{queue.DayCreated, queue.TaskCreated}, r.Kinds())
	assert.Len(t, r.Events(), 2)
}
