package wordchain

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
)

func TestScheduler_ScheduleOnceAndCancel(t *testing.T) {
	ctx := testCtx(t)
	clock := quartz.NewMock(t)
	s := NewScheduler(clock)

	var fired, cancelled atomic.Int32
	s.ScheduleOnce(10*time.Second, func() { fired.Add(1) })
	h := s.ScheduleOnce(5*time.Second, func() { cancelled.Add(1) })

	assert.True(t, s.Cancel(h))
	assert.False(t, s.Cancel(h))
	assert.False(t, s.Cancel(nil))

	d, w := clock.AdvanceNext()
	w.MustWait(ctx)
	assert.Equal(t, 10*time.Second, d)
	assert.Equal(t, int32(1), fired.Load())
	assert.Zero(t, cancelled.Load())
}

func TestScheduler_DisarmIsPerChat(t *testing.T) {
	ctx := testCtx(t)
	clock := quartz.NewMock(t)
	s := NewScheduler(clock)

	var a, b atomic.Int32
	s.Arm(1, time.Second, func() { a.Add(1) })
	s.Arm(1, 2*time.Second, func() { a.Add(1) })
	s.Arm(2, 3*time.Second, func() { b.Add(1) })
	assert.Equal(t, 2, s.Armed(1))

	s.Disarm(1)
	assert.Zero(t, s.Armed(1))

	d, w := clock.AdvanceNext()
	w.MustWait(ctx)
	assert.Equal(t, 3*time.Second, d)
	assert.Zero(t, a.Load())
	assert.Equal(t, int32(1), b.Load())
}

func TestScheduler_Stop(t *testing.T) {
	clock := quartz.NewMock(t)
	s := NewScheduler(clock)

	s.Arm(1, time.Second, func() { t.Error("fired after Stop") })
	s.Arm(2, time.Second, func() { t.Error("fired after Stop") })
	s.Stop()

	_, pending := clock.Peek()
	assert.False(t, pending)
}
