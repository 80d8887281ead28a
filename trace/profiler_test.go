package trace

import (
	"testing"
	"time"

	"github.com/kisseru-go/kisseru/handler"
	"github.com/stretchr/testify/assert"
)

func TestTimer_StartStopAccumulates(t *testing.T) {
	timer := &Timer{}
	timer.Start()
	time.Sleep(2 * time.Millisecond)
	timer.Stop()

	assert.Equal(t, "0h:0m:0s", timer.Elapsed())
	assert.Panics(t, timer.Stop)
}

func TestTimer_StartTwiceWithoutStopPanics(t *testing.T) {
	timer := &Timer{}
	timer.Start()
	defer timer.Stop()
	assert.Panics(t, timer.Start)
}

func TestProfilerEntryExit_RoundTrip(t *testing.T) {
	ctx := handler.NewContext("add", func() {}, nil)

	ProfilerEntry{}.Run(ctx)
	timer, ok := ctx.Get("__timer__").(*Timer)
	assert.True(t, ok)
	assert.NotNil(t, timer)

	assert.NotPanics(t, func() { ProfilerExit{}.Run(ctx) })
}

func TestProfilerExit_NoTimerIsANoOp(t *testing.T) {
	ctx := handler.NewContext("add", func() {}, nil)
	assert.NotPanics(t, func() { ProfilerExit{}.Run(ctx) })
}
