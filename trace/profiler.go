package trace

import (
	"fmt"
	"time"

	"github.com/kisseru-go/kisseru/handler"
	"github.com/kisseru-go/kisseru/log"
)

// timerProperty is the Context property key ProfilerEntry stashes its
// Timer under for ProfilerExit to retrieve.
const timerProperty = "__timer__"

// Timer accumulates elapsed wall-clock time across Start/Stop pairs.
type Timer struct {
	elapsed time.Duration
	start   time.Time
}

// Start begins timing. It panics if the timer is already running.
func (t *Timer) Start() {
	if !t.start.IsZero() {
		panic("trace: timer already started")
	}
	t.start = time.Now()
}

// Stop accumulates the elapsed time since Start and resets the start mark.
func (t *Timer) Stop() {
	if t.start.IsZero() {
		panic("trace: timer not started")
	}
	t.elapsed += time.Since(t.start)
	t.start = time.Time{}
}

// Elapsed renders the accumulated duration as "<h>h:<m>m:<s>s", matching the
// original's elapsed() formatting.
func (t *Timer) Elapsed() string {
	d := t.elapsed
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%dh:%dm:%ds", h, m, s)
}

// ProfilerEntry is a pre-handler starting a Timer for the task about to run.
type ProfilerEntry struct{}

// Name identifies the handler in registration-order diagnostics.
func (ProfilerEntry) Name() string { return "profiler-entry" }

// Run starts a fresh Timer and stashes it on ctx for ProfilerExit.
func (ProfilerEntry) Run(ctx *handler.Context) {
	timer := &Timer{}
	timer.Start()
	ctx.Set(timerProperty, timer)
}

// ProfilerExit is a post-handler stopping the task's Timer and logging its
// elapsed duration.
type ProfilerExit struct{}

// Name identifies the handler in registration-order diagnostics.
func (ProfilerExit) Name() string { return "profiler-exit" }

// Run stops the Timer ProfilerEntry started and logs the elapsed time.
func (ProfilerExit) Run(ctx *handler.Context) {
	timer, ok := ctx.Get(timerProperty).(*Timer)
	if !ok {
		return
	}
	timer.Stop()
	log.Debug("%v took %s", ctx.Get("__name__"), timer.Elapsed())
}
