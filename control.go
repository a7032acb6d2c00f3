package percept

import (
	"sync"
)

// Controller is the single gate between a running training loop and an
// external interactive caller. The loop calls maybeSuspend at each epoch
// boundary; Pause makes that call block until Resume. Hyperparameter and
// topology mutation are funneled through the same gate, so they are only
// ever observed between epochs, never mid-epoch.
type Controller struct {
	mu   sync.Mutex
	cond *sync.Cond

	paused    bool
	suspended bool
	running   bool

	done   chan struct{}
	closed bool
}

func newController() *Controller {
	ctl := &Controller{done: make(chan struct{})}
	ctl.cond = sync.NewCond(&ctl.mu)
	return ctl
}

// Pause requests that the training loop park at the next epoch boundary.
// It does not wait for the loop to arrive there; poll Suspended for that.
func (ctl *Controller) Pause() {
	ctl.mu.Lock()
	ctl.paused = true
	ctl.mu.Unlock()
}

// Resume releases a parked training loop.
func (ctl *Controller) Resume() {
	ctl.mu.Lock()
	ctl.paused = false
	ctl.cond.Broadcast()
	ctl.mu.Unlock()
}

// Cancel requests cooperative cancellation. The signal is observed at the
// head of the per-instance loop and during topology construction, and
// surfaces as ErrCancelled. A parked loop is woken so it can observe it.
func (ctl *Controller) Cancel() {
	ctl.mu.Lock()
	if !ctl.closed {
		ctl.closed = true
		close(ctl.done)
	}
	ctl.cond.Broadcast()
	ctl.mu.Unlock()
}

// Suspended reports whether the training loop is currently parked between
// epochs.
func (ctl *Controller) Suspended() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.suspended
}

// cancelled is the poll point: it returns ErrCancelled once Cancel has been
// called, and nil before.
func (ctl *Controller) cancelled() error {
	select {
	case <-ctl.done:
		return ErrCancelled
	default:
		return nil
	}
}

// maybeSuspend blocks while a pause is requested. Only the training loop
// calls this, at each epoch boundary.
func (ctl *Controller) maybeSuspend() {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	for ctl.paused && !ctl.closed {
		ctl.suspended = true
		ctl.cond.Broadcast()
		ctl.cond.Wait()
	}
	ctl.suspended = false
}

func (ctl *Controller) setRunning(running bool) {
	ctl.mu.Lock()
	ctl.running = running
	ctl.mu.Unlock()
}

// editable returns nil when mutation is legal: either no training run is in
// progress, or the loop is parked between epochs.
func (ctl *Controller) editable() error {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if ctl.running && !ctl.suspended {
		return ErrNotSuspended
	}
	return nil
}
