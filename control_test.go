package percept

import (
	"testing"
	"time"

	"github.com/pkg/errors"
)

func waitSuspended(t *testing.T, c *Classifier) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !c.Suspended() {
		if time.Now().After(deadline) {
			t.Fatal("training loop never suspended")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSettersRefusedWhileRunning(t *testing.T) {
	c := New()
	if err := c.Initialize(nominalTestData(t)); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := c.SetLearningRate(0.1); errors.Cause(err) != ErrNotSuspended {
		t.Errorf("SetLearningRate while running: %v, expected ErrNotSuspended", err)
	}
	if err := c.SetMomentum(0.1); errors.Cause(err) != ErrNotSuspended {
		t.Errorf("SetMomentum while running: %v, expected ErrNotSuspended", err)
	}
	if _, err := c.AddHiddenNode(); errors.Cause(err) != ErrNotSuspended {
		t.Errorf("AddHiddenNode while running: %v, expected ErrNotSuspended", err)
	}

	c.Finish()
	if err := c.SetLearningRate(0.1); err != nil {
		t.Errorf("SetLearningRate after Finish: %v", err)
	}
}

func TestPauseSuspendResume(t *testing.T) {
	c := New()
	opts := c.Options()
	opts.EpochLimit = 100000
	if err := c.Configure(opts); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := c.Initialize(nominalTestData(t)); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	c.Pause()

	done := make(chan error, 1)
	go func() {
		for {
			more, err := c.StepEpoch()
			if err != nil || !more {
				done <- err
				return
			}
		}
	}()

	waitSuspended(t, c)

	// hyperparameter edits are legal while suspended and take effect at the
	// next epoch
	if err := c.SetLearningRate(0.05); err != nil {
		t.Errorf("SetLearningRate while suspended: %v", err)
	}
	if err := c.SetMomentum(0.5); err != nil {
		t.Errorf("SetMomentum while suspended: %v", err)
	}
	if err := c.SetEpochLimit(1); err != nil {
		t.Errorf("SetEpochLimit while suspended: %v", err)
	}

	c.Resume()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("training loop returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("training loop did not finish after resume")
	}

	if c.Epoch() != 1 {
		t.Errorf("ran %d epochs, expected 1 after lowering the limit", c.Epoch())
	}
}

func TestAcceptWhileSuspended(t *testing.T) {
	c := New()
	opts := c.Options()
	opts.EpochLimit = 100000
	if err := c.Configure(opts); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := c.Initialize(nominalTestData(t)); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := c.Accept(); errors.Cause(err) != ErrNotSuspended {
		t.Fatalf("Accept while running: %v, expected ErrNotSuspended", err)
	}

	c.Pause()
	done := make(chan error, 1)
	go func() {
		for {
			more, err := c.StepEpoch()
			if err != nil || !more {
				done <- err
				return
			}
		}
	}()

	waitSuspended(t, c)
	if err := c.Accept(); err != nil {
		t.Fatalf("Accept while suspended: %v", err)
	}
	c.Resume()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("training loop returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("training loop did not stop after acceptance")
	}

	if !c.Accepted() {
		t.Error("classifier not in the accepted state")
	}
}

func TestCancelBeforeEpoch(t *testing.T) {
	c := New()
	if err := c.Initialize(nominalTestData(t)); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	c.Cancel()
	if _, err := c.StepEpoch(); errors.Cause(err) != ErrCancelled {
		t.Errorf("StepEpoch after Cancel: %v, expected ErrCancelled", err)
	}
}

func TestCancelDuringValidation(t *testing.T) {
	c := New()
	opts := c.Options()
	opts.ValSizePercent = 20
	if err := c.Configure(opts); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := c.Initialize(nominalTestData(t)); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	c.Cancel()
	if _, err := c.validate(); errors.Cause(err) != ErrCancelled {
		t.Errorf("validate after Cancel: %v, expected ErrCancelled", err)
	}
}

func TestCancelDuringInitialize(t *testing.T) {
	c := New()
	c.Cancel()

	if err := c.Initialize(nominalTestData(t)); errors.Cause(err) != ErrCancelled {
		t.Errorf("Initialize after Cancel: %v, expected ErrCancelled", err)
	}
}

func TestCancelWakesParkedLoop(t *testing.T) {
	c := New()
	opts := c.Options()
	opts.EpochLimit = 100000
	if err := c.Configure(opts); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := c.Initialize(nominalTestData(t)); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	c.Pause()
	done := make(chan error, 1)
	go func() {
		_, err := c.StepEpoch()
		done <- err
	}()

	waitSuspended(t, c)
	c.Cancel()

	select {
	case err := <-done:
		if errors.Cause(err) != ErrCancelled {
			t.Errorf("parked loop returned %v, expected ErrCancelled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not wake the parked loop")
	}
}
