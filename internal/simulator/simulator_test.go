package simulator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agentgpt/agentgpt/internal/config"
	"github.com/agentgpt/agentgpt/internal/state"
)

func newTestRunner(t *testing.T, st *state.Container, delay time.Duration) (*Runner, chan struct{}) {
	t.Helper()
	r := New(st, config.SimulatorConfig{MinTaskDelay: delay, MaxTaskDelay: delay})
	done := make(chan struct{})
	r.OnDone = func() { close(done) }
	return r, done
}

func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for run to finish")
	}
}

func setAgent(st *state.Container, name, goal, provider string, maxIterations int) {
	st.SetAgent(state.AgentPatch{
		Name:          &name,
		Goal:          &goal,
		Provider:      &provider,
		MaxIterations: &maxIterations,
	})
}

func TestRunCompletesBoundedTasks(t *testing.T) {
	st := state.New(nil, nil)
	setAgent(st, "A", "G", "sambanova", 2)

	r, done := newTestRunner(t, st, time.Millisecond)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, done)

	snap := st.Snapshot()
	if snap.IsExecuting {
		t.Error("expected not executing after run")
	}
	if len(snap.Tasks) != 5 {
		t.Fatalf("expected 5 seeded tasks, got %d", len(snap.Tasks))
	}

	var completed, pending int
	for _, task := range snap.Tasks {
		switch task.Status {
		case state.TaskCompleted:
			completed++
			if task.Result == "" {
				t.Errorf("completed task %s has no result", task.Text)
			}
		case state.TaskPending:
			pending++
		default:
			t.Errorf("unexpected status %s for %s", task.Status, task.Text)
		}
	}
	if completed != 2 || pending != 3 {
		t.Errorf("expected 2 completed / 3 pending, got %d / %d", completed, pending)
	}

	if len(snap.Logs) != 2 {
		t.Errorf("expected 2 log entries, got %d", len(snap.Logs))
	}
	for _, e := range snap.Logs {
		if e.Type != state.LogInfo {
			t.Errorf("expected info log, got %s", e.Type)
		}
	}
}

func TestRunCompletesAllWhenBoundExceedsTasks(t *testing.T) {
	st := state.New(nil, nil)
	setAgent(st, "A", "G", "cerebras", 10)

	r, done := newTestRunner(t, st, time.Millisecond)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, done)

	snap := st.Snapshot()
	for _, task := range snap.Tasks {
		if task.Status != state.TaskCompleted {
			t.Errorf("expected all completed, %s is %s", task.Text, task.Status)
		}
	}
	if len(snap.Logs) != 5 {
		t.Errorf("expected 5 log entries, got %d", len(snap.Logs))
	}
}

func TestTaskTextsReferenceGoal(t *testing.T) {
	texts := taskTexts("Build a birdhouse")
	if len(texts) != 5 {
		t.Fatalf("expected 5 task texts, got %d", len(texts))
	}
	for _, text := range texts {
		if !strings.Contains(text, "Build a birdhouse") {
			t.Errorf("task text does not reference goal: %q", text)
		}
	}
	if texts[0] != "Research and analyze: Build a birdhouse" {
		t.Errorf("unexpected first task text: %q", texts[0])
	}
}

func TestStopCancelsRun(t *testing.T) {
	st := state.New(nil, nil)
	setAgent(st, "A", "G", "cerebras", 5)

	r, done := newTestRunner(t, st, 300*time.Millisecond)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Stop while the first task is still in its simulated delay
	time.Sleep(20 * time.Millisecond)
	r.Stop()
	waitDone(t, done)

	snap := st.Snapshot()
	if snap.IsExecuting {
		t.Error("expected not executing after stop")
	}
	for _, task := range snap.Tasks {
		if task.Status == state.TaskCompleted {
			t.Errorf("task %s completed despite cancellation", task.Text)
		}
	}
	if len(snap.Logs) != 0 {
		t.Errorf("expected no completion logs, got %d", len(snap.Logs))
	}
}

func TestStartWhileRunningFails(t *testing.T) {
	st := state.New(nil, nil)
	setAgent(st, "A", "G", "cerebras", 5)

	r, done := newTestRunner(t, st, 200*time.Millisecond)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { r.Stop(); waitDone(t, done) }()

	if err := r.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestStopWithoutRunIsNoop(t *testing.T) {
	st := state.New(nil, nil)
	r := New(st, config.SimulatorConfig{MinTaskDelay: time.Millisecond, MaxTaskDelay: time.Millisecond})
	r.Stop()

	if st.Snapshot().IsExecuting {
		t.Error("expected not executing")
	}
}
