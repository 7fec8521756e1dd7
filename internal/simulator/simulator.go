// Package simulator drives one simulated agent run: it seeds the fixed task
// sequence and walks each task through pending, running and completed with a
// randomized artificial delay. No real provider call is ever made.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/agentgpt/agentgpt/internal/config"
	"github.com/agentgpt/agentgpt/internal/state"
)

// ErrAlreadyRunning is returned when a run is started while one is active.
var ErrAlreadyRunning = errors.New("execution already in progress")

// taskTexts returns the fixed five-step sequence. The goal is interpolated
// into the descriptions but never drives task decomposition.
func taskTexts(goal string) []string {
	return []string{
		fmt.Sprintf("Research and analyze: %s", goal),
		fmt.Sprintf("Gather comprehensive information about: %s", goal),
		fmt.Sprintf("Provide detailed insights and findings about: %s", goal),
		fmt.Sprintf("Summarize key points and recommendations for: %s", goal),
		fmt.Sprintf("Generate final comprehensive report about: %s", goal),
	}
}

// Runner owns the lifecycle of simulated runs. At most one run is active at
// a time; cancellation is checked before each task so a stopped run never
// picks up another task.
type Runner struct {
	state    *state.Container
	minDelay time.Duration
	maxDelay time.Duration

	// OnDone, if set, is invoked after a run finishes or is cancelled.
	OnDone func()

	mu     sync.Mutex
	cancel context.CancelFunc
}

func New(st *state.Container, cfg config.SimulatorConfig) *Runner {
	return &Runner{
		state:    st,
		minDelay: cfg.MinTaskDelay,
		maxDelay: cfg.MaxTaskDelay,
	}
}

// Start clears the previous run, seeds the task list and launches the run
// goroutine. The snapshot of the configuration taken here is what the whole
// run uses; later config edits do not affect an active run.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return ErrAlreadyRunning
	}

	agent := r.state.Agent()
	r.state.StartExecution()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	go r.run(runCtx, agent)
	return nil
}

// Stop cancels the active run, if any, and clears the executing flag. A
// task already past its cancellation check finishes and logs itself.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.state.StopExecution()
}

// Running reports whether a run goroutine is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Runner) run(ctx context.Context, agent state.AgentConfig) {
	defer r.finish()

	texts := taskTexts(agent.Goal)
	tasks := make([]state.Task, 0, len(texts))
	for _, text := range texts {
		tasks = append(tasks, r.state.AddTask(state.Task{Text: text}))
	}

	bound := agent.MaxIterations
	if bound > len(tasks) {
		bound = len(tasks)
	}

	slog.Info("simulated execution started", "goal", agent.Goal, "tasks", len(tasks), "bound", bound)

	for i := 0; i < bound; i++ {
		if ctx.Err() != nil {
			slog.Info("execution cancelled", "completed", i)
			return
		}

		task := tasks[i]
		r.state.SetCurrentTaskIndex(i)
		running := state.TaskRunning
		r.state.UpdateTask(task.ID, state.TaskPatch{Status: &running})

		if !r.sleep(ctx) {
			slog.Info("execution cancelled mid-task", "task", task.Text)
			return
		}

		completed := state.TaskCompleted
		result := fmt.Sprintf("Completed: %s", task.Text)
		r.state.UpdateTask(task.ID, state.TaskPatch{Status: &completed, Result: &result})
		r.state.AddLog(state.LogEntry{
			Message: fmt.Sprintf("Completed task: %s", task.Text),
			Type:    state.LogInfo,
		})
	}

	slog.Info("simulated execution finished", "completed", bound)
}

// sleep waits a uniform random duration in [minDelay, maxDelay]. Returns
// false if the run was cancelled while waiting.
func (r *Runner) sleep(ctx context.Context) bool {
	delay := r.minDelay
	if span := r.maxDelay - r.minDelay; span > 0 {
		delay += rand.N(span)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (r *Runner) finish() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.state.StopExecution()
	if r.OnDone != nil {
		r.OnDone()
	}
}
