// Package state implements the single state container owned by the gateway:
// the current agent configuration, the saved configuration list, and the
// task/log/execution state of one simulated run. All mutations go through
// the closed operation set below; consumers observe changes through bus
// events, never by polling internals.
package state

import (
	"log/slog"
	"sync"
	"time"

	"github.com/agentgpt/agentgpt/internal/bus"
	"github.com/google/uuid"
)

// Persister stores the durable subset of the container. The task list, logs
// and execution flag are session-scoped and never persisted.
type Persister interface {
	Persist(agent AgentConfig, saved []AgentConfig) error
}

// Publisher emits a state-change event onto the bus.
type Publisher interface {
	PublishEvent(topic string, eventType string, payload any) error
}

type Container struct {
	mu               sync.Mutex
	agent            AgentConfig
	saved            []AgentConfig
	tasks            []Task
	logs             []LogEntry
	executing        bool
	currentTaskIndex int

	persister Persister
	publisher Publisher
}

// New creates a container holding the default agent configuration.
// Both persister and publisher may be nil (tests, dry runs).
func New(p Persister, pub Publisher) *Container {
	return &Container{
		agent:     DefaultAgentConfig(),
		persister: p,
		publisher: pub,
	}
}

// Restore replaces the durable subset with previously persisted values.
// Called once at startup, before any other operation.
func (c *Container) Restore(agent AgentConfig, saved []AgentConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agent = agent
	c.saved = append([]AgentConfig(nil), saved...)
}

// SetAgent shallow-merges the patch into the current configuration. Fields
// absent from the patch are kept; no validation is performed here, the API
// layer gates deploys instead.
func (c *Container) SetAgent(patch AgentPatch) {
	c.mu.Lock()
	if patch.Name != nil {
		c.agent.Name = *patch.Name
	}
	if patch.Goal != nil {
		c.agent.Goal = *patch.Goal
	}
	if patch.Provider != nil {
		c.agent.Provider = *patch.Provider
	}
	if patch.Model != nil {
		c.agent.Model = *patch.Model
	}
	if patch.APIKey != nil {
		c.agent.APIKey = *patch.APIKey
	}
	if patch.MaxIterations != nil {
		c.agent.MaxIterations = *patch.MaxIterations
	}
	if patch.Temperature != nil {
		c.agent.Temperature = *patch.Temperature
	}
	agent := c.agent
	saved := append([]AgentConfig(nil), c.saved...)
	c.mu.Unlock()

	c.persist(agent, saved)
	c.publish(bus.TopicAgentUpdated, "agent_updated", agent)
}

// SaveAgent upserts the current configuration into the saved list, keyed by
// name. Incomplete configurations (empty name or goal) are silently ignored;
// this mirrors the product behavior of refusing rather than erroring.
func (c *Container) SaveAgent() {
	c.mu.Lock()
	if c.agent.Name == "" || c.agent.Goal == "" {
		c.mu.Unlock()
		return
	}

	replaced := false
	for i := range c.saved {
		if c.saved[i].Name == c.agent.Name {
			c.saved[i] = c.agent
			replaced = true
			break
		}
	}
	if !replaced {
		c.saved = append(c.saved, c.agent)
	}
	agent := c.agent
	saved := append([]AgentConfig(nil), c.saved...)
	c.mu.Unlock()

	c.persist(agent, saved)
	c.publish(bus.TopicAgentSaved, "agent_saved", agent)
}

// LoadAgent replaces the current configuration wholesale.
func (c *Container) LoadAgent(cfg AgentConfig) {
	c.mu.Lock()
	c.agent = cfg
	agent := c.agent
	saved := append([]AgentConfig(nil), c.saved...)
	c.mu.Unlock()

	c.persist(agent, saved)
	c.publish(bus.TopicAgentUpdated, "agent_updated", agent)
}

// DeleteSavedAgent removes a saved configuration by name. Unknown names are
// a silent no-op.
func (c *Container) DeleteSavedAgent(name string) {
	c.mu.Lock()
	out := c.saved[:0]
	for _, a := range c.saved {
		if a.Name != name {
			out = append(out, a)
		}
	}
	c.saved = out
	agent := c.agent
	saved := append([]AgentConfig(nil), c.saved...)
	c.mu.Unlock()

	c.persist(agent, saved)
	c.publish(bus.TopicAgentSaved, "saved_agents_changed", saved)
}

// StartExecution flips the executing flag and clears the previous run.
// It does not seed any tasks; the simulator does that, so a start that is
// immediately stopped leaves an empty task list.
func (c *Container) StartExecution() {
	c.mu.Lock()
	c.executing = true
	c.tasks = nil
	c.logs = nil
	c.currentTaskIndex = 0
	c.mu.Unlock()

	c.publish(bus.TopicExecutionStarted, "execution_started", nil)
}

// StopExecution clears the executing flag. Cancellation of the simulated
// run is the simulator's concern.
func (c *Container) StopExecution() {
	c.mu.Lock()
	c.executing = false
	c.mu.Unlock()

	c.publish(bus.TopicExecutionStopped, "execution_stopped", nil)
}

// IsExecuting reports whether a run is in progress.
func (c *Container) IsExecuting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.executing
}

// AddTask appends a task, assigning an ID and timestamp if absent.
func (c *Container) AddTask(t Task) Task {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = TaskPending
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, t)
	c.mu.Unlock()

	c.publish(bus.TopicTaskAdded, "task_added", t)
	return t
}

// UpdateTask merges the patch into the task with the given id. Unknown ids
// are a silent no-op.
func (c *Container) UpdateTask(id string, patch TaskPatch) {
	c.mu.Lock()
	var updated *Task
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			if patch.Status != nil {
				c.tasks[i].Status = *patch.Status
			}
			if patch.Result != nil {
				c.tasks[i].Result = *patch.Result
			}
			t := c.tasks[i]
			updated = &t
			break
		}
	}
	c.mu.Unlock()

	if updated != nil {
		c.publish(bus.TopicTaskUpdated, "task_updated", *updated)
	}
}

// SetCurrentTaskIndex records informational progress; it does not decide
// which task runs next.
func (c *Container) SetCurrentTaskIndex(i int) {
	c.mu.Lock()
	c.currentTaskIndex = i
	c.mu.Unlock()
}

// AddLog appends a log entry, assigning an ID and timestamp if absent.
func (c *Container) AddLog(e LogEntry) LogEntry {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Type == "" {
		e.Type = LogInfo
	}

	c.mu.Lock()
	c.logs = append(c.logs, e)
	c.mu.Unlock()

	c.publish(bus.TopicLogAdded, "log_added", e)
	return e
}

// ClearLogs drops all log entries.
func (c *Container) ClearLogs() {
	c.mu.Lock()
	c.logs = nil
	c.mu.Unlock()

	c.publish(bus.TopicLogCleared, "logs_cleared", nil)
}

// ResetExecution returns the run state to empty and not executing. The
// current configuration and saved list are untouched.
func (c *Container) ResetExecution() {
	c.mu.Lock()
	c.tasks = nil
	c.logs = nil
	c.executing = false
	c.currentTaskIndex = 0
	c.mu.Unlock()

	c.publish(bus.TopicExecutionReset, "execution_reset", nil)
}

// Agent returns a copy of the current configuration.
func (c *Container) Agent() AgentConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agent
}

// Snapshot returns a consistent copy of the whole container.
func (c *Container) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Agent:            c.agent,
		SavedAgents:      append([]AgentConfig(nil), c.saved...),
		Tasks:            append([]Task(nil), c.tasks...),
		Logs:             append([]LogEntry(nil), c.logs...),
		IsExecuting:      c.executing,
		CurrentTaskIndex: c.currentTaskIndex,
	}
}

func (c *Container) persist(agent AgentConfig, saved []AgentConfig) {
	if c.persister == nil {
		return
	}
	if err := c.persister.Persist(agent, saved); err != nil {
		slog.Error("persist state failed", "error", err)
	}
}

func (c *Container) publish(topic, eventType string, payload any) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishEvent(topic, eventType, payload); err != nil {
		slog.Warn("publish state event failed", "topic", topic, "error", err)
	}
}
