package state

import (
	"time"

	"github.com/agentgpt/agentgpt/internal/catalog"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	// TaskFailed is part of the model for display and export; the simulator
	// never assigns it.
	TaskFailed TaskStatus = "failed"
)

type LogType string

const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogWarning LogType = "warning"
	LogError   LogType = "error"
)

// AgentConfig is the user-defined description of a simulated agent run.
type AgentConfig struct {
	Name          string  `json:"name"`
	Goal          string  `json:"goal"`
	Provider      string  `json:"provider"`
	Model         string  `json:"model"`
	APIKey        string  `json:"api_key"`
	MaxIterations int     `json:"max_iterations"`
	Temperature   float64 `json:"temperature"`
}

// DefaultAgentConfig returns the configuration preloaded for a fresh session.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Provider:      catalog.DefaultProvider,
		Model:         catalog.DefaultModel(catalog.DefaultProvider),
		MaxIterations: 5,
		Temperature:   0.7,
	}
}

// AgentPatch is a partial AgentConfig update; nil fields are left untouched.
type AgentPatch struct {
	Name          *string  `json:"name,omitempty"`
	Goal          *string  `json:"goal,omitempty"`
	Provider      *string  `json:"provider,omitempty"`
	Model         *string  `json:"model,omitempty"`
	APIKey        *string  `json:"api_key,omitempty"`
	MaxIterations *int     `json:"max_iterations,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
}

// Task is one unit of simulated work.
type Task struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Status    TaskStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	Result    string     `json:"result,omitempty"`
}

// TaskPatch is a partial Task update applied by UpdateTask.
type TaskPatch struct {
	Status *TaskStatus `json:"status,omitempty"`
	Result *string     `json:"result,omitempty"`
}

// LogEntry is a timestamped, typed progress message. Append-only.
type LogEntry struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      LogType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a consistent copy of the container, safe to read without
// holding any lock.
type Snapshot struct {
	Agent            AgentConfig   `json:"agent"`
	SavedAgents      []AgentConfig `json:"saved_agents"`
	Tasks            []Task        `json:"tasks"`
	Logs             []LogEntry    `json:"logs"`
	IsExecuting      bool          `json:"is_executing"`
	CurrentTaskIndex int           `json:"current_task_index"`
}
