// Package export serializes a state snapshot into the three downloadable
// formats: a pretty-printed JSON object, a blocked CSV text, and a
// human-readable plain-text report.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentgpt/agentgpt/internal/state"
)

// Options selects which sections an export includes.
type Options struct {
	IncludeConfig bool `json:"include_config"`
	IncludeTasks  bool `json:"include_tasks"`
	IncludeLogs   bool `json:"include_logs"`
}

// All includes every section; used by the quick download path.
var All = Options{IncludeConfig: true, IncludeTasks: true, IncludeLogs: true}

// MIME types per format.
const (
	MIMEJSON = "application/json"
	MIMECSV  = "text/csv"
	MIMEText = "text/plain"
)

// JSON renders the requested sections as a pretty-printed object with only
// the requested top-level keys.
func JSON(agent state.AgentConfig, tasks []state.Task, logs []state.LogEntry, opts Options) (string, error) {
	out := make(map[string]any, 3)
	if opts.IncludeConfig {
		out["agent"] = agent
	}
	if opts.IncludeTasks {
		if tasks == nil {
			tasks = []state.Task{}
		}
		out["tasks"] = tasks
	}
	if opts.IncludeLogs {
		if logs == nil {
			logs = []state.LogEntry{}
		}
		out["logs"] = logs
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	return string(data), nil
}

// CSV renders up to three labeled blocks, each a header row followed by one
// row per record. Fields are comma-joined without escaping; embedded commas
// in user text break the column layout. Known limitation, kept on purpose.
func CSV(agent state.AgentConfig, tasks []state.Task, logs []state.LogEntry, opts Options) string {
	var blocks []string

	if opts.IncludeConfig {
		var b strings.Builder
		b.WriteString("Agent Configuration\n")
		b.WriteString("Name,Goal,Provider,Model,Max Iterations,Temperature\n")
		b.WriteString(strings.Join([]string{
			agent.Name,
			agent.Goal,
			agent.Provider,
			agent.Model,
			strconv.Itoa(agent.MaxIterations),
			formatFloat(agent.Temperature),
		}, ",") + "\n")
		blocks = append(blocks, b.String())
	}

	if opts.IncludeTasks {
		var b strings.Builder
		b.WriteString("Tasks\n")
		b.WriteString("ID,Text,Status,Result,Timestamp\n")
		for _, t := range tasks {
			b.WriteString(strings.Join([]string{
				t.ID,
				t.Text,
				string(t.Status),
				t.Result,
				t.Timestamp.Format(time.RFC3339),
			}, ",") + "\n")
		}
		blocks = append(blocks, b.String())
	}

	if opts.IncludeLogs {
		var b strings.Builder
		b.WriteString("Logs\n")
		b.WriteString("ID,Type,Message,Timestamp\n")
		for _, e := range logs {
			b.WriteString(strings.Join([]string{
				e.ID,
				string(e.Type),
				e.Message,
				e.Timestamp.Format(time.RFC3339),
			}, ",") + "\n")
		}
		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n")
}

// Text renders the human-readable execution report.
func Text(agent state.AgentConfig, tasks []state.Task, logs []state.LogEntry, opts Options) string {
	var b strings.Builder
	banner := strings.Repeat("=", 80)
	rule := strings.Repeat("-", 40)

	b.WriteString(banner + "\n")
	b.WriteString("AGENTGPT EXECUTION REPORT\n")
	b.WriteString(banner + "\n\n")

	if opts.IncludeConfig {
		b.WriteString("AGENT CONFIGURATION\n")
		b.WriteString(rule + "\n")
		fmt.Fprintf(&b, "Name: %s\n", agent.Name)
		fmt.Fprintf(&b, "Goal: %s\n", agent.Goal)
		fmt.Fprintf(&b, "Provider: %s\n", agent.Provider)
		fmt.Fprintf(&b, "Model: %s\n", agent.Model)
		fmt.Fprintf(&b, "Max Iterations: %d\n", agent.MaxIterations)
		fmt.Fprintf(&b, "Temperature: %s\n", formatFloat(agent.Temperature))
		b.WriteString("\n")
	}

	if opts.IncludeTasks {
		s := Summarize(tasks)
		b.WriteString("TASKS\n")
		b.WriteString(rule + "\n")
		fmt.Fprintf(&b, "Completed: %d / Failed: %d / Pending: %d\n\n",
			s.CompletedTasks, s.FailedTasks, s.PendingTasks)
		for i, t := range tasks {
			fmt.Fprintf(&b, "%d. %s\n", i+1, t.Text)
			fmt.Fprintf(&b, "   Status: %s\n", strings.ToUpper(string(t.Status)))
			fmt.Fprintf(&b, "   Time: %s\n", t.Timestamp.Local().Format("2006-01-02 15:04:05"))
			if t.Result != "" {
				fmt.Fprintf(&b, "   Result: %s\n", t.Result)
			}
			b.WriteString("\n")
		}
	}

	if opts.IncludeLogs {
		b.WriteString("EXECUTION LOGS\n")
		b.WriteString(rule + "\n")
		for i, e := range logs {
			fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				strings.ToUpper(string(e.Type)), e.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString(banner + "\n")
	fmt.Fprintf(&b, "Generated on: %s\n", time.Now().UTC().Format("2006-01-02 15:04:05"))
	b.WriteString(banner + "\n")

	return b.String()
}

// Report renders the full text report, all sections included, for a
// state snapshot.
func Report(snap state.Snapshot) string {
	return Text(snap.Agent, snap.Tasks, snap.Logs, All)
}

// ExecutionSummary aggregates task outcomes for the dashboard.
type ExecutionSummary struct {
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	FailedTasks    int     `json:"failed_tasks"`
	PendingTasks   int     `json:"pending_tasks"`
	RunningTasks   int     `json:"running_tasks"`
	SuccessRate    float64 `json:"success_rate"`
}

// Summarize tallies task statuses. SuccessRate is completed/total in
// percent, 0 for an empty list.
func Summarize(tasks []state.Task) ExecutionSummary {
	s := ExecutionSummary{TotalTasks: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case state.TaskCompleted:
			s.CompletedTasks++
		case state.TaskFailed:
			s.FailedTasks++
		case state.TaskRunning:
			s.RunningTasks++
		default:
			s.PendingTasks++
		}
	}
	if s.TotalTasks > 0 {
		s.SuccessRate = float64(s.CompletedTasks) / float64(s.TotalTasks) * 100
	}
	return s
}

// Filename builds the download filename: spaces in the agent name become
// underscores. Quick downloads use the "_data" suffix, advanced exports
// "_export".
func Filename(agentName, suffix, ext string) string {
	name := strings.ReplaceAll(agentName, " ", "_")
	if name == "" {
		name = "agent"
	}
	return name + suffix + "." + ext
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
