// agentctl is a small operator CLI for a running agentgpt server. It talks
// to the HTTP API for commands and tails the NATS event firehose for watch.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
)

type agentView struct {
	Name          string  `json:"name"`
	Goal          string  `json:"goal"`
	Provider      string  `json:"provider"`
	Model         string  `json:"model"`
	MaxIterations int     `json:"max_iterations"`
	Temperature   float64 `json:"temperature"`
}

type taskView struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Status string `json:"status"`
}

type summaryView struct {
	IsExecuting      bool `json:"is_executing"`
	CurrentTaskIndex int  `json:"current_task_index"`
	ExecutionSummary struct {
		TotalTasks     int     `json:"total_tasks"`
		CompletedTasks int     `json:"completed_tasks"`
		FailedTasks    int     `json:"failed_tasks"`
		SuccessRate    float64 `json:"success_rate"`
	} `json:"execution_summary"`
}

type apiError struct {
	Error string `json:"error"`
}

func apiCall(baseURL, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("api request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Error != "" {
			return fmt.Errorf("%s", ae.Error)
		}
		return fmt.Errorf("api error: %s", resp.Status)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func parseArgs(args []string) map[string]string {
	result := make(map[string]string)
	for i := 0; i < len(args); i++ {
		if len(args[i]) > 2 && args[i][:2] == "--" && i+1 < len(args) {
			result[args[i][2:]] = args[i+1]
			i++
		}
	}
	return result
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  agentctl status")
	fmt.Fprintln(os.Stderr, `  agentctl run --name "..." --goal "..." [--provider p] [--model m]`)
	fmt.Fprintln(os.Stderr, "  agentctl stop")
	fmt.Fprintln(os.Stderr, "  agentctl tasks")
	fmt.Fprintln(os.Stderr, "  agentctl watch")
	os.Exit(1)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	baseURL := os.Getenv("AGENTGPT_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	if len(os.Args) < 2 {
		usage()
	}

	command := os.Args[1]
	rest := os.Args[2:]

	switch command {
	case "status":
		var agent agentView
		if err := apiCall(baseURL, http.MethodGet, "/api/agent", nil, &agent); err != nil {
			fatal("%v", err)
		}
		var sum summaryView
		if err := apiCall(baseURL, http.MethodGet, "/api/summary", nil, &sum); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Agent:     %s\n", agent.Name)
		fmt.Printf("Goal:      %s\n", agent.Goal)
		fmt.Printf("Backend:   %s / %s\n", agent.Provider, agent.Model)
		fmt.Printf("Executing: %v\n", sum.IsExecuting)
		fmt.Printf("Tasks:     %d total, %d completed, %d failed\n",
			sum.ExecutionSummary.TotalTasks,
			sum.ExecutionSummary.CompletedTasks,
			sum.ExecutionSummary.FailedTasks)

	case "run":
		args := parseArgs(rest)
		if args["name"] == "" || args["goal"] == "" {
			fatal("--name and --goal are required")
		}
		patch := map[string]any{"name": args["name"], "goal": args["goal"]}
		if args["provider"] != "" {
			patch["provider"] = args["provider"]
		}
		if args["model"] != "" {
			patch["model"] = args["model"]
		}
		if err := apiCall(baseURL, http.MethodPatch, "/api/agent", patch, nil); err != nil {
			fatal("%v", err)
		}
		if err := apiCall(baseURL, http.MethodPost, "/api/execute", nil, nil); err != nil {
			fatal("%v", err)
		}
		fmt.Println("Execution started.")

	case "stop":
		if err := apiCall(baseURL, http.MethodPost, "/api/stop", nil, nil); err != nil {
			fatal("%v", err)
		}
		fmt.Println("Execution stopped.")

	case "tasks":
		var tasks []taskView
		if err := apiCall(baseURL, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
			fatal("%v", err)
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks.")
			break
		}
		for i, t := range tasks {
			fmt.Printf("  %d. [%s] %s\n", i+1, t.Status, t.Text)
		}

	case "watch":
		conn, err := nats.Connect(natsURL)
		if err != nil {
			fatal("connect to nats: %v", err)
		}
		defer conn.Close()

		sub, err := conn.Subscribe("events.>", func(msg *nats.Msg) {
			fmt.Printf("%s %s %s\n", time.Now().Format("15:04:05"), msg.Subject, msg.Data)
		})
		if err != nil {
			fatal("subscribe: %v", err)
		}
		defer sub.Unsubscribe()

		fmt.Println("Watching events, Ctrl-C to exit.")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

	default:
		fatal("unknown command: %s", command)
	}
}
