package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/agentgpt/agentgpt/internal/catalog"
	"github.com/agentgpt/agentgpt/internal/export"
	"github.com/agentgpt/agentgpt/internal/simulator"
	"github.com/agentgpt/agentgpt/internal/state"
)

func (s *Server) registerAPI(mux *http.ServeMux) {
	// System
	mux.HandleFunc("GET /api/health", s.health)
	mux.HandleFunc("GET /api/providers", s.listProviders)

	// Agent configuration
	mux.HandleFunc("GET /api/agent", s.getAgent)
	mux.HandleFunc("PATCH /api/agent", s.patchAgent)
	mux.HandleFunc("POST /api/agent/save", s.saveAgent)
	mux.HandleFunc("POST /api/agent/load", s.loadAgent)
	mux.HandleFunc("GET /api/agents/saved", s.listSavedAgents)
	mux.HandleFunc("DELETE /api/agents/saved/{name}", s.deleteSavedAgent)

	// Execution
	mux.HandleFunc("POST /api/execute", s.execute)
	mux.HandleFunc("POST /api/stop", s.stop)
	mux.HandleFunc("POST /api/reset", s.reset)

	// Run state
	mux.HandleFunc("GET /api/tasks", s.listTasks)
	mux.HandleFunc("GET /api/logs", s.listLogs)
	mux.HandleFunc("DELETE /api/logs", s.clearLogs)
	mux.HandleFunc("GET /api/summary", s.summary)
	mux.HandleFunc("GET /api/report", s.report)

	// Export
	mux.HandleFunc("GET /api/download/{format}", s.downloadSimple)
	mux.HandleFunc("POST /api/download", s.downloadAdvanced)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]any{
		"status":    "healthy",
		"version":   s.version,
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, catalog.Providers())
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, s.state.Agent())
}

func (s *Server) patchAgent(w http.ResponseWriter, r *http.Request) {
	var patch state.AgentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.state.SetAgent(patch)
	jsonResponse(w, s.state.Agent())
}

// saveAgent upserts the current configuration into the saved list. An
// incomplete configuration is silently ignored, so the response always
// carries the (possibly unchanged) saved list.
func (s *Server) saveAgent(w http.ResponseWriter, r *http.Request) {
	s.state.SaveAgent()
	jsonResponse(w, s.state.Snapshot().SavedAgents)
}

func (s *Server) loadAgent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	for _, a := range s.state.Snapshot().SavedAgents {
		if a.Name == body.Name {
			s.state.LoadAgent(a)
			jsonResponse(w, s.state.Agent())
			return
		}
	}
	jsonError(w, "saved agent not found", http.StatusNotFound)
}

func (s *Server) listSavedAgents(w http.ResponseWriter, r *http.Request) {
	saved := s.state.Snapshot().SavedAgents
	if saved == nil {
		saved = []state.AgentConfig{}
	}
	jsonResponse(w, saved)
}

func (s *Server) deleteSavedAgent(w http.ResponseWriter, r *http.Request) {
	s.state.DeleteSavedAgent(r.PathValue("name"))
	jsonResponse(w, map[string]string{"status": "deleted"})
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request) {
	agent := s.state.Agent()

	if agent.Name == "" || agent.Goal == "" {
		jsonError(w, "name and goal are required", http.StatusBadRequest)
		return
	}
	if _, ok := catalog.Get(agent.Provider); !ok {
		jsonError(w, "invalid AI provider", http.StatusBadRequest)
		return
	}
	if !catalog.Valid(agent.Provider, agent.Model) {
		jsonError(w, "invalid model for selected provider", http.StatusBadRequest)
		return
	}
	if agent.MaxIterations < 1 || agent.MaxIterations > 10 {
		jsonError(w, "max_iterations must be between 1 and 10", http.StatusBadRequest)
		return
	}

	if err := s.runner.Start(s.runCtx); err != nil {
		if errors.Is(err, simulator.ErrAlreadyRunning) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]string{"status": "started"})
}

func (s *Server) stop(w http.ResponseWriter, r *http.Request) {
	s.runner.Stop()
	jsonResponse(w, map[string]string{"status": "stopped"})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.runner.Stop()
	s.state.ResetExecution()
	jsonResponse(w, map[string]string{"status": "reset"})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.state.Snapshot().Tasks
	if tasks == nil {
		tasks = []state.Task{}
	}
	jsonResponse(w, tasks)
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	logs := s.state.Snapshot().Logs
	if logs == nil {
		logs = []state.LogEntry{}
	}
	jsonResponse(w, logs)
}

func (s *Server) clearLogs(w http.ResponseWriter, r *http.Request) {
	s.state.ClearLogs()
	jsonResponse(w, map[string]string{"status": "cleared"})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	jsonResponse(w, map[string]any{
		"execution_summary":  export.Summarize(snap.Tasks),
		"is_executing":       snap.IsExecuting,
		"current_task_index": snap.CurrentTaskIndex,
	})
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	w.Header().Set("Content-Type", export.MIMEText)
	fmt.Fprint(w, export.Report(snap))
}

// downloadSimple always includes every section, filename suffix "_data".
func (s *Server) downloadSimple(w http.ResponseWriter, r *http.Request) {
	s.download(w, r.PathValue("format"), export.All, "_data")
}

// downloadAdvanced honors per-section include flags, suffix "_export".
func (s *Server) downloadAdvanced(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Format        string `json:"format"`
		IncludeConfig *bool  `json:"include_config"`
		IncludeTasks  *bool  `json:"include_tasks"`
		IncludeLogs   *bool  `json:"include_logs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Sections default to included when unspecified
	opts := export.All
	if body.IncludeConfig != nil {
		opts.IncludeConfig = *body.IncludeConfig
	}
	if body.IncludeTasks != nil {
		opts.IncludeTasks = *body.IncludeTasks
	}
	if body.IncludeLogs != nil {
		opts.IncludeLogs = *body.IncludeLogs
	}

	s.download(w, body.Format, opts, "_export")
}

func (s *Server) download(w http.ResponseWriter, format string, opts export.Options, suffix string) {
	snap := s.state.Snapshot()

	var content, mime, ext string
	switch format {
	case "json":
		out, err := export.JSON(snap.Agent, snap.Tasks, snap.Logs, opts)
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		content, mime, ext = out, export.MIMEJSON, "json"
	case "csv":
		content, mime, ext = export.CSV(snap.Agent, snap.Tasks, snap.Logs, opts), export.MIMECSV, "csv"
	case "txt":
		content, mime, ext = export.Text(snap.Agent, snap.Tasks, snap.Logs, opts), export.MIMEText, "txt"
	default:
		jsonError(w, "unsupported export format", http.StatusBadRequest)
		return
	}

	filename := export.Filename(snap.Agent.Name, suffix, ext)
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	fmt.Fprint(w, content)
}
