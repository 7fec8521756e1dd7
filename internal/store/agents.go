package store

import (
	"database/sql"
	"fmt"

	"github.com/agentgpt/agentgpt/internal/state"
)

// Persist replaces the durable snapshot inside one transaction. Implements
// state.Persister. Saved-list order is kept via the position column so the
// upsert-by-name semantics survive restarts.
func (s *Store) Persist(agent state.AgentConfig, saved []state.AgentConfig) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	key, err := s.sealKey(agent.APIKey)
	if err != nil {
		return fmt.Errorf("seal api key: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO current_agent (id, name, goal, provider, model, api_key, max_iterations, temperature, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			goal = excluded.goal,
			provider = excluded.provider,
			model = excluded.model,
			api_key = excluded.api_key,
			max_iterations = excluded.max_iterations,
			temperature = excluded.temperature,
			updated_at = CURRENT_TIMESTAMP`,
		agent.Name, agent.Goal, agent.Provider, agent.Model, key, agent.MaxIterations, agent.Temperature)
	if err != nil {
		return fmt.Errorf("save current agent: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM saved_agents`); err != nil {
		return fmt.Errorf("clear saved agents: %w", err)
	}

	for i, a := range saved {
		key, err := s.sealKey(a.APIKey)
		if err != nil {
			return fmt.Errorf("seal api key for %s: %w", a.Name, err)
		}
		_, err = tx.Exec(`
			INSERT INTO saved_agents (name, goal, provider, model, api_key, max_iterations, temperature, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Name, a.Goal, a.Provider, a.Model, key, a.MaxIterations, a.Temperature, i)
		if err != nil {
			return fmt.Errorf("save agent %s: %w", a.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadCurrentAgent returns the persisted current configuration, or
// (zero, false) when nothing has been persisted yet.
func (s *Store) LoadCurrentAgent() (state.AgentConfig, bool, error) {
	var a state.AgentConfig
	var key string
	err := s.db.QueryRow(`
		SELECT name, goal, provider, model, api_key, max_iterations, temperature
		FROM current_agent WHERE id = 1`).
		Scan(&a.Name, &a.Goal, &a.Provider, &a.Model, &key, &a.MaxIterations, &a.Temperature)
	if err == sql.ErrNoRows {
		return state.AgentConfig{}, false, nil
	}
	if err != nil {
		return state.AgentConfig{}, false, fmt.Errorf("load current agent: %w", err)
	}

	a.APIKey, err = s.openKey(key)
	if err != nil {
		return state.AgentConfig{}, false, fmt.Errorf("open api key: %w", err)
	}
	return a, true, nil
}

// ListSavedAgents returns saved configurations in their original save order.
func (s *Store) ListSavedAgents() ([]state.AgentConfig, error) {
	rows, err := s.db.Query(`
		SELECT name, goal, provider, model, api_key, max_iterations, temperature
		FROM saved_agents ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list saved agents: %w", err)
	}
	defer rows.Close()

	var agents []state.AgentConfig
	for rows.Next() {
		var a state.AgentConfig
		var key string
		if err := rows.Scan(&a.Name, &a.Goal, &a.Provider, &a.Model, &key, &a.MaxIterations, &a.Temperature); err != nil {
			return nil, fmt.Errorf("scan saved agent: %w", err)
		}
		a.APIKey, err = s.openKey(key)
		if err != nil {
			return nil, fmt.Errorf("open api key for %s: %w", a.Name, err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
