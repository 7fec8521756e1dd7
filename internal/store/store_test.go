package store

import (
	"path/filepath"
	"testing"

	"github.com/agentgpt/agentgpt/internal/config"
	"github.com/agentgpt/agentgpt/internal/state"
	"github.com/agentgpt/agentgpt/internal/vault"
)

func newTestStore(t *testing.T, v *vault.Vault) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(config.StoreConfig{Path: filepath.Join(dir, "test.db")}, v)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPersistRoundTrip(t *testing.T) {
	s := newTestStore(t, nil)

	agent := state.AgentConfig{
		Name: "Test Bot", Goal: "Demo", Provider: "cerebras",
		Model: "llama3.1-8b", APIKey: "sk-1", MaxIterations: 5, Temperature: 0.7,
	}
	saved := []state.AgentConfig{
		{Name: "First", Goal: "A", Provider: "cerebras", Model: "llama3.1-8b", MaxIterations: 3, Temperature: 0.2},
		{Name: "Second", Goal: "B", Provider: "sambanova", Model: "deepseek-v3", MaxIterations: 7, Temperature: 0.9},
	}

	if err := s.Persist(agent, saved); err != nil {
		t.Fatalf("persist: %v", err)
	}

	got, ok, err := s.LoadCurrentAgent()
	if err != nil {
		t.Fatalf("load current: %v", err)
	}
	if !ok {
		t.Fatal("expected current agent")
	}
	if got != agent {
		t.Errorf("got %+v, want %+v", got, agent)
	}

	gotSaved, err := s.ListSavedAgents()
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if len(gotSaved) != 2 {
		t.Fatalf("expected 2 saved agents, got %d", len(gotSaved))
	}
	if gotSaved[0].Name != "First" || gotSaved[1].Name != "Second" {
		t.Errorf("save order not preserved: %+v", gotSaved)
	}
}

func TestPersistReplacesSavedList(t *testing.T) {
	s := newTestStore(t, nil)

	agent := state.AgentConfig{Name: "A", Goal: "G", Provider: "cerebras", Model: "m", MaxIterations: 5, Temperature: 0.7}

	if err := s.Persist(agent, []state.AgentConfig{{Name: "One"}, {Name: "Two"}}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := s.Persist(agent, []state.AgentConfig{{Name: "Two"}}); err != nil {
		t.Fatalf("persist: %v", err)
	}

	saved, err := s.ListSavedAgents()
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if len(saved) != 1 || saved[0].Name != "Two" {
		t.Errorf("expected only Two, got %+v", saved)
	}
}

func TestLoadCurrentAgentEmpty(t *testing.T) {
	s := newTestStore(t, nil)

	_, ok, err := s.LoadCurrentAgent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no persisted agent in fresh store")
	}
}

func TestAPIKeyEncryptedAtRest(t *testing.T) {
	v := vault.New("test-passphrase")
	s := newTestStore(t, v)

	agent := state.AgentConfig{
		Name: "Bot", Goal: "G", Provider: "cerebras",
		Model: "m", APIKey: "sk-very-secret", MaxIterations: 5, Temperature: 0.7,
	}
	if err := s.Persist(agent, nil); err != nil {
		t.Fatalf("persist: %v", err)
	}

	// Raw column must not contain the plaintext key
	var raw string
	if err := s.db.QueryRow(`SELECT api_key FROM current_agent WHERE id = 1`).Scan(&raw); err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if raw == "sk-very-secret" {
		t.Error("api key stored in the clear despite vault")
	}

	got, ok, err := s.LoadCurrentAgent()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.APIKey != "sk-very-secret" {
		t.Errorf("decrypted key mismatch: %q", got.APIKey)
	}
}
