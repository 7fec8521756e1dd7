package catalog

import "testing"

func TestProviders(t *testing.T) {
	ps := Providers()
	if len(ps) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(ps))
	}
	if ps[0].ID != "cerebras" {
		t.Errorf("expected cerebras first, got %s", ps[0].ID)
	}
	if ps[1].ID != "sambanova" {
		t.Errorf("expected sambanova second, got %s", ps[1].ID)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		want     bool
	}{
		{"cerebras", "llama3.1-8b", true},
		{"sambanova", "deepseek-v3", true},
		{"cerebras", "deepseek-v3", false},
		{"sambanova", "", false},
		{"nonexistent", "llama3.1-8b", false},
	}

	for _, tt := range tests {
		if got := Valid(tt.provider, tt.model); got != tt.want {
			t.Errorf("Valid(%q, %q) = %v, want %v", tt.provider, tt.model, got, tt.want)
		}
	}
}

func TestDefaultModel(t *testing.T) {
	if m := DefaultModel("cerebras"); m != "llama-4-scout-17b-16e-instruct" {
		t.Errorf("unexpected default cerebras model: %s", m)
	}
	if m := DefaultModel("nonexistent"); m != "" {
		t.Errorf("expected empty model for unknown provider, got %s", m)
	}
}

func TestModelsIsACopy(t *testing.T) {
	models := Models("cerebras")
	if len(models) == 0 {
		t.Fatal("expected models")
	}
	models[0] = "mutated"
	if Models("cerebras")[0] == "mutated" {
		t.Error("Models should return a copy, not the backing slice")
	}
}
