// Package catalog holds the static provider/model table. No network call is
// ever made to a provider; the catalog only drives configuration choices.
package catalog

type Provider struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	BaseURL string   `json:"base_url"`
	Models  []string `json:"models"`
}

var providers = []Provider{
	{
		ID:      "cerebras",
		Name:    "Cerebras Inference",
		BaseURL: "https://api.cerebras.ai/v1",
		Models: []string{
			"llama-4-scout-17b-16e-instruct",
			"llama3.1-8b",
			"llama-3.3-70b",
			"qwen-3-32b",
			"deepseek-r1-distill-llama-70b",
		},
	},
	{
		ID:      "sambanova",
		Name:    "Sambanova Cloud",
		BaseURL: "https://api.sambanova.ai/v1",
		Models: []string{
			"Llama-4-Maverick-17B-128E-Instruct",
			"Llama-4-Scout-17B-16E-Instruct",
			"Meta-Llama-3.1-405B-Instruct",
			"deepseek-v3",
		},
	},
}

// Providers returns the full catalog in declaration order.
func Providers() []Provider {
	out := make([]Provider, len(providers))
	copy(out, providers)
	return out
}

// Get returns the provider with the given id, or false if unknown.
func Get(id string) (Provider, bool) {
	for _, p := range providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// Models returns the model list for a provider, nil if unknown.
func Models(providerID string) []string {
	p, ok := Get(providerID)
	if !ok {
		return nil
	}
	models := make([]string, len(p.Models))
	copy(models, p.Models)
	return models
}

// Valid reports whether model belongs to the given provider.
func Valid(providerID, model string) bool {
	p, ok := Get(providerID)
	if !ok {
		return false
	}
	for _, m := range p.Models {
		if m == model {
			return true
		}
	}
	return false
}

// DefaultProvider is the provider preselected for a fresh configuration.
const DefaultProvider = "cerebras"

// DefaultModel returns the first model of a provider, or empty if unknown.
func DefaultModel(providerID string) string {
	p, ok := Get(providerID)
	if !ok || len(p.Models) == 0 {
		return ""
	}
	return p.Models[0]
}
