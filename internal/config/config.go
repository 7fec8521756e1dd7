package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	NATS      NATSConfig      `yaml:"nats"`
	Store     StoreConfig     `yaml:"store"`
	Web       WebConfig       `yaml:"web"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Vault     VaultConfig     `yaml:"vault"`
}

type NATSConfig struct {
	Port int `yaml:"port"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type SimulatorConfig struct {
	MinTaskDelay time.Duration `yaml:"min_task_delay"`
	MaxTaskDelay time.Duration `yaml:"max_task_delay"`
}

type VaultConfig struct {
	Passphrase string `yaml:"passphrase"`
}

func defaults() Config {
	return Config{
		NATS: NATSConfig{
			Port: 4222,
		},
		Store: StoreConfig{
			Path: "data/agentgpt.db",
		},
		Web: WebConfig{
			Port: 8000,
		},
		Simulator: SimulatorConfig{
			MinTaskDelay: 2 * time.Second,
			MaxTaskDelay: 5 * time.Second,
		},
	}
}

func Load() (*Config, error) {
	cfg := defaults()

	path := os.Getenv("AGENTGPT_CONFIG")
	if path == "" {
		path = "config/agentgpt.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults + env
	} else {
		// Expand environment variables in YAML
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	applyEnv(&cfg)

	if cfg.Simulator.MinTaskDelay > cfg.Simulator.MaxTaskDelay {
		return nil, fmt.Errorf("simulator: min_task_delay %s exceeds max_task_delay %s",
			cfg.Simulator.MinTaskDelay, cfg.Simulator.MaxTaskDelay)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AGENTGPT_WEB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Web.Port = port
		}
	}
	if v := os.Getenv("AGENTGPT_NATS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.NATS.Port = port
		}
	}
	if v := os.Getenv("AGENTGPT_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("AGENTGPT_VAULT_PASSPHRASE"); v != "" {
		cfg.Vault.Passphrase = v
	}
}
