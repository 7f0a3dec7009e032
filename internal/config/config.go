package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level tallybook.yaml configuration.
type Config struct {
	Business     BusinessConfig `yaml:"business"`
	GST          GSTConfig      `yaml:"gst"`
	Match        MatchConfig    `yaml:"match"`
	BankAccounts []BankAccount  `yaml:"bank_accounts,omitempty"`
	Git          GitConfig      `yaml:"git"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
}

// GSTConfig controls the GST split.
type GSTConfig struct {
	Rate             float64 `yaml:"rate"`
	PaidAccount      int     `yaml:"paid_account"`
	CollectedAccount int     `yaml:"collected_account"`
}

// MatchConfig tunes the reconciliation matching engine.
type MatchConfig struct {
	WindowDays int `yaml:"window_days"`
}

// BankAccount maps a bank statement feed to a chart-of-accounts entry.
type BankAccount struct {
	Name      string `yaml:"name"`
	LastFour  string `yaml:"last_four"`
	AccountID int    `yaml:"account_id"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tallybook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new book.
func Default(businessName, entityType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		GST: GSTConfig{
			Rate:             0.10,
			PaidAccount:      1310,
			CollectedAccount: 2310,
		},
		Match: MatchConfig{
			WindowDays: 5,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Tallybook",
			AuthorEmail: "book@tallybook.dev",
		},
	}
}

// ResolveAccount maps a statement account number to a ledger account ID by
// last-four digits. Zero means no mapping.
func (c *Config) ResolveAccount(accountNumber string) int {
	digits := lastFour(accountNumber)
	if digits == "" {
		return 0
	}
	for _, ba := range c.BankAccounts {
		if ba.LastFour == digits {
			return ba.AccountID
		}
	}
	return 0
}

func lastFour(s string) string {
	var digits []rune
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}
