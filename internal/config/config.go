package config

import (
	"fmt"
	"time"

	"revenue-ledger/internal/domain"

	"github.com/caarlos0/env/v11"
)

type DB struct {
	URL             string        `env:"DATABASE_URL,required"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"16"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"8"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"15m"`
}

type Kafka struct {
	Enabled          bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	BootstrapServers string `env:"KAFKA_BOOTSTRAP_SERVERS" envDefault:"localhost:9092"`
	Topic            string `env:"KAFKA_LEDGER_TOPIC" envDefault:"ledger-events"`
}

// Split carries the authoritative split percentages. DeclaredSplits holds
// external copies of the same percentages (format "label:a/b/c") that the
// audit compares against the authoritative policy for drift; they are never
// used to compute anything.
type Split struct {
	Beneficiary    int64    `env:"SPLIT_BENEFICIARY_PERCENT" envDefault:"50"`
	Infrastructure int64    `env:"SPLIT_INFRASTRUCTURE_PERCENT" envDefault:"30"`
	Operator       int64    `env:"SPLIT_OPERATOR_PERCENT" envDefault:"20"`
	PolicyVersion  string   `env:"SPLIT_POLICY_VERSION" envDefault:"v1"`
	DeclaredSplits []string `env:"DECLARED_SPLITS" envSeparator:","`
}

type Config struct {
	Port  string `env:"PORT" envDefault:"8080"`
	DB    DB
	Kafka Kafka
	Split Split
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Policy constructs the single authoritative SplitPolicy for the process.
func (c *Config) Policy() (domain.SplitPolicy, error) {
	return domain.NewSplitPolicy(
		c.Split.Beneficiary,
		c.Split.Infrastructure,
		c.Split.Operator,
		c.Split.PolicyVersion,
	)
}

// DeclaredPolicies parses the configured external split declarations.
func (c *Config) DeclaredPolicies() ([]domain.DeclaredPolicy, error) {
	declared := make([]domain.DeclaredPolicy, 0, len(c.Split.DeclaredSplits))
	for _, s := range c.Split.DeclaredSplits {
		d, err := domain.ParseDeclaredSplit(s)
		if err != nil {
			return nil, fmt.Errorf("DECLARED_SPLITS: %w", err)
		}
		declared = append(declared, d)
	}
	return declared, nil
}
