// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env holds the configuration values for the application.
type Env struct {
	Region        string        `env:"AWS_REGION" envDefault:"us-east-1"`
	Table         string        `env:"DDB_TABLE,required"`
	Bucket        string        `env:"S3_BUCKET,required"`
	SenderEmail   string        `env:"SES_SENDER" envDefault:"benefits@agilehr.example"`
	PresignTTL    time.Duration `env:"PRESIGN_TTL" envDefault:"5m"`
	DevBypassAuth bool          `env:"DEV_BYPASS_AUTH" envDefault:"false"`
}

// MustLoad reads the environment and panics on missing required values;
// a Lambda with broken configuration should fail at init, not per request.
func MustLoad() Env {
	var e Env
	if err := env.Parse(&e); err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}
	return e
}
