package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// LoadEnv reads the MUDRA_* environment variables into an override layer.
func LoadEnv() (File, error) {
	var f File
	if err := env.Parse(&f); err != nil {
		return File{}, fmt.Errorf("parse env: %w", err)
	}
	return f, nil
}
