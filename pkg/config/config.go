package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env contient les valeurs par défaut lues dans l'environnement (préfixe COHORT_).
// Les flags de la ligne de commande les surchargent.
type Env struct {
	DSN            string `envconfig:"DSN"`
	Timezone       string `envconfig:"TIMEZONE" default:"UTC"`
	DaysPerBucket  int    `envconfig:"DAYS_PER_BUCKET" default:"7"`
	Limit          int    `envconfig:"LIMIT" default:"0"`
	Verbosity      int    `envconfig:"VERBOSITY" default:"0"`
	CustomersTable string `envconfig:"CUSTOMERS_TABLE" default:"customers"`
	OrdersTable    string `envconfig:"ORDERS_TABLE" default:"orders"`
}

// Load lit l'environnement.
func Load() (*Env, error) {
	var env Env
	if err := envconfig.Process("COHORT", &env); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if env.DaysPerBucket <= 0 {
		return nil, fmt.Errorf("COHORT_DAYS_PER_BUCKET must be greater than 0, got %d", env.DaysPerBucket)
	}
	return &env, nil
}
