// Package config provides the runtime configuration of the circulation service: the
// application settings read from the environment, pre-tuned PostgreSQL connection pools for
// the pgx, database/sql and sqlx adapters, and the OpenTelemetry provider setup.
package config
