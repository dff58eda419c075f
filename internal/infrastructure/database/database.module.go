package database

import (
	"go.uber.org/fx"

	"mpi-core/internal/infrastructure/database/mongodb"
	"mpi-core/internal/infrastructure/database/postgres"
	"mpi-core/internal/infrastructure/database/redis"
)

// Module wires every storage backend the core depends on: Postgres for the
// patient aggregate and audit log, Redis for the get-by-id cache, MongoDB
// for the full-text blocking index.
var Module = fx.Options(
	postgres.Module,
	redis.Module,
	mongodb.Module,
)
