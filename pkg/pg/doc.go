// Package pg bootstraps the PostgreSQL layer behind the quota stores: a
// pgx/v5 connection pool with startup retries, goose schema migrations, a
// health check, and error-classification helpers.
//
// Typical wiring:
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//	    panic(err)
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    panic(err)
//	}
//
// The usage, subscription, and alert stores all take the resulting pool.
// Error helpers such as IsDuplicateKeyError and IsExclusionViolationError
// let the stores map constraint violations onto their domain errors without
// leaking SQLSTATE codes upward.
package pg
