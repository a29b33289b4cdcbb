// Package redis provides Redis connection management with environment-based
// configuration, retrying connect logic and a healthcheck helper.
//
// In quotakit, Redis backs the shared plan resolution cache so that limit
// lookups on the hot quota path avoid re-reading the plan source.
//
// # Usage
//
//	import (
//	    "github.com/fleetward/quotakit/pkg/config"
//	    "github.com/fleetward/quotakit/pkg/plan"
//	    "github.com/fleetward/quotakit/pkg/redis"
//	)
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	resolver, err := plan.NewResolver(ctx, source, subs,
//	    plan.WithCache(plan.NewRedisCache(client), 5*time.Minute))
//
// Connect retries with a fixed interval until the server responds or the
// configured timeout elapses, so services can start before Redis is ready.
package redis
