// Package redis provides a go-redis client with service logging, pool
// configuration, lifecycle management and a JSON-typed key store.
//
//	comp := redis.NewComponent(cfg, log)
//	_ = comp.Start(ctx)
//	store := redis.NewTypedStore[Entry](comp.Client(), "revoked")
//	created, err := store.SaveIfAbsent(ctx, key, &entry, ttl)
package redis
