// Package redis provides a Redis-backed implementation of storage.ProfileStore.
//
// Each profile is stored as a JSON document under "<prefix><subject>". The
// default prefix is "authlete:profile:". Several server instances may share
// one Redis database.
//
// Example usage:
//
//	store, err := redis.NewFromURL(ctx, "redis://localhost:6379/0", redis.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
package redis
