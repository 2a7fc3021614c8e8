// Package memory provides an in-memory implementation of storage.ProfileStore.
//
// Profiles are kept in a map protected by sync.RWMutex. It is suitable for
// development, testing, and single-instance deployments where persistence is
// not required. Use storage/redis when several server instances must share
// the same profiles.
//
// Example usage:
//
//	store := memory.New()
//	store.Seed(memory.DemoProfiles())
//
//	local := local.NewProvider(store)
package memory
