// Package storage provides the profile store used by the local claim provider.
//
// Implementations are provided in subpackages:
//   - storage/memory: In-memory storage for development and testing
//   - storage/redis: Redis-backed storage shared between instances
//   - storage/mock: Mock storage for unit testing
package storage
