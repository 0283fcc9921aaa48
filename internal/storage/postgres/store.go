package postgres

import "github.com/cory-johannsen/brawl/internal/storage"

// Store bundles the player and outcome repositories over one pool.
type Store struct {
	*PlayerRepository
	*OutcomeRepository
	pool *Pool
}

var _ storage.Store = (*Store)(nil)

// NewStore creates a Store over pool. Closing the Store closes pool.
//
// Precondition: pool must be connected and migrated.
func NewStore(pool *Pool) *Store {
	return &Store{
		PlayerRepository:  NewPlayerRepository(pool.DB()),
		OutcomeRepository: NewOutcomeRepository(pool.DB()),
		pool:              pool,
	}
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
