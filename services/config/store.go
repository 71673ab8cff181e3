package config

import (
	"sync/atomic"
)

// Store holds the current configuration snapshot. Reads never block and
// Replace swaps the whole snapshot at once, so readers observe either the
// fully old or fully new configuration, never a mix.
type Store struct {
	v atomic.Pointer[Config]
}

func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.v.Store(cfg)
	return s
}

func (s *Store) Read() *Config {
	return s.v.Load()
}

func (s *Store) Replace(cfg *Config) {
	s.v.Store(cfg)
}
