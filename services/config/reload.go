package config

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
)

// Reloader re-reads the config file whenever a signal arrives and swaps
// the result into the store. A failed reload is logged and dropped, the
// previous configuration stays in effect and the loop keeps waiting for
// the next signal.
type Reloader struct {
	path  string
	store *Store
	ch    <-chan os.Signal
}

func NewReloader(path string, store *Store, ch <-chan os.Signal) *Reloader {
	return &Reloader{
		path:  path,
		store: store,
		ch:    ch,
	}
}

func (s *Reloader) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-s.ch:
				if !ok {
					return
				}
				s.reload()
			}
		}
	}()
}

func (s *Reloader) reload() {
	cfg, err := Load(s.path)
	if err != nil {
		log.WithError(err).WithField("path", s.path).Warn("config reload failed, keeping previous configuration")
		return
	}
	s.store.Replace(cfg)
	log.WithField("path", s.path).Info("configuration reloaded")
}
