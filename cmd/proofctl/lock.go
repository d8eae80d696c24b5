package main

import (
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/upb/proof-layer/config"
)

const storeLockTimeout = 30 * time.Second

// acquireStoreLock serializes writers of a local SQLite store across
// processes. Other backends need no lock.
func acquireStoreLock(cfg *config.Config, timeout time.Duration) (func(), error) {
	if cfg.Storage.Backend != config.StoreBackendSQLite {
		return func() {}, nil
	}

	lockPath := cfg.Storage.SQLitePath + ".lock"
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire store lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("another ingest is in progress (lock: %s)", lockPath)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
