package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	lockFileName   = "menu.lock"
	defaultTimeout = 500 * time.Millisecond
	initialBackoff = 5 * time.Millisecond
	maxBackoff     = 50 * time.Millisecond
)

// writeLocker holds an exclusive OS lock on the store's lock file. The OS
// drops the lock when the process exits, so a crash never wedges the store.
type writeLocker struct {
	path string
	f    *os.File
}

func newWriteLocker(dir string) *writeLocker {
	return &writeLocker{path: filepath.Join(dir, lockFileName)}
}

// acquire retries with capped exponential backoff until timeout. On timeout
// the error names the process currently holding the lock.
func (l *writeLocker) acquire(timeout time.Duration) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	l.f = f

	deadline := time.Now().Add(timeout)
	for backoff := initialBackoff; ; backoff = min(backoff*2, maxBackoff) {
		if err := l.tryExclusive(); err == nil {
			l.stamp()
			return nil
		}
		if time.Now().After(deadline) {
			holder := describeHolder(l.path)
			l.f.Close()
			l.f = nil
			return fmt.Errorf("store write lock timeout after %v (holder %s)", timeout, holder)
		}
		time.Sleep(backoff)
	}
}

func (l *writeLocker) release() error {
	if l.f == nil {
		return nil
	}
	l.f.Truncate(0)
	l.unlockExclusive()
	err := l.f.Close()
	l.f = nil
	return err
}

// stamp records the holder pid so a timed-out writer can report it.
func (l *writeLocker) stamp() {
	l.f.Truncate(0)
	l.f.Seek(0, 0)
	fmt.Fprintf(l.f, "%d %s\n", os.Getpid(), time.Now().Format(time.RFC3339))
	l.f.Sync()
}

// describeHolder reads "pid timestamp" from the lock file.
func describeHolder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return "unknown"
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return "unknown"
	}
	if !processAlive(pid) {
		return fmt.Sprintf("pid %d since %s, process gone", pid, fields[1])
	}
	return fmt.Sprintf("pid %d since %s", pid, fields[1])
}
