//go:build unix

package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestWriteLockerAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	l := newWriteLocker(dir)
	if err := l.acquire(500 * time.Millisecond); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, lockFileName))
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if len(data) == 0 {
		t.Error("lock file should hold the holder pid")
	}

	if err := l.release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := l.release(); err != nil {
		t.Fatalf("second release failed: %v", err)
	}
}

func TestWriteLockerTimeout(t *testing.T) {
	dir := t.TempDir()
	holder := newWriteLocker(dir)
	if err := holder.acquire(time.Second); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer holder.release()

	waiter := newWriteLocker(dir)
	err := waiter.acquire(30 * time.Millisecond)
	if err == nil {
		waiter.release()
		t.Fatal("second acquire should time out")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("error = %v, want timeout", err)
	}
}

func TestConcurrentSets(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if err := s.Set("rows", "[]"); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
