// Package lock provides per-team, per-name exclusive advisory file locks
// using flock(2), generalizing a single hardcoded lock file into a small
// registry keyed by lock name. Acquisition blocks; release is guaranteed via
// defer at every call site. Locks are not re-entrant.
package lock

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fractalmind/teamchat-go/internal/errors"
)

// Names recognized by the engine. Each protects a distinct piece of mutable
// state so that unrelated operations never contend with each other.
const (
	Messages       = "messages"
	Events         = "events"
	Acks           = "acks"
	DeadLetter     = "dead-letter"
	NudgeCooldown  = "nudge-cooldown"
	StateRehydrate = "state-rehydrate"
)

// Manager hands out named advisory locks rooted at a single locks directory
// (typically teams/<team>/locks). One Manager instance is safe for
// concurrent use by multiple goroutines in the same process; cross-process
// exclusion is provided by flock itself.
type Manager struct {
	dir string
	mu  sync.Mutex
	// inProcess serializes goroutines of this process per lock name before
	// they reach flock, so at most one of them at a time opens and locks
	// the named lock file.
	inProcess map[string]*sync.Mutex
}

// NewManager creates a Manager whose lock files live under dir. The
// directory is created lazily on first acquisition.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir, inProcess: make(map[string]*sync.Mutex)}
}

func (m *Manager) inProcessMutex(name string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	mu, ok := m.inProcess[name]
	if !ok {
		mu = &sync.Mutex{}
		m.inProcess[name] = mu
	}
	return mu
}

// Held represents an acquired lock. Release must be called exactly once.
type Held struct {
	file   *os.File
	inProc *sync.Mutex
}

// Acquire blocks until the named lock is held, both within this process
// (via an in-process mutex, so goroutines queue fairly) and across
// processes (via flock). Callers MUST call Release on the returned Held,
// typically via defer, on every exit path including error paths.
func (m *Manager) Acquire(name string) (*Held, error) {
	inProc := m.inProcessMutex(name)
	inProc.Lock()

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		inProc.Unlock()
		return nil, errors.NewLockError("create locks directory", err).WithName(name)
	}

	path := filepath.Join(m.dir, name+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		inProc.Unlock()
		return nil, errors.NewLockError("open lock file", err).WithName(name)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		inProc.Unlock()
		return nil, errors.NewLockError("flock", err).WithName(name)
	}

	return &Held{file: f, inProc: inProc}, nil
}

// Release unlocks and closes the underlying lock file, and releases the
// in-process mutex so the next waiter (if any) can proceed.
func (h *Held) Release() error {
	if h == nil || h.file == nil {
		return nil
	}
	err := syscall.Flock(int(h.file.Fd()), syscall.LOCK_UN)
	closeErr := h.file.Close()
	h.file = nil
	h.inProc.Unlock()
	if err != nil {
		return errors.NewLockError("funlock", err)
	}
	return closeErr
}

// With acquires the named lock, runs fn, and releases the lock on every
// return path from fn including panics propagated by fn's own recovery.
func (m *Manager) With(name string, fn func() error) error {
	held, err := m.Acquire(name)
	if err != nil {
		return err
	}
	defer func() { _ = held.Release() }()
	return fn()
}
