package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mmr-tortoise/composectl/internal/model"
)

// defaultPollInterval is how often a held file lock is retried.
const defaultPollInterval = 200 * time.Millisecond

// Locker grants exclusive access to the runtime state of one project.
type Locker interface {
	// Lock blocks until the lock is held or ctx ends, and returns the
	// function that releases it.
	Lock(ctx context.Context) (func() error, error)
}

// processMutexes holds one mutex per lock name, shared by every locker in
// the process.
var processMutexes sync.Map

func processMutex(name string) *sync.Mutex {
	mu, _ := processMutexes.LoadOrStore(name, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ProcessLocker serializes controllers within one process.
type ProcessLocker struct {
	mu *sync.Mutex
}

// NewProcessLocker returns a locker private to the caller.
func NewProcessLocker() *ProcessLocker {
	return &ProcessLocker{mu: &sync.Mutex{}}
}

// Lock acquires the mutex. ctx is not observed.
func (l *ProcessLocker) Lock(context.Context) (func() error, error) {
	l.mu.Lock()
	return func() error {
		l.mu.Unlock()
		return nil
	}, nil
}

// FileLocker is a named lock shared across processes through an advisory
// lock on a file, plus an in-process mutex for callers in the same
// process. On platforms without flock only the in-process mutex applies.
type FileLocker struct {
	// Path is the lock file. It is created if missing and never removed.
	Path string

	// Timeout bounds the wait. Zero waits until ctx ends.
	Timeout time.Duration

	// PollInterval is the retry interval while the lock is held elsewhere.
	PollInterval time.Duration
}

// LockPath returns the lock file path for a project in dir.
func LockPath(dir, project string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "composectl-"+project+".lock")
}

// Lock acquires the in-process mutex, then the file lock.
func (l *FileLocker) Lock(ctx context.Context) (func() error, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	mu := processMutex(l.Path)
	if err := lockMutex(ctx, mu, l.interval()); err != nil {
		return nil, l.waitError(err)
	}

	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		mu.Unlock()
		return nil, model.WrapCLIError(model.KindConfig,
			fmt.Sprintf("failed to open lock file %s", l.Path), err)
	}

	logged := false
	for {
		ok, err := tryLockFile(f)
		if err != nil {
			f.Close()
			mu.Unlock()
			return nil, model.WrapCLIError(model.KindConfig,
				fmt.Sprintf("failed to lock %s", l.Path), err)
		}
		if ok {
			break
		}
		if !logged {
			logrus.WithField("lock", l.Path).Info("Waiting for another composectl invocation to finish")
			logged = true
		}
		select {
		case <-ctx.Done():
			f.Close()
			mu.Unlock()
			return nil, l.waitError(ctx.Err())
		case <-time.After(l.interval()):
		}
	}

	return func() error {
		defer mu.Unlock()
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}

func (l *FileLocker) interval() time.Duration {
	if l.PollInterval > 0 {
		return l.PollInterval
	}
	return defaultPollInterval
}

func (l *FileLocker) waitError(err error) error {
	return model.WrapCLIError(model.KindLockTimeout,
		fmt.Sprintf("timed out waiting for lock %s", l.Path), err)
}

// lockMutex acquires mu, giving up when ctx ends.
func lockMutex(ctx context.Context, mu *sync.Mutex, interval time.Duration) error {
	for !mu.TryLock() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil
}
