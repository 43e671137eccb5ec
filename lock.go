//go:build unix

package pagesort

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// scratchLock holds an exclusive lock on a scratch directory's lock file.
// Two sorters sharing a scratch directory would overwrite each other's
// runs, so the second acquisition fails with ErrBusy instead.
type scratchLock struct {
	file *os.File
	path string
}

// acquireScratchLock opens or creates the lock file and takes a
// non-blocking exclusive flock on it.
func acquireScratchLock(path string) (*scratchLock, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, WrapError(ErrIO, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, NewError(ErrBusy)
		}
		return nil, WrapError(ErrIO, err)
	}
	return &scratchLock{file: f, path: path}, nil
}

// release drops the lock and removes the lock file. The remove happens
// before the unlock so a waiter never sees an unlocked but present file.
func (l *scratchLock) release() {
	if l.file == nil {
		return
	}
	os.Remove(l.path)
	unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	l.file = nil
}
