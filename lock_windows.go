//go:build windows

package pagesort

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// scratchLock holds an exclusive lock on a scratch directory's lock file.
// Two sorters sharing a scratch directory would overwrite each other's
// runs, so the second acquisition fails with ErrBusy instead.
type scratchLock struct {
	file *os.File
	path string
}

// acquireScratchLock opens or creates the lock file and locks its first
// byte exclusively without blocking.
func acquireScratchLock(path string) (*scratchLock, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, WrapError(ErrIO, err)
	}
	handle := windows.Handle(f.Fd())
	var overlapped windows.Overlapped
	err = windows.LockFileEx(handle,
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, 1, 0, &overlapped)
	if err != nil {
		f.Close()
		if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
			return nil, NewError(ErrBusy)
		}
		return nil, WrapError(ErrIO, err)
	}
	return &scratchLock{file: f, path: path}, nil
}

// release drops the lock and removes the lock file.
func (l *scratchLock) release() {
	if l.file == nil {
		return
	}
	handle := windows.Handle(l.file.Fd())
	var overlapped windows.Overlapped
	windows.UnlockFileEx(handle, 0, 1, 0, &overlapped)
	l.file.Close()
	os.Remove(l.path)
	l.file = nil
}
