package pagesort

import (
	"errors"
	"io"
	"os"
)

// writePage writes a full page at pageNo*PageSize and syncs, so a read of
// the same file issued later in the pass observes the write.
func writePage(f *os.File, pageNo int, data []byte) error {
	if _, err := f.WriteAt(data, int64(pageNo)*PageSize); err != nil {
		return WrapError(ErrIO, err)
	}
	if err := f.Sync(); err != nil {
		return WrapError(ErrIO, err)
	}
	return nil
}

// readPage reads a full page at pageNo*PageSize. A short read at EOF
// leaves the tail zeroed, so a page at or past the end of the file decodes
// as a valid empty page.
func readPage(f *os.File, pageNo int) ([]byte, error) {
	data := make([]byte, PageSize)
	_, err := f.ReadAt(data, int64(pageNo)*PageSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, WrapError(ErrIO, err)
	}
	return data, nil
}

// fetchPage reads and decodes the page at pageNo.
func fetchPage(f *os.File, pageNo int) ([]Record, error) {
	data, err := readPage(f, pageNo)
	if err != nil {
		return nil, err
	}
	return ReadRecords(data)
}
