package pagesort

import (
	"os"
	"path/filepath"
)

// Sorter is an external merge sort over one input file and two scratch
// files. Pass 0 sorts each input page in place and writes it to scratch A;
// every later pass merges pairs of runs from one scratch file into the
// other, doubling the run length, until a single run covers the file.
//
// A Sorter owns its three file handles and three page buffers from Open
// until Close. It is single-threaded; a sort either completes or aborts on
// the first I/O failure, leaving the scratch files indeterminate.
type Sorter struct {
	scratchDir string
	ownsDir    bool
	paths      [numFiles]string
	files      [numFiles]*os.File

	inputBufs [2]*pageBuf
	outputBuf *pageBuf

	// how many records a page holds
	recordsPerPage int

	lock   *scratchLock
	opened bool
}

// NewSorter creates a sorter handle. The sorter must be opened with Open
// before use.
func NewSorter() *Sorter {
	return &Sorter{
		inputBufs:      [2]*pageBuf{newPageBuf(), newPageBuf()},
		outputBuf:      newPageBuf(),
		recordsPerPage: RecordsPerPage,
	}
}

// SetScratchDir sets the directory holding the scratch files. It must be
// called before Open. If never called, Open creates a private temporary
// directory that Close removes.
func (s *Sorter) SetScratchDir(dir string) error {
	if s.opened {
		return NewError(ErrInvalid)
	}
	s.scratchDir = dir
	return nil
}

// Open opens the input file read-only, prepares the scratch directory and
// locks it, and creates both scratch files empty.
func (s *Sorter) Open(inputPath string) error {
	if s.opened {
		return NewError(ErrInvalid)
	}

	if s.scratchDir == "" {
		dir, err := os.MkdirTemp("", "pagesort-*")
		if err != nil {
			return WrapError(ErrIO, err)
		}
		s.scratchDir = dir
		s.ownsDir = true
	} else if err := os.MkdirAll(s.scratchDir, 0755); err != nil {
		return WrapError(ErrIO, err)
	}

	lock, err := acquireScratchLock(filepath.Join(s.scratchDir, LockFileName))
	if err != nil {
		s.cleanupDir()
		return err
	}
	s.lock = lock

	input, err := os.Open(inputPath)
	if err != nil {
		s.lock.release()
		s.lock = nil
		s.cleanupDir()
		return WrapError(ErrIO, err)
	}

	s.paths[fileInput] = inputPath
	s.paths[fileScratchA] = filepath.Join(s.scratchDir, ScratchAName)
	s.paths[fileScratchB] = filepath.Join(s.scratchDir, ScratchBName)
	s.files[fileInput] = input

	for _, i := range []int{fileScratchA, fileScratchB} {
		f, err := os.OpenFile(s.paths[i], os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			s.closeHandles()
			s.lock.release()
			s.lock = nil
			s.cleanupDir()
			return WrapError(ErrIO, err)
		}
		s.files[i] = f
	}

	s.opened = true
	return nil
}

// InputPages returns the page count of the input file, rounding a partial
// trailing page up.
func (s *Sorter) InputPages() (int, error) {
	if !s.opened {
		return 0, NewError(ErrInvalid)
	}
	fi, err := s.files[fileInput].Stat()
	if err != nil {
		return 0, WrapError(ErrIO, err)
	}
	return int((fi.Size() + PageSize - 1) / PageSize), nil
}

// Close releases the file handles, the scratch lock, and the scratch
// files. It is safe to call more than once.
func (s *Sorter) Close() error {
	s.closeHandles()
	if s.lock != nil {
		s.lock.release()
		s.lock = nil
	}
	if s.ownsDir {
		s.cleanupDir()
	} else if s.scratchDir != "" {
		os.Remove(s.paths[fileScratchA])
		os.Remove(s.paths[fileScratchB])
	}
	s.opened = false
	return nil
}

func (s *Sorter) closeHandles() {
	for i, f := range s.files {
		if f != nil {
			f.Close()
			s.files[i] = nil
		}
	}
}

func (s *Sorter) cleanupDir() {
	if s.ownsDir && s.scratchDir != "" {
		os.RemoveAll(s.scratchDir)
		s.scratchDir = ""
		s.ownsDir = false
	}
}

// sortPages is pass 0: each input page is fetched, sorted in place by key,
// and written as the same page number of scratch A, making every page of
// scratch A a run of length one.
func (s *Sorter) sortPages(numPages int) error {
	for i := 0; i < numPages; i++ {
		records, err := fetchPage(s.files[fileInput], i)
		if err != nil {
			return err
		}
		buf := s.inputBufs[0]
		buf.clear()
		buf.records = append(buf.records, records...)
		buf.sort()
		data, err := SerializeRecords(buf.records)
		if err != nil {
			return err
		}
		if err := writePage(s.files[fileScratchA], i, data); err != nil {
			return err
		}
	}
	return nil
}

// flushOutputBuffer serializes the output buffer as the given page of the
// destination file and clears it.
func (s *Sorter) flushOutputBuffer(dst int, outputPageNo int) error {
	data, err := SerializeRecords(s.outputBuf.records)
	if err != nil {
		return err
	}
	if err := writePage(s.files[dst], outputPageNo, data); err != nil {
		return err
	}
	s.outputBuf.clear()
	return nil
}

// mergeCursor walks the records of one run page by page. head refills the
// buffer from the run's next page whenever the current page is exhausted,
// so an empty page in the middle of a run is skipped transparently.
type mergeCursor struct {
	file *os.File
	page int // last page fetched
	end  int // last page of the run
	buf  *pageBuf
	idx  int
}

func (s *Sorter) newCursor(bufID, src, start, length int) *mergeCursor {
	buf := s.inputBufs[bufID]
	buf.clear()
	return &mergeCursor{
		file: s.files[src],
		page: start - 1,
		end:  start + length - 1,
		buf:  buf,
		idx:  0,
	}
}

func (c *mergeCursor) head() (Record, bool, error) {
	for c.idx >= c.buf.len() {
		if c.page >= c.end {
			return Record{}, false, nil
		}
		c.page++
		records, err := fetchPage(c.file, c.page)
		if err != nil {
			return Record{}, false, err
		}
		c.buf.clear()
		c.buf.records = append(c.buf.records, records...)
		c.idx = 0
	}
	return c.buf.records[c.idx], true, nil
}

func (c *mergeCursor) advance() {
	c.idx++
}

// merge merges the run of aLen pages starting at page a with the run of
// bLen pages starting at page b, both in file src, writing the merged run
// into file dst starting at page a. On equal keys the right run's record
// is emitted first. bLen may be zero, which carries the left run forward
// unchanged.
func (s *Sorter) merge(a, b, aLen, bLen, src, dst int) error {
	ca := s.newCursor(0, src, a, aLen)
	cb := s.newCursor(1, src, b, bLen)

	outputPageNo := a
	for {
		ra, okA, err := ca.head()
		if err != nil {
			return err
		}
		rb, okB, err := cb.head()
		if err != nil {
			return err
		}
		if !okA && !okB {
			break
		}
		switch {
		case okA && okB:
			if ra.Key < rb.Key {
				s.outputBuf.push(ra)
				ca.advance()
			} else {
				s.outputBuf.push(rb)
				cb.advance()
			}
		case okA:
			s.outputBuf.push(ra)
			ca.advance()
		default:
			s.outputBuf.push(rb)
			cb.advance()
		}

		if s.outputBuf.len() >= s.recordsPerPage {
			if err := s.flushOutputBuffer(dst, outputPageNo); err != nil {
				return err
			}
			outputPageNo++
		}
	}

	if s.outputBuf.len() > 0 {
		return s.flushOutputBuffer(dst, outputPageNo)
	}
	return nil
}

// recycle deletes the exhausted source file and recreates it empty, so the
// next pass writes into a clean file. Creation uses O_EXCL so a leftover
// file from another process is an error rather than silently reused.
func (s *Sorter) recycle(idx int) error {
	if err := s.files[idx].Close(); err != nil {
		return WrapError(ErrIO, err)
	}
	s.files[idx] = nil
	if err := os.Remove(s.paths[idx]); err != nil {
		return WrapError(ErrIO, err)
	}
	f, err := os.OpenFile(s.paths[idx], os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return WrapError(ErrIO, err)
	}
	s.files[idx] = f
	return nil
}

// SortAll sorts the first numPages pages of the input and returns the file
// slot (fileScratchA or fileScratchB) holding the fully sorted result.
//
// After pass 0 every page of scratch A is a run of length one. Each merge
// pass pairs adjacent runs into runs of twice the length, writing them to
// the other scratch file; the final group of a pass may have a short or
// missing right run, which keeps page counts that are not powers of two
// correct. The exhausted source file is recycled between passes.
func (s *Sorter) SortAll(numPages int) (int, error) {
	if !s.opened || numPages < 0 {
		return 0, NewError(ErrInvalid)
	}

	if err := s.sortPages(numPages); err != nil {
		return 0, err
	}

	runSize := 1
	src, dst := fileScratchA, fileScratchB
	for runSize < numPages {
		groupSize := runSize * 2
		for start := 0; start < numPages; start += groupSize {
			aLen := min(runSize, numPages-start)
			bStart := start + runSize
			bLen := 0
			if bStart < numPages {
				bLen = min(runSize, numPages-bStart)
			}
			if err := s.merge(start, bStart, aLen, bLen, src, dst); err != nil {
				return 0, err
			}
		}

		if err := s.recycle(src); err != nil {
			return 0, err
		}

		src, dst = dst, src
		runSize *= 2
	}

	// last file written to
	return src, nil
}

// SortFile sorts inputPath into outputPath. The output has the same page
// layout and the same records as the input, globally ascending by key.
func SortFile(inputPath, outputPath string) error {
	s := NewSorter()
	if err := s.Open(inputPath); err != nil {
		return err
	}
	defer s.Close()

	numPages, err := s.InputPages()
	if err != nil {
		return err
	}
	final, err := s.SortAll(numPages)
	if err != nil {
		return err
	}

	// Handles must be closed before the rename for Windows.
	finalPath := s.paths[final]
	s.closeHandles()
	if err := os.Rename(finalPath, outputPath); err != nil {
		return WrapError(ErrIO, err)
	}
	return nil
}
