// Package pagesort implements a two-phase external merge sort over files
// of fixed-size pages, the classical algorithm used by database storage
// engines to sort datasets larger than main memory.
//
// A page is 4096 bytes: an 8-byte record count followed by a packed array
// of (int32 key, 4-byte value) records. Pass 0 sorts the records within
// each page; every later pass merges pairs of adjacent runs through three
// page buffers (two input, one output), alternating between two scratch
// files until a single run covers the whole file.
//
// Basic usage:
//
//	err := pagesort.SortFile("/path/to/input", "/path/to/output")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Lower-level control:
//
//	s := pagesort.NewSorter()
//	if err := s.Open("/path/to/input"); err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	numPages, err := s.InputPages()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := s.SortAll(numPages); err != nil {
//	    log.Fatal(err)
//	}
package pagesort
