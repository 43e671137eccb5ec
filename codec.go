package pagesort

import "fmt"

// Byte codec for the fixed-width fields of the page format. The on-disk
// byte order is little-endian in both directions, so files written on one
// host decode identically on any other.
//
// The decode routines require the slice length to match exactly; a
// mismatch is a programmer error and panics.

// putInt32 encodes a key into a 4-byte slot.
func putInt32(b []byte, v int32) {
	if len(b) != KeySize {
		panic(fmt.Sprintf("pagesort: putInt32 on %d-byte slice", len(b)))
	}
	putUint32LE(b, uint32(v))
}

// getInt32 decodes a key from a 4-byte slot.
func getInt32(b []byte) int32 {
	if len(b) != KeySize {
		panic(fmt.Sprintf("pagesort: getInt32 on %d-byte slice", len(b)))
	}
	return int32(getUint32LE(b))
}

// putCountWord encodes the page record count into the 8-byte header slot.
// The count is zero-extended from 32 bits so the full word round-trips
// through getCountWord on any host.
func putCountWord(b []byte, n int) {
	if len(b) != HeaderSize {
		panic(fmt.Sprintf("pagesort: putCountWord on %d-byte slice", len(b)))
	}
	putUint64LE(b, uint64(uint32(n)))
}

// getCountWord decodes the record count from the 8-byte header slot.
func getCountWord(b []byte) uint64 {
	if len(b) != HeaderSize {
		panic(fmt.Sprintf("pagesort: getCountWord on %d-byte slice", len(b)))
	}
	return getUint64LE(b)
}
