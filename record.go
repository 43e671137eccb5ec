package pagesort

// Record is one fixed-width key/value pair. Val is always exactly ValSize
// bytes; the payload is opaque to the sorter.
type Record struct {
	Key int32
	Val []byte
}

// rowOffsets locates one record's fields within a page.
//
// Memory layout (little-endian):
//
//	Offset        Size  Field
//	0             8     record count
//	8 + i*8       4     key of record i
//	8 + i*8 + 4   4     value of record i
type rowOffsets struct {
	keyOffset int
	valOffset int
	rowEnd    int
}

// computeOffsets returns the field offsets for the given row index.
func computeOffsets(row int) rowOffsets {
	keyOffset := HeaderSize + row*RecordSize
	valOffset := keyOffset + KeySize
	return rowOffsets{
		keyOffset: keyOffset,
		valOffset: valOffset,
		rowEnd:    valOffset + ValSize,
	}
}

// readRecord decodes the record at the given offsets. The value bytes are
// copied out so the record does not alias the page buffer.
func readRecord(off rowOffsets, data []byte) Record {
	val := make([]byte, ValSize)
	copy(val, data[off.valOffset:off.rowEnd])
	return Record{
		Key: getInt32(data[off.keyOffset:off.valOffset]),
		Val: val,
	}
}

// writeRecord encodes a record at the given offsets.
func writeRecord(off rowOffsets, data []byte, rec Record) {
	putInt32(data[off.keyOffset:off.valOffset], rec.Key)
	copy(data[off.valOffset:off.rowEnd], rec.Val)
}
