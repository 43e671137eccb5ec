package pagesort

import "sort"

// SerializeRecords packs records into a fresh PageSize buffer. Bytes past
// the last record are zero. Returns ErrInvalid if the records do not fit
// on a page or a value is not exactly ValSize bytes.
func SerializeRecords(records []Record) ([]byte, error) {
	if len(records) > RecordsPerPage {
		return nil, NewError(ErrInvalid)
	}
	data := make([]byte, PageSize)
	putCountWord(data[0:HeaderSize], len(records))
	for i, rec := range records {
		if len(rec.Val) != ValSize {
			return nil, NewError(ErrInvalid)
		}
		writeRecord(computeOffsets(i), data, rec)
	}
	return data, nil
}

// ReadRecords decodes a PageSize buffer into its record sequence. A count
// word exceeding RecordsPerPage means the page is corrupt; trailing bytes
// past the last record are ignored.
func ReadRecords(data []byte) ([]Record, error) {
	numRecords := getCountWord(data[0:HeaderSize])
	if numRecords > RecordsPerPage {
		return nil, NewError(ErrCorrupted)
	}
	records := make([]Record, 0, numRecords)
	for i := 0; i < int(numRecords); i++ {
		records = append(records, readRecord(computeOffsets(i), data))
	}
	return records, nil
}

// pageBuf holds one page's worth of decoded records. It does not own the
// encoded page bytes; it is filled by fetchPage and drained by the merge
// loop's flushes.
type pageBuf struct {
	records []Record
}

func newPageBuf() *pageBuf {
	return &pageBuf{records: make([]Record, 0, RecordsPerPage)}
}

// sort orders the records ascending by key. The sort is stable so records
// with equal keys keep their in-page order.
func (p *pageBuf) sort() {
	sort.SliceStable(p.records, func(a, b int) bool {
		return p.records[a].Key < p.records[b].Key
	})
}

func (p *pageBuf) push(rec Record) {
	p.records = append(p.records, rec)
}

func (p *pageBuf) clear() {
	p.records = p.records[:0]
}

func (p *pageBuf) len() int {
	return len(p.records)
}
