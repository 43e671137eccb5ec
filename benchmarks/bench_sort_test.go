package benchmarks

// Benchmarks comparing the external merge sort against sorting the same
// records by ingesting them into bolt and rocksdb and walking the result
// in key order.

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/Giulio2002/pagesort"
	"github.com/tecbot/gorocksdb"
	bolt "go.etcd.io/bbolt"
)

const benchPages = 64

// benchRecords returns benchPages pages of random records.
func benchRecords() [][]pagesort.Record {
	rng := rand.New(rand.NewSource(99))
	pages := make([][]pagesort.Record, benchPages)
	for p := range pages {
		records := make([]pagesort.Record, pagesort.RecordsPerPage)
		for i := range records {
			v := make([]byte, pagesort.ValSize)
			rng.Read(v)
			records[i] = pagesort.Record{Key: rng.Int31() - 1<<30, Val: v}
		}
		pages[p] = records
	}
	return pages
}

// encodeKey maps an int32 key to 4 bytes that sort lexicographically in
// numeric order.
func encodeKey(k int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(k)^0x80000000)
	return b
}

// writeBenchInput writes the pages as a pagesort input file.
func writeBenchInput(b *testing.B, dir string, pages [][]pagesort.Record) string {
	b.Helper()
	path := filepath.Join(dir, "input")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		b.Fatal(err)
	}
	defer f.Close()

	for i, records := range pages {
		data, err := pagesort.SerializeRecords(records)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := f.WriteAt(data, int64(i)*pagesort.PageSize); err != nil {
			b.Fatal(err)
		}
	}
	return path
}

func BenchmarkSortFile(b *testing.B) {
	dir, err := os.MkdirTemp("", "pagesort-bench-*")
	if err != nil {
		b.Fatal(err)
	}
	defer os.RemoveAll(dir)

	input := writeBenchInput(b, dir, benchRecords())
	b.SetBytes(int64(benchPages) * pagesort.PageSize)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		output := filepath.Join(dir, fmt.Sprintf("output_%d", i))
		if err := pagesort.SortFile(input, output); err != nil {
			b.Fatal(err)
		}
		os.Remove(output)
	}
}

func BenchmarkBoltIngestSort(b *testing.B) {
	dir, err := os.MkdirTemp("", "pagesort-bench-bolt-*")
	if err != nil {
		b.Fatal(err)
	}
	defer os.RemoveAll(dir)

	pages := benchRecords()
	b.SetBytes(int64(benchPages) * pagesort.PageSize)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		path := filepath.Join(dir, fmt.Sprintf("ref_%d.db", i))
		db, err := bolt.Open(path, 0644, &bolt.Options{NoSync: true})
		if err != nil {
			b.Fatal(err)
		}
		err = db.Update(func(tx *bolt.Tx) error {
			bucket, err := tx.CreateBucket([]byte("records"))
			if err != nil {
				return err
			}
			for _, page := range pages {
				for _, rec := range page {
					if err := bucket.Put(encodeKey(rec.Key), rec.Val); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
		err = db.View(func(tx *bolt.Tx) error {
			c := tx.Bucket([]byte("records")).Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
			}
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
		db.Close()
		os.Remove(path)
	}
}

func BenchmarkRocksIngestSort(b *testing.B) {
	dir, err := os.MkdirTemp("", "pagesort-bench-rocks-*")
	if err != nil {
		b.Fatal(err)
	}
	defer os.RemoveAll(dir)

	pages := benchRecords()

	opts := gorocksdb.NewDefaultOptions()
	opts.SetCreateIfMissing(true)
	defer opts.Destroy()
	wo := gorocksdb.NewDefaultWriteOptions()
	defer wo.Destroy()
	ro := gorocksdb.NewDefaultReadOptions()
	defer ro.Destroy()

	b.SetBytes(int64(benchPages) * pagesort.PageSize)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		path := filepath.Join(dir, fmt.Sprintf("rocks_%d", i))
		db, err := gorocksdb.OpenDb(opts, path)
		if err != nil {
			b.Fatal(err)
		}

		batch := gorocksdb.NewWriteBatch()
		for _, page := range pages {
			for _, rec := range page {
				batch.Put(encodeKey(rec.Key), rec.Val)
			}
		}
		if err := db.Write(wo, batch); err != nil {
			b.Fatal(err)
		}
		batch.Destroy()

		iter := db.NewIterator(ro)
		for iter.SeekToFirst(); iter.Valid(); iter.Next() {
		}
		iter.Close()

		db.Close()
		os.RemoveAll(path)
	}
}
