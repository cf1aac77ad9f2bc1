package dataset

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"
)

const (
	tagMissing byte = 0
	tagNumber  byte = 1
	tagString  byte = 2
)

// RowKey returns a canonical byte encoding of row i. Two rows have equal
// keys exactly when every cell is equal (missing equals missing).
func (d *Dataset) RowKey(i int) []byte {
	buf := make([]byte, 0, 16*len(d.cols))
	var tmp [8]byte
	for _, c := range d.cols {
		if c.Missing(i) {
			buf = append(buf, tagMissing)
			continue
		}
		if c.IsNumeric() {
			binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(c.nums[i]))
			buf = append(buf, tagNumber)
			buf = append(buf, tmp[:]...)
			continue
		}
		s := c.strs[i]
		binary.LittleEndian.PutUint64(tmp[:], uint64(len(s)))
		buf = append(buf, tagString)
		buf = append(buf, tmp[:]...)
		buf = append(buf, s...)
	}
	return buf
}

// RowHash returns the xxh3 hash of RowKey(i).
func (d *Dataset) RowHash(i int) uint64 { return xxh3.Hash(d.RowKey(i)) }

// RowsEqual compares rows i and j cell by cell.
func (d *Dataset) RowsEqual(i, j int) bool {
	for _, c := range d.cols {
		if !cellsEqual(c, i, c, j) {
			return false
		}
	}
	return true
}

// DuplicateMask marks every row that equals an earlier row. Rows are
// bucketed by hash and then compared exactly, so hash collisions never merge
// distinct rows.
func (d *Dataset) DuplicateMask() []bool {
	dup := make([]bool, d.rows)
	buckets := make(map[uint64][]int, d.rows)
	for i := 0; i < d.rows; i++ {
		h := d.RowHash(i)
		for _, j := range buckets[h] {
			if d.RowsEqual(i, j) {
				dup[i] = true
				break
			}
		}
		if !dup[i] {
			buckets[h] = append(buckets[h], i)
		}
	}
	return dup
}

// DuplicateCount returns the number of rows equal to an earlier row.
func (d *Dataset) DuplicateCount() int {
	n := 0
	for _, isDup := range d.DuplicateMask() {
		if isDup {
			n++
		}
	}
	return n
}
