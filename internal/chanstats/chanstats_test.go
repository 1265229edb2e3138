package chanstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsEmpty(t *testing.T) {

	c := New()

	r := NewReport(c)

	assert.Equal(t, "never", r.Rx.Last)
	assert.Equal(t, "never", r.Tx.Last)
	assert.Equal(t, uint64(0), r.Rx.Bytes.Count)
	assert.Equal(t, uint64(0), r.Tx.Bytes.Count)
}

func TestRecord(t *testing.T) {

	c := New()

	c.RecordTx(10)
	c.RecordTx(30)
	c.RecordRx(5)

	r := NewReport(c)

	assert.Equal(t, uint64(2), r.Tx.Bytes.Count)
	assert.Equal(t, float64(20), r.Tx.Bytes.Mean)
	assert.Equal(t, float64(10), r.Tx.Bytes.Min)
	assert.Equal(t, float64(30), r.Tx.Bytes.Max)
	assert.Equal(t, uint64(2), r.Tx.Dt.Count)

	assert.Equal(t, uint64(1), r.Rx.Bytes.Count)
	assert.Equal(t, float64(5), r.Rx.Bytes.Mean)
	assert.NotEqual(t, "never", r.Rx.Last)
}
