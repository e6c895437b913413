package pipeline

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/dbass-tools/internal/classify"
	"github.com/inodb/dbass-tools/internal/dbass"
)

var testHeader = dbass.NewHeader([]string{dbass.ColGeneName, dbass.ColNucleotideSequence})

// echoRow returns the gene name of the record.
func echoRow(rec *dbass.Record) ([]string, classify.Label, error) {
	gene, err := rec.Get(dbass.ColGeneName)
	return []string{gene}, "", err
}

func makeItems(n int) <-chan WorkItem {
	ch := make(chan WorkItem, n)
	for i := range n {
		ch <- WorkItem{
			Seq:    i,
			Record: dbass.NewRecord(testHeader, i+2, []string{strconv.Itoa(i), "acgt"}),
		}
	}
	close(ch)
	return ch
}

func TestProcess_OrderPreservation(t *testing.T) {
	results := Process(nil, makeItems(200), 8, echoRow)

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		require.NoError(t, r.Err)
		collected = append(collected, r.Seq)
		assert.Equal(t, []string{strconv.Itoa(r.Seq)}, r.Fields)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestProcess_SingleWorker(t *testing.T) {
	results := Process(nil, makeItems(50), 1, echoRow)

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 50)
	for i, seq := range collected {
		assert.Equal(t, i, seq)
	}
}

func TestProcess_RecordPreserved(t *testing.T) {
	results := Process(nil, makeItems(10), 4, echoRow)

	err := OrderedCollect(results, func(r WorkResult) error {
		// Line was set to the sequence number plus the header offset in makeItems
		assert.Equal(t, r.Seq+2, r.Record.Line)
		return nil
	})
	require.NoError(t, err)
}

func TestProcess_EmptyInput(t *testing.T) {
	ch := make(chan WorkItem)
	close(ch)
	results := Process(nil, ch, 4, echoRow)

	count := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOrderedCollect_EarlyError(t *testing.T) {
	results := Process(nil, makeItems(100), 4, echoRow)

	count := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		count++
		if count == 5 {
			return fmt.Errorf("stop at 5")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 5, count)
}

func TestProcess_RowErrors(t *testing.T) {
	failOdd := func(rec *dbass.Record) ([]string, classify.Label, error) {
		if rec.Line%2 == 1 {
			return nil, "", fmt.Errorf("odd line %d", rec.Line)
		}
		return echoRow(rec)
	}

	results := Process(nil, makeItems(10), 3, failOdd)

	failed := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		if r.Err != nil {
			failed++
			assert.Nil(t, r.Fields)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, failed)
}

func TestProcess_StopsWhenDone(t *testing.T) {
	done := make(chan struct{})
	items := make(chan WorkItem) // never closed

	results := Process(done, items, 4, echoRow)
	close(done)

	count := 0
	for range results {
		count++
	}
	assert.Equal(t, 0, count)
}

func TestReorderBuffer(t *testing.T) {
	var b reorderBuffer

	assert.Empty(t, b.add(WorkResult{Seq: 2}))
	assert.Empty(t, b.add(WorkResult{Seq: 1}))

	ready := b.add(WorkResult{Seq: 0})
	require.Len(t, ready, 3)
	for i, r := range ready {
		assert.Equal(t, i, r.Seq)
	}

	ready = b.add(WorkResult{Seq: 3})
	require.Len(t, ready, 1)
	assert.Equal(t, 3, ready[0].Seq)
	assert.Empty(t, b.held)
}
