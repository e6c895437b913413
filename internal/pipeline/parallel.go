package pipeline

import (
	"runtime"
	"sync"

	"github.com/inodb/dbass-tools/internal/classify"
	"github.com/inodb/dbass-tools/internal/dbass"
)

// RowFunc turns an input record into output fields. Label is only set by
// the classifier.
type RowFunc func(rec *dbass.Record) (fields []string, label classify.Label, err error)

// WorkItem is a record tagged with its position in the input stream.
type WorkItem struct {
	Seq    int
	Record *dbass.Record
}

// WorkResult is the outcome of running a RowFunc on one WorkItem.
type WorkResult struct {
	Seq    int
	Record *dbass.Record
	Fields []string
	Label  classify.Label
	Err    error
}

// Process applies fn to items on a pool of workers (runtime.NumCPU() when
// workers is 0) and sends results in completion order. Workers stop when
// items is closed or done is closed; the result channel is closed after the
// last worker exits. A nil done never fires.
func Process(done <-chan struct{}, items <-chan WorkItem, workers int, fn RowFunc) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make(chan WorkResult, 2*workers)

	work := func() {
		for {
			var item WorkItem
			var ok bool
			select {
			case <-done:
				return
			case item, ok = <-items:
				if !ok {
					return
				}
			}

			res := WorkResult{Seq: item.Seq, Record: item.Record}
			res.Fields, res.Label, res.Err = fn(item.Record)

			select {
			case <-done:
				return
			case results <- res:
			}
		}
	}

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work()
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// reorderBuffer releases results by ascending Seq, holding back any that
// arrive ahead of a gap.
type reorderBuffer struct {
	next int
	held map[int]WorkResult
}

// add stores r and returns the run of results that is now contiguous.
func (b *reorderBuffer) add(r WorkResult) []WorkResult {
	if b.held == nil {
		b.held = make(map[int]WorkResult)
	}
	b.held[r.Seq] = r

	var ready []WorkResult
	for {
		rr, ok := b.held[b.next]
		if !ok {
			return ready
		}
		delete(b.held, b.next)
		b.next++
		ready = append(ready, rr)
	}
}

// OrderedCollect calls fn on every result in Seq order, starting at 0, and
// returns the first error fn reports. After an error the remaining results
// are discarded until the channel closes, so workers are never left blocked.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	var buf reorderBuffer
	for r := range results {
		for _, rr := range buf.add(r) {
			if err := fn(rr); err != nil {
				for range results {
				}
				return err
			}
		}
	}
	return nil
}
