// Package pipeline streams DBASS records through the allele reconstructor or
// the splice event classifier and writes the results in input order.
//
// A record that cannot be processed is logged and left out of the output;
// the rest of the stream is still processed.
package pipeline

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/inodb/dbass-tools/internal/allele"
	"github.com/inodb/dbass-tools/internal/classify"
	"github.com/inodb/dbass-tools/internal/dbass"
)

// RecordSource yields DBASS records. Next returns nil, nil at the end.
type RecordSource interface {
	Next() (*dbass.Record, error)
}

// RowWriter writes tab-delimited rows.
type RowWriter interface {
	WriteHeader() error
	Write(values []string) error
	Flush() error
}

// Stats summarizes a pipeline run.
type Stats struct {
	Rows    int
	Written int
	Skipped int
	Labels  map[classify.Label]int
}

// Runner drives records from a source through a row function to a writer.
type Runner struct {
	workers int
	logger  *zap.Logger
}

// NewRunner creates a runner that uses one worker per CPU.
func NewRunner() *Runner {
	return &Runner{logger: zap.NewNop()}
}

// SetWorkers sets the number of concurrent workers. Zero means runtime.NumCPU().
func (r *Runner) SetWorkers(n int) {
	r.workers = n
}

// SetLogger sets the logger for warning and info messages.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Derive replaces the NucleotideSequence column of every record with the
// requested allele and echoes all other columns.
func (r *Runner) Derive(src RecordSource, w RowWriter, a allele.Allele) (*Stats, error) {
	return r.run(src, w, func(rec *dbass.Record) ([]string, classify.Label, error) {
		seq, err := rec.Get(dbass.ColNucleotideSequence)
		if err != nil {
			return nil, "", err
		}
		derived, err := allele.Reconstruct(seq, a)
		if err != nil {
			return nil, "", err
		}
		fields, err := rec.With(dbass.ColNucleotideSequence, derived)
		return fields, "", err
	})
}

// Label classifies every record and writes Gene, Alteration,
// NucleotideSequence, Label and SpliceSiteType.
func (r *Runner) Label(src RecordSource, w RowWriter, c *classify.Classifier) (*Stats, error) {
	return r.run(src, w, func(rec *dbass.Record) ([]string, classify.Label, error) {
		var values [4]string
		for i, col := range []string{
			dbass.ColGeneName,
			dbass.ColAlteration,
			dbass.ColNucleotideSequence,
			dbass.ColComment,
		} {
			v, err := rec.Get(col)
			if err != nil {
				return nil, "", err
			}
			values[i] = v
		}
		gene, alteration, seq, comment := values[0], values[1], values[2], values[3]

		label := c.Classify(seq, comment)
		return []string{gene, alteration, seq, string(label), string(c.SiteType())}, label, nil
	})
}

func (r *Runner) run(src RecordSource, w RowWriter, fn RowFunc) (*Stats, error) {
	if err := w.WriteHeader(); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	workers := r.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	items := make(chan WorkItem, 2*workers)
	// done stops the reader and the workers once the output has failed.
	done := make(chan struct{})
	readerDone := make(chan struct{})
	var readErr error

	go func() {
		defer close(readerDone)
		defer close(items)
		for seq := 0; ; seq++ {
			rec, err := src.Next()
			if err != nil {
				readErr = fmt.Errorf("read record: %w", err)
				return
			}
			if rec == nil {
				return
			}
			select {
			case items <- WorkItem{Seq: seq, Record: rec}:
			case <-done:
				return
			}
		}
	}()

	stats := &Stats{Labels: make(map[classify.Label]int)}
	results := Process(done, items, workers, fn)

	err := OrderedCollect(results, func(res WorkResult) error {
		stats.Rows++
		if res.Err != nil {
			stats.Skipped++
			r.logger.Warn("skipping record",
				zap.Int("line", res.Record.Line),
				zap.Error(res.Err))
			return nil
		}
		if err := w.Write(res.Fields); err != nil {
			close(done)
			return fmt.Errorf("write line %d: %w", res.Record.Line, err)
		}
		stats.Written++
		if res.Label != "" {
			stats.Labels[res.Label]++
		}
		return nil
	})
	<-readerDone
	if err != nil {
		return stats, err
	}

	if readErr != nil {
		return stats, readErr
	}

	if stats.Rows == 0 {
		r.logger.Info("0 records processed")
	}

	return stats, w.Flush()
}
