// Package event parses the in-line variant annotations embedded in DBASS
// nucleotide sequences.
//
// An annotation is a bracketed region inside an otherwise plain sequence:
//
//	acgtAC(T>G)gt     substitution, reference T, alternate G
//	acgtAC(TTA)gt     deletion, TTA is absent from the alternate allele
//	acgtAC[TTA]gt     insertion, TTA is present in both alleles
//
// Regions are matched independently and never nested: each one runs from an
// opening bracket to the next closing bracket of the same kind.
package event

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// Kind identifies the type of an annotation event.
type Kind int

const (
	Substitution Kind = iota
	Deletion
	Insertion
)

func (k Kind) String() string {
	switch k {
	case Substitution:
		return "substitution"
	case Deletion:
		return "deletion"
	case Insertion:
		return "insertion"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// EmptyAllele marks an empty side of a substitution, e.g. (A>-).
const EmptyAllele = "-"

// Event is a single bracketed annotation found in a sequence.
type Event struct {
	Kind Kind
	// Start and End are byte offsets of the region in the scanned string,
	// delimiters included. End is exclusive.
	Start int
	End   int
	// Payload is the text between the delimiters.
	Payload string
	// Ref and Alt are set for substitutions only. An EmptyAllele side is
	// returned as the empty string.
	Ref string
	Alt string
}

// Len returns the length of the region including delimiters.
func (e Event) Len() int {
	return e.End - e.Start
}

// Open returns the opening delimiter of the event.
func (e Event) Open() byte {
	if e.Kind == Insertion {
		return '['
	}
	return '('
}

var (
	// ErrUnclosed is returned when an opening bracket has no matching closer.
	ErrUnclosed = errors.New("unclosed annotation")
	// ErrUnopened is returned for a closing bracket outside any annotation.
	ErrUnopened = errors.New("closing bracket without annotation")
	// ErrMalformedSubstitution is returned when a substitution payload holds
	// more than one '>'.
	ErrMalformedSubstitution = errors.New("malformed substitution")
)

// SyntaxError reports an annotation grammar violation at a byte offset.
type SyntaxError struct {
	Offset int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("annotation syntax error at offset %d: %v", e.Offset, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Events returns an iterator over the annotation events of seq in left to
// right order. Iteration stops after the first syntax error, which is yielded
// together with a zero Event. The iterator can be ranged over repeatedly.
func Events(seq string) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		pos := 0
		for pos < len(seq) {
			i := strings.IndexAny(seq[pos:], "([)]")
			if i < 0 {
				return
			}
			start := pos + i

			var closer byte
			switch seq[start] {
			case '(':
				closer = ')'
			case '[':
				closer = ']'
			default:
				yield(Event{}, &SyntaxError{Offset: start, Err: ErrUnopened})
				return
			}

			j := strings.IndexByte(seq[start+1:], closer)
			if j < 0 {
				yield(Event{}, &SyntaxError{Offset: start, Err: ErrUnclosed})
				return
			}
			end := start + 1 + j + 1

			ev, err := newEvent(seq[start], seq[start+1:end-1], start, end)
			if err != nil {
				yield(Event{}, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
			pos = end
		}
	}
}

// Parse returns all annotation events of seq.
func Parse(seq string) ([]Event, error) {
	var events []Event
	for ev, err := range Events(seq) {
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// Count returns the number of annotation events in seq, or an error if the
// annotation grammar is violated.
func Count(seq string) (int, error) {
	n := 0
	for _, err := range Events(seq) {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

func newEvent(open byte, payload string, start, end int) (Event, error) {
	ev := Event{Start: start, End: end, Payload: payload}

	switch strings.Count(payload, ">") {
	case 0:
		if open == '[' {
			ev.Kind = Insertion
		} else {
			ev.Kind = Deletion
		}
		return ev, nil
	case 1:
		ref, alt, _ := strings.Cut(payload, ">")
		ev.Kind = Substitution
		ev.Ref = normalizeAllele(ref)
		ev.Alt = normalizeAllele(alt)
		return ev, nil
	default:
		return Event{}, &SyntaxError{
			Offset: start,
			Err:    fmt.Errorf("%w: %q has more than one '>'", ErrMalformedSubstitution, payload),
		}
	}
}

// normalizeAllele maps the "-" placeholder to an empty allele, as done for
// MAF alleles.
func normalizeAllele(s string) string {
	if s == EmptyAllele {
		return ""
	}
	return s
}
