// Package allele derives explicit reference or alternate nucleotide sequences
// from DBASS sequences carrying in-line variant annotations.
package allele

import (
	"fmt"
	"strings"

	"github.com/inodb/dbass-tools/internal/event"
)

// Allele selects which side of the annotated variants to reconstruct.
type Allele int

const (
	Alternate Allele = iota
	Reference
)

func (a Allele) String() string {
	if a == Reference {
		return "reference"
	}
	return "alternate"
}

var insertionBrackets = strings.NewReplacer("[", "", "]", "")

// Reconstruct rewrites seq so that it spells out the requested allele.
//
// Insertion brackets are dropped first and their bases kept in both alleles.
// The remaining events are located once in the bracket-free string and then
// applied left to right. delta tracks how far the rewritten string has drifted
// from the offsets recorded by the parser.
func Reconstruct(seq string, a Allele) (string, error) {
	out := insertionBrackets.Replace(seq)

	events, err := event.Parse(out)
	if err != nil {
		return "", fmt.Errorf("parse annotations: %w", err)
	}

	delta := 0
	for _, ev := range events {
		start := ev.Start + delta
		end := ev.End + delta
		replacement := rewrite(ev, a)
		out = out[:start] + replacement + out[end:]
		delta += len(replacement) - ev.Len()
	}

	return out, nil
}

// rewrite returns the text that replaces the event's region, delimiters
// included.
func rewrite(ev event.Event, a Allele) string {
	switch ev.Kind {
	case event.Substitution:
		if a == Reference {
			return ev.Ref
		}
		return ev.Alt
	case event.Deletion:
		if a == Reference {
			return ev.Payload
		}
		return ""
	default:
		return ev.Payload
	}
}
