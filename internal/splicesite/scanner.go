// Package splicesite locates authentic splice sites in case-encoded sequences.
//
// Exonic bases are upper case and intronic bases lower case, so a donor site
// (exon to intron) is an upper case letter followed by a lower case one and an
// acceptor site (intron to exon) is the reverse.
package splicesite

import (
	"fmt"
	"regexp"
)

// Site patterns. The WithEvent variants also match when a single bracketed
// annotation sits between the two flanking letters, e.g. "C(T>G)g".
const (
	DonorPattern    = `[ACGT][acgt]`
	AcceptorPattern = `[acgt][ACGT]`

	DonorWithEventPattern    = `[A-Z](?:[\[(][^\[\]()]*[\])])?[a-z]`
	AcceptorWithEventPattern = `[a-z](?:[\[(][^\[\]()]*[\])])?[A-Z]`
)

var (
	// Default matches plain two-letter case transitions.
	Default = MustNew(DonorPattern, AcceptorPattern)
	// EventTolerant matches case transitions that may span an annotation.
	EventTolerant = MustNew(DonorWithEventPattern, AcceptorWithEventPattern)
)

// Span is the extent of a site match. End is exclusive.
type Span struct {
	Start int
	End   int
}

// Result describes the authentic site found around a novel splice position.
type Result struct {
	// Site is the matched authentic site; only meaningful when Found is set.
	Site  Span
	Found bool
	// Prev and Next are the starts of the nearest opposite-type sites before
	// and at/after the novel position, or -1 if there is none.
	Prev int
	Next int
}

// Scanner finds donor and acceptor sites using a pair of patterns.
// A Scanner is stateless and safe for concurrent use.
type Scanner struct {
	donor    *regexp.Regexp
	acceptor *regexp.Regexp
}

// New compiles a scanner from donor and acceptor patterns.
func New(donorPattern, acceptorPattern string) (*Scanner, error) {
	donor, err := regexp.Compile(donorPattern)
	if err != nil {
		return nil, fmt.Errorf("compile donor pattern: %w", err)
	}
	acceptor, err := regexp.Compile(acceptorPattern)
	if err != nil {
		return nil, fmt.Errorf("compile acceptor pattern: %w", err)
	}
	return &Scanner{donor: donor, acceptor: acceptor}, nil
}

// MustNew is like New but panics if a pattern does not compile.
func MustNew(donorPattern, acceptorPattern string) *Scanner {
	s, err := New(donorPattern, acceptorPattern)
	if err != nil {
		panic(err)
	}
	return s
}

// Donors returns all donor site matches in seq, left to right.
func (s *Scanner) Donors(seq string) []Span {
	return spans(s.donor, seq)
}

// Acceptors returns all acceptor site matches in seq, left to right.
func (s *Scanner) Acceptors(seq string) []Span {
	return spans(s.acceptor, seq)
}

// DonorAround finds the authentic donor belonging to the exon that contains
// index. The acceptors flanking index bound that exon; the donor is the first
// one starting after the upstream acceptor.
func (s *Scanner) DonorAround(seq string, index int) Result {
	return around(s.Acceptors(seq), s.Donors(seq), index)
}

// AcceptorAround is the mirror image of DonorAround: the donors flanking
// index bound the intron, and the acceptor is the first one starting after
// the upstream donor.
func (s *Scanner) AcceptorAround(seq string, index int) Result {
	return around(s.Donors(seq), s.Acceptors(seq), index)
}

func around(bounds, sites []Span, index int) Result {
	r := Result{Prev: -1, Next: -1}
	for _, b := range bounds {
		if b.Start >= index {
			r.Next = b.Start
			break
		}
		r.Prev = b.Start
	}

	for _, site := range sites {
		if site.Start > r.Prev {
			r.Site = site
			r.Found = true
			break
		}
	}
	return r
}

func spans(re *regexp.Regexp, seq string) []Span {
	matches := re.FindAllStringIndex(seq, -1)
	out := make([]Span, len(matches))
	for i, m := range matches {
		out[i] = Span{Start: m[0], End: m[1]}
	}
	return out
}
