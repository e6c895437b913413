// Package classify labels aberrant splicing events by their position relative
// to the authentic splice site and to the novel junction.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/inodb/dbass-tools/internal/event"
	"github.com/inodb/dbass-tools/internal/splicesite"
)

// Label is the outcome of classifying one record.
type Label string

const (
	Pseudoexon   Label = "pseudoexon"
	Unclear      Label = "unclear"
	Insufficient Label = "insufficient"
	Cryptic      Label = "cryptic"
	Trans        Label = "trans"
	DeNovo       Label = "denovo"
)

// Labels lists every label in rule order.
var Labels = []Label{Pseudoexon, Unclear, Insufficient, Cryptic, Trans, DeNovo}

// SiteType is the kind of splice site a record set describes.
type SiteType string

const (
	Donor    SiteType = "donor"
	Acceptor SiteType = "acceptor"
)

// ParseSiteType validates a splice site type name.
func ParseSiteType(s string) (SiteType, error) {
	switch SiteType(s) {
	case Donor, Acceptor:
		return SiteType(s), nil
	}
	return "", fmt.Errorf("invalid splice site type %q (want %q or %q)", s, Donor, Acceptor)
}

// Distance windows, in nucleotides.
const (
	// AuthenticOffset is added to the gap between the event and the
	// authentic site.
	AuthenticOffset = 2
	CrypticMin      = -3
	CrypticMax      = 6
	// Events further than this from the novel junction are labelled trans.
	NovelMin = -2
	NovelMax = 5
)

// NovelJunction marks the aberrant splice position in a sequence.
const NovelJunction = "/"

var pseudoexonComment = regexp.MustCompile(`(?i)pseudo ?exon`)

// Classifier labels records for one splice site type.
type Classifier struct {
	siteType SiteType
	scanner  *splicesite.Scanner
}

// New returns a classifier that locates authentic sites with the
// annotation-tolerant scanner.
func New(siteType SiteType) *Classifier {
	return &Classifier{siteType: siteType, scanner: splicesite.EventTolerant}
}

// SiteType returns the splice site type the classifier was built for.
func (c *Classifier) SiteType() SiteType {
	return c.siteType
}

// Classify labels an annotated sequence. The first matching rule wins:
//
//   - the comment mentions a pseudoexon: pseudoexon
//   - not exactly one novel junction and one annotation: unclear
//   - no authentic site around the junction: insufficient
//   - annotation inside the authentic site, or within [-3, 6] of it: cryptic
//   - annotation outside [-2, 5] of the novel junction: trans
//   - otherwise: denovo
//
// Distances are signed nucleotide counts, positive on the intronic side.
func (c *Classifier) Classify(seq, comment string) Label {
	if pseudoexonComment.MatchString(comment) {
		return Pseudoexon
	}

	if strings.Count(seq, NovelJunction) != 1 {
		return Unclear
	}
	events, err := event.Parse(seq)
	if err != nil || len(events) != 1 {
		return Unclear
	}
	ev := splicesite.Span{Start: events[0].Start, End: events[0].End}
	novel := strings.Index(seq, NovelJunction)

	var r splicesite.Result
	if c.siteType == Acceptor {
		r = c.scanner.AcceptorAround(seq, novel)
	} else {
		r = c.scanner.DonorAround(seq, novel)
	}
	if !r.Found {
		return Insufficient
	}

	if strings.Contains(seq[r.Site.Start:r.Site.End], seq[ev.Start:ev.End]) {
		return Cryptic
	}

	dist := c.orient(signedDistance(seq, ev, r.Site, AuthenticOffset))
	if dist >= CrypticMin && dist <= CrypticMax {
		return Cryptic
	}

	junction := splicesite.Span{Start: novel, End: novel + len(NovelJunction)}
	dist = c.orient(signedDistance(seq, ev, junction, 0))
	if dist < NovelMin || dist > NovelMax {
		return Trans
	}

	return DeNovo
}

// orient flips downstream-positive distances for acceptors, whose intron
// lies upstream of the site.
func (c *Classifier) orient(d int) int {
	if c.siteType == Acceptor {
		return -d
	}
	return d
}

// signedDistance counts the nucleotides between ev and anchor plus offset.
// It is positive when ev lies downstream of anchor and negative otherwise.
func signedDistance(seq string, ev, anchor splicesite.Span, offset int) int {
	if ev.Start >= anchor.End {
		return CountNucleotides(seq[anchor.End:ev.Start]) + offset
	}
	if ev.End >= anchor.Start {
		return -offset
	}
	return -CountNucleotides(seq[ev.End:anchor.Start]) - offset
}

// CountNucleotides counts the A, C, G and T letters of s in either case.
func CountNucleotides(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
			n++
		}
	}
	return n
}
