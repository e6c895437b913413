package splicesite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScanner_Matches(t *testing.T) {
	seq := "acgtACGTgtaa/acgtAC"

	assert.Equal(t, []Span{{Start: 7, End: 9}}, Default.Donors(seq))
	assert.Equal(t, []Span{{Start: 3, End: 5}, {Start: 16, End: 18}}, Default.Acceptors(seq))
}

func TestDonorAround(t *testing.T) {
	seq := "acgtACGTgtaa/acgtAC"

	r := Default.DonorAround(seq, 12)
	require.True(t, r.Found)
	assert.Equal(t, Span{Start: 7, End: 9}, r.Site)
	assert.Equal(t, 3, r.Prev)
	assert.Equal(t, 16, r.Next)
}

func TestAcceptorAround(t *testing.T) {
	seq := "acgtACGTgtaa/acgtAC"

	r := Default.AcceptorAround(seq, 12)
	require.True(t, r.Found)
	assert.Equal(t, Span{Start: 16, End: 18}, r.Site)
	assert.Equal(t, 7, r.Prev)
	assert.Equal(t, -1, r.Next)
}

func TestDonorAround_NoUpstreamAcceptor(t *testing.T) {
	r := Default.DonorAround("ACGTgt/aa", 6)
	require.True(t, r.Found)
	assert.Equal(t, 3, r.Site.Start)
	assert.Equal(t, -1, r.Prev)
	assert.Equal(t, -1, r.Next)
}

func TestDonorAround_NotFound(t *testing.T) {
	r := Default.DonorAround("acgtACGT/", 8)
	assert.False(t, r.Found)
	assert.Equal(t, 3, r.Prev)
}

func TestDonorAround_OnlyDonorsBeforeExon(t *testing.T) {
	// The only donor lies upstream of the acceptor that opens the exon.
	r := Default.DonorAround("AAgtagCCC/C", 9)
	assert.False(t, r.Found)
	assert.Equal(t, 5, r.Prev)
}

func TestEventTolerant_SpansAnnotation(t *testing.T) {
	seq := "acgtAC(T>G)gtACGT/acgt"

	assert.Equal(t, []Span{{Start: 5, End: 12}}, EventTolerant.Donors(seq))
	assert.Equal(t, []Span{{Start: 3, End: 5}, {Start: 12, End: 14}}, EventTolerant.Acceptors(seq))

	// The plain patterns do not see across the annotation.
	assert.Empty(t, Default.Donors(seq))
}

func TestEventTolerant_DonorAround(t *testing.T) {
	seq := "ttagACGTCA(G>A)gtaagtat/gtagg"

	r := EventTolerant.DonorAround(seq, 23)
	require.True(t, r.Found)
	assert.Equal(t, Span{Start: 9, End: 16}, r.Site)
	assert.Equal(t, "A(G>A)g", seq[r.Site.Start:r.Site.End])
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New("[", AcceptorPattern)
	assert.Error(t, err)

	_, err = New(DonorPattern, "(")
	assert.Error(t, err)

	assert.Panics(t, func() { MustNew("[", "(") })
}
