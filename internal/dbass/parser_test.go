package dbass

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ParseRecords(t *testing.T) {
	testFile := findTestFile(t, "sample_dbass.tsv")

	parser, err := NewParser(testFile, ColNucleotideSequence, ColGeneName)
	require.NoError(t, err)
	defer parser.Close()

	h := parser.Header()
	assert.Equal(t, []string{"GeneName", "Alteration", "NucleotideSequence", "Comment", "PubMed"}, h.Names())
	i, ok := h.Index(ColNucleotideSequence)
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	// First record (GENE1), which ends with an empty field
	r, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 3, r.Line)
	assert.Len(t, r.Fields, 5)

	gene, err := r.Get(ColGeneName)
	require.NoError(t, err)
	assert.Equal(t, "GENE1", gene)

	seq, err := r.Get(ColNucleotideSequence)
	require.NoError(t, err)
	assert.Equal(t, "acgtAC(T>G)gtACGT/acgt", seq)

	pubmed, err := r.Get("PubMed")
	require.NoError(t, err)
	assert.Equal(t, "", pubmed)

	count := 1
	for {
		r, err := parser.Next()
		require.NoError(t, err)
		if r == nil {
			break
		}
		count++
	}
	assert.Equal(t, 7, count)
}

func TestParser_MissingColumn(t *testing.T) {
	input := "GeneName\tAlteration\n" +
		"ATM\tc.1A>G\n"

	_, err := NewParserFromReader(strings.NewReader(input), ColGeneName, ColNucleotideSequence, ColComment)
	require.Error(t, err)

	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{ColNucleotideSequence, ColComment}, missing.Columns)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 1, parseErr.Line)
	assert.Contains(t, err.Error(), "missing column(s): NucleotideSequence, Comment")
}

func TestParser_EmptyInput(t *testing.T) {
	_, err := NewParserFromReader(strings.NewReader("# only a comment\n\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header line found")
}

func TestParser_ShortRow(t *testing.T) {
	input := "GeneName\tAlteration\tNucleotideSequence\n" +
		"ATM\tc.1A>G\n"

	parser, err := NewParserFromReader(strings.NewReader(input), ColNucleotideSequence)
	require.NoError(t, err)

	r, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, r)

	_, err = r.Get(ColNucleotideSequence)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Line)

	_, err = r.Get("Unknown")
	var missing *MissingColumnError
	assert.True(t, errors.As(err, &missing))
}

func TestParser_NoTrailingNewline(t *testing.T) {
	input := "GeneName\tNucleotideSequence\r\n" +
		"ATM\tacgt\r\n" +
		"\n" +
		"DMD\tAC(G>T)gt"

	parser, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	r, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, []string{"ATM", "acgt"}, r.Fields)

	r, err = parser.Next()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, []string{"DMD", "AC(G>T)gt"}, r.Fields)
	assert.Equal(t, 4, r.Line)

	r, err = parser.Next()
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestParser_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbass.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte("GeneName\tNucleotideSequence\nATM\tacgt(A>G)\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	parser, err := NewParser(path, ColNucleotideSequence)
	require.NoError(t, err)
	defer parser.Close()

	r, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, r)
	seq, err := r.Get(ColNucleotideSequence)
	require.NoError(t, err)
	assert.Equal(t, "acgt(A>G)", seq)
}

func TestParser_FileNotFound(t *testing.T) {
	_, err := NewParser(filepath.Join(t.TempDir(), "missing.tsv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRecord_With(t *testing.T) {
	h := NewHeader([]string{"GeneName", "NucleotideSequence"})
	r := NewRecord(h, 2, []string{"ATM", "ac(G>T)gt"})

	fields, err := r.With(ColNucleotideSequence, "acTgt")
	require.NoError(t, err)
	assert.Equal(t, []string{"ATM", "acTgt"}, fields)
	// The record itself is unchanged.
	assert.Equal(t, "ac(G>T)gt", r.Fields[1])
}

func TestHeader_Require(t *testing.T) {
	h := NewHeader([]string{"GeneName", "Comment"})
	assert.NoError(t, h.Require(ColGeneName, ColComment))
	assert.NoError(t, h.Require())

	err := h.Require(ColAlteration)
	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{ColAlteration}, missing.Columns)
}

// findTestFile locates a test data file.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}
