// Package dbass reads DBASS tab-separated exports.
//
// The first non-comment line is a header naming the columns; every following
// line is one record. Column positions are resolved once from the header and
// shared by all records of the stream.
package dbass

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// DBASS column names
const (
	ColGeneName           = "GeneName"
	ColAlteration         = "Alteration"
	ColNucleotideSequence = "NucleotideSequence"
	ColComment            = "Comment"
)

// Header maps column names to their positions.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a header from the column names of a header line. When a
// name repeats, the last occurrence wins.
func NewHeader(names []string) *Header {
	h := &Header{
		names: names,
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		h.index[name] = i
	}
	return h
}

// Names returns the column names in file order.
func (h *Header) Names() []string {
	return h.names
}

// Index returns the position of the named column.
func (h *Header) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// Require checks that all named columns are present.
func (h *Header) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := h.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

// Record is one data line of a DBASS file.
type Record struct {
	Line   int
	Fields []string
	header *Header
}

// NewRecord creates a record bound to header.
func NewRecord(header *Header, line int, fields []string) *Record {
	return &Record{Line: line, Fields: fields, header: header}
}

// Get returns the value of the named column.
func (r *Record) Get(name string) (string, error) {
	i, err := r.position(name)
	if err != nil {
		return "", err
	}
	return r.Fields[i], nil
}

// With returns a copy of the record's fields with the named column replaced.
func (r *Record) With(name, value string) ([]string, error) {
	i, err := r.position(name)
	if err != nil {
		return nil, err
	}
	fields := make([]string, len(r.Fields))
	copy(fields, r.Fields)
	fields[i] = value
	return fields, nil
}

func (r *Record) position(name string) (int, error) {
	i, ok := r.header.Index(name)
	if !ok {
		return 0, &MissingColumnError{Columns: []string{name}}
	}
	if i >= len(r.Fields) {
		return 0, &ParseError{
			Line:    r.Line,
			Message: fmt.Sprintf("column %q is at position %d but the row has %d fields", name, i+1, len(r.Fields)),
		}
	}
	return i, nil
}

// Parser reads records from a DBASS file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	header     *Header
	required   []string
}

// NewParser creates a parser for the given file, or stdin when path is "-"
// or empty. Gzipped input is detected by its magic bytes. The header must
// contain every column in required.
func NewParser(path string, required ...string) (*Parser, error) {
	if path == "-" || path == "" {
		return NewParserFromReader(os.Stdin, required...)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dbass file: %w", err)
	}

	p := &Parser{file: file, required: required}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read dbass header: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek dbass file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader, required ...string) (*Parser, error) {
	p := &Parser{
		reader:   bufio.NewReader(r),
		required: required,
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// parseHeader reads the header line, skipping comments and blank lines.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.readLine()
		if err == io.EOF {
			return &ParseError{Line: p.lineNumber, Message: "no header line found"}
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p.header = NewHeader(strings.Split(line, "\t"))
		if err := p.header.Require(p.required...); err != nil {
			return &ParseError{Line: p.lineNumber, Message: "invalid header", Err: err}
		}
		return nil
	}
}

// Next reads the next record.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*Record, error) {
	for {
		line, err := p.readLine()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read record line: %w", err)
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		return NewRecord(p.header, p.lineNumber, strings.Split(line, "\t")), nil
	}
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned normally; io.EOF is only reported once no
// data remains.
func (p *Parser) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	p.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

// Header returns the parsed header.
func (p *Parser) Header() *Header {
	return p.header
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during DBASS parsing with line context.
type ParseError struct {
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dbass parse error at line %d: %s: %v", e.Line, e.Message, e.Err)
	}
	return fmt.Sprintf("dbass parse error at line %d: %s", e.Line, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingColumnError reports required columns absent from the header.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column(s): %s", strings.Join(e.Columns, ", "))
}
