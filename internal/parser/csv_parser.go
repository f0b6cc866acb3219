package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	ErrFieldTooLarge     = errors.New("field exceeds maximum size")
	ErrExtraColumns      = errors.New("record has more fields than the header")
)

var bom = []byte{0xef, 0xbb, 0xbf}

// ParserConfig contains configuration options for the CSV parser
type ParserConfig struct {
	Delimiter    rune // Field delimiter; 0 detects it from the data
	Quote        rune // Quote character
	TrimSpace    bool // Whether to trim leading/trailing whitespace of unquoted fields
	Headers      bool // Whether first row contains headers
	MaxFieldSize int  // Maximum field size to prevent memory exhaustion
}

// DefaultParserConfig returns a default configuration for the CSV parser
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		Delimiter:    0,
		Quote:        '"',
		TrimSpace:    true,
		Headers:      true,
		MaxFieldSize: 10 * 1024 * 1024, // 10MB max field size
	}
}

// CSVParser splits an in-memory CSV document into records. Quoted fields may
// contain delimiters, newlines and doubled quotes.
type CSVParser struct {
	config  ParserConfig
	delim   byte
	quote   byte
	data    []byte
	pos     int
	headers []string
	first   []string // first data row when there is no header row
	lineNum int
}

// NewCSVParser creates a new CSV parser
func NewCSVParser(config ParserConfig) *CSVParser {
	if config.Quote == 0 {
		config.Quote = DefaultParserConfig().Quote
	}
	if config.MaxFieldSize == 0 {
		config.MaxFieldSize = DefaultParserConfig().MaxFieldSize
	}
	return &CSVParser{config: config}
}

// Parse initializes parsing with new data and reads the header row. Without a
// header row the columns are named col1..colN after the first record.
func (p *CSVParser) Parse(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty data")
	}
	data = bytes.TrimPrefix(data, bom)

	delim := p.config.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(data, 64*1024)
	}
	if delim >= utf8.RuneSelf || p.config.Quote >= utf8.RuneSelf {
		return fmt.Errorf("delimiter and quote must be ASCII, got %q and %q", delim, p.config.Quote)
	}

	p.delim = byte(delim)
	p.quote = byte(p.config.Quote)
	p.data = data
	p.pos = 0
	p.lineNum = 1
	p.headers = nil
	p.first = nil

	record, err := p.readRecord()
	if err == io.EOF {
		return errors.New("no records")
	}
	if err != nil {
		return fmt.Errorf("failed to parse headers: %w", err)
	}

	if p.config.Headers {
		p.headers = record
		return nil
	}

	p.headers = make([]string, len(record))
	for i := range record {
		p.headers[i] = fmt.Sprintf("col%d", i+1)
	}
	p.first = record
	return nil
}

// NextRecord returns the next data record padded to the header width, or
// io.EOF when the data is exhausted.
func (p *CSVParser) NextRecord() ([]string, error) {
	if p.first != nil {
		r := p.first
		p.first = nil
		return r, nil
	}

	record, err := p.readRecord()
	if err != nil {
		return nil, err
	}

	switch {
	case len(record) > len(p.headers):
		return nil, fmt.Errorf("line %d: %w (%d > %d)", p.lineNum-1, ErrExtraColumns, len(record), len(p.headers))
	case len(record) < len(p.headers):
		padded := make([]string, len(p.headers))
		copy(padded, record)
		record = padded
	}
	return record, nil
}

// ReadAll returns every remaining data record.
func (p *CSVParser) ReadAll() ([][]string, error) {
	var rows [][]string
	for {
		record, err := p.NextRecord()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
}

func (p *CSVParser) isNewline(c byte) bool {
	return c == '\n' || c == '\r'
}

// skipNewline consumes one \n, \r or \r\n at pos.
func (p *CSVParser) skipNewline() {
	if p.data[p.pos] == '\r' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n' {
		p.pos++
	}
	p.pos++
	p.lineNum++
}

func (p *CSVParser) skipBlanks() {
	for p.pos < len(p.data) && (p.data[p.pos] == ' ' || p.data[p.pos] == '\t') && p.data[p.pos] != p.delim {
		p.pos++
	}
}

func (p *CSVParser) readRecord() ([]string, error) {
	for p.pos < len(p.data) && p.isNewline(p.data[p.pos]) {
		p.skipNewline()
	}
	if p.pos >= len(p.data) {
		return nil, io.EOF
	}

	var record []string
	for {
		field, end, err := p.readField()
		if err != nil {
			return nil, err
		}
		record = append(record, field)
		if end {
			return record, nil
		}
	}
}

// readField reads one field; end reports whether it closed the record.
func (p *CSVParser) readField() (field string, end bool, err error) {
	if p.config.TrimSpace {
		p.skipBlanks()
	}

	if p.pos < len(p.data) && p.data[p.pos] == p.quote {
		return p.readQuoted()
	}

	start := p.pos
	for p.pos < len(p.data) && p.data[p.pos] != p.delim && !p.isNewline(p.data[p.pos]) {
		p.pos++
		if p.pos-start > p.config.MaxFieldSize {
			return "", false, fmt.Errorf("line %d: %w", p.lineNum, ErrFieldTooLarge)
		}
	}

	raw := p.data[start:p.pos]
	if p.config.TrimSpace {
		raw = bytes.TrimRight(raw, " \t")
	}
	field = string(raw)

	end, err = p.endField()
	return field, end, err
}

func (p *CSVParser) readQuoted() (string, bool, error) {
	line := p.lineNum
	p.pos++ // opening quote

	var buf []byte
	for {
		if p.pos >= len(p.data) {
			return "", false, fmt.Errorf("line %d: %w", line, ErrUnterminatedQuote)
		}

		c := p.data[p.pos]
		if c == p.quote {
			if p.pos+1 < len(p.data) && p.data[p.pos+1] == p.quote {
				buf = append(buf, p.quote)
				p.pos += 2
				continue
			}
			p.pos++
			break
		}
		if c == '\n' {
			p.lineNum++
		}
		buf = append(buf, c)
		p.pos++

		if len(buf) > p.config.MaxFieldSize {
			return "", false, fmt.Errorf("line %d: %w", line, ErrFieldTooLarge)
		}
	}

	// Anything between the closing quote and the delimiter is kept verbatim.
	start := p.pos
	for p.pos < len(p.data) && p.data[p.pos] != p.delim && !p.isNewline(p.data[p.pos]) {
		p.pos++
	}
	rest := p.data[start:p.pos]
	if p.config.TrimSpace {
		rest = bytes.TrimSpace(rest)
	}
	buf = append(buf, rest...)

	end, err := p.endField()
	return string(buf), end, err
}

// endField consumes the delimiter or newline after a field.
func (p *CSVParser) endField() (bool, error) {
	if p.pos >= len(p.data) {
		return true, nil
	}
	if p.data[p.pos] == p.delim {
		p.pos++
		return false, nil
	}
	p.skipNewline()
	return true, nil
}

// Headers returns the parsed headers
func (p *CSVParser) Headers() []string {
	return p.headers
}

// LineNum returns the current line number
func (p *CSVParser) LineNum() int {
	return p.lineNum
}

// Delimiter returns the delimiter in use after Parse.
func (p *CSVParser) Delimiter() rune {
	return rune(p.delim)
}

// candidateDelimiters are tried in order; earlier entries win ties.
var candidateDelimiters = []byte{',', ';', '\t', '|'}

// IsValidDelimiter checks if a rune is a valid CSV delimiter
func IsValidDelimiter(delim rune) bool {
	for _, c := range candidateDelimiters {
		if rune(c) == delim {
			return true
		}
	}
	return false
}

// DetectDelimiter picks the candidate delimiter seen most often outside
// quotes in the first five lines of data.
func DetectDelimiter(data []byte, sampleSize int) rune {
	if sampleSize <= 0 || sampleSize > len(data) {
		sampleSize = len(data)
	}
	sample := data[:sampleSize]

	counts := make(map[byte]int, len(candidateDelimiters))
	lines := 0
	inQuotes := false
	for _, c := range sample {
		if lines >= 5 {
			break
		}
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case c == '\n':
			lines++
		default:
			counts[c]++
		}
	}

	best := candidateDelimiters[0]
	for _, c := range candidateDelimiters[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return rune(best)
}

// ValidateUTF8 checks if data is valid UTF-8
func ValidateUTF8(data []byte) bool {
	return utf8.Valid(data)
}
