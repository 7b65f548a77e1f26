package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrEmptyFile = errors.New("the CSV file is empty or unreadable")

const utf8BOM = "\ufeff"

// DetectDelimiter picks ';' only when the line has strictly more semicolons
// than commas.
func DetectDelimiter(line string) rune {
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}

	return ','
}

// readHeader consumes the first line of r and returns its normalized tokens
// together with the delimiter detected on it.
func readHeader(r *bufio.Reader) ([]string, rune, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("%w: %v", ErrEmptyFile, err)
	}

	line = strings.TrimPrefix(line, utf8BOM)
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, 0, ErrEmptyFile
	}

	delimiter := DetectDelimiter(line)

	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	tokens, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("cr.Read -> %w", err)
	}

	header := make([]string, len(tokens))
	for i, t := range tokens {
		header[i] = NormalizeHeader(t)
	}

	return header, delimiter, nil
}

// rowReader streams the data rows that follow the header, one at a time.
type rowReader struct {
	csv    *csv.Reader
	header []string
	line   int
}

func newRowReader(r io.Reader, header []string, delimiter rune) *rowReader {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	return &rowReader{
		csv:    cr,
		header: header,
		line:   1,
	}
}

// next returns the next row and its 1-based physical line in the file.
// On a parse fault the returned line is where the fault was detected.
func (r *rowReader) next() (RawRow, int, error) {
	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, r.line, io.EOF
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			r.line = parseErr.Line + 1
		} else {
			r.line++
		}

		return nil, r.line, err
	}

	line, _ := r.csv.FieldPos(0)
	r.line = line + 1

	row := make(RawRow, len(r.header))
	for i, h := range r.header {
		if i < len(record) {
			row[h] = record[i]
		}
	}

	return row, r.line, nil
}
