package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
)

// sourceRow is one data row and the physical line it starts on.
type sourceRow struct {
	cells []string
	line  int
	// parseErr is set when the record could not be parsed.
	parseErr *csv.ParseError
}

// rowSource reads records from a csv.Reader and also yields the zero-length
// lines the reader skips, as single empty cells, so every physical line
// after the header is counted as a row.
type rowSource struct {
	csv  *csv.Reader
	text []byte

	off      int64 // bytes consumed so far
	newlines int   // newlines in text[:off]
	last     int   // last physical line consumed

	blank     int // queued blank lines
	nextBlank int // physical line of the next queued blank line
	held      *sourceRow
	eof       bool
}

func newRowSource(r *csv.Reader, text []byte) *rowSource {
	return &rowSource{csv: r, text: text}
}

// header reads the header record. Blank lines before it are not rows.
func (s *rowSource) header() ([]string, error) {
	rec, err := s.csv.Read()
	if err != nil {
		return nil, err
	}
	s.consume(s.csv.InputOffset())
	return rec, nil
}

// next returns the next row or io.EOF. Parse errors are reported on the row;
// the returned error is only set for failures of the underlying reader.
func (s *rowSource) next() (sourceRow, error) {
	for {
		if s.blank > 0 {
			s.blank--
			s.nextBlank++
			return sourceRow{cells: []string{""}, line: s.nextBlank - 1}, nil
		}
		if s.held != nil {
			row := *s.held
			s.held = nil
			return row, nil
		}
		if s.eof {
			return sourceRow{}, io.EOF
		}

		rec, err := s.csv.Read()
		if errors.Is(err, io.EOF) {
			s.eof = true
			s.queue(s.newlines + bytes.Count(s.text[s.off:], newline) + 1)
			continue
		}
		var perr *csv.ParseError
		if err != nil && !errors.As(err, &perr) {
			return sourceRow{}, err
		}

		row := sourceRow{cells: rec, parseErr: perr}
		if perr != nil {
			row.line = perr.StartLine
		} else {
			row.line, _ = s.csv.FieldPos(0)
		}
		s.queue(row.line)
		s.held = &row
		s.consume(s.csv.InputOffset())
	}
}

var newline = []byte{'\n'}

// queue schedules the blank lines between the last consumed line and line.
func (s *rowSource) queue(line int) {
	if n := line - s.last - 1; n > 0 {
		s.blank = n
		s.nextBlank = s.last + 1
	}
}

func (s *rowSource) consume(offset int64) {
	s.newlines += bytes.Count(s.text[s.off:offset], newline)
	s.off = offset
	s.last = s.newlines
	if offset > 0 && s.text[offset-1] != '\n' {
		s.last++
	}
}
