// Package fastq reads the four-line-per-record FASTQ format that
// cmd/bwamem-align takes reads from: an "@"-prefixed ID line, the raw
// sequence, a "+"-prefixed separator, and a Phred+33 quality line of the
// same length as the sequence.
package fastq

import (
	"bufio"
	"errors"
	"io"
)

var (
	// ErrShort reports a FASTQ stream that ends mid-record.
	ErrShort = errors.New("fastq: truncated record")
	// ErrInvalid reports a record whose ID or separator line doesn't carry
	// the expected sigil ("@" / "+").
	ErrInvalid = errors.New("fastq: malformed record")
	// ErrDiscordant reports a mate pair whose two streams ran out of
	// records at different points.
	ErrDiscordant = errors.New("fastq: mate streams out of sync")

	errDone = errors.New("fastq: done")
)

// Read holds one FASTQ record's four lines. Unk is the separator line's
// text past "+", almost always empty; it is carried for completeness but
// bwamem-align never requests it.
type Read struct {
	ID, Seq, Unk, Qual string
}

// Field selects which of a record's lines NewScanner/NewPairScanner
// populate into the caller's Read; fields not selected are still consumed
// from the stream (to advance past them) but left as "".
type Field uint

const (
	ID Field = 1 << iota
	Seq
	Unk
	Qual

	// All requests every field.
	All = ID | Seq | Unk | Qual
)

// Scanner reads consecutive FASTQ records from a stream. Scan reports
// whether a record was read; once it returns false, Err distinguishes a
// clean EOF (nil) from a parse failure. Not safe for concurrent use.
type Scanner struct {
	lines  *bufio.Scanner
	fields Field
	err    error
}

// NewScanner wraps r as a FASTQ record source, populating only the lines
// named by fields on each Scan.
func NewScanner(r io.Reader, fields Field) *Scanner {
	return &Scanner{lines: bufio.NewScanner(r), fields: fields}
}

// Scan reads the next record into read.
func (s *Scanner) Scan(read *Read) bool {
	if s.err != nil {
		return false
	}

	idLine, ok := s.nextLine(errDone)
	if !ok {
		if s.err == nil {
			s.err = errDone
		}
		return false
	}
	if len(idLine) == 0 || idLine[0] != '@' {
		s.err = ErrInvalid
		return false
	}
	if s.fields&ID != 0 {
		read.ID = idLine
	}

	seqLine, ok := s.nextLine(ErrShort)
	if !ok {
		return false
	}
	if s.fields&Seq != 0 {
		read.Seq = seqLine
	}

	sepLine, ok := s.nextLine(ErrShort)
	if !ok {
		return false
	}
	if len(sepLine) == 0 || sepLine[0] != '+' {
		s.err = ErrInvalid
		return false
	}
	if s.fields&Unk != 0 {
		read.Unk = sepLine
	}

	qualLine, ok := s.nextLine(ErrShort)
	if !ok {
		return false
	}
	if s.fields&Qual != 0 {
		read.Qual = qualLine
	}
	return true
}

// nextLine advances the underlying line scanner, recording onEOF as the
// error if the stream ends before a line is produced.
func (s *Scanner) nextLine(onEOF error) (string, bool) {
	if !s.lines.Scan() {
		if s.err = s.lines.Err(); s.err == nil {
			s.err = onEOF
		}
		return "", false
	}
	return s.lines.Text(), true
}

// Err reports the first parse or I/O error encountered, or nil on a clean
// EOF.
func (s *Scanner) Err() error {
	if s.err == errDone {
		return nil
	}
	return s.err
}

// PairScanner advances two Scanners in lockstep, for R1/R2 FASTQ pairs.
type PairScanner struct {
	mate1, mate2 *Scanner
	err          error
}

// NewPairScanner pairs up r1 and r2 as mate streams.
func NewPairScanner(r1, r2 io.Reader, fields Field) *PairScanner {
	return &PairScanner{mate1: NewScanner(r1, fields), mate2: NewScanner(r2, fields)}
}

// Scan reads the next record from each stream into mate1/mate2.
func (p *PairScanner) Scan(mate1, mate2 *Read) bool {
	ok1 := p.mate1.Scan(mate1)
	ok2 := p.mate2.Scan(mate2)
	if ok1 != ok2 {
		p.err = ErrDiscordant
	}
	return ok1 && ok2
}

// Err reports the first error from either stream, preferring mate1's, or
// the discordant-length error if the streams disagreed on when they ended.
func (p *PairScanner) Err() error {
	if err := p.mate1.Err(); err != nil {
		return err
	}
	if err := p.mate2.Err(); err != nil {
		return err
	}
	return p.err
}
