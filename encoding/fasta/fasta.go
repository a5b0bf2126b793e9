// Package fasta parses FASTA-formatted reference sequence: a set of
// ">name"-headed records each followed by wrapped sequence lines. Only the
// in-memory whole-file reader cmd/bwamem-align needs is implemented here;
// random-access indexed FASTA (.fai) is a collaborator this module's
// alignment core never exercises.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/grailbio/base/unsafe"
	"github.com/gralign/bwamem/biosimd"
	"github.com/pkg/errors"
)

const bufferCeiling = 300 * 1024 * 1024

// Fasta holds every sequence from a parsed FASTA file in memory.
type Fasta interface {
	// Get returns the half-open interval [start, end) of seqName's bases.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of seqName.
	Len(seqName string) (uint64, error)

	// SeqNames returns every sequence name, in file order.
	SeqNames() []string
}

type opts struct {
	clean bool
}

// Opt configures New.
type Opt func(*opts)

// OptClean requests that loaded sequence be normalized the way
// biosimd.CleanASCIISeqInplace does: uppercased ACGT, everything else
// folded to 'N'.
func OptClean(o *opts) { o.clean = true }

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// New reads every record from r into memory.
func New(r io.Reader, userOpts ...Opt) (Fasta, error) {
	var o opts
	for _, apply := range userOpts {
		apply(&o)
	}

	f := &fasta{seqs: make(map[string]string)}
	lines := bufio.NewScanner(r)
	lines.Buffer(nil, bufferCeiling)

	var name string
	var body strings.Builder
	flush := func() {
		if name == "" {
			return
		}
		f.seqs[name] = body.String()
		f.seqNames = append(f.seqNames, name)
		body.Reset()
	}
	for lines.Scan() {
		line := lines.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			name = strings.Split(line[1:], " ")[0]
			continue
		}
		body.WriteString(line)
	}
	if err := lines.Err(); err != nil {
		return nil, errors.Wrap(err, "fasta: reading sequence data")
	}
	flush()

	if o.clean {
		for name := range f.seqs {
			biosimd.CleanASCIISeqInplace(unsafe.StringToBytes(f.seqs[name]))
		}
	}
	return f, nil
}

func (f *fasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("fasta: unknown sequence %q", seqName)
	}
	if end <= start {
		return "", errors.Errorf("fasta: empty or inverted range [%d, %d)", start, end)
	}
	if end > uint64(len(s)) {
		return "", errors.Errorf("fasta: range [%d, %d) exceeds %q length %d", start, end, seqName, len(s))
	}
	return s[start:end], nil
}

func (f *fasta) Len(seqName string) (uint64, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("fasta: unknown sequence %q", seqName)
	}
	return uint64(len(s)), nil
}

func (f *fasta) SeqNames() []string {
	return f.seqNames
}
