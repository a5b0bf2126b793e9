package fmindex

import (
	"index/suffixarray"
	"sort"
)

// MockIndex is a complete, if naive, in-memory collaborator: it concatenates
// every contig's forward sequence, mirrors it into the reverse-complement
// half of BWT space the way spec.md §3 describes, and answers seed queries
// by exact substring search over that concatenation. It is the "small
// in-memory implementation used by tests and the mock CLI path" this
// package's own doc comment promises — real FM-index/suffix-array
// construction belongs to an external index-building tool; this one is
// sized for unit tests and small references, not a production genome.
//
// Every occurrence MockIndex reports uses its own genome offset directly as
// the SAInterval.K row (so ResolveSA is the identity), matching the
// convention the core's own fakeIndex test doubles already use.
type MockIndex struct {
	contigs []Contig
	genome  []Base // forward strand followed by its reverse-complement mirror: BWT space [0,2G)
	g       int64
	sa      *suffixarray.Index
}

// NewMockIndex builds a MockIndex from parallel contig name/sequence lists.
// Sequences are forward-strand, 2-bit encoded, in contig order.
func NewMockIndex(names []string, sequences [][]Base) *MockIndex {
	contigs := make([]Contig, len(names))
	var forward []Base
	var offset int64
	for i, name := range names {
		contigs[i] = Contig{Name: name, Offset: offset, Length: int64(len(sequences[i]))}
		forward = append(forward, sequences[i]...)
		offset += int64(len(sequences[i]))
	}

	g := int64(len(forward))
	mirror := make([]Base, g)
	for i, b := range forward {
		mirror[g-1-int64(i)] = Complement(b)
	}
	genome := make([]Base, 0, 2*g)
	genome = append(genome, forward...)
	genome = append(genome, mirror...)

	raw := make([]byte, len(genome))
	for i, b := range genome {
		raw[i] = decodeMockBase(b)
	}
	return &MockIndex{contigs: contigs, genome: genome, g: g, sa: suffixarray.New(raw)}
}

func decodeMockBase(b Base) byte {
	switch b {
	case BaseA:
		return 'A'
	case BaseC:
		return 'C'
	case BaseG:
		return 'G'
	case BaseT:
		return 'T'
	default:
		return 'N'
	}
}

func (m *MockIndex) Contigs() []Contig    { return m.contigs }
func (m *MockIndex) GenomeLength() int64  { return m.g }

func (m *MockIndex) SequenceID(pos int64) int32 {
	for i, c := range m.contigs {
		if pos >= c.Offset && pos < c.Offset+c.Length {
			return int32(i)
		}
	}
	if len(m.contigs) == 0 {
		return 0
	}
	return int32(len(m.contigs) - 1)
}

func (m *MockIndex) DecodePosition(pos int64) (int32, int64) {
	rid := m.SequenceID(pos)
	if int(rid) >= len(m.contigs) {
		return rid, pos
	}
	return rid, pos - m.contigs[rid].Offset
}

// ResolveSA is the identity: every SMEM this type produces already carries
// the real genome offset in SAInterval.K.
func (m *MockIndex) ResolveSA(pos int64) int64 { return pos }

func (m *MockIndex) GetReference(pos int64, length int) ([]Base, int) {
	total := int64(len(m.genome))
	if pos < 0 || pos >= total {
		return nil, 0
	}
	end := pos + int64(length)
	if end > total {
		end = total
	}
	return m.genome[pos:end], int(end - pos)
}

func (m *MockIndex) FindSMEMs(query []Base) []SMEM {
	return m.findFrom(query, 0, 1, 0)
}

func (m *MockIndex) FindSMEMsAtPosition(query []Base, startPos int32, minSeedLen int32, minIntv int64) []SMEM {
	return m.findFrom(query, startPos, minSeedLen, minIntv)
}

// findFrom implements exact-match seed search by, at every query start
// position, extending the match as far right as the suffix array still
// finds an occurrence. This reports only maximal matches (the longest
// exact match rooted at each start), not BWA's full SMEM set (every
// locally-maximal match would additionally require tracking matches that
// stop being maximal only because a longer one doesn't also start there);
// that approximation is adequate for the modest inputs the CLI's default
// reference-loading path targets.
func (m *MockIndex) findFrom(query []Base, startPos int32, minSeedLen int32, minIntv int64) []SMEM {
	n := int32(len(query))
	raw := make([]byte, len(query))
	for i, b := range query {
		raw[i] = decodeMockBase(b)
	}

	var out []SMEM
	for begin := startPos; begin < n; begin++ {
		end := begin
		var offsets []int
		for probe := begin + 1; probe <= n; probe++ {
			o := m.sa.Lookup(raw[begin:probe], -1)
			if len(o) == 0 {
				break
			}
			end = probe
			offsets = o
		}
		if end <= begin || end-begin < minSeedLen || len(offsets) == 0 {
			continue
		}
		if minIntv > 0 && int64(len(offsets)) >= minIntv {
			continue
		}
		sort.Ints(offsets)
		for _, off := range offsets {
			out = append(out, SMEM{
				QueryBegin: begin,
				QueryEnd:   end,
				Interval:   SAInterval{K: int64(off), L: 0, Count: 1},
			})
		}
	}
	return out
}
