// Package fmindex defines the narrow collaborator seam the alignment core
// consumes to reach the FM-index, the packed reference, and contig metadata
// (spec.md §6 "From the FM-index collaborator"). Real construction of the
// suffix array and the packed reference store is out of scope for the core;
// this package only defines the interfaces and a small in-memory
// implementation used by tests and the mock CLI path, the way
// bamprovider.Provider is the seam grailbio-bio's core logic is written
// against rather than a concrete file format.
package fmindex

// Base is the 2-bit nucleotide alphabet used everywhere in the core:
// A=0, C=1, G=2, T=3, N=4.
type Base = byte

const (
	BaseA Base = 0
	BaseC Base = 1
	BaseG Base = 2
	BaseT Base = 3
	BaseN Base = 4
)

// Complement returns the complementary base under the 2-bit alphabet. N maps
// to itself.
func Complement(b Base) Base {
	if b >= 4 {
		return BaseN
	}
	return 3 - b
}

// SAInterval names a suffix-array range sharing a common matched prefix, with
// a known occurrence count. k/l mirror the conventional BWA SA-interval
// naming: k is the lower bound row, l is unused by the core beyond carrying
// along with the interval (kept for fidelity with the collaborator contract).
type SAInterval struct {
	K, L  int64
	Count int64
}

// SMEM is a super-maximal exact match: a closed query interval plus the SA
// interval of the reference positions that match it.
type SMEM struct {
	QueryBegin, QueryEnd int32
	Interval             SAInterval
}

func (s SMEM) Len() int32 { return s.QueryEnd - s.QueryBegin }

// Contig is one entry of the reference's sequence dictionary.
type Contig struct {
	Name   string
	Offset int64 // forward-strand BWT-space offset
	Length int64
	IsAlt  bool
}

// Metadata exposes the reference's sequence dictionary and the forward/BWT
// coordinate arithmetic needed to decode a BWT-space position.
type Metadata interface {
	// Contigs returns the ordered contig list.
	Contigs() []Contig
	// GenomeLength returns G, the forward-strand genome length. BWT space
	// spans [0, 2G).
	GenomeLength() int64
	// SequenceID returns the contig index containing the given BWT-space
	// position (must be < G; callers normalize reverse-strand positions to
	// their forward-strand mirror before calling).
	SequenceID(pos int64) int32
	// DecodePosition returns the contig id and 0-based offset within that
	// contig for a forward-strand position.
	DecodePosition(pos int64) (rid int32, localPos int64)
}

// SAResolver materializes one reference position from a suffix-array
// interval entry. Implementations are expected to be safe for concurrent use
// by multiple worker goroutines.
type SAResolver interface {
	// ResolveSA returns the BWT-space reference position for SA-interval row
	// pos.
	ResolveSA(pos int64) int64
}

// ReferenceFetcher fetches packed reference bases in BWT space. For
// pos >= G the returned bytes are the reverse complement of the mirrored
// forward window, per the BWT-space convention in spec.md §3. Fetches that
// run past the valid range truncate rather than error, per §7.
type ReferenceFetcher interface {
	// GetReference returns up to len bases starting at pos, plus the actual
	// number of bytes returned (which may be less than len at a contig or
	// genome boundary).
	GetReference(pos int64, length int) (bases []Base, actualLen int)
}

// SMEMFinder is the seed-finder collaborator: it walks exact matches and
// optionally supports a midpoint-reseed primitive (spec.md §6 and §4.2).
type SMEMFinder interface {
	// FindSMEMs returns every SMEM for the given query (2-bit encoded),
	// in increasing queryBegin order.
	FindSMEMs(query []Base) []SMEM
	// FindSMEMsAtPosition reruns SMEM search from startPos within query,
	// requiring the found interval to have strictly fewer than minIntv
	// occurrences (the midpoint-reseed primitive).
	FindSMEMsAtPosition(query []Base, startPos int32, minSeedLen int32, minIntv int64) []SMEM
}

// Index bundles the three collaborator seams the core needs for one
// reference. The core never owns construction of any of these; it is handed
// an Index built by the external FM-index / packed-reference / SMEM-finder
// components.
type Index struct {
	Metadata
	SAResolver
	ReferenceFetcher
	SMEMFinder
}

// DecodeForwardCoordinate converts a BWT-space position to a forward-strand
// position, returning the strand. For pos in [0,G) the position is already
// forward. For pos in [G,2G) the forward coordinate of a len-long seed
// beginning at pos is 2G-1-pos-len+1, per spec.md §4.1.
func DecodeForwardCoordinate(pos, genomeLength int64, length int32) (forwardPos int64, reverse bool) {
	if pos < genomeLength {
		return pos, false
	}
	return 2*genomeLength - 1 - pos - int64(length) + 1, true
}
