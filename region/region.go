// Package region defines AlnRegion, the central mutable alignment-candidate
// record threaded through extend, dedup, secondary, cigar, mapq and pe
// (spec.md §3).
package region

// SecondaryKind tags the three distinct meanings the BWA-MEM `secondary`
// field overloads onto a single integer, per the "Tagged variants for
// secondary" re-architecture hint in spec.md §9.
type SecondaryKind uint8

const (
	// Primary marks a region that is not secondary to anything.
	Primary SecondaryKind = iota
	// SecondaryTo marks a region as secondary to the primary at Index.
	SecondaryTo
	// SecondaryToALT marks an ALT region that stayed primary in Phase 1 of
	// ALT-aware secondary marking; Phase 2 re-marks only non-ALT regions, so
	// it gets no dominator index — the reserved "max-int" sentinel case from spec.md §4.6,
	// represented here as its own tag instead of a magic number.
	SecondaryToALT
)

// SecondaryRef is the tagged replacement for the raw `secondary:i32` field:
// Kind disambiguates Primary / SecondaryTo(Index) / SecondaryToALT so no
// caller needs to remember that -1 means primary and MaxInt32 means
// promoted-ALT-secondary.
type SecondaryRef struct {
	Kind  SecondaryKind
	Index int32 // valid only when Kind == SecondaryTo
}

// IsPrimary reports whether the region is not secondary to anything.
func (s SecondaryRef) IsPrimary() bool { return s.Kind == Primary }

// AlnRegion is the central alignment-candidate record (spec.md §3).
type AlnRegion struct {
	Rb, Re int64 // BWT-space reference span
	Qb, Qe int32 // query span

	Rid int32

	Score      int32 // best local SW score
	TrueScore  int32 // score after extension accumulation
	Sub        int32 // best sub-optimal overlapping score
	SubN       int32 // count of near-ties
	AltSc      int32 // score of the best ALT competitor, if any
	W          int32 // band width used
	SeedCov    int32 // bases covered by contained seeds
	SeedLen0   int32 // anchoring seed length

	Secondary    SecondaryRef
	SecondaryAll int32 // ranking among ALT+primary combined, from Phase 1

	Hash  uint64 // deterministic tie-breaker
	IsAlt bool

	MAPQ int32 // mapping quality, computed last (spec.md §4.8)

	// Deleted marks a region removed by DedupPatch (its span has been
	// collapsed to Qe==Qb). Kept as an explicit flag rather than mutating Qb
	// alone so callers don't need to remember the sentinel meaning.
	Deleted bool
}

// QSpan returns the query-span length.
func (r *AlnRegion) QSpan() int32 { return r.Qe - r.Qb }

// RSpan returns the reference-span length.
func (r *AlnRegion) RSpan() int64 { return r.Re - r.Rb }

// Valid reports the region invariants from spec.md §8: qb<qe, rb<re.
func (r *AlnRegion) Valid() bool {
	return r.Qb < r.Qe && r.Rb < r.Re
}
