// Package seed converts SMEMs into positioned seeds and groups collinear
// seeds into chains per reference contig (spec.md §4.1), and implements
// midpoint reseeding (§4.2).
package seed

// Seed is one materialized exact match: (rbeg in BWT space, qbeg, len,
// score). Score is conventionally len*matchScore. Immutable once built.
type Seed struct {
	RBeg  int64
	QBeg  int32
	Len   int32
	Score int32
}

// QEnd returns the query-space end (exclusive) of the seed.
func (s Seed) QEnd() int32 { return s.QBeg + s.Len }

// REnd returns the reference-space end (exclusive) of the seed.
func (s Seed) REnd() int64 { return s.RBeg + int64(s.Len) }

// Chain is an ordered, collinear group of seeds sharing one reference
// contig.
type Chain struct {
	Seeds []Seed

	Weight  int32
	Rid     int32
	Pos     int64 // first seed's rbeg
	IsAlt   bool
	Kept    int32
	FracRep float32
}

// Span returns the chain's query span, from the smallest seed qbeg to the
// largest seed qend, matching the conventional BWA-MEM chain query-span
// definition used for the overlap computations in §4.3 and §4.6.
func (c *Chain) Span() (qb, qe int32) {
	if len(c.Seeds) == 0 {
		return 0, 0
	}
	qb, qe = c.Seeds[0].QBeg, c.Seeds[0].QEnd()
	for _, s := range c.Seeds[1:] {
		if s.QBeg < qb {
			qb = s.QBeg
		}
		if s.QEnd() > qe {
			qe = s.QEnd()
		}
	}
	return qb, qe
}
