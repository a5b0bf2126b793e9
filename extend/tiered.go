package extend

import (
	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
)

// SW8 runs the 8-bit tier. It returns nil if any intermediate H would
// overflow the tier's ceiling (spec.md §4.4 "returns nil on overflow").
func SW8(query, target []fmindex.Base, h0, bandWidth int32, sc config.Scoring, zDrop int32) *SWResult {
	res, overflow := bandedSW(query, target, h0, bandWidth, sc, zDrop, width8)
	if overflow {
		return nil
	}
	return res
}

// SW16 runs the 16-bit tier, the fallback when SW8 overflows. It returns nil
// if any intermediate H would overflow the 16-bit ceiling.
func SW16(query, target []fmindex.Base, h0, bandWidth int32, sc config.Scoring, zDrop int32) *SWResult {
	res, _ := bandedSW(query, target, h0, bandWidth, sc, zDrop, width16)
	return res
}

// SWScalar runs the reference (unbounded) tier used as the differential-test
// baseline for SW8/SW16, matching spec.md §8's "scalar, 16-bit, and 8-bit
// (when it returns a value) extension SW produce identical scores".
func SWScalar(query, target []fmindex.Base, h0, bandWidth int32, sc config.Scoring, zDrop int32) *SWResult {
	res, _ := bandedSW(query, target, h0, bandWidth, sc, zDrop, widthScalar)
	return res
}

// Dispatch runs the tiered dispatch: 8-bit first, falling back to 16-bit on
// overflow and to the scalar tier if 16-bit overflows too, per spec.md §4.4.
// It never returns nil.
func Dispatch(query, target []fmindex.Base, h0, bandWidth int32, sc config.Scoring, zDrop int32) *SWResult {
	if r := SW8(query, target, h0, bandWidth, sc, zDrop); r != nil {
		return r
	}
	if r := SW16(query, target, h0, bandWidth, sc, zDrop); r != nil {
		return r
	}
	return SWScalar(query, target, h0, bandWidth, sc, zDrop)
}
