// Package seq implements the 2-bit nucleotide encoding used throughout the
// alignment core: ASCII encoding/decoding, nibble packing, and
// reverse-complementing.
// ReverseComplement is grounded on biosimd's ReverseComp2Inplace family
// (biosimd/revcomp_generic.go), generalized from the 4-symbol ACGT=0123
// alphabet to the 5-symbol alphabet (A=0,C=1,G=2,T=3,N=4) the core uses, since
// malformed input bases are coerced to N at read-parse time (spec.md §7)
// rather than rejected.
package seq

import "github.com/gralign/bwamem/fmindex"

// complementTable maps A<->T and C<->G, leaving N fixed, matching
// biosimd.revComp2Table's XOR-with-3 trick for the 4-symbol case extended
// with an explicit N entry.
var complementTable = [5]fmindex.Base{3, 2, 1, 0, 4}

// Complement returns the complementary base. N maps to itself.
func Complement(b fmindex.Base) fmindex.Base {
	if b > 4 {
		return fmindex.BaseN
	}
	return complementTable[b]
}

// ReverseComplement writes the reverse complement of src into dst. It
// panics if len(dst) != len(src), matching biosimd.ReverseComp2's contract.
func ReverseComplement(dst, src []fmindex.Base) {
	if len(dst) != len(src) {
		panic("seq: ReverseComplement requires len(dst) == len(src)")
	}
	n := len(src)
	for i, j := 0, n-1; i < n; i, j = i+1, j-1 {
		dst[i] = Complement(src[j])
	}
}

// ReverseComplementInplace reverse-complements bases in place.
func ReverseComplementInplace(bases []fmindex.Base) {
	n := len(bases)
	half := n / 2
	for i, j := 0, n-1; i != half; i, j = i+1, j-1 {
		bases[i], bases[j] = Complement(bases[j]), Complement(bases[i])
	}
	if n&1 == 1 {
		bases[half] = Complement(bases[half])
	}
}

// Reverse reverses bases in place without complementing, used to build the
// reverse query/reference slices that the left-extension banded SW consumes
// (spec.md §4.4 "Left extension").
func Reverse(bases []fmindex.Base) {
	for i, j := 0, len(bases)-1; i < j; i, j = i+1, j-1 {
		bases[i], bases[j] = bases[j], bases[i]
	}
}

// EncodeASCII coerces an ASCII nucleotide string into the 2-bit alphabet,
// mapping anything that isn't A/C/G/T (case-insensitive) to N, per the
// malformed-input handling in spec.md §7.
func EncodeASCII(s string) []fmindex.Base {
	out := make([]fmindex.Base, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = encodeByte(s[i])
	}
	return out
}

func encodeByte(c byte) fmindex.Base {
	switch c {
	case 'A', 'a':
		return fmindex.BaseA
	case 'C', 'c':
		return fmindex.BaseC
	case 'G', 'g':
		return fmindex.BaseG
	case 'T', 't':
		return fmindex.BaseT
	default:
		return fmindex.BaseN
	}
}

var decodeTable = [5]byte{'A', 'C', 'G', 'T', 'N'}

// DecodeASCII renders a 2-bit encoded slice back into an ASCII string.
func DecodeASCII(bases []fmindex.Base) string {
	out := make([]byte, len(bases))
	for i, b := range bases {
		if b > 4 {
			out[i] = 'N'
			continue
		}
		out[i] = decodeTable[b]
	}
	return string(out)
}
