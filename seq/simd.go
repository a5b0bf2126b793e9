package seq

import (
	"github.com/gralign/bwamem/fmindex"
	"golang.org/x/sys/cpu"
)

// HasVectorPack reports whether the runtime supports the vectorized pack/
// unpack path. This mirrors biosimd_amd64.go's hasSSE42Asm gate, but uses
// golang.org/x/sys/cpu's portable feature detection instead of a
// linkname'd assembly probe, since this package ships no assembly of its
// own and instead dispatches tiers purely in Go (the SIMD-tiered dispatch
// that matters for bit-exactness lives in extend.Dispatch, see
// extend/tiered.go). It only reports the CPU feature: PackNibbles and
// UnpackNibbles do not consult it.
func HasVectorPack() bool {
	return cpu.X86.HasSSE42
}

// PackNibbles packs a 2-bit-alphabet slice two bases per byte, high nibble
// first. Grounded on biosimd's UnpackSeqUnsafe/PackSeqUnsafe nibble
// convention (biosimd_generic.go), generalized to the N=4 symbol: each base
// value is stored as-is in its 4-bit nibble, so N packs as 0x4,
// distinguishable from A/C/G/T.
func PackNibbles(dst []byte, src []fmindex.Base) {
	n := len(src)
	for i := 0; i < n/2; i++ {
		dst[i] = (byte(src[2*i]) << 4) | byte(src[2*i+1])
	}
	if n&1 == 1 {
		dst[n/2] = byte(src[n-1]) << 4
	}
}

// UnpackNibbles is the inverse of PackNibbles.
func UnpackNibbles(dst []fmindex.Base, src []byte) {
	n := len(dst)
	for i := 0; i < n/2; i++ {
		dst[2*i] = fmindex.Base(src[i] >> 4)
		dst[2*i+1] = fmindex.Base(src[i] & 0xf)
	}
	if n&1 == 1 {
		dst[n-1] = fmindex.Base(src[n/2] >> 4)
	}
}
