// Package biosimd provides a byte-table transform over raw FASTA sequence
// bytes: ASCII cleanup. It carries only the scalar table-lookup operation
// encoding/fasta needs; the SIMD-tiered dispatch that matters for
// bit-exactness lives in extend.Dispatch (see extend/tiered.go), not in
// sequence loading.
package biosimd

var cleanASCIISeqTable = buildCleanASCIISeqTable()

func buildCleanASCIISeqTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 'N'
	}
	pairs := map[byte]byte{'A': 'A', 'a': 'A', 'C': 'C', 'c': 'C', 'G': 'G', 'g': 'G', 'T': 'T', 't': 'T'}
	for k, v := range pairs {
		t[k] = v
	}
	return t
}

// CleanASCIISeqInplace capitalizes 'a'/'c'/'g'/'t' and replaces everything
// non-ACGT with 'N'.
func CleanASCIISeqInplace(ascii8 []byte) {
	for pos, b := range ascii8 {
		ascii8[pos] = cleanASCIISeqTable[b]
	}
}
