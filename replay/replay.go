// Package replay implements the differential-test scaffolding spec.md §9
// asks for when an Open Question is pinned by comparison against a
// reference implementation (e.g. the clip-vs-extend tie-break recorded in
// DESIGN.md): per-read Snapshots, a cheap per-batch scratch encoding, a
// longer-lived archival encoding, and a field-by-field Compare.
//
// Grounded on encoding/bampair/disk_mate_shard.go's snappy.NewBufferedWriter
// / snappy.Encode scratch-shard pattern (sortshard.go's per-shard
// compressed-buffer idiom) for the per-batch path, and the zstd-compressed
// columnar storage pileup/pam use for longer-lived fixtures — using
// klauspost/compress/zstd directly, since grailbio/base/recordio/
// recordiozstd's transformer-registry wrapper around it isn't vendored
// here.
package replay

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Snapshot is one read's pipeline outcome, captured for differential
// comparison against a reference implementation.
type Snapshot struct {
	ReadName     string
	PrimaryRid   int32
	PrimaryPos   int64
	PrimaryScore int32
	Cigar        string
	ClipChosen   bool // true if ExtensionAligner took the clip branch over extend
}

// EncodeBatch snappy-compresses one batch's snapshots, the cheap per-run
// scratch form spec.md §5 treats as batch-scoped and disposable unless a
// mismatch turns up.
func EncodeBatch(snapshots []Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snapshots)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

// DecodeBatch reverses EncodeBatch.
func DecodeBatch(compressed []byte) ([]Snapshot, error) {
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, err
	}
	var snapshots []Snapshot
	if err := json.Unmarshal(raw, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Archive accumulates snapshots from many batches into one zstd-compressed
// corpus: a larger, long-lived fixture appended to far more often than it
// is read, where zstd's higher ratio pays for itself.
type Archive struct {
	buf bytes.Buffer
	enc *zstd.Encoder
}

// NewArchive opens a fresh archive for appending.
func NewArchive() (*Archive, error) {
	a := &Archive{}
	enc, err := zstd.NewWriter(&a.buf)
	if err != nil {
		return nil, err
	}
	a.enc = enc
	return a, nil
}

// Append writes one batch's snapshots as a JSON line into the archive.
func (a *Archive) Append(snapshots []Snapshot) error {
	raw, err := json.Marshal(snapshots)
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	_, err = a.enc.Write(raw)
	return err
}

// Close finalizes the archive and returns its compressed bytes. The Archive
// must not be used afterward.
func (a *Archive) Close() ([]byte, error) {
	if err := a.enc.Close(); err != nil {
		return nil, err
	}
	return a.buf.Bytes(), nil
}

// ReadArchive decompresses an Archive's bytes and decodes each batch back
// into its Snapshots, in append order.
func ReadArchive(compressed []byte) ([][]Snapshot, error) {
	dec, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out [][]Snapshot
	jd := json.NewDecoder(dec)
	for {
		var snapshots []Snapshot
		if err := jd.Decode(&snapshots); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		out = append(out, snapshots)
	}
	return out, nil
}

// Mismatch is one field that disagreed between a run's snapshots and a
// reference set, keyed by read name.
type Mismatch struct {
	ReadName  string
	Field     string
	Got, Want string
}

// Compare reports every field disagreement between got (this run) and want
// (the reference implementation's run), matched by ReadName. A read present
// in got but absent from want is reported as a single "presence" mismatch.
func Compare(got, want []Snapshot) []Mismatch {
	index := make(map[string]Snapshot, len(want))
	for _, s := range want {
		index[s.ReadName] = s
	}

	var mismatches []Mismatch
	for _, g := range got {
		w, ok := index[g.ReadName]
		if !ok {
			mismatches = append(mismatches, Mismatch{ReadName: g.ReadName, Field: "presence", Got: "present", Want: "absent"})
			continue
		}
		if g.PrimaryRid != w.PrimaryRid {
			mismatches = append(mismatches, Mismatch{g.ReadName, "rid", strconv.Itoa(int(g.PrimaryRid)), strconv.Itoa(int(w.PrimaryRid))})
		}
		if g.PrimaryPos != w.PrimaryPos {
			mismatches = append(mismatches, Mismatch{g.ReadName, "pos", strconv.FormatInt(g.PrimaryPos, 10), strconv.FormatInt(w.PrimaryPos, 10)})
		}
		if g.PrimaryScore != w.PrimaryScore {
			mismatches = append(mismatches, Mismatch{g.ReadName, "score", strconv.Itoa(int(g.PrimaryScore)), strconv.Itoa(int(w.PrimaryScore))})
		}
		if g.Cigar != w.Cigar {
			mismatches = append(mismatches, Mismatch{g.ReadName, "cigar", g.Cigar, w.Cigar})
		}
		if g.ClipChosen != w.ClipChosen {
			mismatches = append(mismatches, Mismatch{g.ReadName, "clipChosen", strconv.FormatBool(g.ClipChosen), strconv.FormatBool(w.ClipChosen)})
		}
	}
	return mismatches
}
