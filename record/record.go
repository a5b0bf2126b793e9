// Package record converts a finalized AlnRegion (plus its CIGAR/NM/MD and
// MAPQ) into the output record contract of spec.md §6 "To the output
// collaborator": a *sam.Record with aux tags in the fixed AS, XS, NM, MD, MC,
// pa, SA, XA, RG, XR, CO order. It is grounded on markduplicates's
// conditional-aux-append pattern (mark_duplicates.go's flagRead), generalized
// from duplicate-marking tags to the alignment-core's own tag set.
package record

import (
	"bytes"
	"strconv"

	"github.com/gralign/bwamem/cigar"
	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/region"
	"github.com/grailbio/hts/sam"
)

// Builder holds the per-reference sam.Header built once from the
// collaborator's contig metadata, the way a BAM writer is handed one
// Header for the life of a run.
type Builder struct {
	meta fmindex.Metadata
	opts *config.Options
	refs []*sam.Reference
	hdr  *sam.Header
}

// NewBuilder constructs one sam.Reference per contig (order must match
// meta.Contigs()) and a matching sam.Header, then returns a Builder that
// reuses them for every record in the run.
func NewBuilder(meta fmindex.Metadata, opts *config.Options) (*Builder, error) {
	contigs := meta.Contigs()
	refs := make([]*sam.Reference, len(contigs))
	for i, c := range contigs {
		ref, err := sam.NewReference(c.Name, "", "", int(c.Length), nil, nil)
		if err != nil {
			return nil, err
		}
		refs[i] = ref
	}
	hdr, err := sam.NewHeader(nil, refs)
	if err != nil {
		return nil, err
	}
	return &Builder{meta: meta, opts: opts, refs: refs, hdr: hdr}, nil
}

// Header returns the shared header every record produced by this builder is
// associated with.
func (b *Builder) Header() *sam.Header { return b.hdr }

// ReadInput is the raw read data common to every record emitted for one
// read: forward-orientation (never reverse-complemented) sequence/quality,
// plus the optional FASTQ comment and read-group carried through to CO/RG.
type ReadInput struct {
	Name      string
	Seq       []fmindex.Base // 2-bit alphabet, original read orientation
	Qual      []byte         // Phred-scaled, same orientation as Seq
	Comment   string
	ReadGroup string
}

// MateInfo describes the other end of a pair, if any, for MC/mate-field
// population. Reverse/Rid/Pos are forward-strand, 0-based.
type MateInfo struct {
	Mapped  bool
	Rid     int32
	Pos     int64
	Reverse bool
	Cigar   *cigar.Result // the mate's own finalized CIGAR, for the MC tag
}

// XAHit is one other-hit entry folded into the XA tag, or one split-segment
// entry folded into the SA tag (spec.md §6: "SA and XA CIGARs always use
// soft-clip form").
type XAHit struct {
	Contig  string
	Pos     int64 // 0-based forward-strand
	Reverse bool
	Cigar   *cigar.Result
	NM      int32
	MapQ    int32 // only meaningful for SA entries
}

// Context carries everything about a record's place in the batch besides
// the region/read themselves: pairing flags, alternate-hit lists, and the
// fixed-order aux tag inputs that don't live on AlnRegion.
type Context struct {
	Paired         bool
	Read1          bool
	Reverse        bool // region's strand; AlnRegion itself is strand-agnostic BWT space
	ProperPair     bool
	Secondary      bool
	Supplementary  bool
	Mate           MateInfo
	PairScoreRatio *float64 // "pa" tag; nil suppresses the tag
	XAHits         []XAHit
	SAHits         []XAHit
}

// BuildUnmapped constructs the unmapped record emitted when a read has no
// region above minOutputScore, per spec.md §7 "degrade to unmapped".
func (b *Builder) BuildUnmapped(read ReadInput, ctx Context) (*sam.Record, error) {
	flags := sam.Unmapped
	flags |= b.pairFlags(ctx)

	var mateRef *sam.Reference
	mPos := -1
	if ctx.Mate.Mapped {
		mateRef = b.refs[ctx.Mate.Rid]
		mPos = int(ctx.Mate.Pos)
		if ctx.Mate.Reverse {
			flags |= sam.MateReverse
		}
	} else if ctx.Paired {
		flags |= sam.MateUnmapped
	}

	seq := decodeSeq(read.Seq)
	rec, err := sam.NewRecord(read.Name, nil, mateRef, -1, mPos, 0, 0, nil, seq, read.Qual, nil)
	if err != nil {
		return nil, err
	}
	rec.Flags = flags
	aux, err := b.buildAux(nil, nil, read, ctx)
	if err != nil {
		return nil, err
	}
	rec.AuxFields = aux
	return rec, nil
}

// BuildMapped constructs one record for a finalized, CIGAR-generated region.
// hardClip requests hard-clip rendering of the leading/trailing soft clips
// (used for supplementary records when opts.Flags lacks SoftClip, spec.md
// §6 flag bits); the SEQ/QUAL fields are trimmed to match.
func (b *Builder) BuildMapped(read ReadInput, reg *region.AlnRegion, cig *cigar.Result, localPos int64, hardClip bool, ctx Context) (*sam.Record, error) {
	ref := b.refs[reg.Rid]

	ops, clipStart, clipEnd := toSamCigar(cig.Ops, hardClip)
	seq := decodeSeq(read.Seq)
	qual := read.Qual
	if hardClip {
		seq = seq[clipStart : len(seq)-clipEnd]
		if qual != nil {
			qual = qual[clipStart : len(qual)-clipEnd]
		}
	}

	flags := b.pairFlags(ctx)
	if reg.Secondary.Kind != region.Primary || ctx.Secondary {
		flags |= sam.Secondary
	}
	if ctx.Supplementary {
		flags |= sam.Supplementary
	}
	if ctx.Reverse {
		flags |= sam.Reverse
	}

	var mateRef *sam.Reference
	mPos := -1
	if ctx.Mate.Mapped {
		mateRef = b.refs[ctx.Mate.Rid]
		mPos = int(ctx.Mate.Pos)
		if ctx.Mate.Reverse {
			flags |= sam.MateReverse
		}
	} else if ctx.Paired {
		flags |= sam.MateUnmapped
	}

	mapq := reg.MAPQ
	if ctx.Supplementary && !b.opts.Flags.Has(config.KeepSuppMapq) {
		mapq = 0
	}

	rec, err := sam.NewRecord(read.Name, ref, mateRef, int(localPos), mPos, int(tlen(localPos, reg.RSpan(), ctx)), byte(mapq), ops, seq, qual, nil)
	if err != nil {
		return nil, err
	}
	rec.Flags = flags
	aux, err := b.buildAux(reg, cig, read, ctx)
	if err != nil {
		return nil, err
	}
	rec.AuxFields = aux
	return rec, nil
}

func (b *Builder) pairFlags(ctx Context) sam.Flags {
	var f sam.Flags
	if ctx.Paired {
		f |= sam.Paired
		if ctx.Read1 {
			f |= sam.Read1
		} else {
			f |= sam.Read2
		}
		if ctx.ProperPair {
			f |= sam.ProperPair
		}
	}
	return f
}

func tlen(localPos, refSpan int64, ctx Context) int64 {
	if !ctx.Paired || !ctx.Mate.Mapped {
		return 0
	}
	// Outer-coordinate template length, signed by read order. The mate's
	// reference span is taken to be refSpan as well.
	left, right := localPos, localPos+refSpan
	if ctx.Mate.Pos < left {
		left = ctx.Mate.Pos
	}
	if ctx.Mate.Pos+refSpan > right {
		right = ctx.Mate.Pos + refSpan
	}
	t := right - left
	if ctx.Mate.Pos < localPos {
		return -t
	}
	return t
}

// toSamCigar converts the finalized cigar.Result ops into sam.CigarOp,
// optionally rendering the leading/trailing soft clips as hard clips, and
// reports how many bases at each end must then be trimmed from SEQ/QUAL.
func toSamCigar(ops []cigar.Op, hardClip bool) (sam.Cigar, int, int) {
	out := make(sam.Cigar, 0, len(ops))
	var clipStart, clipEnd int
	for i, op := range ops {
		t := samOpType(op.Type)
		if hardClip && op.Type == cigar.OpSoftClip {
			t = sam.CigarHardClipped
			if i == 0 {
				clipStart = int(op.Len)
			} else {
				clipEnd = int(op.Len)
			}
		}
		out = append(out, sam.NewCigarOp(t, int(op.Len)))
	}
	return out, clipStart, clipEnd
}

func samOpType(t cigar.OpType) sam.CigarOpType {
	switch t {
	case cigar.OpMatch:
		return sam.CigarMatch
	case cigar.OpIns:
		return sam.CigarInsertion
	case cigar.OpDel:
		return sam.CigarDeletion
	case cigar.OpSoftClip:
		return sam.CigarSoftClipped
	default:
		return sam.CigarMatch
	}
}

// cigarString always renders in soft-clip form, per spec.md §6's "SA and XA
// CIGARs always use soft-clip form even if the main CIGAR uses hard-clip".
func cigarString(ops []cigar.Op) string {
	var buf bytes.Buffer
	letters := [...]byte{cigar.OpMatch: 'M', cigar.OpIns: 'I', cigar.OpDel: 'D', cigar.OpSoftClip: 'S'}
	for _, op := range ops {
		buf.Write(strconv.AppendInt(nil, int64(op.Len), 10))
		buf.WriteByte(letters[op.Type])
	}
	return buf.String()
}

func decodeSeq(bases []fmindex.Base) []byte {
	const letters = "ACGTN"
	out := make([]byte, len(bases))
	for i, b := range bases {
		if int(b) >= len(letters) {
			out[i] = 'N'
			continue
		}
		out[i] = letters[b]
	}
	return out
}

// buildAux appends the fixed-order aux tags AS, XS, NM, MD, MC, pa, SA, XA,
// RG, XR, CO (spec.md §6), omitting any tag whose underlying value is absent
// for this record — mirroring markduplicates.flagRead's conditional append.
func (b *Builder) buildAux(reg *region.AlnRegion, cig *cigar.Result, read ReadInput, ctx Context) (sam.AuxFields, error) {
	var aux sam.AuxFields

	appendAux := func(tag string, v interface{}) error {
		a, err := sam.NewAux(sam.NewTag(tag), v)
		if err != nil {
			return err
		}
		aux = append(aux, a)
		return nil
	}

	if reg != nil {
		if err := appendAux("AS", int(reg.TrueScore)); err != nil {
			return nil, err
		}
		if reg.Sub > 0 {
			if err := appendAux("XS", int(reg.Sub)); err != nil {
				return nil, err
			}
		}
	}
	if cig != nil {
		if err := appendAux("NM", int(cig.NM)); err != nil {
			return nil, err
		}
		if err := appendAux("MD", cig.MD); err != nil {
			return nil, err
		}
	}
	if ctx.Mate.Mapped && ctx.Mate.Cigar != nil {
		if err := appendAux("MC", cigarString(ctx.Mate.Cigar.Ops)); err != nil {
			return nil, err
		}
	}
	if ctx.PairScoreRatio != nil {
		if err := appendAux("pa", float32(*ctx.PairScoreRatio)); err != nil {
			return nil, err
		}
	}
	if len(ctx.SAHits) > 0 {
		if err := appendAux("SA", joinHits(ctx.SAHits, true)); err != nil {
			return nil, err
		}
	}
	maxXA := b.opts.MaxXAHits
	if reg != nil && reg.IsAlt {
		maxXA = b.opts.MaxXAHitsAlt
	}
	if n := len(ctx.XAHits); n > 0 && int32(n) <= maxXA {
		if err := appendAux("XA", joinHits(ctx.XAHits, false)); err != nil {
			return nil, err
		}
	}
	if read.ReadGroup != "" {
		if err := appendAux("RG", read.ReadGroup); err != nil {
			return nil, err
		}
	}
	if reg != nil && reg.IsAlt {
		contig := b.meta.Contigs()[reg.Rid]
		if err := appendAux("XR", contig.Name); err != nil {
			return nil, err
		}
	}
	if read.Comment != "" {
		if err := appendAux("CO", read.Comment); err != nil {
			return nil, err
		}
	}
	return aux, nil
}

// joinHits renders the ';'-separated XA/SA entry list. SA entries carry the
// strand as its own field and include mapQ (rname,pos,strand,CIGAR,mapQ,NM;);
// XA entries carry the strand as the sign of pos and omit mapQ
// (rname,±pos,CIGAR,NM;), matching the conventional BWA-MEM tag shapes.
func joinHits(hits []XAHit, withMapQ bool) string {
	var buf bytes.Buffer
	for _, h := range hits {
		buf.WriteString(h.Contig)
		buf.WriteByte(',')
		strand := byte('+')
		if h.Reverse {
			strand = '-'
		}
		if withMapQ {
			buf.Write(strconv.AppendInt(nil, h.Pos+1, 10))
			buf.WriteByte(',')
			buf.WriteByte(strand)
		} else {
			buf.WriteByte(strand)
			buf.Write(strconv.AppendInt(nil, h.Pos+1, 10))
		}
		buf.WriteByte(',')
		buf.WriteString(cigarString(h.Cigar.Ops))
		buf.WriteByte(',')
		if withMapQ {
			buf.Write(strconv.AppendInt(nil, int64(h.MapQ), 10))
			buf.WriteByte(',')
		}
		buf.Write(strconv.AppendInt(nil, int64(h.NM), 10))
		buf.WriteByte(';')
	}
	return buf.String()
}
