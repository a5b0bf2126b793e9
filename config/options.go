// Package config holds the scoring parameters and behavior flags that drive
// every stage of the alignment core, mirroring the commandline/derived split
// used by markduplicates.Opts and fusion.Opts in the teacher packages.
package config

import "fmt"

// FlagBits are the configuration flag bits enumerated in the external
// interface contract.
type FlagBits uint32

const (
	// NoMulti marks a shorter split alignment as secondary rather than
	// supplementary.
	NoMulti FlagBits = 1 << iota
	// SoftClip makes supplementary alignments use soft clips instead of hard
	// clips.
	SoftClip
	// Primary5 makes the smallest-coordinate segment of a split alignment
	// primary.
	Primary5
	// KeepSuppMapq keeps the computed MAPQ on supplementary records instead
	// of zeroing it.
	KeepSuppMapq
	// NoRescue disables mate rescue.
	NoRescue
	// NoPairing disables paired-end resolution entirely; mates are scored
	// independently.
	NoPairing
	// NoAlt disables ALT-aware behavior in chain filtering and secondary
	// marking.
	NoAlt
	// All emits every region as its own record instead of collapsing
	// secondaries into an XA tag.
	All
)

func (f FlagBits) Has(bit FlagBits) bool { return f&bit != 0 }

// Scoring holds the match/mismatch/gap costs shared read-only across the
// batch, as described in §6 Configuration.
type Scoring struct {
	MatchScore               int32
	MismatchPenalty          int32
	GapOpenPenalty           int32 // insertion
	GapExtendPenalty         int32 // insertion
	GapOpenPenaltyDeletion   int32
	GapExtendPenaltyDeletion int32
	PenClip5                 int32
	PenClip3                 int32
	UnpairedPenalty          int32
}

// DefaultScoring matches the scenario defaults used throughout spec.md §8:
// match=1, mismatch=4, open=6, ext=1, clip=5.
func DefaultScoring() Scoring {
	return Scoring{
		MatchScore:               1,
		MismatchPenalty:          4,
		GapOpenPenalty:           6,
		GapExtendPenalty:         1,
		GapOpenPenaltyDeletion:   6,
		GapExtendPenaltyDeletion: 1,
		PenClip5:                5,
		PenClip3:                5,
		UnpairedPenalty:          17,
	}
}

// Options is the full configuration surface of the alignment core: scoring
// plus the chain/extension/seed tunables plus behavior flags plus the
// worker-pool size. It is constructed once per run and passed by reference
// through every stage.
type Options struct {
	Scoring

	BandWidth       int32
	ZDrop           int32
	MinSeedLength   int32
	MaxOccurrences  int32
	ReseedLength    int32
	SeedSplitRatio  float64
	SplitWidth      int32
	MinOutputScore  int32
	MaxChainGap     int32
	MinChainWeight  int32
	ChainDropRatio  float64
	MaskLevel       float64
	MaskLevelRedun  float64
	MaxMatesw       int32
	MaxXAHits       int32
	MaxXAHitsAlt    int32

	Flags      FlagBits
	NumThreads int
}

// DefaultOptions returns the conventional BWA-MEM-compatible defaults.
func DefaultOptions() *Options {
	return &Options{
		Scoring:        DefaultScoring(),
		BandWidth:      100,
		ZDrop:          100,
		MinSeedLength:  19,
		MaxOccurrences: 500,
		ReseedLength:   28,
		SeedSplitRatio: 0.5,
		SplitWidth:     10,
		MinOutputScore: 30,
		MaxChainGap:    10000,
		MinChainWeight: 0,
		ChainDropRatio: 0.5,
		MaskLevel:      0.5,
		MaskLevelRedun: 0.95,
		MaxMatesw:      50,
		MaxXAHits:      5,
		MaxXAHitsAlt:   200,
		NumThreads:     1,
	}
}

// Validate checks that every parameter is in a sane range before the core
// pipeline starts running, the way markduplicates.validate checks Opts.
func (o *Options) Validate() error {
	if o.MatchScore <= 0 {
		return fmt.Errorf("config: matchScore must be positive, got %d", o.MatchScore)
	}
	if o.MinSeedLength <= 0 {
		return fmt.Errorf("config: minSeedLength must be positive, got %d", o.MinSeedLength)
	}
	if o.MaxOccurrences <= 0 {
		return fmt.Errorf("config: maxOccurrences must be positive, got %d", o.MaxOccurrences)
	}
	if o.NumThreads <= 0 {
		return fmt.Errorf("config: numThreads must be positive, got %d", o.NumThreads)
	}
	if o.MaskLevel < 0 || o.MaskLevel > 1 {
		return fmt.Errorf("config: maskLevel must be in [0,1], got %f", o.MaskLevel)
	}
	if o.MaskLevelRedun < 0 || o.MaskLevelRedun > 1 {
		return fmt.Errorf("config: maskLevelRedun must be in [0,1], got %f", o.MaskLevelRedun)
	}
	return nil
}

// MinSeedLengthSplit computes floor(minSeedLength*seedSplitRatio + 0.499),
// the midpoint-reseeding eligibility threshold from §4.2.
func (o *Options) MinSeedLengthSplit() int32 {
	return int32(float64(o.MinSeedLength)*o.SeedSplitRatio + 0.499)
}
