// Package config holds the tuning constants that drive the SAP
// alignment and variant-calling engine. Everything that used to be a
// process-wide #define in the original implementation lives here as a
// field, loadable from JSON or TOML, so the engine constructor never
// reaches for a global.
package config

import (
	"encoding/json"
	"os"

	"github.com/BurntSushi/toml"
)

// Defaults mirror the DEFAULT_* constants in the original aligner and
// predictor sources.
const (
	DefaultPieceSize          = 15
	DefaultBinBits            = 27
	DefaultCutCount           = 7
	DefaultMaxGapRatio        = 0.08
	DefaultThreadCount        = 1
	DefaultMinQuality         = 0.90
	DefaultMinReadQuality     = 0.30
	DefaultMatchBonus         = 20
	DefaultGapPenalty         = 13
	DefaultFastMap            = false
	DefaultMinMatchCount      = 3
	DefaultPriorHet           = 1e-4
	DefaultPageSize           = 128 * 1024
	DefaultReadQueueDepth     = 64
	DefaultWriteQueueDepth    = 16
	DefaultCacheSize          = 4 * 1024 * 1024
	DefaultSafetyMargin       = 64 * 1024
	DefaultPrescreenBits      = 1 << 24
	DefaultPrescreenHashCount = 4
)

// Config is the single tuning record passed into every engine
// constructor. It replaces the global tuning constants described in
// the design notes.
type Config struct {
	// InputFileName is the reads file (DNA/quality line pairs).
	InputFileName string
	// ReferenceFileName is the reference file (name/DNA line pairs).
	ReferenceFileName string
	// OutputFileName is where alignment records are written.
	OutputFileName string

	// PieceSize is the k-mer length used for seeding (k).
	PieceSize int
	// BinBits sizes the hash index to 2^BinBits buckets.
	BinBits int
	// CutCount is the number of seed anchors sampled per read.
	CutCount int
	// MaxGapRatio bounds the cluster/band width as a fraction of read length.
	MaxGapRatio float64
	// ThreadCount is the number of alignment worker goroutines.
	ThreadCount int
	// MinQuality is the minimum accepted fraction of matchBonus per base.
	MinQuality float64
	// MinReadQuality is the minimum average-quality-space score for a
	// read to contribute evidence (see internal/evidenceupdate).
	MinReadQuality float64
	// MatchBonus is the DP award for a matching base.
	MatchBonus int
	// GapPenalty is the DP cost of a read-gap or ref-gap step.
	GapPenalty int
	// FastMap disables 1-mismatch seed lookups when true.
	FastMap bool
	// MinMatchCount is the minimum evidence count before the variant
	// caller considers a position.
	MinMatchCount int
	// PriorHet is the prior probability of heterozygosity (PR in spec).
	PriorHet float64

	// PageSize is the streamio page size in bytes.
	PageSize int
	// ReadQueueDepth is the reader's in-flight page bound. streamio
	// does not read it; its Reader always uses DefaultReadQueueDepth.
	ReadQueueDepth int
	// WriteQueueDepth is the writer's in-flight page bound. streamio
	// does not read it; its Writer always uses DefaultWriteQueueDepth.
	WriteQueueDepth int
	// CacheSize is a worker's per-thread output cache size.
	CacheSize int
	// SafetyMargin is the slack kept free in a worker cache before flush.
	SafetyMargin int

	// Snappy compresses the alignment-record stream when true.
	Snappy bool

	// UsePrescreen enables the Bloom-sketch fast-reject layer ahead
	// of 1-mismatch seed lookups.
	UsePrescreen bool
	// PrescreenBits sizes the Bloom sketch bit array.
	PrescreenBits uint64
	// PrescreenHashCount is the number of independent rolling hash
	// functions backing the Bloom sketch.
	PrescreenHashCount int
}

// Default returns a Config populated with the same defaults the
// original implementation compiled in.
func Default() *Config {
	return &Config{
		PieceSize:          DefaultPieceSize,
		BinBits:            DefaultBinBits,
		CutCount:           DefaultCutCount,
		MaxGapRatio:        DefaultMaxGapRatio,
		ThreadCount:        DefaultThreadCount,
		MinQuality:         DefaultMinQuality,
		MinReadQuality:     DefaultMinReadQuality,
		MatchBonus:         DefaultMatchBonus,
		GapPenalty:         DefaultGapPenalty,
		FastMap:            DefaultFastMap,
		MinMatchCount:      DefaultMinMatchCount,
		PriorHet:           DefaultPriorHet,
		PageSize:           DefaultPageSize,
		ReadQueueDepth:     DefaultReadQueueDepth,
		WriteQueueDepth:    DefaultWriteQueueDepth,
		CacheSize:          DefaultCacheSize,
		SafetyMargin:       DefaultSafetyMargin,
		UsePrescreen:       true,
		PrescreenBits:      DefaultPrescreenBits,
		PrescreenHashCount: DefaultPrescreenHashCount,
	}
}

// ReadJSON loads a Config from a JSON file, starting from Default()
// so unspecified fields keep their compiled-in values.
func ReadJSON(filename string) (*Config, error) {
	fid, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fid.Close()

	c := Default()
	dec := json.NewDecoder(fid)
	if err := dec.Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadTOML loads a Config from a TOML file, starting from Default()
// like ReadJSON. The golden-file harness under tests/ does not call
// it; it decodes its own tests.toml manifest.
func ReadTOML(filename string) (*Config, error) {
	c := Default()
	if _, err := toml.DecodeFile(filename, c); err != nil {
		return nil, err
	}
	return c, nil
}

// MaxGapSize returns floor(readLen * MaxGapRatio), the band/cluster
// width used throughout the aligner.
func (c *Config) MaxGapSize(readLen int) int {
	g := int(float64(readLen) * c.MaxGapRatio)
	if g < 0 {
		g = 0
	}
	return g
}
