// sap-align runs the seeded-and-extended banded aligner (spec.md
// §4.G) over a reads file against a reference, writing a framed
// alignment-record stream (spec.md §6).
//
// Typical invocation:
//
//	sap-align -reads reads.fdq -reference genes.fda -out aligned.txt
//
// A JSON config file can supply the same parameters; command-line
// flags override whatever it sets, matching the teacher's
// -ConfigFileName/flag overlay pattern.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/profile"

	"github.com/davidsun/SAP/internal/config"
	"github.com/davidsun/SAP/internal/pipeline"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s -reads FILE -reference FILE -out FILE [flags]\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	configFile := flag.String("config", "", "JSON config file (overlaid by flags below)")
	readsFile := flag.String("reads", "", "reads file (DNA/quality line pairs)")
	refFile := flag.String("reference", "", "reference file (name/DNA line pairs)")
	outFile := flag.String("out", "", "alignment-record output file")
	pieceSize := flag.Int("piece-size", 0, "k-mer seed length")
	binBits := flag.Int("bin-bits", 0, "hash index bucket count, as 2^n")
	cutCount := flag.Int("cut-count", 0, "number of seed anchors sampled per read")
	maxGapRatio := flag.Float64("max-gap-ratio", 0, "band/cluster width as a fraction of read length")
	threadCount := flag.Int("threads", 0, "number of alignment worker goroutines")
	minQuality := flag.Float64("min-quality", 0, "minimum accepted alignment quality fraction")
	fastMap := flag.Bool("fast-map", false, "disable 1-mismatch seed lookups")
	snappyOut := flag.Bool("snappy", false, "snappy-compress the output stream")
	doProfile := flag.Bool("profile", false, "capture a CPU profile for the run")
	help := flag.Bool("h", false, "show usage")
	flag.Parse()

	if *help {
		usage()
		return
	}

	cfg := config.Default()
	if *configFile != "" {
		c, err := config.ReadJSON(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sap-align: %v\n", err)
			os.Exit(1)
		}
		cfg = c
	}
	if *readsFile != "" {
		cfg.InputFileName = *readsFile
	}
	if *refFile != "" {
		cfg.ReferenceFileName = *refFile
	}
	if *outFile != "" {
		cfg.OutputFileName = *outFile
	}
	if *pieceSize != 0 {
		cfg.PieceSize = *pieceSize
	}
	if *binBits != 0 {
		cfg.BinBits = *binBits
	}
	if *cutCount != 0 {
		cfg.CutCount = *cutCount
	}
	if *maxGapRatio != 0 {
		cfg.MaxGapRatio = *maxGapRatio
	}
	if *threadCount != 0 {
		cfg.ThreadCount = *threadCount
	}
	if *minQuality != 0 {
		cfg.MinQuality = *minQuality
	}
	if *fastMap {
		cfg.FastMap = true
	}
	if *snappyOut {
		cfg.Snappy = true
	}

	if cfg.InputFileName == "" || cfg.ReferenceFileName == "" || cfg.OutputFileName == "" {
		usage()
		os.Exit(1)
	}

	if *doProfile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	logger := log.New(os.Stderr, "", log.Ltime)

	logger.Printf("Loading reference from %s", cfg.ReferenceFileName)
	refs, index, screen, err := pipeline.LoadReference(cfg, cfg.ReferenceFileName)
	if err != nil {
		logger.Fatalf("not open: %v", err)
	}
	logger.Printf("Loaded %d reference sequences (%d bases)", refs.Len(), refs.TotalBases())

	engine := pipeline.NewEngine(cfg, refs, index, screen)

	summary, err := engine.Run(cfg.InputFileName, cfg.OutputFileName)
	if err != nil {
		logger.Fatalf("not open: %v", err)
	}

	logger.Printf("Processing finished. Found %d in %d (%d/%d).",
		summary.Mapped, summary.Total, summary.Mapped, summary.Total)
}
