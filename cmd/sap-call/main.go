// sap-call replays an alignment-record stream into the per-base
// evidence accumulator (spec.md §4.I) and runs the Bayesian variant
// caller over the result (spec.md §4.J), writing SNP/DEL/INS records
// (spec.md §6).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/profile"

	"github.com/davidsun/SAP/internal/config"
	"github.com/davidsun/SAP/internal/evidenceupdate"
	"github.com/davidsun/SAP/internal/pipeline"
	"github.com/davidsun/SAP/internal/variantcaller"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s -reference FILE -aligned FILE -out FILE [flags]\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	configFile := flag.String("config", "", "JSON config file (overlaid by flags below)")
	refFile := flag.String("reference", "", "reference file (name/DNA line pairs)")
	alignedFile := flag.String("aligned", "", "alignment-record stream produced by sap-align")
	outFile := flag.String("out", "", "variant-call output file")
	minMatchCount := flag.Int("min-match-count", 0, "minimum evidence count before a position is considered")
	minReadQuality := flag.Float64("min-read-quality", 0, "minimum average read quality to contribute evidence")
	priorHet := flag.Float64("prior-het", 0, "prior probability of heterozygosity")
	snappyIn := flag.Bool("snappy", false, "the aligned-record stream is snappy-compressed")
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
			fmt.Fprintf(os.Stderr, "sap-call: %v\n", err)
			os.Exit(1)
		}
		cfg = c
	}
	if *refFile != "" {
		cfg.ReferenceFileName = *refFile
	}
	if *minMatchCount != 0 {
		cfg.MinMatchCount = *minMatchCount
	}
	if *minReadQuality != 0 {
		cfg.MinReadQuality = *minReadQuality
	}
	if *priorHet != 0 {
		cfg.PriorHet = *priorHet
	}
	if *snappyIn {
		cfg.Snappy = true
	}

	if cfg.ReferenceFileName == "" || *alignedFile == "" || *outFile == "" {
		usage()
		os.Exit(1)
	}

	if *doProfile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	logger := log.New(os.Stderr, "", log.Ltime)

	refs, err := pipeline.LoadReferenceTable(cfg, cfg.ReferenceFileName)
	if err != nil {
		logger.Fatalf("not open: %v", err)
	}
	logger.Printf("Loaded %d reference sequences (%d bases)", refs.Len(), refs.TotalBases())

	stats, err := evidenceupdate.ApplyFile(cfg, refs, *alignedFile)
	if err != nil {
		logger.Fatalf("not open: %v", err)
	}
	logger.Printf("Processing finished. Found %d in %d (%d/%d).",
		stats.ReadsAccepted, stats.ReadsSeen, stats.ReadsAccepted, stats.ReadsSeen)

	result := variantcaller.CallAll(refs, variantcaller.Options{
		MinMatchCount: cfg.MinMatchCount,
		PriorHet:      cfg.PriorHet,
	})

	out, err := os.Create(*outFile)
	if err != nil {
		logger.Fatalf("not open: %v", err)
	}
	defer out.Close()

	bw := bufio.NewWriter(out)
	for _, s := range result.SNPs {
		fmt.Fprintln(bw, s.String())
	}
	for _, d := range result.Deletions {
		fmt.Fprintln(bw, d.String())
	}
	for _, ins := range result.Insertions {
		fmt.Fprintln(bw, ins.String())
	}
	if err := bw.Flush(); err != nil {
		logger.Fatalf("sap-call: %v", err)
	}

	logger.Printf("Called %d SNPs, %d deletions, %d insertions",
		len(result.SNPs), len(result.Deletions), len(result.Insertions))
}
