// sap-nonmatch reports reads absent from an alignment-record stream
// (spec.md §8 S5: a short or otherwise unmapped read produces no
// output record). It is not present in the original C++ sources but
// mirrors the teacher's writeNonMatch (muscato.go), adapted from a
// sorted-name diff to a Bloom membership test over read sequences so
// the report never has to hold every mapped read in memory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/davidsun/SAP/internal/config"
	"github.com/davidsun/SAP/internal/pipeline"
	"github.com/davidsun/SAP/internal/streamio"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s -reads FILE -aligned FILE -out FILE [flags]\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	readsFile := flag.String("reads", "", "reads file originally given to sap-align")
	alignedFile := flag.String("aligned", "", "alignment-record stream produced by sap-align")
	outFile := flag.String("out", "", "unmapped-reads output file")
	snappyIn := flag.Bool("snappy", false, "the aligned-record stream is snappy-compressed")
	help := flag.Bool("h", false, "show usage")
	flag.Parse()

	if *help {
		usage()
		return
	}
	if *readsFile == "" || *alignedFile == "" || *outFile == "" {
		usage()
		os.Exit(1)
	}

	cfg := config.Default()
	cfg.Snappy = *snappyIn

	logger := log.New(os.Stderr, "", log.Ltime)

	filter, err := pipeline.ScanMappedBloom(cfg, *alignedFile)
	if err != nil {
		logger.Fatalf("not open: %v", err)
	}

	reader, err := streamio.Open(*readsFile, false, cfg.PageSize)
	if err != nil {
		logger.Fatalf("not open: %v", err)
	}
	defer reader.Close()

	out, err := os.Create(*outFile)
	if err != nil {
		logger.Fatalf("not open: %v", err)
	}
	defer out.Close()

	var total, unmapped int64
	for {
		seq, qual, ok := reader.ReadReadPair()
		if !ok {
			break
		}
		total++
		if filter.Test(seq) {
			continue
		}
		unmapped++
		out.Write(seq)
		out.Write([]byte("\n"))
		out.Write(qual)
		out.Write([]byte("\n"))
	}

	logger.Printf("Processing finished. Found %d in %d (%d/%d).",
		total-unmapped, total, total-unmapped, total)
}
