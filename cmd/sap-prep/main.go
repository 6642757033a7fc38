// sap-prep converts FASTA reference files and FASTQ read files into
// the internal line-pair formats the rest of SAP consumes (spec.md
// §6: "Converters outside the core turn FASTQ into this" /
// "FASTA is converted to this form"), grounded on FastaToFDA.cpp,
// FastqToFDQ.cpp, and the teacher's muscato_prep_targets/
// muscato_prep_reads tools.
package main

import (
	"fmt"
	"os"

	"github.com/davidsun/SAP/internal/convert"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s fasta|fastq IN OUT\n", os.Args[0])
}

func main() {
	if len(os.Args) != 4 {
		usage()
		os.Exit(1)
	}

	mode, inPath, outPath := os.Args[1], os.Args[2], os.Args[3]

	in, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sap-prep: not open: %v\n", err)
		os.Exit(1)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sap-prep: not open: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	switch mode {
	case "fasta":
		err = convert.FastaToReference(in, out)
	case "fastq":
		err = convert.FastqToReads(in, out)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "sap-prep: %v\n", err)
		os.Exit(1)
	}
}
