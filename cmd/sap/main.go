// sap is the top-level orchestrator: it chains sap-align and sap-call
// over a Unix FIFO so the variant-calling pass can start consuming
// alignment records before alignment finishes, the same two-stage
// pipe-through-FIFO shape as the teacher's muscato.go, built on the
// same scipipe process graph, google/uuid run-scoped naming, and
// golang.org/x/sys/unix.Mkfifo.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/scipipe/scipipe"
	"golang.org/x/sys/unix"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s -reads FILE -reference FILE -out FILE [flags]\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	reads := flag.String("reads", "", "reads file (DNA/quality line pairs)")
	reference := flag.String("reference", "", "reference file (name/DNA line pairs)")
	out := flag.String("out", "", "variant-call output file")
	threads := flag.String("threads", "", "alignment worker thread count, passed through to sap-align")
	fastMap := flag.Bool("fast-map", false, "disable 1-mismatch seed lookups in sap-align")
	keepTemp := flag.Bool("keep-temp", false, "do not remove the run's temp directory on exit")
	help := flag.Bool("h", false, "show usage")
	flag.Parse()

	if *help {
		usage()
		return
	}
	if *reads == "" || *reference == "" || *out == "" {
		usage()
		os.Exit(1)
	}

	runID, err := uuid.NewUUID()
	if err != nil {
		log.Fatalf("sap: %v", err)
	}

	tmpDir := path.Join(os.TempDir(), "sap-"+runID.String())
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		log.Fatalf("sap: %v", err)
	}
	if !*keepTemp {
		defer os.RemoveAll(tmpDir)
	}

	logFile, err := os.Create(path.Join(tmpDir, "sap.log"))
	if err != nil {
		log.Fatalf("sap: %v", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.Ltime)
	logger.Printf("run %s: reads=%s reference=%s out=%s", runID, *reads, *reference, *out)

	fifoPath := path.Join(tmpDir, "aligned.fifo")
	if err := unix.Mkfifo(fifoPath, 0644); err != nil {
		log.Fatalf("sap: mkfifo: %v", err)
	}

	alignArgs := fmt.Sprintf("-reads %s -reference %s -out {o:aligned}", *reads, *reference)
	if *threads != "" {
		alignArgs += " -threads " + *threads
	}
	if *fastMap {
		alignArgs += " -fast-map"
	}

	wf := scipipe.NewWorkflow("sap", 2)

	alignProc := wf.NewProc("align", "sap-align "+alignArgs)
	alignProc.SetPathStatic("aligned", fifoPath)

	callProc := wf.NewProc("call", fmt.Sprintf("sap-call -reference %s -aligned {i:aligned} -out %s", *reference, *out))
	callProc.In("aligned").Connect(alignProc.Out("aligned"))

	wf.AddProcs(alignProc, callProc)
	wf.SetDriver(callProc)

	logger.Printf("starting align | call pipeline over %s", fifoPath)
	wf.Run()
	logger.Printf("All done, exit after cleanup")
}
