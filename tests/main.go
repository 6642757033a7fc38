// test is a script that runs SAP's golden-file subprocess tests,
// adapted from the teacher's tests/test.go: each entry in tests.toml
// names a binary, its arguments, and a set of output/golden file
// pairs that must have identical line-by-line content after the
// binary runs.
//
// tests.toml and the fixture paths are opened relative to the working
// directory, so run the tests from this directory:
//
//	cd tests && go run .
package main

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/golang/snappy"
)

var logger *log.Logger

// Test is one golden-file scenario: run Command with Opts plus every
// FileOpts pair (its filename resolved relative to Base), then
// compare each Files pair (also resolved relative to Base).
type Test struct {
	Name     string
	Base     string
	Command  string
	Opts     []string
	FileOpts [][2]string
	Files    [][2]string
}

func getTests() []Test {
	fid, err := os.Open("tests.toml")
	if err != nil {
		panic(err)
	}
	s, err := ioutil.ReadAll(fid)
	if err != nil {
		panic(err)
	}
	fid.Close()

	type vd struct {
		Test []Test
	}
	var v vd
	if _, err := toml.Decode(string(s), &v); err != nil {
		panic(err)
	}

	logger.Printf("Found %d tests\n", len(v.Test))
	return v.Test
}

// getScanner returns a scanner over f, transparently decompressing
// snappy-compressed (.sz) files.
func getScanner(f string) (*bufio.Scanner, io.Closer) {
	h, err := os.Open(f)
	if err != nil {
		panic(err)
	}

	var r io.Reader = h
	if strings.HasSuffix(f, ".sz") {
		r = snappy.NewReader(h)
	}
	return bufio.NewScanner(r), h
}

// compare panics unless f1 and f2 have identical line-by-line content.
func compare(f1, f2 string) {
	s1, c1 := getScanner(f1)
	defer c1.Close()
	s2, c2 := getScanner(f2)
	defer c2.Close()

	for {
		q1 := s1.Scan()
		q2 := s2.Scan()
		if q1 != q2 {
			panic(fmt.Sprintf("%s and %s have different numbers of lines", f1, f2))
		}
		if !q1 {
			break
		}
		if v1, v2 := s1.Text(), s2.Text(); v1 != v2 {
			panic(fmt.Sprintf("%s\nin file %s\ndiffers from\n%s\nin file %s", v1, f1, v2, f2))
		}
	}
	if err := s1.Err(); err != nil {
		panic(err)
	}
	if err := s2.Err(); err != nil {
		panic(err)
	}
}

func run(tests []Test) {
	for _, t := range tests {
		args := append([]string{}, t.Opts...)
		for _, fo := range t.FileOpts {
			args = append(args, fo[0], path.Join(t.Base, fo[1]))
		}

		logger.Printf("%s", t.Name)
		logger.Printf("running %s %v", t.Command, args)
		cmd := exec.Command(t.Command, args...)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			panic(err)
		}

		for _, fp := range t.Files {
			compare(path.Join(t.Base, fp[0]), path.Join(t.Base, fp[1]))
		}
		logger.Printf("done")
	}
}

func setupLog() {
	fid, err := os.Create("test.log")
	if err != nil {
		panic(err)
	}
	logger = log.New(fid, "", log.Ltime)
}

func main() {
	setupLog()
	run(getTests())
}
