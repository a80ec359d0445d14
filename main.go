/*
soapref
-------
The goal of this program is to generate reference kernel data for
spherical invariant (SOAP) representations of a molecular dataset,
sweeping a grid of hyperparameters and serializing the resulting
kernel matrices for use as golden data in regression tests. The
descriptors and kernels themselves are computed by an external engine
program; soapref owns the dataset slicing, the grid traversal, and the
output file.
*/

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
)

const help = `Requirements:
- a descriptor engine executable on the PATH (rascal by default,
  overridden with the engine keyword)
- a multi-frame XYZ dataset containing at least start+length
  structures
An input file of key=value lines may be given as the only argument to
override the built-in dataset, engine, and grid defaults.
Flags:
`

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	jsonDump   = flag.Bool("json_dump", false, "dump the kernel reference fixture")
	check      = flag.Bool("verify", false, "recompute an existing fixture with the engine and compare")
)

// ParseFlags parses command line flags and returns a slice of
// the remaining arguments
func ParseFlags() []string {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), help)
		flag.PrintDefaults()
	}
	flag.Parse()
	return flag.Args()
}

func errExit(err error, msg string) {
	fmt.Fprintf(os.Stderr, "soapref: %v %s\n", err, msg)
	os.Exit(1)
}

func main() {
	args := ParseFlags()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	conf := NewConfig()
	if len(args) > 0 {
		if err := conf.ParseInfile(args[0]); err != nil {
			errExit(err, "parsing input file")
		}
	}
	switch {
	case *jsonDump:
		frames, err := ReadXYZ(conf.Dataset, conf.Start, conf.Length)
		if err != nil {
			errExit(err, "reading dataset")
		}
		calc := &Rascal{Cmd: conf.Engine}
		if err := DumpReference(calc, frames, conf); err != nil {
			errExit(err, "dumping reference data")
		}
	case *check:
		calc := &Rascal{Cmd: conf.Engine}
		if err := Verify(calc, conf); err != nil {
			errExit(err, "verifying reference data")
		}
	}
}
