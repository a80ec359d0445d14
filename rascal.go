package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// Errors used throughout
var (
	ErrEngineNotFound = errors.New("engine executable not found")
	ErrEngineFailed   = errors.New("engine reported an error")
	ErrBadReply       = errors.New("malformed engine reply")
)

// RepHypers holds the hyperparameters of a spherical invariant
// descriptor. The json keys match the names the engine expects and
// the cbor keys match the hypers_rep record in the reference file
type RepHypers struct {
	InteractionCutoff     float64 `json:"interaction_cutoff" cbor:"interaction_cutoff"`
	CutoffSmoothWidth     float64 `json:"cutoff_smooth_width" cbor:"cutoff_smooth_width"`
	MaxRadial             int     `json:"max_radial" cbor:"max_radial"`
	MaxAngular            int     `json:"max_angular" cbor:"max_angular"`
	GaussianSigmaType     string  `json:"gaussian_sigma_type" cbor:"gaussian_sigma_type"`
	GaussianSigmaConstant float64 `json:"gaussian_sigma_constant" cbor:"gaussian_sigma_constant"`
	SoapType              string  `json:"soap_type" cbor:"soap_type"`
	CutoffFunctionType    string  `json:"cutoff_function_type" cbor:"cutoff_function_type"`
	Normalize             bool    `json:"normalize" cbor:"normalize"`
	RadialBasis           string  `json:"radial_basis" cbor:"radial_basis"`
}

// KernelHypers holds the hyperparameters of a kernel evaluation
type KernelHypers struct {
	Name       string `json:"name" cbor:"name"`
	TargetType string `json:"target_type" cbor:"target_type"`
	Zeta       int    `json:"zeta" cbor:"zeta"`
}

// Descriptors holds the engine's transform output: the
// hyperparameters as resolved by the engine, one feature row per
// atomic center, and the index of the structure owning each row
type Descriptors struct {
	Hypers   RepHypers
	Rows     [][]float64
	Structs  []int
	NStructs int
}

// Calculator computes descriptors and kernels for a set of frames.
// Rascal is the production implementation; tests substitute their own
type Calculator interface {
	Transform(frames []Frame, hyp RepHypers) (*Descriptors, error)
	Kernel(d *Descriptors, hyp KernelHypers) (*mat.Dense, error)
}

// Rascal drives the external descriptor engine. Each call writes a
// JSON request to Dir, runs Cmd with stdin and stdout redirected, and
// parses the JSON reply
type Rascal struct {
	Cmd string
	Dir string // scratch directory, os.TempDir if empty
}

type engineFrame struct {
	Numbers   []int       `json:"numbers"`
	Positions [][]float64 `json:"positions"`
}

type transformRequest struct {
	Task   string        `json:"task"`
	Hypers RepHypers     `json:"hypers"`
	Frames []engineFrame `json:"frames"`
}

type transformReply struct {
	Hypers     RepHypers   `json:"hypers"`
	Features   [][]float64 `json:"features"`
	Structures []int       `json:"structures"`
}

type kernelRequest struct {
	Task        string       `json:"task"`
	Kernel      KernelHypers `json:"kernel"`
	Features    [][]float64  `json:"features"`
	Structures  []int        `json:"structures"`
	NStructures int          `json:"nstructures"`
}

type kernelReply struct {
	Kernel [][]float64 `json:"kernel"`
}

// RunProgram runs a program, redirecting STDIN from filename.in
// and STDOUT to filename.out
func RunProgram(progName, filename string) error {
	infile := filename + ".in"
	outfile := filename + ".out"
	cmd := exec.Command(progName)
	f, err := os.Open(infile)
	if err != nil {
		return err
	}
	defer f.Close()
	cmd.Stdin = f
	of, err := os.Create(outfile)
	if err != nil {
		return err
	}
	defer of.Close()
	cmd.Stdout = of
	cmd.Dir = filepath.Dir(filename)
	return cmd.Run()
}

// run marshals req to the engine input file, runs the engine, and
// unmarshals the reply into reply
func (r *Rascal) run(req, reply interface{}) error {
	if _, err := exec.LookPath(r.Cmd); err != nil {
		return fmt.Errorf("%w: %q", ErrEngineNotFound, r.Cmd)
	}
	dir := r.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	base := filepath.Join(dir, "rascal")
	buf, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+".in", buf, 0644); err != nil {
		return err
	}
	if err := RunProgram(r.Cmd, base); err != nil {
		return fmt.Errorf("%w: %v", ErrEngineFailed, err)
	}
	buf, err = os.ReadFile(base + ".out")
	if err != nil {
		return err
	}
	var status struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(buf, &status); err != nil {
		return fmt.Errorf("%w: %v", ErrBadReply, err)
	}
	if status.Error != "" {
		return fmt.Errorf("%w: %s", ErrEngineFailed, status.Error)
	}
	if err := json.Unmarshal(buf, reply); err != nil {
		return fmt.Errorf("%w: %v", ErrBadReply, err)
	}
	return nil
}

// Transform constructs a descriptor from hyp and evaluates it on
// frames. The returned hyperparameters are the ones the engine
// actually used
func (r *Rascal) Transform(frames []Frame, hyp RepHypers) (*Descriptors, error) {
	req := transformRequest{
		Task:   "transform",
		Hypers: hyp,
		Frames: make([]engineFrame, len(frames)),
	}
	for i, fr := range frames {
		nums, err := fr.Numbers()
		if err != nil {
			return nil, err
		}
		req.Frames[i] = engineFrame{Numbers: nums, Positions: fr.Positions()}
	}
	var reply transformReply
	if err := r.run(req, &reply); err != nil {
		return nil, err
	}
	if len(reply.Features) == 0 ||
		len(reply.Structures) != len(reply.Features) {
		return nil, fmt.Errorf("%w: %d feature rows for %d structure indices",
			ErrBadReply, len(reply.Features), len(reply.Structures))
	}
	for _, s := range reply.Structures {
		if s < 0 || s >= len(frames) {
			return nil, fmt.Errorf("%w: structure index %d out of range",
				ErrBadReply, s)
		}
	}
	return &Descriptors{
		Hypers:   reply.Hypers,
		Rows:     reply.Features,
		Structs:  reply.Structures,
		NStructs: len(frames),
	}, nil
}

// Kernel evaluates the kernel described by hyp on d against itself.
// The resulting matrix is square with one row per structure for
// target type "structure" and one row per atomic center for "atom"
func (r *Rascal) Kernel(d *Descriptors, hyp KernelHypers) (*mat.Dense, error) {
	req := kernelRequest{
		Task:        "kernel",
		Kernel:      hyp,
		Features:    d.Rows,
		Structures:  d.Structs,
		NStructures: d.NStructs,
	}
	var reply kernelReply
	if err := r.run(req, &reply); err != nil {
		return nil, err
	}
	n := d.NStructs
	if hyp.TargetType == "atom" {
		n = len(d.Rows)
	}
	if len(reply.Kernel) != n {
		return nil, fmt.Errorf("%w: kernel has %d rows, want %d",
			ErrBadReply, len(reply.Kernel), n)
	}
	flat := make([]float64, 0, n*n)
	for _, row := range reply.Kernel {
		if len(row) != n {
			return nil, fmt.Errorf("%w: kernel row has %d entries, want %d",
				ErrBadReply, len(row), n)
		}
		flat = append(flat, row...)
	}
	return mat.NewDense(n, n, flat), nil
}
