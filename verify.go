package main

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"gonum.org/v1/gonum/floats"
)

const verifyTol = 1e-10

// ReadReference reads a reference file written by DumpReference
func ReadReference(filename string) (*RefData, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var data RefData
	if err := cbor.Unmarshal(buf, &data); err != nil {
		return nil, fmt.Errorf("%s: %v", filename, err)
	}
	if len(data.RepInfo) != len(data.Cutoffs) {
		return nil, fmt.Errorf("%s: %d cutoff lists for %d cutoffs",
			filename, len(data.RepInfo), len(data.Cutoffs))
	}
	return &data, nil
}

// Verify reads the reference file at conf.Output, recomputes every
// result bundle with calc using the stored hyperparameters, and
// reports the first kernel matrix that disagrees beyond the
// tolerance. The dataset is reread with the slice recorded in the
// file
func Verify(calc Calculator, conf *Config) error {
	data, err := ReadReference(conf.Output)
	if err != nil {
		return err
	}
	frames, err := ReadXYZ(conf.Dataset, data.Start, data.Length)
	if err != nil {
		return err
	}
	var checked int
	for i, entries := range data.RepInfo {
		for j, entry := range entries {
			d, err := calc.Transform(frames, entry.HypersRep)
			if err != nil {
				return err
			}
			k, err := calc.Kernel(d, entry.HypersKernel)
			if err != nil {
				return err
			}
			r, _ := k.Dims()
			if len(entry.KernelMatrix) != r {
				return fmt.Errorf(
					"bundle %d of cutoff %g: stored kernel has %d rows, computed %d",
					j, data.Cutoffs[i], len(entry.KernelMatrix), r)
			}
			var stored []float64
			for _, row := range entry.KernelMatrix {
				stored = append(stored, row...)
			}
			if !floats.EqualApprox(stored, k.RawMatrix().Data, verifyTol) {
				return fmt.Errorf(
					"bundle %d of cutoff %g: kernel mismatch (%s %s zeta %d, %s)",
					j, data.Cutoffs[i], entry.HypersKernel.Name,
					entry.HypersKernel.TargetType, entry.HypersKernel.Zeta,
					entry.HypersRep.SoapType)
			}
			checked++
		}
	}
	fmt.Printf("verified %s: %d bundles match\n", conf.Output, checked)
	return nil
}
