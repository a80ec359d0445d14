package main

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"gonum.org/v1/gonum/mat"
)

// RefEntry is one result bundle in the reference file: the kernel
// matrix for a grid combination along with the descriptor
// hyperparameters resolved by the engine and the kernel
// hyperparameters that produced it
type RefEntry struct {
	KernelMatrix [][]float64  `cbor:"kernel_matrix"`
	HypersRep    RepHypers    `cbor:"hypers_rep"`
	HypersKernel KernelHypers `cbor:"hypers_kernel"`
}

// RefData is the top-level record serialized to the reference file.
// RepInfo holds one list of result bundles per cutoff, in grid
// traversal order
type RefData struct {
	Filename       string                  `cbor:"filename"`
	Start          int                     `cbor:"start"`
	Length         int                     `cbor:"length"`
	Cutoffs        []float64               `cbor:"cutoffs"`
	GaussianSigmas []float64               `cbor:"gaussian_sigmas"`
	MaxRadials     []int                   `cbor:"max_radials"`
	SoapTypes      []string                `cbor:"soap_types"`
	KernelNames    []string                `cbor:"kernel_names"`
	TargetTypes    []string                `cbor:"target_types"`
	DependantArgs  map[string][]KernelArgs `cbor:"dependant_args"`
	RepInfo        [][]RefEntry            `cbor:"rep_info"`
}

// encMode encodes CBOR deterministically so rerunning the generator
// on the same inputs produces a byte-identical file
var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// matRows converts m to nested rows for serialization
func matRows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}
	return rows
}

// DumpReference sweeps the hyperparameter grid in conf over frames,
// computing one descriptor set and one kernel matrix per combination
// with calc, and writes the accumulated results to conf.Output in a
// single shot. Any failure aborts the sweep before the file is
// touched
func DumpReference(calc Calculator, frames []Frame, conf *Config) error {
	grid := FromConfig(conf)
	data := RefData{
		Filename:       conf.Output,
		Start:          conf.Start,
		Length:         conf.Length,
		Cutoffs:        conf.Cutoffs,
		GaussianSigmas: conf.Sigmas,
		MaxRadials:     conf.MaxRadials,
		SoapTypes:      conf.SoapTypes,
		KernelNames:    conf.KernelNames,
		TargetTypes:    conf.TargetTypes,
		DependantArgs:  grid.DependantArgs,
		RepInfo:        make([][]RefEntry, 0, len(conf.Cutoffs)),
	}
	for _, cutoff := range grid.Cutoffs {
		fmt.Printf("%s cutoff %g\n", conf.Dataset, cutoff)
		combos := grid.Combos(cutoff)
		entries := make([]RefEntry, 0, len(combos))
		for _, c := range combos {
			d, err := calc.Transform(frames, c.RepHypers())
			if err != nil {
				return fmt.Errorf("transform %s at cutoff %g: %w",
					c.SoapType, cutoff, err)
			}
			k, err := calc.Kernel(d, c.Kernel)
			if err != nil {
				return fmt.Errorf("kernel %s %s zeta %d at cutoff %g: %w",
					c.Kernel.Name, c.Kernel.TargetType,
					c.Kernel.Zeta, cutoff, err)
			}
			entries = append(entries, RefEntry{
				KernelMatrix: matRows(k),
				HypersRep:    d.Hypers,
				HypersKernel: c.Kernel,
			})
		}
		data.RepInfo = append(data.RepInfo, entries)
	}
	buf, err := encMode.Marshal(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(conf.Output, buf, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes, %d bundles)\n",
		conf.Output, len(buf), len(conf.Cutoffs)*grid.Size())
	return nil
}
