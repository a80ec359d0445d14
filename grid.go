package main

import "strings"

// Spherical invariant descriptor kinds accepted by the engine
const (
	RadialSpectrum = "RadialSpectrum"
	PowerSpectrum  = "PowerSpectrum"
)

// KernelArgs holds the kernel-specific arguments attached to a kernel
// name in the grid. Cosine is the only supported kernel and takes a
// single zeta exponent
type KernelArgs struct {
	Zeta int `json:"zeta" cbor:"zeta"`
}

// Grid holds the named hyperparameter axes swept by the reference
// generator. DependantArgs is keyed by lowercased kernel name
type Grid struct {
	Cutoffs       []float64
	KernelNames   []string
	TargetTypes   []string
	DependantArgs map[string][]KernelArgs
	SoapTypes     []string
	Sigmas        []float64
	MaxRadials    []int
	MaxAngulars   []int
}

// Combo is one resolved point in the grid
type Combo struct {
	Cutoff     float64
	Kernel     KernelHypers
	SoapType   string
	Sigma      float64
	MaxRadial  int
	MaxAngular int
}

// collapse applies the radial spectrum rule: radial-only descriptors
// have no angular component, so max angular is forced to 0
func (c Combo) collapse() Combo {
	if c.SoapType == RadialSpectrum {
		c.MaxAngular = 0
	}
	return c
}

// RepHypers builds the descriptor hyperparameters for c, filling in
// the fixed smoothing width, cutoff function, and radial basis
func (c Combo) RepHypers() RepHypers {
	return RepHypers{
		InteractionCutoff:     c.Cutoff,
		CutoffSmoothWidth:     0.5,
		MaxRadial:             c.MaxRadial,
		MaxAngular:            c.MaxAngular,
		GaussianSigmaType:     "Constant",
		GaussianSigmaConstant: c.Sigma,
		SoapType:              c.SoapType,
		CutoffFunctionType:    "Cosine",
		Normalize:             true,
		RadialBasis:           "GTO",
	}
}

// FromConfig builds the grid described by conf. Every kernel name
// shares the same zeta list
func FromConfig(conf *Config) *Grid {
	dep := make(map[string][]KernelArgs)
	for _, name := range conf.KernelNames {
		args := make([]KernelArgs, len(conf.Zetas))
		for i, z := range conf.Zetas {
			args[i] = KernelArgs{Zeta: z}
		}
		dep[strings.ToLower(name)] = args
	}
	return &Grid{
		Cutoffs:       conf.Cutoffs,
		KernelNames:   conf.KernelNames,
		TargetTypes:   conf.TargetTypes,
		DependantArgs: dep,
		SoapTypes:     conf.SoapTypes,
		Sigmas:        conf.Sigmas,
		MaxRadials:    conf.MaxRadials,
		MaxAngulars:   conf.MaxAngulars,
	}
}

// product walks every combination of the given axis lengths in
// odometer order, rightmost axis fastest, calling f with the current
// indices. The slice passed to f is reused between calls
func product(lens []int, f func(idx []int)) {
	for _, l := range lens {
		if l < 1 {
			return
		}
	}
	idx := make([]int, len(lens))
	for {
		f(idx)
		i := len(lens) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < lens[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

// Combos expands the grid at one cutoff into its combinations, in the
// fixed traversal order: kernel name, target type, kernel args, soap
// type, sigma, max radial, max angular innermost. The radial spectrum
// collapse is applied to each combination but never deduplicates
// entries
func (g *Grid) Combos(cutoff float64) []Combo {
	var ret []Combo
	for _, name := range g.KernelNames {
		args := g.DependantArgs[strings.ToLower(name)]
		lens := []int{
			len(g.TargetTypes), len(args), len(g.SoapTypes),
			len(g.Sigmas), len(g.MaxRadials), len(g.MaxAngulars),
		}
		product(lens, func(idx []int) {
			c := Combo{
				Cutoff: cutoff,
				Kernel: KernelHypers{
					Name:       name,
					TargetType: g.TargetTypes[idx[0]],
					Zeta:       args[idx[1]].Zeta,
				},
				SoapType:   g.SoapTypes[idx[2]],
				Sigma:      g.Sigmas[idx[3]],
				MaxRadial:  g.MaxRadials[idx[4]],
				MaxAngular: g.MaxAngulars[idx[5]],
			}
			ret = append(ret, c.collapse())
		})
	}
	return ret
}

// Size returns the number of combinations generated per cutoff
func (g *Grid) Size() int {
	var size int
	for _, name := range g.KernelNames {
		size += len(g.TargetTypes) *
			len(g.DependantArgs[strings.ToLower(name)]) *
			len(g.SoapTypes) * len(g.Sigmas) *
			len(g.MaxRadials) * len(g.MaxAngulars)
	}
	return size
}
