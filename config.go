package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the dataset, engine, and grid parameters for a run.
// The zero value is not usable; start from NewConfig and override
// with ParseInfile.
type Config struct {
	Dataset     string
	Output      string
	Engine      string
	Start       int
	Length      int
	Cutoffs     []float64
	Sigmas      []float64
	MaxRadials  []int
	MaxAngulars []int
	SoapTypes   []string
	KernelNames []string
	TargetTypes []string
	Zetas       []int
}

// NewConfig returns a Config loaded with the reference defaults: the
// first 5 structures of the dft-smiles dataset and the grid used by
// the kernel regression suite
func NewConfig() *Config {
	return &Config{
		Dataset:     "reference_data/dft-smiles_500.xyz",
		Output:      "reference_data/kernel_reference.cbor",
		Engine:      "rascal",
		Start:       0,
		Length:      5,
		Cutoffs:     []float64{3.5},
		Sigmas:      []float64{0.5},
		MaxRadials:  []int{6},
		MaxAngulars: []int{6},
		SoapTypes:   []string{RadialSpectrum, PowerSpectrum},
		KernelNames: []string{"Cosine"},
		TargetTypes: []string{"structure", "atom"},
		Zetas:       []int{1, 2, 4},
	}
}

// ParseInfile reads key=value lines from filename and overrides the
// corresponding fields of c. Blank lines and lines starting with #
// are skipped; an unrecognized keyword is an error
func (c *Config) ParseInfile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		split := strings.SplitN(line, "=", 2)
		if len(split) != 2 {
			return fmt.Errorf("malformed input line %q", line)
		}
		key := strings.ToLower(strings.TrimSpace(split[0]))
		val := strings.TrimSpace(split[1])
		switch key {
		case "dataset":
			c.Dataset = val
		case "output":
			c.Output = val
		case "engine":
			c.Engine = val
		case "start":
			c.Start, err = strconv.Atoi(val)
		case "length":
			c.Length, err = strconv.Atoi(val)
		case "cutoffs":
			c.Cutoffs, err = parseFloats(val)
		case "sigmas":
			c.Sigmas, err = parseFloats(val)
		case "maxradials":
			c.MaxRadials, err = parseInts(val)
		case "maxangulars":
			c.MaxAngulars, err = parseInts(val)
		case "soaptypes":
			c.SoapTypes = parseStrings(val)
		case "kernels":
			c.KernelNames = parseStrings(val)
		case "targets":
			c.TargetTypes = parseStrings(val)
		case "zetas":
			c.Zetas, err = parseInts(val)
		default:
			return fmt.Errorf("unrecognized keyword %q", key)
		}
		if err != nil {
			return fmt.Errorf("%v parsing input line %q", err, line)
		}
	}
	return scanner.Err()
}

// parseStrings splits a comma-separated list, trimming whitespace and
// removing empty entries
func parseStrings(str string) []string {
	split := strings.Split(str, ",")
	clean := make([]string, 0, len(split))
	for _, s := range split {
		if s = strings.TrimSpace(s); s != "" {
			clean = append(clean, s)
		}
	}
	return clean
}

func parseFloats(str string) (ret []float64, err error) {
	for _, s := range parseStrings(str) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		ret = append(ret, f)
	}
	return ret, nil
}

func parseInts(str string) (ret []int, err error) {
	for _, s := range parseStrings(str) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}
