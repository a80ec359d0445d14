package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ptable maps element symbols to atomic numbers for building engine
// requests
var ptable = map[string]int{
	"H": 1, "He": 2, "Li": 3,
	"Be": 4, "B": 5, "C": 6,
	"N": 7, "O": 8, "F": 9,
	"Ne": 10, "Na": 11, "Mg": 12,
	"Al": 13, "Si": 14, "P": 15,
	"S": 16, "Cl": 17, "Ar": 18,
	"K": 19, "Ca": 20, "Br": 35,
	"I": 53,
}

// Frame is a single structure from a multi-frame XYZ dataset. Frames
// are loaded once and shared read-only across all grid combinations
type Frame struct {
	Comment string
	Names   []string
	Coords  []float64
}

// Numbers returns the atomic numbers of the atoms in f
func (f Frame) Numbers() ([]int, error) {
	nums := make([]int, len(f.Names))
	for i, name := range f.Names {
		z, ok := ptable[name]
		if !ok {
			return nil, fmt.Errorf("unknown element %q", name)
		}
		nums[i] = z
	}
	return nums, nil
}

// Positions returns the coordinates of f as one row of x, y, z per
// atom
func (f Frame) Positions() [][]float64 {
	pos := make([][]float64, len(f.Names))
	for i := range pos {
		pos[i] = f.Coords[3*i : 3*i+3]
	}
	return pos
}

// readFrame reads one frame from scanner: a natoms line, a comment
// line, then natoms coordinate lines. Blank lines before the natoms
// line are skipped. io.EOF is returned when no frame remains
func readFrame(scanner *bufio.Scanner) (Frame, error) {
	var frame Frame
	line := ""
	for line == "" {
		if !scanner.Scan() {
			return frame, io.EOF
		}
		line = strings.TrimSpace(scanner.Text())
	}
	natoms, err := strconv.Atoi(line)
	if err != nil {
		return frame, fmt.Errorf("malformed frame header %q", line)
	}
	if !scanner.Scan() {
		return frame, fmt.Errorf("unexpected EOF in frame comment")
	}
	frame.Comment = strings.TrimSpace(scanner.Text())
	for i := 0; i < natoms; i++ {
		if !scanner.Scan() {
			return frame, fmt.Errorf("unexpected EOF after %d of %d atoms", i, natoms)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return frame, fmt.Errorf("malformed coordinate line %q", scanner.Text())
		}
		frame.Names = append(frame.Names, fields[0])
		for _, f := range fields[1:4] {
			c, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return frame, fmt.Errorf("malformed coordinate line %q", scanner.Text())
			}
			frame.Coords = append(frame.Coords, c)
		}
	}
	return frame, nil
}

// ReadXYZ reads length frames from the multi-frame XYZ file filename,
// beginning at frame start. Fewer than start+length frames in the
// file is an error
func ReadXYZ(filename string, start, length int) ([]Frame, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	frames := make([]Frame, 0, start+length)
	for len(frames) < start+length {
		frame, err := readFrame(scanner)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %v", filename, err)
		}
		frames = append(frames, frame)
	}
	if len(frames) < start+length {
		return nil, fmt.Errorf("%s: have %d frames, want %d",
			filename, len(frames), start+length)
	}
	return frames[start : start+length], nil
}
