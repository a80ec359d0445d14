package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// writeFakeEngine writes an executable script to dir that ignores its
// input and answers every request with reply
func writeFakeEngine(t *testing.T, dir, reply string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "reply.json"),
		[]byte(reply), 0644); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(dir, "fakerascal")
	if err := os.WriteFile(script,
		[]byte("#!/bin/sh\ncat reply.json\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return script
}

func TestTransform(t *testing.T) {
	frames, err := ReadXYZ("testfiles/frames.xyz", 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	hyp := Combo{
		Cutoff:    3.5,
		SoapType:  RadialSpectrum,
		Sigma:     0.5,
		MaxRadial: 6,
	}.RepHypers()
	reply := transformReply{
		Hypers: hyp,
		Features: [][]float64{
			{1, 0}, {0, 1}, {0, 1},
			{1, 1}, {0, 2}, {0, 2}, {0, 2}, {0, 2},
		},
		Structures: []int{0, 0, 0, 1, 1, 1, 1, 1},
	}
	buf, err := json.Marshal(reply)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	r := &Rascal{Cmd: writeFakeEngine(t, dir, string(buf)), Dir: dir}
	got, err := r.Transform(frames, hyp)
	if err != nil {
		t.Fatal(err)
	}
	want := &Descriptors{
		Hypers:   hyp,
		Rows:     reply.Features,
		Structs:  reply.Structures,
		NStructs: 2,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, wanted %#v\n", got, want)
	}
	// the request should have been serialized for the engine
	var req transformRequest
	buf, err = os.ReadFile(filepath.Join(dir, "rascal.in"))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(buf, &req); err != nil {
		t.Fatal(err)
	}
	if req.Task != "transform" || len(req.Frames) != 2 ||
		!reflect.DeepEqual(req.Frames[0].Numbers, []int{8, 1, 1}) {
		t.Errorf("got request %#v, wanted a transform of O H H first\n", req)
	}
}

func TestTransformErrors(t *testing.T) {
	tests := []struct {
		msg   string
		reply string
		want  error
	}{
		{
			msg:   "engine error",
			reply: `{"error": "hypers rejected"}`,
			want:  ErrEngineFailed,
		},
		{
			msg:   "not json",
			reply: "ERROR: segmentation fault\n",
			want:  ErrBadReply,
		},
		{
			msg:   "no features",
			reply: `{"features": [], "structures": []}`,
			want:  ErrBadReply,
		},
		{
			msg:   "row count mismatch",
			reply: `{"features": [[1], [2]], "structures": [0]}`,
			want:  ErrBadReply,
		},
		{
			msg:   "structure index out of range",
			reply: `{"features": [[1], [2]], "structures": [0, 5]}`,
			want:  ErrBadReply,
		},
	}
	frames, err := ReadXYZ("testfiles/frames.xyz", 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range tests {
		dir := t.TempDir()
		r := &Rascal{Cmd: writeFakeEngine(t, dir, test.reply), Dir: dir}
		_, err := r.Transform(frames, RepHypers{})
		if !errors.Is(err, test.want) {
			t.Errorf("Transform(%q): got %v, wanted %v\n",
				test.msg, err, test.want)
		}
	}
}

func TestKernel(t *testing.T) {
	d := &Descriptors{
		Rows:     [][]float64{{1, 0}, {0, 1}, {1, 1}},
		Structs:  []int{0, 0, 1},
		NStructs: 2,
	}
	tests := []struct {
		msg    string
		target string
		reply  string
		want   *mat.Dense
		err    error
	}{
		{
			msg:    "structure target",
			target: "structure",
			reply:  `{"kernel": [[1.0, 0.5], [0.5, 1.0]]}`,
			want:   mat.NewDense(2, 2, []float64{1, 0.5, 0.5, 1}),
		},
		{
			msg:    "atom target",
			target: "atom",
			reply:  `{"kernel": [[1, 0, 0.5], [0, 1, 0.5], [0.5, 0.5, 1]]}`,
			want: mat.NewDense(3, 3, []float64{
				1, 0, 0.5,
				0, 1, 0.5,
				0.5, 0.5, 1,
			}),
		},
		{
			msg:    "wrong dimension",
			target: "structure",
			reply:  `{"kernel": [[1, 0, 0.5], [0, 1, 0.5], [0.5, 0.5, 1]]}`,
			err:    ErrBadReply,
		},
		{
			msg:    "ragged rows",
			target: "structure",
			reply:  `{"kernel": [[1, 0.5], [0.5]]}`,
			err:    ErrBadReply,
		},
	}
	for _, test := range tests {
		dir := t.TempDir()
		r := &Rascal{Cmd: writeFakeEngine(t, dir, test.reply), Dir: dir}
		hyp := KernelHypers{Name: "Cosine", TargetType: test.target, Zeta: 2}
		got, err := r.Kernel(d, hyp)
		if test.err != nil {
			if !errors.Is(err, test.err) {
				t.Errorf("Kernel(%q): got %v, wanted %v\n",
					test.msg, err, test.err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Kernel(%q): %v\n", test.msg, err)
		}
		if !mat.Equal(got, test.want) {
			t.Errorf("Kernel(%q): got %v, wanted %v\n",
				test.msg, mat.Formatted(got), mat.Formatted(test.want))
		}
	}
}

func TestEngineNotFound(t *testing.T) {
	r := &Rascal{Cmd: "no-such-engine", Dir: t.TempDir()}
	_, err := r.Transform([]Frame{}, RepHypers{})
	if !errors.Is(err, ErrEngineNotFound) {
		t.Errorf("got %v, wanted %v\n", err, ErrEngineNotFound)
	}
}
