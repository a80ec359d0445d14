package main

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// skewCalc computes kernels that disagree with testCalc
type skewCalc struct {
	testCalc
}

func (c skewCalc) Kernel(d *Descriptors, hyp KernelHypers) (*mat.Dense, error) {
	m, err := c.testCalc.Kernel(d, hyp)
	if err != nil {
		return nil, err
	}
	m.Set(0, 0, m.At(0, 0)+0.5)
	return m, nil
}

func TestVerify(t *testing.T) {
	conf := testConf(t)
	frames, err := ReadXYZ(conf.Dataset, conf.Start, conf.Length)
	if err != nil {
		t.Fatal(err)
	}
	if err := DumpReference(testCalc{}, frames, conf); err != nil {
		t.Fatal(err)
	}
	if err := Verify(testCalc{}, conf); err != nil {
		t.Errorf("got %v, wanted a clean verification\n", err)
	}
	err = Verify(skewCalc{}, conf)
	if err == nil || !strings.Contains(err.Error(), "kernel mismatch") {
		t.Errorf("got %v, wanted kernel mismatch\n", err)
	}
}

func TestVerifyMissing(t *testing.T) {
	conf := testConf(t)
	if err := Verify(testCalc{}, conf); err == nil {
		t.Errorf("got nil, wanted missing reference error\n")
	}
}
