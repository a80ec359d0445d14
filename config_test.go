package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseInfile(t *testing.T) {
	got := NewConfig()
	if err := got.ParseInfile("testfiles/soapref.in"); err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Dataset:     "testfiles/frames.xyz",
		Output:      "testfiles/kernel_reference.cbor",
		Engine:      "fakerascal",
		Start:       1,
		Length:      4,
		Cutoffs:     []float64{2.0, 3.5},
		Sigmas:      []float64{0.3, 0.5},
		MaxRadials:  []int{4},
		MaxAngulars: []int{3},
		SoapTypes:   []string{RadialSpectrum},
		KernelNames: []string{"Cosine"},
		TargetTypes: []string{"atom"},
		Zetas:       []int{2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, wanted %#v\n", got, want)
	}
}

func TestParseInfileErrors(t *testing.T) {
	tests := []struct {
		msg  string
		text string
		want string
	}{
		{
			msg:  "unknown keyword",
			text: "cutofs=3.5\n",
			want: "unrecognized keyword",
		},
		{
			msg:  "missing equals",
			text: "cutoffs\n",
			want: "malformed input line",
		},
		{
			msg:  "bad float",
			text: "cutoffs=3.5,abc\n",
			want: "parsing input line",
		},
		{
			msg:  "bad int",
			text: "zetas=1,1.5\n",
			want: "parsing input line",
		},
	}
	for _, test := range tests {
		name := filepath.Join(t.TempDir(), "soapref.in")
		if err := os.WriteFile(name, []byte(test.text), 0644); err != nil {
			t.Fatal(err)
		}
		err := NewConfig().ParseInfile(name)
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("ParseInfile(%q): got %v, wanted %q\n",
				test.msg, err, test.want)
		}
	}
}
