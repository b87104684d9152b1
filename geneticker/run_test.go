package main

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/mrrlab/geneticker/codon"
)

const simpleGBFF = `LOCUS       TEST01                9 bp    DNA     linear   01-JAN-1980
DEFINITION  .
ACCESSION   TEST
VERSION     TEST.1
FEATURES             Location/Qualifiers
     CDS             1..9
                     /locus_tag="TEST1"
                     /translation="MGG"
ORIGIN
        1 atggctggt
//
`

func init() {
	color.NoColor = true
}

func writeInput(tst *testing.T, content string) string {
	fn := filepath.Join(tst.TempDir(), "sample.gbff")
	if err := os.WriteFile(fn, []byte(content), 0666); err != nil {
		tst.Fatal(err)
	}
	return fn
}

func TestRunConsole(tst *testing.T) {
	fn := writeInput(tst, simpleGBFF)
	var buf bytes.Buffer
	summary, err := run(Settings{Input: fn, Workers: 1}, &buf)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	out := buf.String()
	for _, s := range []string{
		"=== Codon Frequency Report for sample.gbff ===",
		"Total Valid Codons Counted: 3",
		"M    ATG    1             33.3333 START",
		"G    GCT    1             33.3333",
		"G    GGT    1             33.3333",
	} {
		if !strings.Contains(out, s) {
			tst.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
	if summary.TotalCodons != 3 || summary.Rows != 3 || summary.Stats.Counted != 1 || summary.Fallback {
		tst.Errorf("wrong summary: %+v", summary)
	}
}

func TestRunMissingFile(tst *testing.T) {
	var buf bytes.Buffer
	_, err := run(Settings{Input: filepath.Join(tst.TempDir(), "no_such.gbff")}, &buf)
	if !errors.Is(err, fs.ErrNotExist) {
		tst.Error("expected not exist error, got", err)
	}
	if buf.Len() != 0 {
		tst.Error("unexpected output:", buf.String())
	}

	// directory is not a file
	if _, err := run(Settings{Input: tst.TempDir()}, &buf); err == nil {
		tst.Error("directory input should fail")
	}
}

func TestRunMalformed(tst *testing.T) {
	fn := writeInput(tst, "LOCUS       X 3 bp DNA linear\nORIGIN\n        1 atg\n")
	var buf bytes.Buffer
	if _, err := run(Settings{Input: fn}, &buf); err == nil {
		tst.Error("malformed input should fail")
	}
	if buf.Len() != 0 {
		tst.Error("unexpected output:", buf.String())
	}
}

func TestRunNoData(tst *testing.T) {
	fn := writeInput(tst, strings.Replace(simpleGBFF, "/translation=\"MGG\"", "/pseudo", 1))
	var buf bytes.Buffer
	summary, err := run(Settings{Input: fn}, &buf)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if buf.Len() != 0 || summary.TotalCodons != 0 {
		tst.Error("nothing should be reported:", buf.String())
	}
}

func TestRunExport(tst *testing.T) {
	fn := writeInput(tst, simpleGBFF)
	out := filepath.Join(tst.TempDir(), "out.csv")
	var buf bytes.Buffer
	summary, err := run(Settings{Input: fn, Output: out}, &buf)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if buf.Len() != 0 || summary.Fallback {
		tst.Error("nothing should be printed:", buf.String())
	}
	b, err := os.ReadFile(out)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if !strings.HasPrefix(string(b), "Amino Acid,Codon,Count,Freq. (%),Special Type\n") ||
		!strings.Contains(string(b), "M,ATG,1,") {
		tst.Errorf("unexpected export:\n%s", b)
	}
}

func TestRunExportFallback(tst *testing.T) {
	fn := writeInput(tst, simpleGBFF)
	out := filepath.Join(tst.TempDir(), "out.unsupported")
	var buf bytes.Buffer
	summary, err := run(Settings{Input: fn, Output: out}, &buf)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if !strings.Contains(buf.String(), "Falling back to console output") {
		tst.Error("no fallback message:", buf.String())
	}
	if !strings.Contains(buf.String(), "Total Valid Codons Counted: 3") {
		tst.Error("report is not printed:", buf.String())
	}
	if !summary.Fallback {
		tst.Error("fallback is not recorded")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		tst.Error("output file should not exist")
	}
}

func TestRunCache(tst *testing.T) {
	fn := writeInput(tst, simpleGBFF)
	s := Settings{Input: fn, Cache: filepath.Join(tst.TempDir(), "cache.db")}

	var first, second bytes.Buffer
	summary, err := run(s, &first)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if summary.Cached {
		tst.Error("first run cannot use the cache")
	}
	summary, err = run(s, &second)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if !summary.Cached || summary.Stats.Counted != 1 {
		tst.Errorf("cache is not used: %+v", summary)
	}
	if first.String() != second.String() {
		tst.Errorf("cached report differs:\n%s\n%s", first.String(), second.String())
	}
}

func TestRunParallel(tst *testing.T) {
	fn := writeInput(tst, strings.Repeat(simpleGBFF, 20))
	var serial, parallel bytes.Buffer
	if _, err := run(Settings{Input: fn, Workers: 1}, &serial); err != nil {
		tst.Fatal("Error: ", err)
	}
	summary, err := run(Settings{Input: fn, Workers: 4}, &parallel)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if summary.TotalCodons != 60 || serial.String() != parallel.String() {
		tst.Errorf("parallel run differs:\n%s\n%s", serial.String(), parallel.String())
	}
}

func TestMinFreqThreshold(tst *testing.T) {
	v, err := loadConfig("")
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	cases := []struct {
		noFilter bool
		flag     float64
		th       float64
	}{
		{false, minFreqNotSet, codon.DefaultMinFreq},
		{false, 1, 1},
		{false, 0, 0},
		{true, 1, 0},
		{true, -0.5, 0},
	}
	for _, c := range cases {
		th, err := minFreqThreshold(c.noFilter, c.flag, v)
		if err != nil {
			tst.Error("Error: ", err)
		}
		if th != c.th {
			tst.Errorf("minFreqThreshold(%v, %v)=%v, expected %v", c.noFilter, c.flag, th, c.th)
		}
	}

	for _, bad := range []float64{-0.5, -2} {
		if _, err := minFreqThreshold(false, bad, v); err == nil {
			tst.Errorf("negative threshold %v should fail", bad)
		}
	}

	tst.Setenv("GENETICKER_MIN_FREQ", "2.5")
	v, err = loadConfig("")
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if th, err := minFreqThreshold(false, minFreqNotSet, v); err != nil || th != 2.5 {
		tst.Error("expected threshold from the environment, got", th, err)
	}

	tst.Setenv("GENETICKER_MIN_FREQ", "-1")
	v, err = loadConfig("")
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if _, err := minFreqThreshold(false, minFreqNotSet, v); err == nil {
		tst.Error("negative threshold from the environment should fail")
	}
}

func TestLoadConfig(tst *testing.T) {
	fn := filepath.Join(tst.TempDir(), "geneticker.yaml")
	if err := os.WriteFile(fn, []byte("min_freq: 0.5\nworkers: 3\nloglevel: info\n"), 0666); err != nil {
		tst.Fatal(err)
	}
	v, err := loadConfig(fn)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if v.GetFloat64("min_freq") != 0.5 || v.GetInt("workers") != 3 || v.GetString("loglevel") != "info" {
		tst.Error("wrong configuration:", v.AllSettings())
	}
	if v.GetString("cache") != "" {
		tst.Error("cache should not be set")
	}

	if _, err := loadConfig(filepath.Join(tst.TempDir(), "missing.yaml")); err == nil {
		tst.Error("missing configuration file should fail")
	}
}

func TestSetLogging(tst *testing.T) {
	if err := setLogging("warning", true); err != nil {
		tst.Error("Error: ", err)
	}
	if err := setLogging("verbose", false); err == nil {
		tst.Error("unknown level should fail")
	}
	setLogging("notice", false)
}
