package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/cheggaaa/pb.v1"

	"github.com/mrrlab/geneticker/cache"
	"github.com/mrrlab/geneticker/codon"
	"github.com/mrrlab/geneticker/export"
	"github.com/mrrlab/geneticker/gbff"
)

// openCache opens the counts cache, an empty file name gives a cache
// which does nothing.
func openCache(fn string) (*cache.Cache, error) {
	if fn == "" {
		return cache.New(nil), nil
	}
	log.Infof("Using counts cache %s", fn)
	return cache.Open(fn)
}

// aggregate counts codons in the input file. Counts are taken from the
// cache if the file has not changed.
func aggregate(s Settings, summary *RunSummary) (*codon.Counts, error) {
	fi, err := os.Stat(s.Input)
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("input is not a file: %s", s.Input)
	}

	ch, err := openCache(s.Cache)
	if err != nil {
		return nil, fmt.Errorf("error opening cache: %w", err)
	}
	defer ch.Close()

	key, err := cache.Key(s.Input)
	if err != nil {
		return nil, err
	}
	counts, err := ch.Load(key)
	if err != nil {
		log.Warning("Error reading cache:", err)
	} else if counts != nil {
		summary.Cached = true
		return counts, nil
	}

	f, err := os.Open(s.Input)
	if err != nil {
		return nil, err
	}
	var rd io.Reader = f
	var bar *pb.ProgressBar
	if s.Progress {
		bar = pb.New64(fi.Size()).SetUnits(pb.U_BYTES)
		bar.Output = os.Stderr
		bar.Start()
		rd = bar.NewProxyReader(f)
	}

	gf, err := gbff.NewFile(f, rd)
	if err != nil {
		return nil, err
	}
	defer gf.Close()

	counts, err = codon.Aggregate(gbff.NewSource(gf.Reader), codon.Options{
		Verbose: s.Verbose,
		Workers: s.Workers,
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, err
	}

	if counts != nil {
		// the run does not fail if the cache cannot be updated
		ch.Save(key, counts)
	}
	return counts, nil
}

// run aggregates the input, builds the report and exports or prints
// it to stdout. The error is only returned if the input cannot be
// read, failed export falls back to console output.
func run(s Settings, stdout io.Writer) (summary *RunSummary, err error) {
	startTime := time.Now()
	summary = &RunSummary{
		Input:   s.Input,
		MinFreq: s.MinFreq,
		Workers: s.Workers,
		Output:  s.Output,
	}
	defer func() {
		deltaT := time.Since(startTime)
		log.Infof("Running time: %v", deltaT)
		summary.Time = deltaT.Seconds()
	}()

	counts, err := aggregate(s, summary)
	if err != nil {
		return summary, err
	}
	if counts != nil {
		summary.Stats = counts.Stats
		summary.TotalCodons = counts.Total()
	}

	rep := codon.NewReport(counts, s.MinFreq)
	if rep == nil {
		log.Notice("No valid CDS features were processed or no data remained after filtering.")
		return summary, nil
	}
	summary.Rows = len(rep.Rows)

	name := filepath.Base(s.Input)
	if s.Output == "" {
		export.Print(stdout, rep, name)
		return summary, nil
	}

	if err := export.Write(rep, s.Output); err != nil {
		log.Error(err)
		summary.Fallback = true
		fmt.Fprintln(stdout, "\n--- Falling back to console output due to export failure ---")
		export.Print(stdout, rep, name)
	}
	return summary, nil
}
