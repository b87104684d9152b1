package main

import "github.com/mrrlab/geneticker/codon"

// RunSummary is storing geneticker run summary information.
type RunSummary struct {
	// Version stores geneticker version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Input is the input file name.
	Input string `json:"input"`
	// MinFreq is the frequency threshold used, 0 if not filtered.
	MinFreq float64 `json:"minFreq"`
	// Workers is the number of aggregation workers.
	Workers int `json:"workers"`
	// Cached is true if counts were loaded from the cache.
	Cached bool `json:"cached,omitempty"`
	// Stats are the record and feature statistics of the aggregation.
	Stats codon.Stats `json:"stats"`
	// TotalCodons is the number of codons counted.
	TotalCodons int `json:"totalCodons"`
	// Rows is the number of rows in the report.
	Rows int `json:"rows"`
	// Output is the export file name.
	Output string `json:"output,omitempty"`
	// Fallback is true if the export failed and the report was
	// printed instead.
	Fallback bool `json:"fallback,omitempty"`
	// Time is the running time in seconds.
	Time float64 `json:"time"`
}
