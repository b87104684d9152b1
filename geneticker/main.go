/*
Geneticker counts codon usage in the coding sequences of a GenBank
flat file and reports codon frequencies.

The basic usage looks like this:

	geneticker genome.gbff

, this prints the codon frequency table, hiding codons with frequency
below 0.05%.

The table can be exported instead, the format is chosen by the file
extension (csv, tsv, json, xml, gob, xlsx, parquet, png, svg, pdf):

	geneticker -o codons.xlsx --no-freq-filter genome.gbff.gz

To see all the options run:

	geneticker -h
*/
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/op/go-logging"
	"gopkg.in/alecthomas/kingpin.v2"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("geneticker")
var formatter = logging.MustStringFormatter(`%{message}`)

// loggers are the names of all the package loggers.
var loggers = []string{"geneticker", "codon", "gbff", "export", "cache"}

// command-line options
var (
	// application
	app = kingpin.New("geneticker", "codon usage counter for GenBank files").Version(version)

	// input
	inputFileName = app.Arg("input", "GenBank flat file (can be gzip compressed)").Required().ExistingFile()

	// report
	outputFileName = app.Flag("output", "export the report to a file, the format is chosen by the extension").
			Short('o').String()
	noFreqFilter = app.Flag("no-freq-filter", "report all the codons, disable the minimum frequency filter").Bool()
	minFreq      = app.Flag("min-freq", "minimum codon frequency in percent "+
		"(0.05 by default or from the configuration)").Default("-1").Float64()
	verbose = app.Flag("verbose", "print per-feature diagnostics").Short('v').Bool()

	// technical
	nThreads      = app.Flag("nt", "number of aggregation workers").Int()
	cacheFileName = app.Flag("cache", "cache aggregated counts in a database file").String()
	configF       = app.Flag("config", "read settings from a configuration file (yaml, toml or json)").ExistingFile()
	progress      = app.Flag("progress", "show progress while reading the input").Bool()

	// output
	outLogF  = app.Flag("log", "write log to a file").String()
	logLevel = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug'), notice by default").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json summary to a file").String()
)

// setLogging configures the backend and the levels of all the loggers.
func setLogging(levelName string, verbose bool) error {
	level, err := logging.LogLevel(levelName)
	if err != nil {
		return err
	}
	for _, module := range loggers {
		logging.SetLevel(level, module)
	}
	// per-feature diagnostics are logged at the info level
	if verbose && level < logging.INFO {
		logging.SetLevel(logging.INFO, "codon")
		logging.SetLevel(logging.INFO, "gbff")
	}
	return nil
}

// writeSummary saves the summary in json format.
func writeSummary(fn string, summary *RunSummary) {
	j, err := json.Marshal(summary)
	if err != nil {
		log.Error(err)
		return
	}
	log.Debug(string(j))
	f, err := os.Create(fn)
	if err != nil {
		log.Error("Error creating json output file:", err)
		return
	}
	f.Write(j)
	f.Close()
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	v, err := loadConfig(*configF)
	if err != nil {
		log.Fatal("Error reading configuration:", err)
	}

	levelName := *logLevel
	if levelName == "" {
		levelName = v.GetString("loglevel")
	}
	if err := setLogging(levelName, *verbose); err != nil {
		log.Fatal(err)
	}

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	s, err := newSettings(v)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Minimum frequency: %v%%, workers: %d", s.MinFreq, s.Workers)

	summary, err := run(s, os.Stdout)
	summary.Version = version
	summary.CommandLine = os.Args

	// output summary in json format
	if *jsonF != "" {
		writeSummary(*jsonF, summary)
	}

	if err != nil {
		log.Fatal("Error: ", err)
	}
}
