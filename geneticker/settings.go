package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/mrrlab/geneticker/codon"
)

// Settings are the resolved parameters of a run.
type Settings struct {
	// Input is the GenBank file name.
	Input string
	// Output is the export file name, empty for console output.
	Output string
	// MinFreq is the frequency threshold in percent, 0 disables
	// filtering.
	MinFreq float64
	Verbose bool
	// Workers is the number of aggregation workers.
	Workers int
	// Cache is the counts database file name, empty for no caching.
	Cache    string
	Progress bool
}

// loadConfig reads the configuration file (if fn is not empty) and
// the GENETICKER_* environment variables. Command-line flags take
// precedence over both.
func loadConfig(fn string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("min_freq", codon.DefaultMinFreq)
	v.SetDefault("workers", 1)
	v.SetDefault("cache", "")
	v.SetDefault("loglevel", "notice")

	v.SetEnvPrefix("GENETICKER")
	v.AutomaticEnv()

	if fn != "" {
		v.SetConfigFile(fn)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		log.Infof("Using configuration file %s", v.ConfigFileUsed())
	}
	return v, nil
}

// minFreqNotSet is the default of the --min-freq flag.
const minFreqNotSet = -1

// minFreqThreshold returns the frequency threshold. Disabled filter
// gives 0, otherwise a flag value overrides the configuration.
func minFreqThreshold(noFilter bool, flagValue float64, v *viper.Viper) (float64, error) {
	switch {
	case noFilter:
		return 0, nil
	case flagValue == minFreqNotSet:
	case flagValue < 0:
		return 0, fmt.Errorf("minimum frequency should not be negative: %v", flagValue)
	default:
		return flagValue, nil
	}
	th := v.GetFloat64("min_freq")
	if th < 0 {
		return 0, fmt.Errorf("minimum frequency should not be negative: %v", th)
	}
	return th, nil
}

// newSettings combines command-line options and the configuration.
func newSettings(v *viper.Viper) (Settings, error) {
	s := Settings{
		Input:    *inputFileName,
		Output:   *outputFileName,
		Verbose:  *verbose,
		Workers:  *nThreads,
		Cache:    *cacheFileName,
		Progress: *progress,
	}
	var err error
	if s.MinFreq, err = minFreqThreshold(*noFreqFilter, *minFreq, v); err != nil {
		return s, err
	}
	if s.Workers <= 0 {
		s.Workers = v.GetInt("workers")
	}
	if s.Cache == "" {
		s.Cache = v.GetString("cache")
	}
	return s, nil
}
