package gbff

import (
	"fmt"
	"strings"
)

// Qualifiers maps qualifier names to their values. A qualifier can
// occur more than once, so each name holds a list of values.
// Qualifiers without a value (e.g. /pseudo) are stored with a single
// empty value.
type Qualifiers map[string][]string

// Get returns the first value of the qualifier, or def if the
// qualifier is absent. A present qualifier without a value yields
// the empty string, not def.
func (q Qualifiers) Get(key, def string) string {
	v, ok := q[key]
	if !ok || len(v) == 0 {
		return def
	}
	return v[0]
}

// Has reports whether the qualifier is present.
func (q Qualifiers) Has(key string) bool {
	_, ok := q[key]
	return ok
}

// Values returns all the values of the qualifier.
func (q Qualifiers) Values(key string) []string {
	return q[key]
}

func (q Qualifiers) add(key, value string) {
	q[key] = append(q[key], value)
}

// Feature is a single entry of the feature table.
type Feature struct {
	// Key is the feature key, e.g. "CDS" or "gene".
	Key string
	// Location is the parsed feature location.
	Location *Location
	// Qualifiers are the feature qualifiers.
	Qualifiers Qualifiers
}

// Extract returns the part of the record sequence spanned by the
// feature.
func (f *Feature) Extract(seq string) (string, error) {
	if f.Location == nil {
		return "", fmt.Errorf("%s feature has no location", f.Key)
	}
	return f.Location.Extract(seq)
}

// Record is a GenBank record.
type Record struct {
	Name       string
	Length     int
	Molecule   string
	Topology   string
	Definition string
	Accession  string
	Version    string
	Features   []*Feature
	// Sequence is the record sequence in capital letters.
	Sequence string
}

// ID returns the accession with version, or the locus name if the
// record has no version line.
func (r *Record) ID() string {
	if r.Version != "" {
		return r.Version
	}
	if r.Accession != "" {
		return r.Accession
	}
	return r.Name
}

// FeaturesByKey returns features with the given key.
func (r *Record) FeaturesByKey(key string) (fs []*Feature) {
	for _, f := range r.Features {
		if f.Key == key {
			fs = append(fs, f)
		}
	}
	return
}

func (r *Record) String() string {
	return fmt.Sprintf("<Record %s: %d bp, %d features, %q>",
		r.ID(), len(r.Sequence), len(r.Features), strings.TrimSpace(r.Definition))
}
