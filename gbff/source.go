package gbff

import (
	"github.com/mrrlab/geneticker/codon"
)

// Source presents GenBank records to the codon aggregator.
type Source struct {
	rd *Reader
}

// NewSource creates a codon.RecordReader on top of the reader.
func NewSource(rd *Reader) *Source {
	return &Source{rd: rd}
}

// Read returns the next record as a codon.Record.
func (s *Source) Read() (codon.Record, error) {
	rec, err := s.rd.Read()
	if err != nil {
		return nil, err
	}
	return sourceRecord{rec}, nil
}

type sourceRecord struct {
	rec *Record
}

func (r sourceRecord) ID() string {
	return r.rec.ID()
}

func (r sourceRecord) Features() []codon.Feature {
	fs := make([]codon.Feature, len(r.rec.Features))
	for i, f := range r.rec.Features {
		fs[i] = sourceFeature{f: f, seq: r.rec.Sequence}
	}
	return fs
}

type sourceFeature struct {
	f   *Feature
	seq string
}

func (f sourceFeature) Type() string {
	return f.f.Key
}

func (f sourceFeature) Qualifiers() codon.Qualifiers {
	return f.f.Qualifiers
}

func (f sourceFeature) Extract() (string, error) {
	return f.f.Extract(f.seq)
}
