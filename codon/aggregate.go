/*
Package codon counts codon usage in annotated coding sequences and
builds frequency reports from the counts.

Codons are classified by their position relative to the translation
supplied with the annotation: the first codon is the START codon, a
codon beyond the end of the translation is the STOP codon, everything
else is ordinary. No genetic code table is consulted, so alternative
genetic codes resolved upstream are handled as given.
*/
package codon

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/op/go-logging"

	"github.com/mrrlab/geneticker/bio"
)

// log is the global logging variable.
var log = logging.MustGetLogger("codon")

// CDSKey is the feature key of the coding sequences.
const CDSKey = "CDS"

// Qualifiers provides lookup of feature qualifiers.
type Qualifiers interface {
	// Get returns the first value of the qualifier or def if the
	// qualifier is absent.
	Get(key, def string) string
	// Has reports whether the qualifier is present (with or
	// without a value).
	Has(key string) bool
}

// Feature is an annotated feature of a record.
type Feature interface {
	// Type returns the feature key, e.g. "CDS".
	Type() string
	// Qualifiers returns the feature qualifiers.
	Qualifiers() Qualifiers
	// Extract returns the nucleotide sequence spanned by the feature.
	Extract() (string, error)
}

// Record is an annotated sequence record.
type Record interface {
	ID() string
	Features() []Feature
}

// RecordReader reads records one by one. Read returns io.EOF after
// the last record.
type RecordReader interface {
	Read() (Record, error)
}

// Options controls the aggregation.
type Options struct {
	// Verbose enables per-record and per-feature diagnostics.
	Verbose bool
	// Workers is the number of goroutines processing records. Values
	// below two mean a sequential pass.
	Workers int
}

// Aggregate reads all the records and counts codons of every CDS
// feature. It returns nil counts without an error if nothing was
// counted. Any read or extraction error aborts the aggregation; no
// partial table is returned in this case.
func Aggregate(rd RecordReader, opt Options) (*Counts, error) {
	var (
		c   *Counts
		err error
	)
	if opt.Workers > 1 {
		c, err = aggregateParallel(rd, opt)
	} else {
		c = NewCounts()
		err = aggregateSerial(rd, opt, c)
	}
	if err != nil {
		return nil, err
	}

	if opt.Verbose {
		log.Infof("Analysis complete. Processed %d CDS features.", c.Stats.Processed)
	}

	if c.Total() == 0 {
		return nil, nil
	}
	return c, nil
}

func aggregateSerial(rd RecordReader, opt Options, c *Counts) error {
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := c.addRecord(rec, opt.Verbose); err != nil {
			return err
		}
	}
}

// aggregateParallel distributes records between workers, each worker
// counts into its own table. Tables are summed in the end.
func aggregateParallel(rd RecordReader, opt Options) (*Counts, error) {
	records := make(chan Record, opt.Workers)
	done := make(chan struct{})

	var (
		once     sync.Once
		firstErr error
		wg       sync.WaitGroup
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			close(done)
		})
	}

	partial := make([]*Counts, opt.Workers)
	for i := range partial {
		partial[i] = NewCounts()
		wg.Add(1)
		go func(c *Counts) {
			defer wg.Done()
			for rec := range records {
				select {
				case <-done:
					// drain the channel
					continue
				default:
				}
				if err := c.addRecord(rec, opt.Verbose); err != nil {
					fail(err)
				}
			}
		}(partial[i])
	}

loop:
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fail(err)
			break
		}
		select {
		case records <- rec:
		case <-done:
			break loop
		}
	}
	close(records)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	c := NewCounts()
	for _, p := range partial {
		c.Merge(p)
	}
	return c, nil
}

// addRecord counts all the CDS features of the record.
func (c *Counts) addRecord(rec Record, verbose bool) error {
	c.Stats.Records++
	if verbose {
		log.Infof("Processing record: %s", rec.ID())
	}
	for _, f := range rec.Features() {
		if f.Type() != CDSKey {
			continue
		}
		if err := c.addCDS(f, verbose); err != nil {
			return fmt.Errorf("record %s: %w", rec.ID(), err)
		}
	}
	return nil
}

// addCDS counts codons of a single CDS. Defective features are
// skipped, only extraction errors are returned.
func (c *Counts) addCDS(f Feature, verbose bool) error {
	c.Stats.CDS++

	q := f.Qualifiers()
	locus := q.Get("locus_tag", "?")
	translation := q.Get("translation", "")

	if translation == "" {
		c.Stats.NoTranslation++
		if verbose {
			log.Warningf("  > CDS %s is missing /translation qualifier. Skipping.", locus)
		}
		return nil
	}
	if q.Has("pseudo") {
		c.Stats.Pseudo++
		if verbose {
			log.Warningf("  > Skipping pseudogene: %s", locus)
		}
		return nil
	}

	c.Stats.Processed++

	seq, err := f.Extract()
	if err != nil {
		return fmt.Errorf("CDS %s: %w", locus, err)
	}
	seq = strings.ToUpper(seq)

	if p := bio.FirstAmbiguous(seq); p >= 0 {
		c.Stats.Ambiguous++
		if verbose {
			log.Warningf("  > CDS %s (length %d) contains non-ATCG bases. Skipping.", locus, len(seq))
			log.Debugf("  > CDS %s: first non-ATCG base %q at position %d", locus, seq[p], p+1)
		}
		return nil
	}

	n := (len(seq) / 3) * 3
	if n != len(seq) {
		c.Stats.Truncated++
		if verbose {
			log.Warningf("  > CDS %s (length %d) is not a multiple of 3. Truncating to %d bases for counting.",
				locus, len(seq), n)
		}
	}

	for i := 0; i < n; i += 3 {
		c.Add(classify(seq[i:i+3], i, translation), 1)
	}
	if n > 0 {
		c.Stats.Counted++
	}
	return nil
}

// classify assigns the amino acid and the role to the codon starting
// at nucleotide position pos.
func classify(codon string, pos int, translation string) Event {
	aa := pos / 3
	if aa < len(translation) {
		role := Ordinary
		if pos == 0 {
			role = Start
		}
		return Event{Codon: codon, AminoAcid: translation[aa], Role: role}
	}
	return Event{Codon: codon, AminoAcid: StopAminoAcid, Role: Stop}
}
