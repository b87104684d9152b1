/*
Package gbff reads GenBank flat files.

The reader is streaming: Read returns one record at a time, so files
with many records (e.g. RefSeq genomes or release files) are never
kept in memory as a whole. Gzip-compressed files are decompressed
transparently by Open and Decompress.
*/
package gbff

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/op/go-logging"

	"github.com/mrrlab/geneticker/bio"
)

// log is the global logging variable.
var log = logging.MustGetLogger("gbff")

// ErrMalformed is returned (wrapped) for input that is not a valid
// GenBank flat file.
var ErrMalformed = errors.New("malformed GenBank file")

const (
	twelveSpaces     = "            "
	twentyOneSpaces  = "                     "
	featureKeyIndent = "     "
	maxLineLength    = 64 * 1024 * 1024
)

// Reader reads GenBank records.
type Reader struct {
	scanner *bufio.Scanner
	// line is the number of the last line read.
	line int
	// pending is a line pushed back by unread.
	pending    string
	hasPending bool
}

// NewReader creates a Reader reading from rd. The input should be
// uncompressed, see Decompress.
func NewReader(rd io.Reader) *Reader {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &Reader{scanner: scanner}
}

// next returns the next line, io.EOF at the end of input.
func (r *Reader) next() (string, error) {
	if r.hasPending {
		r.hasPending = false
		return r.pending, nil
	}
	if r.scanner.Scan() {
		r.line++
		return strings.TrimRight(r.scanner.Text(), "\r"), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *Reader) unread(line string) {
	r.pending = line
	r.hasPending = true
}

func (r *Reader) malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformed, r.line, fmt.Sprintf(format, args...))
}

// Read reads the next record. It returns io.EOF if there are no more
// records.
func (r *Reader) Read() (*Record, error) {
	var line string
	var err error

	// skip release header and empty lines
	for {
		line, err = r.next()
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(line, "LOCUS") {
			break
		}
		if strings.TrimSpace(line) != "" {
			log.Debugf("skipping line %d before LOCUS", r.line)
		}
	}

	rec := &Record{}
	if err := r.parseLocus(rec, line); err != nil {
		return nil, err
	}

	for {
		line, err = r.next()
		if err == io.EOF {
			return nil, r.malformed("record %s is not terminated by //", rec.Name)
		}
		if err != nil {
			return nil, err
		}

		switch {
		case strings.HasPrefix(line, "//"):
			return rec, nil
		case strings.TrimSpace(line) == "":
			continue
		case strings.HasPrefix(line, "LOCUS"):
			return nil, r.malformed("record %s is not terminated by //", rec.Name)
		case strings.HasPrefix(line, "DEFINITION"):
			rec.Definition, err = r.continuation(strings.TrimPrefix(line, "DEFINITION"))
		case strings.HasPrefix(line, "ACCESSION"):
			var acc string
			acc, err = r.continuation(strings.TrimPrefix(line, "ACCESSION"))
			if f := strings.Fields(acc); len(f) > 0 {
				rec.Accession = f[0]
			}
		case strings.HasPrefix(line, "VERSION"):
			if f := strings.Fields(strings.TrimPrefix(line, "VERSION")); len(f) > 0 {
				rec.Version = f[0]
			}
		case strings.HasPrefix(line, "FEATURES"):
			rec.Features, err = r.parseFeatures()
		case strings.HasPrefix(line, "ORIGIN"):
			rec.Sequence, err = r.parseSequence()
			if err == nil {
				checkLength(rec)
				return rec, nil
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

// parseLocus parses the LOCUS line, e.g.
// "LOCUS       NC_000913    4641652 bp    DNA     circular CON 09-MAR-2022".
func (r *Reader) parseLocus(rec *Record, line string) error {
	cols := strings.Fields(line)
	if len(cols) < 2 || cols[0] != "LOCUS" {
		return r.malformed("bad LOCUS line: %q", line)
	}
	rec.Name = cols[1]
	if len(cols) < 3 {
		return nil
	}
	if n, err := strconv.Atoi(cols[2]); err == nil {
		rec.Length = n
	}
	for _, c := range cols[3:] {
		switch {
		case c == "linear" || c == "circular":
			rec.Topology = c
		case strings.HasSuffix(c, "DNA") || strings.HasSuffix(c, "RNA"):
			rec.Molecule = c
		}
	}
	return nil
}

// continuation reads twelve-space continuation lines of a header
// section.
func (r *Reader) continuation(first string) (string, error) {
	parts := []string{strings.TrimSpace(first)}
	for {
		line, err := r.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if !strings.HasPrefix(line, twelveSpaces) {
			r.unread(line)
			break
		}
		parts = append(parts, strings.TrimSpace(line))
	}
	return strings.Join(parts, " "), nil
}

// parseFeatures reads the feature table up to the next section.
func (r *Reader) parseFeatures() ([]*Feature, error) {
	var features []*Feature
	var cur *Feature
	var loc []string
	// qualifier being read
	var qual string
	var val []string
	inQual := false

	finishQual := func() {
		if !inQual {
			return
		}
		cur.Qualifiers.add(qual, qualifierValue(qual, val))
		inQual = false
		val = nil
	}
	finishFeature := func() error {
		if cur == nil {
			return nil
		}
		finishQual()
		l, err := ParseLocation(strings.Join(loc, ""))
		if err != nil {
			return r.malformed("%s feature: %v", cur.Key, err)
		}
		cur.Location = l
		features = append(features, cur)
		cur = nil
		loc = nil
		return nil
	}

	for {
		line, err := r.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.HasPrefix(line, featureKeyIndent) {
			// next section
			r.unread(line)
			break
		}
		if len(line) < len(twentyOneSpaces) {
			return nil, r.malformed("feature line is too short: %q", line)
		}

		if key := strings.TrimSpace(line[5:21]); key != "" {
			// new feature
			if err := finishFeature(); err != nil {
				return nil, err
			}
			cur = &Feature{Key: key, Qualifiers: Qualifiers{}}
			loc = []string{strings.TrimSpace(line[21:])}
			continue
		}
		if cur == nil {
			return nil, r.malformed("continuation line without a feature: %q", line)
		}

		txt := strings.TrimSpace(line[21:])
		switch {
		case inQual && openQuote(val):
			// quoted values may contain lines starting with '/'
			val = append(val, txt)
		case strings.HasPrefix(txt, "/"):
			finishQual()
			qual = txt[1:]
			inQual = true
			if i := strings.IndexByte(qual, '='); i >= 0 {
				val = []string{qual[i+1:]}
				qual = qual[:i]
			}
		case inQual:
			val = append(val, txt)
		default:
			loc = append(loc, txt)
		}
	}
	if err := finishFeature(); err != nil {
		return nil, err
	}
	return features, nil
}

// openQuote reports if the value parts contain an unterminated quoted
// string.
func openQuote(val []string) bool {
	n := 0
	for _, v := range val {
		n += strings.Count(v, "\"")
	}
	return n%2 == 1
}

// qualifierValue joins the value lines and removes the quotes.
// Sequence-like qualifiers are joined without spaces.
func qualifierValue(qual string, val []string) string {
	sep := " "
	switch qual {
	case "translation", "transcription", "peptide", "anticodon":
		sep = ""
	}
	v := strings.TrimSpace(strings.Join(val, sep))
	if len(v) >= 2 && strings.HasPrefix(v, "\"") && strings.HasSuffix(v, "\"") {
		v = v[1 : len(v)-1]
	}
	return strings.ReplaceAll(v, "\"\"", "\"")
}

// parseSequence reads the sequence lines after ORIGIN up to the
// record terminator, which is consumed.
func (r *Reader) parseSequence() (string, error) {
	var b strings.Builder
	for {
		line, err := r.next()
		if err == io.EOF {
			return "", r.malformed("sequence is not terminated by //")
		}
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(line, "//") {
			return b.String(), nil
		}
		b.WriteString(bio.Normalize(line))
	}
}

// checkLength warns if the sequence length differs from the length
// on the LOCUS line.
func checkLength(rec *Record) {
	if rec.Length > 0 && len(rec.Sequence) != rec.Length {
		log.Warningf("Record %s: LOCUS length is %d, but the sequence has %d bases",
			rec.ID(), rec.Length, len(rec.Sequence))
	}
}

// ReadAll reads all the remaining records.
func (r *Reader) ReadAll() (recs []*Record, err error) {
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
}
