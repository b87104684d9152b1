// Package export writes codon usage reports to files and to the
// console.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/gob"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/op/go-logging"

	"github.com/mrrlab/geneticker/codon"
)

// log is the global logging variable.
var log = logging.MustGetLogger("export")

// ErrUnsupported is returned for output files with an unknown
// extension.
var ErrUnsupported = errors.New("unsupported output file extension")

// Header is the column names of the exported tables.
var Header = []string{"Amino Acid", "Codon", "Count", "Freq. (%)", "Special Type"}

// Row is a report row in the exported form.
type Row struct {
	XMLName     xml.Name `json:"-" xml:"row" parquet:"-"`
	AminoAcid   string   `json:"Amino Acid" xml:"AminoAcid" parquet:"amino_acid"`
	Codon       string   `json:"Codon" xml:"Codon" parquet:"codon"`
	Count       int64    `json:"Count" xml:"Count" parquet:"count"`
	Freq        float64  `json:"Freq. (%)" xml:"Freq" parquet:"freq_percent"`
	SpecialType string   `json:"Special Type" xml:"SpecialType" parquet:"special_type"`
}

// Rows converts report rows to the exported form.
func Rows(rep *codon.Report) []Row {
	rows := make([]Row, len(rep.Rows))
	for i, r := range rep.Rows {
		rows[i] = Row{
			AminoAcid:   r.AminoAcid,
			Codon:       r.Codon,
			Count:       int64(r.Count),
			Freq:        r.Freq,
			SpecialType: r.Role.String(),
		}
	}
	return rows
}

// record returns the row as strings in the Header order.
func (r Row) record() []string {
	return []string{
		r.AminoAcid,
		r.Codon,
		strconv.FormatInt(r.Count, 10),
		strconv.FormatFloat(r.Freq, 'g', -1, 64),
		r.SpecialType,
	}
}

// streamWriter writes rows to a stream.
type streamWriter func(w io.Writer, rows []Row) error

// fileWriter writes rows to a file by itself.
type fileWriter func(path string, rows []Row) error

var streamWriters = map[string]streamWriter{
	".csv":  delimitedWriter(','),
	".tsv":  delimitedWriter('\t'),
	".json": writeJSON,
	".xml":  writeXML,
	".gob":  writeGob,
}

var fileWriters = map[string]fileWriter{
	".xlsx":    writeXLSX,
	".parquet": writeParquet,
	".png":     writePlot,
	".svg":     writePlot,
	".pdf":     writePlot,
}

// Format returns the format extension of the path and whether the
// output is gzip compressed. "out.tsv.gz" gives ".tsv" and true.
func Format(path string) (ext string, gz bool) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".gz") {
		gz = true
		lower = strings.TrimSuffix(lower, ".gz")
	}
	return filepath.Ext(lower), gz
}

// Supported reports whether the path has an extension Write can
// handle.
func Supported(path string) bool {
	ext, gz := Format(path)
	if _, ok := streamWriters[ext]; ok {
		return true
	}
	_, ok := fileWriters[ext]
	return ok && !gz
}

// Write exports the report to a file. The format is chosen by the
// file extension, a trailing ".gz" compresses text formats. If the
// export fails, a partial file created by Write is removed.
func Write(rep *codon.Report, path string) (err error) {
	ext, gz := Format(path)
	log.Infof("Creating report at %s (%s)", path, ext)

	rows := Rows(rep)

	// an existing file or directory at path is never removed
	_, statErr := os.Lstat(path)
	existed := !os.IsNotExist(statErr)

	if fw, ok := fileWriters[ext]; ok {
		if gz {
			return fmt.Errorf("%w: %s cannot be gzip compressed", ErrUnsupported, ext)
		}
		err = fw(path, rows)
	} else if sw, ok := streamWriters[ext]; ok {
		err = writeStream(path, rows, sw, gz)
	} else {
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupported, ext, supportedList())
	}

	if err != nil {
		if !existed {
			os.Remove(path)
		}
		return fmt.Errorf("error exporting to %s: %w", path, err)
	}
	log.Infof("Successfully exported %d codon entries to %s", len(rows), path)
	return nil
}

func writeStream(path string, rows []Row, sw streamWriter, gz bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	var zw *pgzip.Writer
	if gz {
		zw = pgzip.NewWriter(bw)
		w = zw
	}

	err = sw(w, rows)
	if zw != nil {
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
	}
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func supportedList() string {
	exts := make([]string, 0, len(streamWriters)+len(fileWriters))
	for ext := range streamWriters {
		exts = append(exts, ext)
	}
	for ext := range fileWriters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

func delimitedWriter(comma rune) streamWriter {
	return func(w io.Writer, rows []Row) error {
		cw := csv.NewWriter(w)
		cw.Comma = comma
		if err := cw.Write(Header); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write(r.record()); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
}

func writeJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(rows)
}

type xmlData struct {
	XMLName xml.Name `xml:"data"`
	Rows    []Row    `xml:"row"`
}

func writeXML(w io.Writer, rows []Row) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(xmlData{Rows: rows}); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeGob(w io.Writer, rows []Row) error {
	return gob.NewEncoder(w).Encode(rows)
}
