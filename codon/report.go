package codon

// DefaultMinFreq is the default minimum frequency of a report row.
// Both the threshold and the frequencies are in percentage points, so
// 0.05 means 0.05%.
const DefaultMinFreq = 0.05

// Row is a single line of the codon usage report.
type Row struct {
	// AminoAcid is the display code of the amino acid, "*" for stop
	// codons.
	AminoAcid string
	Codon     string
	Count     int
	// Freq is the frequency in percent of all the counted codons.
	Freq float64
	Role Role
}

// Report is the codon usage report.
type Report struct {
	// Rows are sorted by codon, amino acid and role.
	Rows []Row
	// Total is the number of codons counted before filtering.
	Total int
	// MinFreq is the applied frequency threshold, 0 if the rows
	// were not filtered.
	MinFreq float64
}

// NewReport computes frequencies from the counts and filters out
// rows with frequency below minFreq (if minFreq is positive). A nil
// report means there is no data at all. A report with no rows is
// returned if filtering removed every row.
func NewReport(c *Counts, minFreq float64) *Report {
	total := c.Total()
	if total == 0 {
		return nil
	}

	events := c.Events()
	rows := make([]Row, 0, len(events))
	for _, e := range events {
		count := c.Get(e)
		aa := string(e.AminoAcid)
		if e.Role == Stop || e.AminoAcid == StopAminoAcid {
			aa = string(StopAminoAcid)
		}
		rows = append(rows, Row{
			AminoAcid: aa,
			Codon:     e.Codon,
			Count:     count,
			Freq:      float64(count) / float64(total) * 100,
			Role:      e.Role,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	rep := &Report{Rows: rows, Total: total}
	if minFreq > 0 {
		rep.filter(minFreq)
	}
	return rep
}

// filter keeps only rows with frequency of at least minFreq.
func (rep *Report) filter(minFreq float64) {
	kept := make([]Row, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		if r.Freq >= minFreq {
			kept = append(kept, r)
		}
	}
	log.Debugf("Filtered codons below %.2f%%: %d of %d rows remain", minFreq, len(kept), len(rep.Rows))
	rep.Rows = kept
	rep.MinFreq = minFreq
}

// Counted returns the sum of counts of the report rows.
func (rep *Report) Counted() (n int) {
	for _, r := range rep.Rows {
		n += r.Count
	}
	return
}
