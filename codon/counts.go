package codon

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Role is the structural role of a codon position within a coding
// sequence.
type Role int

const (
	// Ordinary is any codon which is neither the first codon nor
	// past the end of the translation.
	Ordinary Role = iota
	// Start is the first codon of a coding sequence.
	Start
	// Stop is a codon position beyond the end of the translation.
	Stop
)

// String returns the role label used in reports ("" for ordinary
// codons).
func (r Role) String() string {
	switch r {
	case Start:
		return "START"
	case Stop:
		return "STOP"
	}
	return ""
}

// ParseRole converts a role label back to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "":
		return Ordinary, nil
	case "START":
		return Start, nil
	case "STOP":
		return Stop, nil
	}
	return Ordinary, fmt.Errorf("unknown codon role: %q", s)
}

// StopAminoAcid is the amino acid code of the stop codon positions.
const StopAminoAcid = '*'

// Event is a single counted codon occurrence: the codon, the amino
// acid it was assigned and its role.
type Event struct {
	Codon     string
	AminoAcid byte
	Role      Role
}

// Less orders events by codon, amino acid and role.
func (e Event) Less(o Event) bool {
	if e.Codon != o.Codon {
		return e.Codon < o.Codon
	}
	if e.AminoAcid != o.AminoAcid {
		return e.AminoAcid < o.AminoAcid
	}
	return e.Role < o.Role
}

func (e Event) String() string {
	return fmt.Sprintf("<%s %c %s>", e.Codon, e.AminoAcid, e.Role)
}

// Stats stores the bookkeeping of an aggregation pass.
type Stats struct {
	// Records is the number of records read.
	Records int `json:"records"`
	// CDS is the number of CDS features seen.
	CDS int `json:"cds"`
	// Processed is the number of CDS features which passed the
	// translation and pseudogene checks.
	Processed int `json:"processed"`
	// Counted is the number of CDS features which contributed codons.
	Counted int `json:"counted"`
	// NoTranslation is the number of CDS features skipped for a
	// missing translation.
	NoTranslation int `json:"noTranslation"`
	// Pseudo is the number of skipped pseudogenes.
	Pseudo int `json:"pseudo"`
	// Ambiguous is the number of CDS features skipped because of
	// non-ACGT bases.
	Ambiguous int `json:"ambiguous"`
	// Truncated is the number of CDS features whose length is not
	// divisible by three.
	Truncated int `json:"truncated"`
}

// add adds the other stats to s.
func (s *Stats) add(o Stats) {
	s.Records += o.Records
	s.CDS += o.CDS
	s.Processed += o.Processed
	s.Counted += o.Counted
	s.NoTranslation += o.NoTranslation
	s.Pseudo += o.Pseudo
	s.Ambiguous += o.Ambiguous
	s.Truncated += o.Truncated
}

// Counts is the aggregated table of codon events. It is populated
// during a single aggregation pass and only read afterwards.
type Counts struct {
	counts map[Event]int
	total  int
	// Stats is the summary of the pass which produced the table.
	Stats Stats
}

// NewCounts creates an empty table.
func NewCounts() *Counts {
	return &Counts{counts: make(map[Event]int, 64)}
}

// Add adds n occurrences of the event.
func (c *Counts) Add(e Event, n int) {
	if n <= 0 {
		return
	}
	c.counts[e] += n
	c.total += n
}

// Merge sums the other table (and its stats) into c.
func (c *Counts) Merge(o *Counts) {
	if o == nil {
		return
	}
	for e, n := range o.counts {
		c.Add(e, n)
	}
	c.Stats.add(o.Stats)
}

// Get returns the number of occurrences of the event.
func (c *Counts) Get(e Event) int {
	if c == nil {
		return 0
	}
	return c.counts[e]
}

// Total returns the sum of all counts.
func (c *Counts) Total() int {
	if c == nil {
		return 0
	}
	return c.total
}

// Len returns the number of distinct events.
func (c *Counts) Len() int {
	if c == nil {
		return 0
	}
	return len(c.counts)
}

// Events returns all the distinct events sorted by codon, amino acid
// and role.
func (c *Counts) Events() []Event {
	if c == nil {
		return nil
	}
	events := make([]Event, 0, len(c.counts))
	for e := range c.counts {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Less(events[j])
	})
	return events
}

// jsonEntry is the serialized form of a single table entry.
type jsonEntry struct {
	Codon     string `json:"codon"`
	AminoAcid string `json:"aa"`
	Role      string `json:"role"`
	Count     int    `json:"count"`
}

type jsonCounts struct {
	Entries []jsonEntry `json:"entries"`
	Stats   Stats       `json:"stats"`
}

// MarshalJSON encodes the table as a sorted list of entries.
func (c *Counts) MarshalJSON() ([]byte, error) {
	jc := jsonCounts{Stats: c.Stats, Entries: make([]jsonEntry, 0, c.Len())}
	for _, e := range c.Events() {
		jc.Entries = append(jc.Entries, jsonEntry{
			Codon:     e.Codon,
			AminoAcid: string(e.AminoAcid),
			Role:      e.Role.String(),
			Count:     c.counts[e],
		})
	}
	return json.Marshal(jc)
}

// UnmarshalJSON decodes the table encoded by MarshalJSON.
func (c *Counts) UnmarshalJSON(b []byte) error {
	var jc jsonCounts
	if err := json.Unmarshal(b, &jc); err != nil {
		return err
	}
	c.counts = make(map[Event]int, len(jc.Entries))
	c.total = 0
	for _, je := range jc.Entries {
		if len(je.AminoAcid) != 1 {
			return errors.New("amino acid should be a single letter")
		}
		role, err := ParseRole(je.Role)
		if err != nil {
			return err
		}
		if je.Count < 0 {
			return fmt.Errorf("negative count for codon %s", je.Codon)
		}
		c.Add(Event{Codon: je.Codon, AminoAcid: je.AminoAcid[0], Role: role}, je.Count)
	}
	c.Stats = jc.Stats
	return nil
}
