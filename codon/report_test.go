package codon

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func sampleCounts() *Counts {
	c := NewCounts()
	c.Add(Event{Codon: "GCT", AminoAcid: 'A', Role: Ordinary}, 500)
	c.Add(Event{Codon: "ATG", AminoAcid: 'M', Role: Start}, 300)
	c.Add(Event{Codon: "ATG", AminoAcid: 'M', Role: Ordinary}, 150)
	c.Add(Event{Codon: "TAA", AminoAcid: '*', Role: Stop}, 49)
	c.Add(Event{Codon: "TGA", AminoAcid: 'U', Role: Ordinary}, 1)
	return c
}

func TestReportOrder(tst *testing.T) {
	rep := NewReport(sampleCounts(), 0)
	if rep == nil {
		tst.Fatal("nil report")
	}
	order := []struct {
		codon string
		role  Role
	}{{"ATG", Ordinary}, {"ATG", Start}, {"GCT", Ordinary}, {"TAA", Stop}, {"TGA", Ordinary}}
	if len(rep.Rows) != len(order) {
		tst.Fatal("wrong number of rows:", len(rep.Rows))
	}
	for i, o := range order {
		if rep.Rows[i].Codon != o.codon || rep.Rows[i].Role != o.role {
			tst.Errorf("row %d: expected %s %q, got %s %q", i, o.codon, o.role, rep.Rows[i].Codon, rep.Rows[i].Role)
		}
	}
	if rep.Rows[3].AminoAcid != "*" || rep.Rows[3].Role.String() != "STOP" {
		tst.Error("wrong stop row:", rep.Rows[3])
	}
	if rep.Total != 1000 || rep.MinFreq != 0 {
		tst.Error("wrong report total or threshold")
	}
}

func TestReportNormalization(tst *testing.T) {
	records, _ := randomRecords(30, 4)
	c, err := Aggregate(&testReader{records: records}, Options{})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	rep := NewReport(c, 0)
	sum := 0.0
	for _, r := range rep.Rows {
		if r.Freq < 0 || r.Freq > 100 {
			tst.Error("frequency out of range:", r.Freq)
		}
		sum += r.Freq
	}
	if math.Abs(sum-100) > 1e-9 {
		tst.Error("frequencies do not sum to 100:", sum)
	}
	if rep.Counted() != rep.Total {
		tst.Error("unfiltered report should show every codon")
	}
}

func TestReportDeterminism(tst *testing.T) {
	records, _ := randomRecords(30, 5)
	var first *Report
	for i := 0; i < 5; i++ {
		c, err := Aggregate(&testReader{records: records}, Options{})
		if err != nil {
			tst.Fatal("Error: ", err)
		}
		rep := NewReport(c, 0)
		if first == nil {
			first = rep
		} else if !reflect.DeepEqual(first, rep) {
			tst.Fatal("reports differ between runs")
		}
	}
}

func TestReportFilter(tst *testing.T) {
	c := sampleCounts()

	rep := NewReport(c, DefaultMinFreq)
	if len(rep.Rows) != 5 {
		tst.Error("0.1% row should pass the default threshold")
	}

	rep = NewReport(c, 5)
	if len(rep.Rows) != 3 {
		tst.Error("expected three rows at 5%, got", len(rep.Rows))
	}
	if rep.MinFreq != 5 || rep.Total != 1000 || rep.Counted() != 950 {
		tst.Errorf("unexpected report: %+v", rep)
	}

	rep = NewReport(c, 90)
	if rep == nil {
		tst.Fatal("filtered report should not be nil")
	}
	if len(rep.Rows) != 0 {
		tst.Error("expected an empty report")
	}
}

func TestReportMonotonicity(tst *testing.T) {
	records, _ := randomRecords(20, 6)
	c, err := Aggregate(&testReader{records: records}, Options{})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	thresholds := []float64{0, 0.05, 0.5, 1, 2, 5, 50}
	for i := 1; i < len(thresholds); i++ {
		lo := NewReport(c, thresholds[i-1])
		hi := NewReport(c, thresholds[i])
		kept := make(map[string]bool, len(lo.Rows))
		for _, r := range lo.Rows {
			kept[r.Codon+r.AminoAcid+r.Role.String()] = true
		}
		for _, r := range hi.Rows {
			if !kept[r.Codon+r.AminoAcid+r.Role.String()] {
				tst.Errorf("row %v kept at %v but not at %v", r, thresholds[i], thresholds[i-1])
			}
		}
	}
}

func TestReportNoData(tst *testing.T) {
	if NewReport(nil, 0) != nil {
		tst.Error("expected nil report for nil counts")
	}
	if NewReport(NewCounts(), 0) != nil {
		tst.Error("expected nil report for empty counts")
	}
}

func TestCountsJSON(tst *testing.T) {
	c := sampleCounts()
	c.Stats.Records = 2
	c.Stats.CDS = 7
	b, err := json.Marshal(c)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	c2 := NewCounts()
	if err := json.Unmarshal(b, c2); err != nil {
		tst.Fatal("Error: ", err)
	}
	if c2.Total() != c.Total() || c2.Stats != c.Stats {
		tst.Error("decoded table differs")
	}
	for _, e := range c.Events() {
		if c.Get(e) != c2.Get(e) {
			tst.Error("count mismatch for", e)
		}
	}

	if err := json.Unmarshal([]byte(`{"entries":[{"codon":"ATG","aa":"M","role":"MIDDLE","count":1}]}`), c2); err == nil {
		tst.Error("unknown role should be rejected")
	}
}

func TestMerge(tst *testing.T) {
	a := sampleCounts()
	b := sampleCounts()
	a.Stats.CDS = 1
	b.Stats.CDS = 2
	a.Merge(b)
	a.Merge(nil)
	if a.Total() != 2000 || a.Stats.CDS != 3 {
		tst.Error("wrong merge result")
	}
	if a.Get(Event{Codon: "TAA", AminoAcid: '*', Role: Stop}) != 98 {
		tst.Error("wrong merged count")
	}
}
