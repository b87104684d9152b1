package bio

import "testing"

func TestUnambiguous(tst *testing.T) {
	cases := []struct {
		seq string
		ok  bool
	}{
		{"", true},
		{"ATGGCTGGT", true},
		{"ATGNCT", false},
		{"atg", false},
		{"ACGU", false},
	}
	for _, c := range cases {
		if Unambiguous(c.seq) != c.ok {
			tst.Errorf("Unambiguous(%q): expected %v", c.seq, c.ok)
		}
	}
	if p := FirstAmbiguous("ACGTNA"); p != 4 {
		tst.Error("wrong position of the first ambiguous base:", p)
	}
	if p := FirstAmbiguous("ACGT"); p != -1 {
		tst.Error("expected -1, got", p)
	}
}

func TestReverseComplement(tst *testing.T) {
	cases := map[string]string{
		"":          "",
		"ATGC":      "GCAT",
		"atgc":      "gcat",
		"AACCN":     "NGGTT",
		"ATGGCTGGT": "ACCAGCCAT",
		"RYKM":      "KMRY",
	}
	for in, out := range cases {
		if rc := ReverseComplement(in); rc != out {
			tst.Errorf("ReverseComplement(%q)=%q, expected %q", in, rc, out)
		}
	}
	seq := "ATGAAACCCGGGTTTTAA"
	if ReverseComplement(ReverseComplement(seq)) != seq {
		tst.Error("double reverse complement changed the sequence")
	}
}

func TestNormalize(tst *testing.T) {
	in := "        1 atggctggta aa\n       61 ccg"
	if s := Normalize(in); s != "ATGGCTGGTAAACCG" {
		tst.Errorf("unexpected normalized sequence %q", s)
	}
}
