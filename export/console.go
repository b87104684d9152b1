package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/mrrlab/geneticker/codon"
)

// ruleWidth is the width of the console table.
const ruleWidth = 49

var (
	startColor = color.New(color.FgGreen)
	stopColor  = color.New(color.FgRed)
)

// Print writes the report as a fixed-width table. name is the input
// file name shown in the title. START and STOP rows are colored unless
// color output is disabled (color.NoColor), which is the default when
// standard output is not a terminal.
func Print(w io.Writer, rep *codon.Report, name string) {
	fmt.Fprintf(w, "\n=== Codon Frequency Report for %s ===\n", name)
	fmt.Fprintf(w, "Total Valid Codons Counted: %d\n\n", rep.Counted())

	fmt.Fprintf(w, "%-4s %-6s %-10s %10s %-12s\n", "AA", "Codon", "Count", "Freq. (%)", "Special Type")
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))

	for _, r := range rep.Rows {
		line := fmt.Sprintf("%-4s %-6s %-10d %10.4f %-12s", r.AminoAcid, r.Codon, r.Count, r.Freq, r.Role)
		switch r.Role {
		case codon.Start:
			startColor.Fprintln(w, line)
		case codon.Stop:
			stopColor.Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
}
