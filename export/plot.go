package export

import (
	"errors"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/mrrlab/geneticker/codon"
)

// barWidth is the width of a single bar in the frequency plot.
var barWidth = vg.Points(7)

// writePlot saves a bar chart of codon frequencies. START and STOP
// codons are drawn as separate series. The image format is chosen by
// the file extension.
func writePlot(path string, rows []Row) error {
	if len(rows) == 0 {
		return errors.New("nothing to plot")
	}

	p := plot.New()
	p.Title.Text = "Codon usage"
	p.Y.Label.Text = "Frequency (%)"
	p.X.Tick.Label.Rotation = math.Pi / 2

	labels := make([]string, len(rows))
	series := map[string]plotter.Values{}
	roles := []string{codon.Ordinary.String(), codon.Start.String(), codon.Stop.String()}
	for _, role := range roles {
		series[role] = make(plotter.Values, len(rows))
	}
	for i, r := range rows {
		labels[i] = r.Codon + " " + r.AminoAcid
		series[r.SpecialType][i] = r.Freq
	}

	for i, role := range roles {
		bars, err := plotter.NewBarChart(series[role], barWidth)
		if err != nil {
			return err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		p.Add(bars)
		if role == "" {
			role = "codon"
		}
		p.Legend.Add(role, bars)
	}
	p.Legend.Top = true
	p.NominalX(labels...)

	width := vg.Length(len(rows))*barWidth*1.5 + vg.Inch
	if width < 4*vg.Inch {
		width = 4 * vg.Inch
	}
	return p.Save(width, 4*vg.Inch, path)
}
