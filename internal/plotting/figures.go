package plotting

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"edustat/domain/dataset"
	domain "edustat/domain/stats"
	"edustat/internal/analysis/comparison"
	ds "edustat/internal/dataset"
	"edustat/internal/errors"
)

// Figure file names
const (
	PreTestFigure     = "pre_test_distributions.png"
	PostTestFigure    = "post_test_comparison.png"
	ImprovementFigure = "improvement_scores.png"
)

// Figures lists the figure files in drawing order
var Figures = []string{PreTestFigure, PostTestFigure, ImprovementFigure}

const (
	normalCurveSamples = 100
	stripSpread        = 0.12
	boxWidth           = 60
)

var zeroLineColor = color.Gray{Y: 0x80}

// groupScores splits one column into control and experimental samples
type groupScores map[dataset.Group]domain.Sample

func collect(records []dataset.StudentRecord, column dataset.Column) groupScores {
	scores := make(groupScores, len(dataset.Groups))
	for _, g := range dataset.Groups {
		scores[g] = ds.GroupScores(records, g, column)
	}
	return scores
}

func (g groupScores) complete() bool {
	for _, s := range g {
		if len(s) == 0 {
			return false
		}
	}
	return true
}

// newPlot returns a plot with the style's fonts and grid applied
func (s Style) newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(s.TitleSize)
	p.Title.Padding = vg.Points(s.FontSize / 2)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(s.LabelSize)
	p.Y.Label.TextStyle.Font.Size = vg.Points(s.LabelSize)
	p.X.Tick.Label.Font.Size = vg.Points(s.TickSize)
	p.Y.Tick.Label.Font.Size = vg.Points(s.TickSize)
	p.Legend.TextStyle.Font.Size = vg.Points(s.FontSize)
	p.Legend.Top = true
	if s.Grid {
		grid := plotter.NewGrid()
		grid.Vertical.Color = color.Gray{Y: 0xd9}
		grid.Horizontal.Color = color.Gray{Y: 0xd9}
		p.Add(grid)
	}
	return p
}

// noData titles an empty panel
func noData(p *plot.Plot, title string) {
	p.Title.Text = title
	p.X.Label.Text = ""
	p.Y.Label.Text = ""
	p.HideAxes()
}

// histogram builds a filled histogram of sample for group g
func (s Style) histogram(sample domain.Sample, g dataset.Group) (*plotter.Histogram, error) {
	h, err := plotter.NewHist(plotter.Values(sample), s.Bins)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to bin %s scores", g)
	}
	h.FillColor = s.GroupColor(g)
	h.LineStyle.Color = s.LineColor(g)
	h.LineStyle.Width = vg.Points(0.5)
	return h, nil
}

// normalCurve returns the maximum likelihood normal density scaled to
// histogram counts, spanning the observed range
func (s Style) normalCurve(sample domain.Sample, g dataset.Group, binWidth float64) (*plotter.Function, float64, bool) {
	fit, err := comparison.FitNormal(sample)
	if err != nil || fit.Sigma == 0 {
		return nil, 0, false
	}
	dist := distuv.Normal{Mu: fit.Mu, Sigma: fit.Sigma}
	scale := float64(fit.N) * binWidth

	f := plotter.NewFunction(func(x float64) float64 { return dist.Prob(x) * scale })
	f.XMin, f.XMax = minMax(sample)
	f.Samples = normalCurveSamples
	f.Color = s.LineColor(g)
	f.Width = vg.Points(2)
	return f, dist.Prob(fit.Mu) * scale, true
}

// preTestPanel draws one group's pre-test histogram with its normal fit
func (s Style) preTestPanel(sample domain.Sample, g dataset.Group) (*plot.Plot, error) {
	p := s.newPlot(fmt.Sprintf("%s Group (n=%d)", g.Title(), len(sample)),
		"Pre-test Score", "Number of Students")
	if len(sample) == 0 {
		noData(p, g.Title()+" Group (No Data)")
		return p, nil
	}

	h, err := s.histogram(sample, g)
	if err != nil {
		return nil, err
	}
	p.Add(h)
	p.Legend.Add(g.Title(), h)

	if curve, peak, ok := s.normalCurve(sample, g, h.Width); ok {
		p.Add(curve)
		p.Legend.Add("Normal fit", curve)
		if peak > p.Y.Max {
			p.Y.Max = peak
		}
	}
	return p, nil
}

// PreTestDistributions draws side-by-side pre-test histograms
func (s Style) PreTestDistributions(records []dataset.StudentRecord) ([][]*plot.Plot, error) {
	scores := collect(records, dataset.ColumnPreTest)
	row := make([]*plot.Plot, 0, len(dataset.Groups))
	for _, g := range dataset.Groups {
		p, err := s.preTestPanel(scores[g], g)
		if err != nil {
			return nil, err
		}
		row = append(row, p)
	}
	return [][]*plot.Plot{row}, nil
}

// PostTestComparison draws overlaid density histograms next to box plots
// with every student's score and the group mean and standard deviation
func (s Style) PostTestComparison(records []dataset.StudentRecord) ([][]*plot.Plot, error) {
	scores := collect(records, dataset.ColumnPostTest)
	dist := s.newPlot("Post-test Score Distributions", "Post-test Score", "Density")
	box := s.newPlot("Post-test Score Comparison", "", "Score")

	if !scores.complete() {
		noData(dist, "Post-test Distributions (Insufficient Data)")
		noData(box, "Post-test Comparison (Insufficient Data)")
		return [][]*plot.Plot{{dist, box}}, nil
	}

	for _, g := range dataset.Groups {
		h, err := s.histogram(scores[g], g)
		if err != nil {
			return nil, err
		}
		h.Normalize(1)
		dist.Add(h)
		dist.Legend.Add(g.Title(), h)
	}

	if err := s.boxStrip(box, scores); err != nil {
		return nil, err
	}

	top := box.Y.Max
	labels := plotter.XYLabels{}
	for i, g := range dataset.Groups {
		summary, err := comparison.Summarize(scores[g])
		if err != nil {
			return nil, err
		}
		labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: top})
		labels.Labels = append(labels.Labels,
			fmt.Sprintf("%s: %.1f ± %.1f", g.Title(), summary.Mean, summary.StdDev))
	}
	if err := s.addLabels(box, labels); err != nil {
		return nil, err
	}
	return [][]*plot.Plot{{dist, box}}, nil
}

// ImprovementScores draws improvement box plots with a zero reference line
// and the mean of each group
func (s Style) ImprovementScores(records []dataset.StudentRecord) ([][]*plot.Plot, error) {
	scores := collect(records, dataset.ColumnImprovement)
	p := s.newPlot("Learning Improvement by Instructional Method", "", "Score Improvement (Post - Pre)")

	if len(scores[dataset.GroupControl])+len(scores[dataset.GroupExperimental]) == 0 {
		noData(p, "Learning Improvement by Instructional Method (No Data)")
		return [][]*plot.Plot{{p}}, nil
	}

	if err := s.boxStrip(p, scores); err != nil {
		return nil, err
	}

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Color = zeroLineColor
	zero.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	p.Add(zero)

	labels := plotter.XYLabels{}
	for i, g := range dataset.Groups {
		if len(scores[g]) == 0 {
			continue
		}
		summary, err := comparison.Summarize(scores[g])
		if err != nil {
			return nil, err
		}
		labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: summary.Mean + 1})
		labels.Labels = append(labels.Labels, fmt.Sprintf("Mean: %.1f", summary.Mean))
	}
	if err := s.addLabels(p, labels); err != nil {
		return nil, err
	}
	return [][]*plot.Plot{{p}}, nil
}

// boxStrip adds one box plot per non-empty group plus jittered points
func (s Style) boxStrip(p *plot.Plot, scores groupScores) error {
	names := make([]string, 0, len(dataset.Groups))
	for i, g := range dataset.Groups {
		names = append(names, g.Title())
		sample := scores[g]
		if len(sample) == 0 {
			continue
		}

		b, err := plotter.NewBoxPlot(vg.Points(boxWidth), float64(i), plotter.Values(sample))
		if err != nil {
			return errors.Wrapf(err, "failed to build %s box plot", g)
		}
		b.FillColor = s.GroupColor(g)
		p.Add(b)

		pts, err := plotter.NewScatter(strip(sample, float64(i)))
		if err != nil {
			return errors.Wrapf(err, "failed to build %s strip points", g)
		}
		pts.GlyphStyle = draw.GlyphStyle{
			Color:  s.pointColor(),
			Radius: vg.Points(2),
			Shape:  draw.CircleGlyph{},
		}
		p.Add(pts)
	}
	p.NominalX(names...)
	return nil
}

func (s Style) addLabels(p *plot.Plot, labels plotter.XYLabels) error {
	if len(labels.XYs) == 0 {
		return nil
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return errors.Wrap(err, "failed to build labels")
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Font.Size = vg.Points(s.FontSize)
		l.TextStyle[i].XAlign = draw.XCenter
	}
	p.Add(l)
	return nil
}

// strip spreads points horizontally around x in a fixed repeating pattern
func strip(sample domain.Sample, x float64) plotter.XYs {
	pts := make(plotter.XYs, len(sample))
	for i, v := range sample {
		offset := float64(i%7-3) / 3 * stripSpread
		pts[i] = plotter.XY{X: x + offset, Y: v}
	}
	return pts
}

func minMax(sample domain.Sample) (float64, float64) {
	lo, hi := sample[0], sample[0]
	for _, v := range sample[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// save lays plots out in a grid and writes a PNG at the style's DPI
func (s Style) save(plots [][]*plot.Plot, w, h vg.Length, path string) error {
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(s.DPI))
	dc := draw.New(img)

	rows := len(plots)
	cols := len(plots[0])
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Points(18),
		PadY:      vg.Points(18),
		PadTop:    vg.Points(6),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(6),
	}

	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create figure directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to encode %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
