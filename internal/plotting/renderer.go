package plotting

import (
	"context"
	"log"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"edustat/domain/dataset"
	"edustat/internal/errors"
	"edustat/ports"
)

var _ ports.FigureRenderer = (*Renderer)(nil)

// figure binds a file name to the function that lays out its panels
type figure struct {
	name  string
	build func([]dataset.StudentRecord) ([][]*plot.Plot, error)
	size  func() (vg.Length, vg.Length)
}

// Renderer writes the study figures as PNG files
type Renderer struct {
	style Style
}

// NewRenderer creates a renderer after validating style
func NewRenderer(style Style) (*Renderer, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{style: style}, nil
}

// Style returns the renderer's style
func (r *Renderer) Style() Style {
	return r.style
}

func (r *Renderer) figures() []figure {
	s := r.style
	return []figure{
		{name: PreTestFigure, build: s.PreTestDistributions, size: s.pairSize},
		{name: PostTestFigure, build: s.PostTestComparison, size: s.pairSize},
		{name: ImprovementFigure, build: s.ImprovementScores, size: s.singleSize},
	}
}

// RenderAll draws every figure into outDir concurrently and returns the
// written paths in figure order
func (r *Renderer) RenderAll(ctx context.Context, records []dataset.StudentRecord, outDir string) ([]string, error) {
	if outDir == "" {
		return nil, errors.InvalidInput("figure directory is empty")
	}

	figs := r.figures()
	paths := make([]string, len(figs))
	g, ctx := errgroup.WithContext(ctx)
	for i, fig := range figs {
		i, fig := i, fig
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(outDir, fig.name)
			if err := r.render(fig, records, path); err != nil {
				return err
			}
			paths[i] = path
			log.Printf("[Plotting] Saved %s", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// Render draws a single figure by file name
func (r *Renderer) Render(records []dataset.StudentRecord, name, outDir string) (string, error) {
	for _, fig := range r.figures() {
		if fig.name == name {
			path := filepath.Join(outDir, name)
			return path, r.render(fig, records, path)
		}
	}
	return "", errors.Newf(errors.CodeInvalidInput, "unknown figure %q", name)
}

func (r *Renderer) render(fig figure, records []dataset.StudentRecord, path string) error {
	plots, err := fig.build(records)
	if err != nil {
		return errors.Wrapf(err, "failed to build %s", fig.name)
	}
	w, h := fig.size()
	return r.style.save(plots, w, h, path)
}
