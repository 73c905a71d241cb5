package ports

import (
	"context"

	"edustat/domain/dataset"
)

// FigureRenderer draws the study figures into a directory and returns
// the paths it wrote
type FigureRenderer interface {
	RenderAll(ctx context.Context, records []dataset.StudentRecord, outDir string) ([]string, error)
	// Render draws one figure by file name and returns its path
	Render(records []dataset.StudentRecord, name, outDir string) (string, error)
}
