// Package plotting draws the publication figures of a study: pre-test
// distributions, the post-test comparison and the improvement scores.
package plotting

import (
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"edustat/domain/dataset"
	"edustat/internal/errors"
)

var validate = validator.New()

// Style holds every visual setting of the figures. Sizes are in inches and
// font sizes in points.
type Style struct {
	PairWidth         float64 `yaml:"pair_width" validate:"gt=0,lte=40"`
	PairHeight        float64 `yaml:"pair_height" validate:"gt=0,lte=40"`
	SingleWidth       float64 `yaml:"single_width" validate:"gt=0,lte=40"`
	SingleHeight      float64 `yaml:"single_height" validate:"gt=0,lte=40"`
	DPI               int     `yaml:"dpi" validate:"gte=36,lte=600"`
	FontSize          float64 `yaml:"font_size" validate:"gt=0"`
	LabelSize         float64 `yaml:"label_size" validate:"gt=0"`
	TitleSize         float64 `yaml:"title_size" validate:"gt=0"`
	TickSize          float64 `yaml:"tick_size" validate:"gt=0"`
	Bins              int     `yaml:"bins" validate:"gte=1,lte=200"`
	FillAlpha         float64 `yaml:"fill_alpha" validate:"gte=0,lte=1"`
	ControlColor      string  `yaml:"control_color" validate:"hexcolor"`
	ExperimentalColor string  `yaml:"experimental_color" validate:"hexcolor"`
	PointColor        string  `yaml:"point_color" validate:"hexcolor"`
	Grid              bool    `yaml:"grid"`
}

// DefaultStyle returns the publication settings: 12x5 inch paired panels,
// a 10x6 inch single panel, 300 DPI, eight histogram bins, blue control
// and red experimental.
func DefaultStyle() Style {
	return Style{
		PairWidth:         12,
		PairHeight:        5,
		SingleWidth:       10,
		SingleHeight:      6,
		DPI:               300,
		FontSize:          12,
		LabelSize:         14,
		TitleSize:         16,
		TickSize:          12,
		Bins:              8,
		FillAlpha:         0.7,
		ControlColor:      "#0000ff",
		ExperimentalColor: "#ff0000",
		PointColor:        "#000000",
		Grid:              true,
	}
}

// LoadStyle reads a YAML style file over the defaults. An empty path
// returns the defaults unchanged.
func LoadStyle(path string) (Style, error) {
	style := DefaultStyle()
	if path == "" {
		return style, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return style, errors.NotFound("plot style file " + path)
		}
		return style, errors.Wrapf(err, "failed to read plot style %s", path)
	}
	if err := yaml.Unmarshal(data, &style); err != nil {
		return style, errors.WithCode(errors.CodeConfigInvalid,
			errors.Wrapf(err, "failed to parse plot style %s", path))
	}
	if err := style.Validate(); err != nil {
		return style, err
	}
	return style, nil
}

// Validate checks ranges and colour formats
func (s Style) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "invalid plot style"))
	}
	return nil
}

// GroupColor returns the fill colour of a group with FillAlpha applied
func (s Style) GroupColor(g dataset.Group) color.Color {
	hex := s.ControlColor
	if g == dataset.GroupExperimental {
		hex = s.ExperimentalColor
	}
	return withAlpha(parseHex(hex), s.FillAlpha)
}

// LineColor returns the opaque colour of a group
func (s Style) LineColor(g dataset.Group) color.Color {
	if g == dataset.GroupExperimental {
		return parseHex(s.ExperimentalColor)
	}
	return parseHex(s.ControlColor)
}

func (s Style) pointColor() color.Color {
	return withAlpha(parseHex(s.PointColor), 0.5)
}

func (s Style) pairSize() (vg.Length, vg.Length) {
	return vg.Length(s.PairWidth) * vg.Inch, vg.Length(s.PairHeight) * vg.Inch
}

func (s Style) singleSize() (vg.Length, vg.Length) {
	return vg.Length(s.SingleWidth) * vg.Inch, vg.Length(s.SingleHeight) * vg.Inch
}

// parseHex decodes #rgb or #rrggbb. Invalid input yields black.
func parseHex(hex string) color.NRGBA {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil || len(h) != 6 {
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(alpha*255 + 0.5)
	return c
}
