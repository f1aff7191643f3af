package plotmap

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/tephra-map-etl/internal/basemap"
	"github.com/couchcryptid/tephra-map-etl/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// figureHeight is the long edge of the figure; the short edge follows the frame aspect ratio.
const figureHeight = 7 * vg.Inch

// layerStyle mirrors the classic map styling: matched samples on top in red,
// other compositions in orange, undated occurrences as small dark dots.
type layerStyle struct {
	label  string
	color  color.Color
	radius vg.Length
}

var (
	matchedStyle    = layerStyle{color: color.RGBA{R: 255, A: 255}, radius: vg.Points(3.9)}
	otherKnownStyle = layerStyle{label: "Other compositions", color: color.RGBA{R: 255, G: 165, A: 255}, radius: vg.Points(3)}
	noDataStyle     = layerStyle{label: "No geochemistry data", color: color.Gray{Y: 51}, radius: vg.Points(1.9)}

	graticuleColor = color.Gray{Y: 153}
	landFill       = color.Gray{Y: 230}
	coastColor     = color.Gray{Y: 102}

	labelSize = vg.Points(7)
)

// Renderer draws tephra occurrence maps on a fixed basemap and writes them as PNG.
// It implements pipeline.MapRenderer.
type Renderer struct {
	proj      *basemap.Projection
	land      []basemap.Area
	graticule []basemap.Polyline
	labels    []basemap.Label
	outDir    string
	dpi       int
	logger    *slog.Logger
}

// NewRenderer creates a Renderer writing into outDir at the given resolution.
// The land polygons and graticule are projected once here and reused for every map.
func NewRenderer(proj *basemap.Projection, outDir string, dpi int, logger *slog.Logger) (*Renderer, error) {
	land, err := proj.Land()
	if err != nil {
		return nil, fmt.Errorf("load land polygons: %w", err)
	}
	graticule := proj.Graticule(basemap.Parallels(), basemap.Meridians())
	return &Renderer{
		proj:      proj,
		land:      land,
		graticule: graticule,
		labels:    proj.EdgeLabels(graticule),
		outDir:    outDir,
		dpi:       dpi,
		logger:    logger,
	}, nil
}

// Render draws one map and returns the path of the written PNG.
func (r *Renderer) Render(ctx context.Context, req domain.MapRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p, err := r.buildPlot(req)
	if err != nil {
		return "", fmt.Errorf("build map %q: %w", req.Title(), err)
	}

	path := filepath.Join(r.outDir, req.FileName())
	if err := r.save(p, path); err != nil {
		return "", fmt.Errorf("save map %q: %w", req.Title(), err)
	}
	return path, nil
}

func (r *Renderer) buildPlot(req domain.MapRequest) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = req.Title()
	p.HideAxes()
	p.Legend.Top = true

	base, err := r.basemapLayers()
	if err != nil {
		return nil, err
	}
	p.Add(base...)

	// Added bottom layer first so matched samples draw on top.
	matched := matchedStyle
	matched.label = req.Composition.String()
	layers := []struct {
		style  layerStyle
		points []domain.Point
	}{
		{noDataStyle, req.Bucket.NoData},
		{otherKnownStyle, req.Bucket.OtherKnown},
		{matched, req.Bucket.Matched},
	}

	scatters := make([]*plotter.Scatter, len(layers))
	for i, l := range layers {
		xys, dropped := r.project(l.points)
		if dropped > 0 {
			r.logger.Debug("points outside map frame",
				"title", req.Title(),
				"layer", l.style.label,
				"dropped", dropped,
			)
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Color = l.style.color
		s.GlyphStyle.Radius = l.style.radius
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		scatters[i] = s
	}

	labels, err := r.labelLayers()
	if err != nil {
		return nil, err
	}
	for _, l := range labels {
		p.Add(l)
	}

	// Legend lists the matched layer first.
	for i := len(layers) - 1; i >= 0; i-- {
		p.Legend.Add(layers[i].style.label, scatters[i])
	}

	frame := r.proj.Params()
	p.X.Min, p.X.Max = 0, frame.Width
	p.Y.Min, p.Y.Max = 0, frame.Height
	return p, nil
}

// project converts points to frame coordinates, dropping any outside the frame.
func (r *Renderer) project(points []domain.Point) (plotter.XYs, int) {
	xys := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		x, y := r.proj.Forward(pt.Lon, pt.Lat)
		if !r.proj.Contains(x, y) {
			continue
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
	}
	return xys, len(points) - len(xys)
}

func (r *Renderer) save(p *plot.Plot, path string) error {
	frame := r.proj.Params()
	width := vg.Length(float64(figureHeight) * frame.Width / frame.Height)

	c := vgimg.NewWith(vgimg.UseWH(width, figureHeight), vgimg.UseDPI(r.dpi))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// basemapLayers returns the filled land polygons followed by the dashed
// graticule, in drawing order.
func (r *Renderer) basemapLayers() ([]plot.Plotter, error) {
	out := make([]plot.Plotter, 0, len(r.land)+len(r.graticule))
	for _, area := range r.land {
		poly, err := plotter.NewPolygon(toRings(area.Rings)...)
		if err != nil {
			return nil, fmt.Errorf("land %q: %w", area.Name, err)
		}
		poly.Color = landFill
		poly.LineStyle.Color = coastColor
		poly.LineStyle.Width = vg.Points(0.4)
		out = append(out, poly)
	}

	for _, g := range r.graticule {
		line, err := plotter.NewLine(toXYs(g.Points))
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = graticuleColor
		line.LineStyle.Width = vg.Points(0.5)
		line.LineStyle.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}
		out = append(out, line)
	}
	return out, nil
}

// labelLayers builds one plotter.Labels per frame side so the text can be
// aligned to sit just inside that side.
func (r *Renderer) labelLayers() ([]*plotter.Labels, error) {
	bySide := make(map[basemap.Edge]*plotter.XYLabels)
	var sides []basemap.Edge
	for _, lb := range r.labels {
		xyl, ok := bySide[lb.Edge]
		if !ok {
			xyl = &plotter.XYLabels{}
			bySide[lb.Edge] = xyl
			sides = append(sides, lb.Edge)
		}
		xyl.XYs = append(xyl.XYs, plotter.XY{X: lb.At.X, Y: lb.At.Y})
		xyl.Labels = append(xyl.Labels, lb.Text)
	}

	out := make([]*plotter.Labels, 0, len(sides))
	for _, side := range sides {
		l, err := plotter.NewLabels(*bySide[side])
		if err != nil {
			return nil, fmt.Errorf("graticule labels: %w", err)
		}
		for i := range l.TextStyle {
			l.TextStyle[i].Font.Size = labelSize
			l.TextStyle[i].Color = coastColor
			switch side {
			case basemap.EdgeLeft:
				l.TextStyle[i].XAlign = text.XLeft
				l.TextStyle[i].YAlign = text.YCenter
			case basemap.EdgeRight:
				l.TextStyle[i].XAlign = text.XRight
				l.TextStyle[i].YAlign = text.YCenter
			case basemap.EdgeBottom:
				l.TextStyle[i].XAlign = text.XCenter
				l.TextStyle[i].YAlign = text.YBottom
			}
		}
		out = append(out, l)
	}
	return out, nil
}

func toRings(rings [][]basemap.XY) []plotter.XYer {
	out := make([]plotter.XYer, len(rings))
	for i, ring := range rings {
		out[i] = toXYs(ring)
	}
	return out
}

func toXYs(points []basemap.XY) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return xys
}
