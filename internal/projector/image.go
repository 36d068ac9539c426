package projector

import (
	"fmt"
	"math"
	"sort"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/climate-mapper/app/models"
)

// RenderOptions fixes the raster output dimensions.
type RenderOptions struct {
	Width  int
	Height int
	Title  string
}

// unassignedFill is the flat neutral color for rows with no zone.
var unassignedFill = [3]float64{0.88, 0.88, 0.88}

// palette is a compact viridis-style ramp; category colors are
// interpolated along it.
var palette = [][3]float64{
	{0.267, 0.005, 0.329},
	{0.283, 0.141, 0.458},
	{0.254, 0.265, 0.530},
	{0.207, 0.372, 0.553},
	{0.164, 0.471, 0.558},
	{0.128, 0.567, 0.551},
	{0.135, 0.659, 0.518},
	{0.267, 0.749, 0.441},
	{0.478, 0.821, 0.318},
	{0.741, 0.873, 0.150},
	{0.993, 0.906, 0.144},
}

// RenderPNG draws the classified choropleth to outPath: neutral fill
// for unassigned rows, one categorical color per distinct zone code,
// white municipality edges and a legend. The geometry table is known
// non-empty by the time rendering runs; that is checked upstream.
func RenderPNG(ds *models.ReconciledDataset, opts RenderOptions, outPath string) error {
	minX, minY, maxX, maxY, ok := bounds(ds)
	if !ok {
		return fmt.Errorf("dataset has no drawable geometry")
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	colors := categoryColors(ds)
	project := fitProjection(minX, minY, maxX, maxY, opts.Width, opts.Height)

	for _, rec := range ds.Records {
		fill := unassignedFill
		if c, ok := colors[rec.ZoneCategory]; ok {
			fill = c
		}
		for _, ring := range rec.Geometry.Rings {
			if len(ring) < 3 {
				continue
			}
			dc.NewSubPath()
			for i, pt := range ring {
				x, y := project(pt[0], pt[1])
				if i == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.ClosePath()
		}
		dc.SetRGB(fill[0], fill[1], fill[2])
		dc.FillPreserve()
		dc.SetRGB(1, 1, 1)
		dc.SetLineWidth(0.5)
		dc.Stroke()
	}

	drawLegend(dc, colors, opts)

	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}

// categoryColors assigns palette colors to the sorted distinct zone
// categories, so the same dataset always gets the same legend.
func categoryColors(ds *models.ReconciledDataset) map[string][3]float64 {
	cats := ds.Categories()
	sort.Strings(cats)

	colors := make(map[string][3]float64, len(cats))
	for i, cat := range cats {
		pos := 0.0
		if len(cats) > 1 {
			pos = float64(i) / float64(len(cats)-1)
		}
		colors[cat] = sample(pos)
	}
	return colors
}

func sample(pos float64) [3]float64 {
	f := pos * float64(len(palette)-1)
	lo := int(math.Floor(f))
	hi := int(math.Ceil(f))
	if hi >= len(palette) {
		hi = len(palette) - 1
	}
	t := f - float64(lo)
	var c [3]float64
	for k := 0; k < 3; k++ {
		c[k] = palette[lo][k] + t*(palette[hi][k]-palette[lo][k])
	}
	return c
}

func bounds(ds *models.ReconciledDataset) (minX, minY, maxX, maxY float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, rec := range ds.Records {
		for _, ring := range rec.Geometry.Rings {
			for _, pt := range ring {
				minX, maxX = math.Min(minX, pt[0]), math.Max(maxX, pt[0])
				minY, maxY = math.Min(minY, pt[1]), math.Max(maxY, pt[1])
			}
			ok = ok || len(ring) > 0
		}
	}
	return
}

// fitProjection maps lon/lat onto the canvas preserving aspect ratio,
// with a margin for the legend column and the title. Y flips because
// image rows grow downward.
func fitProjection(minX, minY, maxX, maxY float64, w, h int) func(x, y float64) (float64, float64) {
	const margin = 40.0
	const legendWidth = 180.0

	drawW := float64(w) - 2*margin - legendWidth
	drawH := float64(h) - 2*margin

	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	scale := math.Min(drawW/spanX, drawH/spanY)

	offX := margin + (drawW-spanX*scale)/2
	offY := margin + (drawH-spanY*scale)/2

	return func(x, y float64) (float64, float64) {
		px := offX + (x-minX)*scale
		py := offY + (maxY-y)*scale
		return px, py
	}
}

func drawLegend(dc *gg.Context, colors map[string][3]float64, opts RenderOptions) {
	dc.SetFontFace(basicfont.Face7x13)

	title := opts.Title
	if title == "" {
		title = "Climate zones by municipality"
	}
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawString(title, 12, 18)

	cats := make([]string, 0, len(colors))
	for cat := range colors {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	x := float64(opts.Width) - 160
	y := 40.0
	const swatch = 14.0

	for _, cat := range cats {
		c := colors[cat]
		dc.SetRGB(c[0], c[1], c[2])
		dc.DrawRectangle(x, y, swatch, swatch)
		dc.Fill()
		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawString(cat, x+swatch+6, y+swatch-3)
		y += swatch + 6
	}

	dc.SetRGB(unassignedFill[0], unassignedFill[1], unassignedFill[2])
	dc.DrawRectangle(x, y, swatch, swatch)
	dc.Fill()
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawString(models.ZoneUnassigned, x+swatch+6, y+swatch-3)
}
