package report

import (
	"fmt"
	"io"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func unix(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// newTimelinePlot builds the score timeline: summary p95 and max as
// lines, the threshold as a dashed line and each event as a point.
func newTimelinePlot(tl *Timeline) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Motion scores\n" + tl.subtitle()
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Edge count"
	p.X.Tick.Marker = plot.TimeTicks{Format: timeTickForm}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	if len(tl.Summaries) > 0 {
		p95 := make(plotter.XYs, len(tl.Summaries))
		mx := make(plotter.XYs, len(tl.Summaries))
		limit := make(plotter.XYs, len(tl.Summaries))
		for i, s := range tl.Summaries {
			x := unix(s.TakenAt)
			p95[i] = plotter.XY{X: x, Y: s.P95}
			mx[i] = plotter.XY{X: x, Y: s.Max}
			limit[i] = plotter.XY{X: x, Y: float64(s.Threshold)}
		}
		for _, series := range []struct {
			name  string
			pts   plotter.XYs
			style func(*plotter.Line)
		}{
			{"p95", p95, func(l *plotter.Line) { l.Color = p95Color }},
			{"max", mx, func(l *plotter.Line) { l.Color = maxColor }},
			{"threshold", limit, func(l *plotter.Line) {
				l.Color = limitColor
				l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			}},
		} {
			line, err := plotter.NewLine(series.pts)
			if err != nil {
				return nil, fmt.Errorf("%s line: %w", series.name, err)
			}
			line.Width = vg.Points(1)
			series.style(line)
			p.Add(line)
			p.Legend.Add(series.name, line)
		}
	}

	var saved, failed plotter.XYs
	for _, e := range tl.Events {
		pt := plotter.XY{X: unix(e.CapturedAt), Y: float64(e.Score)}
		if e.SaveError == "" {
			saved = append(saved, pt)
		} else {
			failed = append(failed, pt)
		}
	}
	if len(saved) > 0 {
		sc, err := plotter.NewScatter(saved)
		if err != nil {
			return nil, fmt.Errorf("event scatter: %w", err)
		}
		sc.GlyphStyle.Color = eventColor
		sc.GlyphStyle.Radius = vg.Points(2)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add("motion", sc)
	}
	if len(failed) > 0 {
		sc, err := plotter.NewScatter(failed)
		if err != nil {
			return nil, fmt.Errorf("failed-save scatter: %w", err)
		}
		sc.GlyphStyle.Color = failedColor
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(sc)
		p.Legend.Add("not saved", sc)
	}
	return p, nil
}

// WritePNG renders the score timeline as a 14x6 inch PNG.
func WritePNG(w io.Writer, tl *Timeline) error {
	p, err := newTimelinePlot(tl)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// SavePNG renders the score timeline to path.
func SavePNG(path string, tl *Timeline) error {
	p, err := newTimelinePlot(tl)
	if err != nil {
		return err
	}
	return p.Save(14*vg.Inch, 6*vg.Inch, path)
}
