package pipeline

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"tailscale.com/tsweb"

	"github.com/banshee-data/trapcam/internal/httputil"
)

// AttachAdminRoutes mounts live counters and a recent-score chart under
// /debug/ on mux.
func (p *Pipeline) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	debug.HandleFunc("pipeline", "Pipeline counters and queue depths as JSON", p.handleStats)
	debug.HandleFunc("scores", "Chart of recent motion scores", p.handleScores)
}

func (p *Pipeline) handleStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, p.Stats())
}

func (p *Pipeline) handleScores(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := p.renderScores(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (p *Pipeline) renderScores(buf *bytes.Buffer) error {
	values := p.score.Scores().Values()
	threshold := p.score.params.MotionThresh

	xs := make([]int, len(values))
	scores := make([]opts.LineData, len(values))
	limit := make([]opts.LineData, len(values))
	for i, v := range values {
		xs[i] = i - len(values) + 1
		scores[i] = opts.LineData{Value: v}
		limit[i] = opts.LineData{Value: threshold}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Motion scores", Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Motion scores", Subtitle: fmt.Sprintf("last %d frames, threshold %d", len(values), threshold)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frames ago"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "edge count"}),
	)
	line.SetXAxis(xs).
		AddSeries("score", scores).
		AddSeries("threshold", limit)
	return line.Render(buf)
}
