package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/evroute/core/model"
)

// SoCPoint is one sample of the battery profile along the trip.
type SoCPoint struct {
	Label  string
	KmFrom float64
	SoCPct float64
}

// SoCProfile lists the state of charge at the start, on arrival at and
// departure from each stop, and at the destination.
func SoCProfile(plan *model.RoutePlan, startSoCPct float64) []SoCPoint {
	pts := []SoCPoint{{Label: "start", SoCPct: startSoCPct}}
	var km float64
	for i, s := range plan.Stops {
		km += s.DistanceFromPreviousKm
		name := s.Station.Name
		if name == "" {
			name = s.Station.ID
		}
		pts = append(pts,
			SoCPoint{Label: fmt.Sprintf("#%d %s arrive", i+1, name), KmFrom: km, SoCPct: s.ArrivalSoCPct},
			SoCPoint{Label: fmt.Sprintf("#%d %s depart", i+1, name), KmFrom: km, SoCPct: s.DepartureSoCPct},
		)
	}
	return append(pts, SoCPoint{Label: "end", KmFrom: plan.TotalDistanceKm, SoCPct: plan.FinalSoCPct})
}

// WriteSoCChart renders the battery profile as a standalone HTML page.
func WriteSoCChart(w io.Writer, plan *model.RoutePlan, startSoCPct float64) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "State of charge",
			Subtitle: fmt.Sprintf("%.0f km, %d stops, %.0f min", plan.TotalDistanceKm, len(plan.Stops), plan.TotalTimeMinutes),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "km"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "SoC (%)", Min: 0, Max: 100}),
	)

	pts := SoCProfile(plan, startSoCPct)
	xAxis := make([]string, len(pts))
	data := make([]opts.LineData, len(pts))
	for i, p := range pts {
		xAxis[i] = fmt.Sprintf("%.0f", p.KmFrom)
		data[i] = opts.LineData{Value: round2(p.SoCPct), Name: p.Label}
	}
	line.SetXAxis(xAxis).AddSeries("SoC", data)
	return line.Render(w)
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
