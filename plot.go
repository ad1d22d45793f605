package forecaster

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNoResult = errors.New("no forecast result to plot")

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must have the same length as the input time slice. NaN values are
// left as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	xAxis := make([]string, len(t))
	for i, tPnt := range t {
		xAxis[i] = tPnt.Format(time.RFC3339)
	}
	line.SetXAxis(xAxis)

	for i, series := range seriesName {
		if i >= len(y) {
			break
		}
		line.AddSeries(series, lineData(y[i]))
	}
	return line
}

// LineForecast generates an echart line chart of the observed history, the model fit over the
// history and the daily forecast following the cutoff.
func LineForecast(res *Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    "Forecast",
				Subtitle: "cutoff " + res.Cutoff.Format(DateLayout),
			},
		),
	)

	n := len(res.History.T) + len(res.Points)
	xAxis := make([]string, 0, n)
	actual := make([]float64, 0, n)
	fitted := make([]float64, 0, n)
	forecasted := make([]float64, 0, n)
	for i, tPnt := range res.History.T {
		xAxis = append(xAxis, tPnt.Format(DateLayout))
		actual = append(actual, res.History.Y[i])
		fitted = append(fitted, res.Fitted[i])
		forecasted = append(forecasted, math.NaN())
	}
	for _, p := range res.Points {
		xAxis = append(xAxis, p.Date)
		actual = append(actual, math.NaN())
		fitted = append(fitted, math.NaN())
		forecasted = append(forecasted, p.Value)
	}

	line.SetXAxis(xAxis).
		AddSeries("Actual", lineData(actual)).
		AddSeries("Fitted", lineData(fitted)).
		AddSeries("Forecast", lineData(forecasted))
	return line
}

func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, len(y))
	for i, v := range y {
		if math.IsNaN(v) {
			// rendered as a gap
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}

// RenderPlot writes an html page of the forecast. Series models also get a chart of their trend,
// seasonality and event components.
func RenderPlot(w io.Writer, res *Result) error {
	if res == nil || res.History == nil || len(res.History.T) == 0 {
		return ErrNoResult
	}

	page := components.NewPage()
	page.PageTitle = "Forecast"
	page.AddCharts(LineForecast(res))

	if sm, ok := res.Model.(*SeriesModel); ok {
		t := make([]time.Time, 0, len(res.History.T)+len(res.Points))
		t = append(t, res.History.T...)
		for i := range res.Points {
			t = append(t, res.Cutoff.AddDate(0, 0, i+1))
		}
		if _, comp, err := sm.Forecast().Predict(t); err == nil {
			page.AddCharts(
				LineTSeries(
					"Forecast Components",
					[]string{"Trend", "Seasonality", "Event"},
					t,
					[][]float64{comp.Trend, comp.Seasonality, comp.Event},
				),
				LineTSeries(
					"Forecast Residual",
					[]string{"Residual"},
					res.History.T,
					[][]float64{sm.Forecast().Residuals()},
				),
			)
		}
	}

	return page.Render(w)
}
