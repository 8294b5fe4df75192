package chartview

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"pivotdash/interfaces"
	"pivotdash/model"
	"pivotdash/utils/log"
)

// Server renders per-pair candle/indicator/pivot charts with go-echarts.
type Server struct {
	mu     sync.RWMutex
	stores map[string]*ChartDataStore
	order  []string
}

func NewServer() *Server {
	return &Server{stores: make(map[string]*ChartDataStore)}
}

// View returns a per-pair sink usable as the panel controller's chart server.
func (s *Server) View(pair string) interfaces.ChartServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stores[pair]; !ok {
		s.stores[pair] = NewChartDataStore()
		s.order = append(s.order, pair)
	}
	return &pairView{pair: pair, store: s.stores[pair]}
}

func (s *Server) store(pair string) *ChartDataStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stores[pair]
}

// Start : 간단한 http.Server
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString("<html><body><h2>Pivot Dashboard Charts</h2><ul>")
		s.mu.RLock()
		for _, pair := range s.order {
			fmt.Fprintf(&b, `<li><a href="/chart?pair=%s">%s</a></li>`, pair, pair)
		}
		s.mu.RUnlock()
		b.WriteString("</ul></body></html>")
		w.Write([]byte(b.String()))
	})

	mux.HandleFunc("/chart", s.chartHandler)

	log.Infof("[ChartView] listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) chartHandler(w http.ResponseWriter, r *http.Request) {
	pair := strings.ToUpper(r.URL.Query().Get("pair"))
	store := s.store(pair)
	if store == nil {
		http.NotFound(w, r)
		return
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Pivot Dashboard - %s", pair)

	kline := buildCandleChart(pair, store)
	indicatorLine := buildIndicatorChart(store)

	page.AddCharts(kline, indicatorLine)
	_ = page.Render(w)
}

// buildCandleChart : 봉차트(Kline) + 피벗/확장 레벨 Overlap
func buildCandleChart(pair string, store *ChartDataStore) *charts.Kline {
	candles := store.GetCandles()
	n := len(candles)
	if n == 0 {
		return charts.NewKLine()
	}

	xVals := make([]string, n)
	kValues := make([]opts.KlineData, n)

	// go-echarts Kline은 [open, close, low, high] 순서가 표준
	for i, c := range candles {
		xVals[i] = c.Time.Format("01/02 15:04")
		kValues[i] = opts.KlineData{
			Value: [4]float64{c.Open, c.Close, c.Low, c.High},
		}
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s Candles", pair),
			Show:  opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	)
	kline.SetXAxis(xVals).
		AddSeries("KLine", kValues).
		SetSeriesOptions(charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        "#ec0000",
			Color0:       "#00da3c",
			BorderColor:  "#8A0000",
			BorderColor0: "#008F28",
		}))

	if levels, ok := store.GetPivots(); ok {
		overlayPivotLevels(kline, xVals, levels)
	}
	return kline
}

// overlayPivotLevels : 수평 레벨 라인들을 Kline 위에 겹침
func overlayPivotLevels(kline *charts.Kline, xVals []string, levels model.PivotLevels) {
	addLevel := func(name string, price float64) {
		if price <= 0 {
			return
		}
		series := make([]opts.LineData, len(xVals))
		for i := range series {
			series[i] = opts.LineData{Value: price}
		}
		line := charts.NewLine()
		line.SetXAxis(xVals).AddSeries(name, series)
		kline.Overlap(line)
	}

	addLevel("Range High", levels.RangeHigh)
	addLevel("Range Low", levels.RangeLow)
	for _, t := range levels.Targets {
		addLevel(fmt.Sprintf("Ext %.3f", t.Ratio), t.Price)
	}
	if levels.Bullish {
		addLevel("Retrace 61.8%", levels.BullSide.Retrace618)
		addLevel("Retrace 78.6%", levels.BullSide.Retrace786)
		addLevel("Retrace 50%", levels.BullSide.Retrace500)
	} else {
		addLevel("Retrace 61.8%", levels.BearSide.Retrace618)
		addLevel("Retrace 78.6%", levels.BearSide.Retrace786)
		addLevel("Retrace 50%", levels.BearSide.Retrace500)
	}
}

// buildIndicatorChart : 지표 라인들을 한 차트에 겹침
func buildIndicatorChart(store *ChartDataStore) *charts.Line {
	names, series := store.GetIndicators()
	line := charts.NewLine()
	if len(names) == 0 {
		return line
	}

	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Indicators",
			Show:  opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	)

	// x축은 가장 긴 시계열 길이에 맞춘 인덱스
	maxLen := 0
	for _, s := range series {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	xVals := make([]string, maxLen)
	for i := range xVals {
		xVals[i] = fmt.Sprintf("%d", i)
	}
	line.SetXAxis(xVals)

	for _, name := range names {
		values := series[name]
		lineData := make([]opts.LineData, len(values))
		for i, v := range values {
			lineData[i] = opts.LineData{Value: v}
		}
		line.AddSeries(name, lineData)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{
		Smooth: opts.Bool(true),
	}))
	return line
}

// pairView adapts one pair's store to the chart server interface.
type pairView struct {
	pair  string
	store *ChartDataStore
}

func (v *pairView) OnCandle(candle model.Candle) {
	v.store.AppendCandle(candle)
}

func (v *pairView) OnIndicators(timestamp time.Time, values []interfaces.IndicatorValue) {
	for _, val := range values {
		v.store.AppendIndicator(val.Name, val.Value)
	}
}

func (v *pairView) OnPivots(levels model.PivotLevels) {
	v.store.UpdatePivots(levels)
}

func (v *pairView) Start(port string) error {
	// 개별 pair 뷰는 서버를 띄우지 않음
	return nil
}
