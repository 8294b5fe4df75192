package panel

import (
	"time"

	"pivotdash/indicator"
	"pivotdash/interfaces"
	"pivotdash/model"
	"pivotdash/utils/log"
)

// Controller feeds closed candles into the analyzer's dataframe and pushes
// the resulting indicator values to the chart server.
type Controller struct {
	Analyzer    interfaces.Analyzer
	Dataframe   *model.Dataframe
	ChartServer interfaces.ChartServer
	started     bool
}

func NewPanelController(pair string, analyzer interfaces.Analyzer) *Controller {
	dataframe := &model.Dataframe{
		Pair:     pair,
		Metadata: make(map[string]model.Series[float64]),
	}
	return &Controller{
		Analyzer:  analyzer,
		Dataframe: dataframe,
	}
}

func (c *Controller) Start() {
	c.started = true
}

func (c *Controller) updateDataFrame(candle model.Candle) {
	if len(c.Dataframe.Time) > 0 && candle.Time.Equal(c.Dataframe.Time[len(c.Dataframe.Time)-1]) {
		last := len(c.Dataframe.Time) - 1
		c.Dataframe.Close[last] = candle.Close
		c.Dataframe.Open[last] = candle.Open
		c.Dataframe.High[last] = candle.High
		c.Dataframe.Low[last] = candle.Low
		c.Dataframe.Volume[last] = candle.Volume
		c.Dataframe.Time[last] = candle.Time
		for k, v := range candle.Metadata {
			c.Dataframe.Metadata[k][last] = v
		}
	} else {
		c.Dataframe.Close = append(c.Dataframe.Close, candle.Close)
		c.Dataframe.Open = append(c.Dataframe.Open, candle.Open)
		c.Dataframe.High = append(c.Dataframe.High, candle.High)
		c.Dataframe.Low = append(c.Dataframe.Low, candle.Low)
		c.Dataframe.Volume = append(c.Dataframe.Volume, candle.Volume)
		c.Dataframe.Time = append(c.Dataframe.Time, candle.Time)
		c.Dataframe.LastUpdate = candle.Time
		for k, v := range candle.Metadata {
			c.Dataframe.Metadata[k] = append(c.Dataframe.Metadata[k], v)
		}
	}
}

func (c *Controller) OnCandle(candle model.Candle) {
	if len(c.Dataframe.Time) > 0 && candle.Time.Before(c.Dataframe.Time[len(c.Dataframe.Time)-1]) {
		log.Errorf("late candle received: %#v", candle)
		return
	}

	c.updateDataFrame(candle)

	if len(c.Dataframe.Close) >= c.Analyzer.WarmupPeriod() {
		sample := c.Dataframe.Sample(c.Analyzer.WarmupPeriod())
		chartIndics := c.Analyzer.Indicators(&sample)

		if c.started {
			c.Analyzer.OnCandle(&sample)

			results, timestamp := makeChartIndicators(&sample, chartIndics)
			if c.ChartServer != nil && len(results) > 0 {
				c.ChartServer.OnIndicators(timestamp, results)
			}
		}
	}
}

func makeChartIndicators(sample *model.Dataframe, chartIndics []indicator.ChartIndicator) ([]interfaces.IndicatorValue, time.Time) {
	lastIndex := sample.Close.Length() - 1
	timestamp := sample.Time[lastIndex] // 마지막 봉 시각

	var results []interfaces.IndicatorValue

	for _, ci := range chartIndics {
		for _, metric := range ci.Metrics {
			if metric.Values.Length() > lastIndex {
				val := metric.Values[lastIndex]
				results = append(results, interfaces.IndicatorValue{
					Name:  metric.Name,
					Value: val,
				})
			}
		}
	}
	return results, timestamp
}
