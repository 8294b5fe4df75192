package dashboard

import (
	"fmt"
	"time"

	"pivotdash/chartview"
	"pivotdash/consumer"
	"pivotdash/exchange"
	"pivotdash/feed"
	"pivotdash/interfaces"
	"pivotdash/model"
	"pivotdash/panel"
	"pivotdash/signal"
	"pivotdash/store"
	"pivotdash/stream"
	"pivotdash/utils/log"
	"pivotdash/utils/tools"
)

// Config wires the market plumbing for the dashboard.
type Config struct {
	Pairs     []string
	Timeframe string
	Synthetic bool
	ChartPort string

	TickerBoard    *store.TickerBoard
	CandleBoard    *store.CandleBoard
	PivotBoard     *store.PivotBoard
	IndicatorBoard *store.IndicatorBoard
	SignalLog      *store.SignalLog
	Hub            *stream.Hub
	Notifier       interfaces.Notifier
}

// Dashboard : 전체 마켓 데이터 파이프라인을 관리하는 구조체
type Dashboard struct {
	cfg    Config
	feeder interfaces.DataFeeder

	dataFeedSub   *feed.DataFeedSubscription
	signalFeedSub *feed.SignalFeedSubscription
	chartServer   *chartview.Server

	controllers map[string]*panel.Controller
	engines     map[string]*signal.Engine
	schedulers  map[string]*tools.Scheduler
}

// NewDashboard : Dashboard 인스턴스 생성
func NewDashboard(cfg Config) (*Dashboard, error) {
	if len(cfg.Pairs) == 0 {
		return nil, fmt.Errorf("at least one pair is required")
	}

	var feeder interfaces.DataFeeder
	if cfg.Synthetic {
		feeder = exchange.NewSyntheticFeeder(time.Second)
	} else {
		feeder = exchange.NewUpbit()
	}

	d := &Dashboard{
		cfg:           cfg,
		feeder:        feeder,
		dataFeedSub:   feed.NewDataFeed(feeder),
		signalFeedSub: feed.NewSignalFeed(),
		chartServer:   chartview.NewServer(),
		controllers:   make(map[string]*panel.Controller),
		engines:       make(map[string]*signal.Engine),
		schedulers:    make(map[string]*tools.Scheduler),
	}
	d.setupPairs()
	return d, nil
}

// setupPairs : pair별 engine + controller + 구독 배선
func (d *Dashboard) setupPairs() {
	signalConsumer := consumer.NewSignalFeedConsumer(d.cfg.SignalLog, d.cfg.Hub, d.cfg.Notifier)

	for _, pair := range d.cfg.Pairs {
		pair := pair
		timeframe := d.cfg.Timeframe
		chartView := d.chartServer.View(pair)

		levelsSink := func(levels model.PivotLevels) {
			d.cfg.PivotBoard.Update(levels)
			d.cfg.Hub.Publish("pivots", levels.Pair+"_"+levels.Timeframe, levels)
			chartView.OnPivots(levels)
		}

		engine := signal.NewEngine(pair, timeframe, d.signalFeedSub, levelsSink)
		engine.SnapshotSink = func(p, tf string, snapshot model.IndicatorSnapshot, at time.Time) {
			d.cfg.IndicatorBoard.Update(p, tf, snapshot, at)
			d.cfg.Hub.Publish("indicators", p+"_"+tf, store.SnapshotEntry{
				Pair: p, Timeframe: tf, Snapshot: snapshot, At: at,
			})
		}

		ctrl := panel.NewPanelController(pair, engine)
		ctrl.ChartServer = chartView

		d.engines[pair] = engine
		d.controllers[pair] = ctrl

		dataFeedConsumer := consumer.NewDataFeedConsumer(ctrl)
		d.dataFeedSub.Subscribe(pair, timeframe, dataFeedConsumer.OnCandle, true)

		sched := tools.NewScheduler(pair)
		if d.cfg.Notifier != nil {
			sched.AlertWhen(func(df *model.Dataframe) string {
				return fmt.Sprintf("레인지 상단 돌파:\n종목: %s\n종가: %.2f", pair, df.Close.Last(0))
			}, func(df *model.Dataframe) bool {
				levels, ok := d.cfg.PivotBoard.Get(pair, timeframe)
				return ok && levels.RangeHigh > 0 && df.Close.Last(0) > levels.RangeHigh
			})
		}
		d.schedulers[pair] = sched

		// 봉 저장 + SSE 전파 + 알림 스케줄러
		d.dataFeedSub.Subscribe(pair, timeframe, func(candle model.Candle) {
			d.cfg.CandleBoard.Add(timeframe, candle)
			d.cfg.Hub.Publish("candle", candle.Pair+"_"+timeframe, candle)
			chartView.OnCandle(candle)
			if d.cfg.Notifier != nil {
				sched.Update(ctrl.Dataframe, d.cfg.Notifier)
			}
		}, true)

		d.signalFeedSub.Subscribe(pair, signalConsumer.OnSignal)
	}
}

// SetupSubscriptions : warmup 캔들 Preload + 초기 티커 적재
func (d *Dashboard) SetupSubscriptions() {
	for _, pair := range d.cfg.Pairs {
		warmup := d.engines[pair].WarmupPeriod()
		log.Infof("[Preload] warmup=%d timeframe=%s pair=%s", warmup, d.cfg.Timeframe, pair)

		candles, err := d.feeder.CandlesByLimit(pair, d.cfg.Timeframe, warmup)
		if err != nil {
			log.Errorf("failed to load warmup candles: %v", err)
			continue
		}
		d.dataFeedSub.Preload(pair, d.cfg.Timeframe, candles)
	}

	tickers, err := d.feeder.Tickers(d.cfg.Pairs)
	if err != nil {
		log.Errorf("failed to load initial tickers: %v", err)
		return
	}
	for _, t := range tickers {
		d.cfg.TickerBoard.Update(t)
	}
}

// Start : 파이프라인 시작
func (d *Dashboard) Start() {
	log.Infof("Dashboard starting...")

	d.feeder.Start()

	if d.cfg.ChartPort != "" {
		go func() {
			if err := d.chartServer.Start(d.cfg.ChartPort); err != nil {
				log.Errorf("[ChartView] server error: %v", err)
			}
		}()
		log.Infof("Chart view on http://localhost%s/chart", d.cfg.ChartPort)
	}

	d.dataFeedSub.Start(false)
	d.signalFeedSub.Start()

	// 실시간 ticker -> board + SSE
	tickerCh, tickerErrCh := d.feeder.TickersSubscription(d.cfg.Pairs)
	go func() {
		for {
			select {
			case t, ok := <-tickerCh:
				if !ok {
					return
				}
				d.cfg.TickerBoard.Update(t)
				d.cfg.Hub.Publish("ticker", t.Pair, t)
			case err, ok := <-tickerErrCh:
				if !ok {
					return
				}
				if err != nil {
					log.Error("dashboard/tickers: ", err)
				}
			}
		}
	}()

	for _, ctrl := range d.controllers {
		ctrl.Start()
	}

	log.Infof("Dashboard started.")
}

// Stop : 파이프라인 종료
func (d *Dashboard) Stop() {
	log.Infof("Dashboard stopping...")
	d.signalFeedSub.Stop()
	d.feeder.Stop()
	log.Infof("Dashboard stopped.")
}
