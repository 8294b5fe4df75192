package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pivotdash/history"
	"pivotdash/model"
	"pivotdash/utils/log"
	"pivotdash/utils/tools"
)

// SyntheticFeeder serves deterministic generated candles instead of live
// Upbit data. Useful offline and for demos: the same pair and timeframe
// always replay the identical series.
type SyntheticFeeder struct {
	ctx        context.Context
	cancelFunc context.CancelFunc

	// 실시간처럼 보이게 내보내는 주기 (기본 1초에 1봉)
	emitInterval time.Duration

	mu         sync.Mutex
	walks      map[string]*syntheticWalk // key=(pair_timeframe)
	lastServed map[string]model.Candle   // 마지막으로 내보낸 히스토리 봉
	pairs      []string
	chans      []chan model.Candle
	tchans     []chan model.Ticker
}

// syntheticWalk keeps the random walk position so the live stream continues
// exactly where the preloaded history ended.
type syntheticWalk struct {
	gen      *history.Generator
	price    float64
	nextTime time.Time
	step     time.Duration
}

func NewSyntheticFeeder(emitInterval time.Duration) *SyntheticFeeder {
	if emitInterval <= 0 {
		emitInterval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	log.Info("[SETUP] Using synthetic market data")
	return &SyntheticFeeder{
		ctx:          ctx,
		cancelFunc:   cancel,
		emitInterval: emitInterval,
		walks:        make(map[string]*syntheticWalk),
		lastServed:   make(map[string]model.Candle),
	}
}

func (s *SyntheticFeeder) LastQuote(pair string) (float64, error) {
	candles := history.Candles(pair, "1m", 1, time.Now())
	if len(candles) == 0 {
		return 0, fmt.Errorf("no synthetic data for %s", pair)
	}
	return candles[0].Close, nil
}

func (s *SyntheticFeeder) CandlesByLimit(pair, period string, limit int) ([]model.Candle, error) {
	candles := history.Candles(pair, period, limit, time.Now())
	s.rememberLast(pair, period, candles)
	return candles, nil
}

func (s *SyntheticFeeder) rememberLast(pair, period string, candles []model.Candle) {
	if len(candles) == 0 {
		return
	}
	s.mu.Lock()
	s.lastServed[pair+"_"+period] = candles[len(candles)-1]
	s.mu.Unlock()
}

func (s *SyntheticFeeder) CandlesByPeriod(pair, period string, start, end time.Time) ([]model.Candle, error) {
	step, err := tools.ParseTimeframeToDuration(period)
	if err != nil {
		return nil, err
	}
	n := int(end.Sub(start)/step) + 1
	if n <= 0 {
		return nil, nil
	}
	candles := history.Candles(pair, period, n, end)
	s.rememberLast(pair, period, candles)
	return candles, nil
}

// CandlesSubscription : 생성된 워크를 이어서 emitInterval마다 한 봉씩 내보냄
func (s *SyntheticFeeder) CandlesSubscription(pair, timeframe string) (chan model.Candle, chan error) {
	cCandle := make(chan model.Candle, 10)
	cErr := make(chan error, 1)

	step, err := tools.ParseTimeframeToDuration(timeframe)
	if err != nil {
		step = time.Minute
	}

	s.mu.Lock()
	key := pair + "_" + timeframe
	walk, ok := s.walks[key]
	if !ok {
		// 프리로드된 히스토리의 마지막 종가에서 이어받기
		seed, served := s.lastServed[key]
		if !served {
			seed = history.Candles(pair, timeframe, 1, time.Now())[0]
		}
		walk = &syntheticWalk{
			gen:      history.NewGenerator(pair, timeframe),
			price:    seed.Close,
			nextTime: seed.Time.Add(step),
			step:     step,
		}
		s.walks[key] = walk
	}
	s.chans = append(s.chans, cCandle)
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.emitInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				close(cCandle)
				close(cErr)
				return
			case <-ticker.C:
				cCandle <- s.nextCandle(pair, walk)
			}
		}
	}()
	return cCandle, cErr
}

func (s *SyntheticFeeder) nextCandle(pair string, walk *syntheticWalk) model.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	open := walk.price
	change := (walk.gen.Next() - 0.5) * 0.04
	closePrice := open * (1 + change)
	high := maxFloat(open, closePrice) * (1 + walk.gen.Next()*0.005)
	low := minFloat(open, closePrice) * (1 - walk.gen.Next()*0.005)
	volume := 50 + walk.gen.Next()*450

	c := model.Candle{
		Pair:      pair,
		Time:      walk.nextTime,
		UpdatedAt: walk.nextTime,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
		Complete:  true,
		Metadata:  map[string]float64{"synthetic": 1},
	}
	walk.price = closePrice
	walk.nextTime = walk.nextTime.Add(walk.step)
	return c
}

func (s *SyntheticFeeder) Tickers(pairs []string) ([]model.Ticker, error) {
	now := time.Now()
	tickers := make([]model.Ticker, 0, len(pairs))
	for _, pair := range pairs {
		candles := history.Candles(pair, "1d", 2, now)
		last := candles[len(candles)-1]
		prev := candles[0]
		tickers = append(tickers, tickerFromCandles(pair, last, prev, now))
	}
	return tickers, nil
}

// TickersSubscription : 최근 합성 봉을 기반으로 초 단위 ticker 전송
func (s *SyntheticFeeder) TickersSubscription(pairs []string) (chan model.Ticker, chan error) {
	cTicker := make(chan model.Ticker, 10)
	cErr := make(chan error, 1)

	s.mu.Lock()
	s.pairs = pairs
	s.tchans = append(s.tchans, cTicker)
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.emitInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				close(cTicker)
				close(cErr)
				return
			case <-ticker.C:
				tickers, err := s.Tickers(pairs)
				if err != nil {
					continue
				}
				for _, t := range tickers {
					cTicker <- t
				}
			}
		}
	}()
	return cTicker, cErr
}

func (s *SyntheticFeeder) Start() {}

func (s *SyntheticFeeder) Stop() {
	s.cancelFunc()
	log.Info("[Synthetic] stopped")
}

func tickerFromCandles(pair string, last, prev model.Candle, now time.Time) model.Ticker {
	change := last.Close - prev.Close
	rate := 0.0
	if prev.Close != 0 {
		rate = change / prev.Close
	}
	return model.Ticker{
		Pair:              pair,
		LastPrice:         last.Close,
		PrevClosingPrice:  prev.Close,
		SignedChangePrice: change,
		SignedChangeRate:  rate,
		High24h:           last.High,
		Low24h:            last.Low,
		Volume24h:         last.Volume,
		UpdatedAt:         now,
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
