package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pivotdash/model"
)

// fakeFeeder : 채널을 직접 제어할 수 있는 DataFeeder 구현
type fakeFeeder struct {
	candleCh chan model.Candle
	errCh    chan error
}

func newFakeFeeder() *fakeFeeder {
	return &fakeFeeder{
		candleCh: make(chan model.Candle, 10),
		errCh:    make(chan error, 1),
	}
}

func (f *fakeFeeder) LastQuote(pair string) (float64, error) { return 0, nil }
func (f *fakeFeeder) CandlesByLimit(pair, period string, limit int) ([]model.Candle, error) {
	return nil, nil
}
func (f *fakeFeeder) CandlesByPeriod(pair, period string, start, end time.Time) ([]model.Candle, error) {
	return nil, nil
}
func (f *fakeFeeder) CandlesSubscription(pair, timeframe string) (chan model.Candle, chan error) {
	return f.candleCh, f.errCh
}
func (f *fakeFeeder) Tickers(pairs []string) ([]model.Ticker, error) { return nil, nil }
func (f *fakeFeeder) TickersSubscription(pairs []string) (chan model.Ticker, chan error) {
	return nil, nil
}
func (f *fakeFeeder) Start() {}
func (f *fakeFeeder) Stop()  {}

func TestDataFeed_SubscribeRegistersFeedKey(t *testing.T) {
	feeder := newFakeFeeder()
	sub := NewDataFeed(feeder)

	sub.Subscribe("KRW-BTC", "15m", func(candle model.Candle) {}, true)

	ok := sub.Feeds.InArray("KRW-BTC_15m")
	require.True(t, ok)
	require.Len(t, sub.SubscriptionsByDataFeed["KRW-BTC_15m"], 1)
}

func TestDataFeed_PreloadSkipsIncomplete(t *testing.T) {
	feeder := newFakeFeeder()
	sub := NewDataFeed(feeder)

	var received []model.Candle
	sub.Subscribe("KRW-BTC", "15m", func(candle model.Candle) {
		received = append(received, candle)
	}, true)

	now := time.Now()
	sub.Preload("KRW-BTC", "15m", []model.Candle{
		{Pair: "KRW-BTC", Time: now, Close: 100, Complete: true},
		{Pair: "KRW-BTC", Time: now.Add(15 * time.Minute), Close: 101, Complete: false},
		{Pair: "KRW-BTC", Time: now.Add(30 * time.Minute), Close: 102, Complete: true},
	})

	require.Len(t, received, 2)
	require.Equal(t, 100.0, received[0].Close)
	require.Equal(t, 102.0, received[1].Close)
}

func TestDataFeed_StartDeliversClosedCandlesOnly(t *testing.T) {
	feeder := newFakeFeeder()
	sub := NewDataFeed(feeder)

	var mu sync.Mutex
	var received []model.Candle
	done := make(chan struct{})

	sub.Subscribe("KRW-BTC", "15m", func(candle model.Candle) {
		mu.Lock()
		received = append(received, candle)
		mu.Unlock()
		if candle.Close == 300 {
			close(done)
		}
	}, true)

	sub.Start(false)

	feeder.candleCh <- model.Candle{Pair: "KRW-BTC", Close: 100, Complete: false} // 미완성 → 스킵
	feeder.candleCh <- model.Candle{Pair: "KRW-BTC", Close: 200, Complete: true}
	feeder.candleCh <- model.Candle{Pair: "KRW-BTC", Close: 300, Complete: true}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for candles")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	require.Equal(t, 200.0, received[0].Close)
	require.Equal(t, 300.0, received[1].Close)
}
