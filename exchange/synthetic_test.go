package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSyntheticFeeder_CandlesByLimitRepeatable(t *testing.T) {
	feeder := NewSyntheticFeeder(time.Hour) // 구독은 안 쓰므로 주기는 무관
	defer feeder.Stop()

	first, err := feeder.CandlesByLimit("KRW-BTC", "1h", 20)
	require.NoError(t, err)
	require.Len(t, first, 20)

	second, err := feeder.CandlesByLimit("KRW-BTC", "1h", 20)
	require.NoError(t, err)

	// 같은 (pair, timeframe)은 항상 같은 시리즈 (시각만 진행)
	require.Equal(t, first[0].Open, second[0].Open)
	require.Equal(t, first[len(first)-1].Close, second[len(second)-1].Close)
}

func TestSyntheticFeeder_SubscriptionContinuesFromHistory(t *testing.T) {
	feeder := NewSyntheticFeeder(10 * time.Millisecond)
	defer feeder.Stop()

	preload, err := feeder.CandlesByLimit("KRW-BTC", "1h", 5)
	require.NoError(t, err)
	lastClose := preload[len(preload)-1].Close

	candleCh, _ := feeder.CandlesSubscription("KRW-BTC", "1h")

	select {
	case c := <-candleCh:
		require.Equal(t, "KRW-BTC", c.Pair)
		require.True(t, c.Complete)
		// 라이브 스트림은 프리로드 마지막 종가에서 이어짐
		require.Equal(t, lastClose, c.Open)
		require.Equal(t, 1.0, c.Metadata["synthetic"])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for synthetic candle")
	}
}

func TestSyntheticFeeder_Tickers(t *testing.T) {
	feeder := NewSyntheticFeeder(time.Hour)
	defer feeder.Stop()

	tickers, err := feeder.Tickers([]string{"KRW-BTC", "KRW-ETH"})
	require.NoError(t, err)
	require.Len(t, tickers, 2)
	require.Equal(t, "KRW-BTC", tickers[0].Pair)
	require.Greater(t, tickers[0].LastPrice, 0.0)
	require.Equal(t, tickers[0].LastPrice-tickers[0].PrevClosingPrice, tickers[0].SignedChangePrice)

	quote, err := feeder.LastQuote("KRW-BTC")
	require.NoError(t, err)
	require.Greater(t, quote, 0.0)
}
