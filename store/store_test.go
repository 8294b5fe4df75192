package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pivotdash/model"
)

func TestSignalLog_RecentNewestFirst(t *testing.T) {
	log := NewSignalLog(10)
	log.Add(model.Signal{ID: "a", Pair: "KRW-BTC"})
	log.Add(model.Signal{ID: "b", Pair: "KRW-ETH"})
	log.Add(model.Signal{ID: "c", Pair: "KRW-BTC"})

	recent := log.Recent(2)
	require.Len(t, recent, 2)
	require.Equal(t, "c", recent[0].ID)
	require.Equal(t, "b", recent[1].ID)

	// limit 0 = 전체
	require.Len(t, log.Recent(0), 3)
}

func TestSignalLog_CapacityEvictsOldest(t *testing.T) {
	log := NewSignalLog(3)
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		log.Add(model.Signal{ID: id, Pair: "KRW-BTC"})
	}

	recent := log.Recent(0)
	require.Len(t, recent, 3)
	require.Equal(t, "5", recent[0].ID)
	require.Equal(t, "3", recent[2].ID)
}

func TestSignalLog_ByPair(t *testing.T) {
	log := NewSignalLog(10)
	log.Add(model.Signal{ID: "a", Pair: "KRW-BTC"})
	log.Add(model.Signal{ID: "b", Pair: "KRW-ETH"})
	log.Add(model.Signal{ID: "c", Pair: "KRW-BTC"})
	log.Add(model.Signal{ID: "d", Pair: "KRW-BTC"})

	got := log.ByPair("KRW-BTC", 2)
	require.Len(t, got, 2)
	require.Equal(t, "d", got[0].ID)
	require.Equal(t, "c", got[1].ID)

	require.Empty(t, log.ByPair("KRW-XRP", 0))
}

func TestCandleBoard_SameTimeReplaces(t *testing.T) {
	board := NewCandleBoard(10)
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	board.Add("15m", model.Candle{Pair: "KRW-BTC", Time: at, Close: 100})
	board.Add("15m", model.Candle{Pair: "KRW-BTC", Time: at, Close: 105})
	board.Add("15m", model.Candle{Pair: "KRW-BTC", Time: at.Add(15 * time.Minute), Close: 110})

	window := board.Window("KRW-BTC", "15m", 0)
	require.Len(t, window, 2)
	require.Equal(t, 105.0, window[0].Close)
	require.Equal(t, 110.0, window[1].Close)
}

func TestCandleBoard_WindowLimitAndCapacity(t *testing.T) {
	board := NewCandleBoard(3)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		board.Add("1h", model.Candle{
			Pair:  "KRW-BTC",
			Time:  base.Add(time.Duration(i) * time.Hour),
			Close: float64(100 + i),
		})
	}

	window := board.Window("KRW-BTC", "1h", 0)
	require.Len(t, window, 3)
	require.Equal(t, 102.0, window[0].Close)
	require.Equal(t, 104.0, window[2].Close)

	window = board.Window("KRW-BTC", "1h", 2)
	require.Len(t, window, 2)
	require.Equal(t, 103.0, window[0].Close)

	// timeframe 별로 분리된 윈도우
	require.Empty(t, board.Window("KRW-BTC", "15m", 0))
}

func TestTickerBoard_KeepsRegistrationOrder(t *testing.T) {
	board := NewTickerBoard([]string{"KRW-BTC", "KRW-ETH"})

	board.Update(model.Ticker{Pair: "KRW-ETH", LastPrice: 3_400_000})
	board.Update(model.Ticker{Pair: "KRW-BTC", LastPrice: 65_000_000})
	board.Update(model.Ticker{Pair: "KRW-XRP", LastPrice: 750})

	all := board.All()
	require.Len(t, all, 3)
	require.Equal(t, "KRW-BTC", all[0].Pair)
	require.Equal(t, "KRW-ETH", all[1].Pair)
	require.Equal(t, "KRW-XRP", all[2].Pair)

	got, ok := board.Get("KRW-BTC")
	require.True(t, ok)
	require.Equal(t, 65_000_000.0, got.LastPrice)

	_, ok = board.Get("KRW-SOL")
	require.False(t, ok)
}

func TestPivotBoard(t *testing.T) {
	board := NewPivotBoard()
	board.Update(model.PivotLevels{Pair: "KRW-BTC", Timeframe: "1h", RangeHigh: 200, RangeLow: 100})

	levels, ok := board.Get("KRW-BTC", "1h")
	require.True(t, ok)
	require.Equal(t, 200.0, levels.RangeHigh)

	_, ok = board.Get("KRW-BTC", "4h")
	require.False(t, ok)
}

func TestInMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	userStore := NewInMemoryUserStore()

	require.NoError(t, userStore.Create(ctx, model.User{ID: "u1", Email: "user@test.com"}))

	// 대소문자만 다른 이메일은 중복
	err := userStore.Create(ctx, model.User{ID: "u2", Email: "USER@test.com"})
	require.Error(t, err)

	user, getErr := userStore.GetByEmail(ctx, "User@Test.com")
	require.NoError(t, getErr)
	require.NotNil(t, user)
	require.Equal(t, "u1", user.ID)

	missing, getErr := userStore.GetByEmail(ctx, "nobody@test.com")
	require.NoError(t, getErr)
	require.Nil(t, missing)
}
