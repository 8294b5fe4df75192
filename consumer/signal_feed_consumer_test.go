package consumer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pivotdash/model"
	"pivotdash/store"
	"pivotdash/stream"
)

func TestSignalFeedConsumer_ReplayKeepsLatestPerPairTimeframe(t *testing.T) {
	hub := stream.NewHub()
	signalLog := store.NewSignalLog(200)
	c := NewSignalFeedConsumer(signalLog, hub, nil)

	for i := 0; i < 1000; i++ {
		c.OnSignal(model.Signal{
			ID:         fmt.Sprintf("KRW-BTC_1h_%d", i),
			Pair:       "KRW-BTC",
			Timeframe:  "1h",
			Direction:  model.SignalLong,
			Confidence: 0.8,
		})
	}

	_, snapshot, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	// ID가 전부 달라도 replay는 pair+timeframe당 마지막 시그널 하나
	require.Len(t, snapshot, 1)
	require.True(t, strings.Contains(string(snapshot[0]), "KRW-BTC_1h_999"))

	// 로그 쪽은 자체 용량으로 제한
	require.Len(t, signalLog.Recent(0), 200)
}

func TestSignalFeedConsumer_SeparateKeysPerPair(t *testing.T) {
	hub := stream.NewHub()
	c := NewSignalFeedConsumer(nil, hub, nil)

	c.OnSignal(model.Signal{ID: "a", Pair: "KRW-BTC", Timeframe: "1h", Direction: model.SignalLong})
	c.OnSignal(model.Signal{ID: "b", Pair: "KRW-ETH", Timeframe: "1h", Direction: model.SignalShort})

	_, snapshot, unsubscribe := hub.Subscribe()
	defer unsubscribe()
	require.Len(t, snapshot, 2)
}
