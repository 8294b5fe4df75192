package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pivotdash/model"
)

func TestSignalFeed_PublishAndDeliver(t *testing.T) {
	sub := NewSignalFeed()
	defer sub.Stop()

	var mu sync.Mutex
	var received []model.Signal
	done := make(chan struct{})

	sub.Subscribe("KRW-BTC", func(signal model.Signal) {
		mu.Lock()
		received = append(received, signal)
		mu.Unlock()
		close(done)
	})
	sub.Start()

	sub.Publish(model.Signal{
		ID:        "sig-1",
		Pair:      "KRW-BTC",
		Direction: model.SignalLong,
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for signal")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Equal(t, "sig-1", received[0].ID)
	require.Equal(t, model.SignalLong, received[0].Direction)
}

func TestSignalFeed_DedupBySignalID(t *testing.T) {
	sub := NewSignalFeed()
	defer sub.Stop()

	var mu sync.Mutex
	count := 0

	sub.Subscribe("KRW-BTC", func(signal model.Signal) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	sub.Start()

	// 같은 ID 두 번 → 한 번만 전달
	sub.Publish(model.Signal{ID: "dup", Pair: "KRW-BTC"})
	sub.Publish(model.Signal{ID: "dup", Pair: "KRW-BTC"})
	sub.Publish(model.Signal{ID: "next", Pair: "KRW-BTC"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSignalFeed_UnknownPairIsDropped(t *testing.T) {
	sub := NewSignalFeed()
	defer sub.Stop()
	sub.Start()

	// 구독자 없는 pair는 무시됨 (블로킹 없이 리턴)
	sub.Publish(model.Signal{ID: "nobody", Pair: "KRW-XRP"})
}
