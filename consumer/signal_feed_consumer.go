package consumer

import (
	"pivotdash/interfaces"
	"pivotdash/model"
	"pivotdash/store"
	"pivotdash/stream"
	"pivotdash/utils/log"
)

type SignalHandledCallback func(signal model.Signal)

// SignalFeedConsumer stores published signals, pushes them over SSE and
// forwards them to the notifier.
type SignalFeedConsumer struct {
	signalLog *store.SignalLog
	hub       *stream.Hub
	notifier  interfaces.Notifier
	callbacks []SignalHandledCallback
}

func NewSignalFeedConsumer(signalLog *store.SignalLog, hub *stream.Hub, notifier interfaces.Notifier) *SignalFeedConsumer {
	return &SignalFeedConsumer{
		signalLog: signalLog,
		hub:       hub,
		notifier:  notifier,
		callbacks: make([]SignalHandledCallback, 0),
	}
}

func (c *SignalFeedConsumer) AddSignalHandledCallback(cb SignalHandledCallback) {
	c.callbacks = append(c.callbacks, cb)
}

func (c *SignalFeedConsumer) OnSignal(signal model.Signal) {
	log.Infof("[SignalFeedConsumer] Received signal - Pair: %s, Direction: %s, Confidence: %.2f",
		signal.Pair, signal.Direction, signal.Confidence)

	if c.signalLog != nil {
		c.signalLog.Add(signal)
	}
	if c.hub != nil {
		// replay 스냅샷은 pair+timeframe당 최신 시그널 하나만 유지
		c.hub.Publish("signal", signal.Pair+"_"+signal.Timeframe, signal)
	}
	if c.notifier != nil {
		c.notifier.SignalNotifier(signal)
	}

	for _, cb := range c.callbacks {
		cb(signal)
	}
}
