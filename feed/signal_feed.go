package feed

import (
	"context"
	"sync"

	"pivotdash/model"
	"pivotdash/utils/log"
)

type SignalFeed struct {
	Data chan model.Signal
	Err  chan error
}

type SignalFeedConsumer func(signal model.Signal)

type SignalSubscription struct {
	consumer     SignalFeedConsumer
	lastSignalID string
}

type SignalFeedSubscription struct {
	SignalFeeds            map[string]*SignalFeed
	SubscriptionsByFeedKey map[string][]SignalSubscription

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.RWMutex
}

func NewSignalFeed() *SignalFeedSubscription {
	ctx, cancel := context.WithCancel(context.Background())
	return &SignalFeedSubscription{
		SignalFeeds:            make(map[string]*SignalFeed),
		SubscriptionsByFeedKey: make(map[string][]SignalSubscription),
		ctx:                    ctx,
		cancel:                 cancel,
	}
}

// 전체적인 흐름 : New -> Subscribe -> Start -> Publish

func (d *SignalFeedSubscription) Subscribe(pair string, consumer SignalFeedConsumer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.SignalFeeds[pair]; !ok {
		d.SignalFeeds[pair] = &SignalFeed{
			Data: make(chan model.Signal, 100), // 버퍼링된 채널로 퍼블리시 블로킹 방지
			Err:  make(chan error, 10),
		}
	}

	if _, ok := d.SubscriptionsByFeedKey[pair]; !ok {
		d.SubscriptionsByFeedKey[pair] = make([]SignalSubscription, 0)
	}
	d.SubscriptionsByFeedKey[pair] = append(d.SubscriptionsByFeedKey[pair], SignalSubscription{
		consumer: consumer,
	})
}

func (d *SignalFeedSubscription) Publish(signal model.Signal) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if feed, ok := d.SignalFeeds[signal.Pair]; ok {
		select {
		case feed.Data <- signal:
			return
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *SignalFeedSubscription) Start() {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for pair := range d.SignalFeeds {
		go func(pair string, feed *SignalFeed) {
			for {
				select {
				case <-d.ctx.Done():
					close(feed.Data)
					close(feed.Err)
					return
				case signal, ok := <-feed.Data:
					if !ok {
						return
					}
					d.deliverToSubscribers(pair, signal)
				case err, ok := <-feed.Err:
					if ok {
						log.Error("signalFeedSubscription/start: ", err)
						return
					}
				}
			}
		}(pair, d.SignalFeeds[pair])
	}
}

func (d *SignalFeedSubscription) deliverToSubscribers(pair string, signal model.Signal) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	subscriptions, ok := d.SubscriptionsByFeedKey[pair]
	if !ok {
		return
	}

	for i := range subscriptions {
		if subscriptions[i].lastSignalID == signal.ID {
			continue
		}
		subscriptions[i].lastSignalID = signal.ID
		subscriptions[i].consumer(signal)
	}
}

func (d *SignalFeedSubscription) Stop() {
	d.cancel()
}
