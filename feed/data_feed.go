package feed

import (
	"fmt"
	"strings"
	"sync"

	"github.com/StudioSol/set"

	"pivotdash/interfaces"
	"pivotdash/model"
	"pivotdash/utils/log"
)

type DataFeedSubscription struct {
	feeder                  interfaces.DataFeeder
	Feeds                   *set.LinkedHashSetString  // (pair_timeframe) 세트
	DataFeeds               map[string]*DataFeed      // key=(pair_timeframe), value=channel pair
	SubscriptionsByDataFeed map[string][]Subscription // key=(pair_timeframe), value=subscriber list
}

type DataFeed struct {
	Data chan model.Candle
	Err  chan error
}

type Subscription struct {
	onCandleClose bool // 봉이 완성된 경우에만 콜백을 하겠다는지 여부
	consumer      DataFeedConsumer
}

type DataFeedConsumer func(model.Candle)

// 전체적인 흐름 : New -> Subscribe -> Preload -> Start(Connect)

func NewDataFeed(feeder interfaces.DataFeeder) *DataFeedSubscription {
	return &DataFeedSubscription{
		feeder:                  feeder,
		Feeds:                   set.NewLinkedHashSetString(),
		DataFeeds:               make(map[string]*DataFeed),
		SubscriptionsByDataFeed: make(map[string][]Subscription),
	}
}

// Subscribe : 구독 등록 (pair, period, consumer callback, onCandleClose)
func (d *DataFeedSubscription) Subscribe(
	pair, period string,
	consumer DataFeedConsumer,
	onCandleClose bool,
) {
	key := d.makeFeedKey(pair, period)

	d.Feeds.Add(key)

	d.SubscriptionsByDataFeed[key] = append(d.SubscriptionsByDataFeed[key], Subscription{
		onCandleClose: onCandleClose,
		consumer:      consumer,
	})
}

// Preload : 미리 읽어온 캔들을 구독자에게 전달(옵션)
func (d *DataFeedSubscription) Preload(pair, period string, candles []model.Candle) {
	log.Infof("[SETUP] preloading %d candles for %s-%s", len(candles), pair, period)
	key := d.makeFeedKey(pair, period)
	for _, candle := range candles {
		if !candle.Complete {
			continue
		}
		for _, subscription := range d.SubscriptionsByDataFeed[key] {
			subscription.consumer(candle)
		}
	}
}

// Start : 고루틴을 띄워 candle/error 수신, 구독자에 전달
func (d *DataFeedSubscription) Start(loadSync bool) {
	d.Connect()

	wg := new(sync.WaitGroup)

	for key, feed := range d.DataFeeds {
		wg.Add(1)

		go func(key string, feed *DataFeed) {
			defer wg.Done()

			for {
				select {
				case candle, ok := <-feed.Data:
					if !ok {
						return
					}
					for _, subscription := range d.SubscriptionsByDataFeed[key] {
						if subscription.onCandleClose && !candle.Complete {
							continue
						}
						subscription.consumer(candle)
					}

				case err := <-feed.Err:
					if err != nil {
						log.Error("dataFeedSubscription/start: ", err)
					}
				}
			}
		}(key, feed)
	}

	log.Infof("Data feed connected.")

	if loadSync {
		wg.Wait()
	}
}

// Connect : feeder의 CandlesSubscription을 호출하여 (chan Candle, chan error)를 구성
func (d *DataFeedSubscription) Connect() {
	log.Infof("Connecting to the market data feed.")
	for feed := range d.Feeds.Iter() {
		pair, period := d.getPairPeriodFromKey(feed)

		cCandle, cErr := d.feeder.CandlesSubscription(pair, period)

		d.DataFeeds[feed] = &DataFeed{
			Data: cCandle,
			Err:  cErr,
		}
	}
}

func (d *DataFeedSubscription) makeFeedKey(pair, period string) string {
	return fmt.Sprintf("%s_%s", pair, period)
}

func (d *DataFeedSubscription) getPairPeriodFromKey(key string) (string, string) {
	parts := strings.Split(key, "_")
	return parts[0], parts[1]
}
