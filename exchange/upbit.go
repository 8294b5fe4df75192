package exchange

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"context"

	"github.com/gorilla/websocket"

	"pivotdash/model"
	"pivotdash/utils/collection"
	"pivotdash/utils/log"
	"pivotdash/utils/resty"
	"pivotdash/utils/tools"
)

const (
	upbitBaseREST = "https://api.upbit.com"
	upbitBaseWS   = "wss://api.upbit.com/websocket/v1"

	Candle1s   = "candle.1s"
	TickerType = "ticker"
)

// Upbit streams public market data. 시세 조회만 사용하므로 API 키가 필요 없음.
type Upbit struct {
	ctx        context.Context
	cancelFunc context.CancelFunc

	// REST
	resty resty.RestyClient

	// WebSocket
	wsConn    *websocket.Conn
	wsRunning bool
	wsMtx     sync.Mutex

	// 실시간 봉(Candle) 전송 채널 + 에러 채널
	candleCh chan model.Candle
	errCh    chan error

	// 실시간 ticker 전송 채널 + 에러 채널
	tickerCh    chan model.Ticker
	tickerErrCh chan error

	// wsMtx로 보호: 구독 등록과 ws 고루틴이 동시에 접근
	tickerPairs []string

	// Upbit에서 실시간 'candle.1s'을 받고, 대상 timeframe 봉으로 합성
	// wsMtx로 보호
	aggregatorMap map[string]*CandleAggregator
}

type UpbitOption func(*Upbit)

// WithRestyClient : 테스트에서 mock resty 주입용
func WithRestyClient(client resty.RestyClient) UpbitOption {
	return func(u *Upbit) {
		u.resty = client
	}
}

// NewUpbit : Upbit 객체 생성
func NewUpbit(opts ...UpbitOption) *Upbit {
	ctx, cancel := context.WithCancel(context.Background())
	restyClient := resty.NewDefaultRestyClientWithRetryCount(false, 3, 10*time.Second)
	up := &Upbit{
		ctx:           ctx,
		cancelFunc:    cancel,
		resty:         restyClient,
		candleCh:      make(chan model.Candle),
		errCh:         make(chan error),
		tickerCh:      make(chan model.Ticker),
		tickerErrCh:   make(chan error),
		aggregatorMap: make(map[string]*CandleAggregator),
	}
	for _, opt := range opts {
		opt(up)
	}
	log.Info("[SETUP] Using Upbit public market data")
	return up
}

// -----------------------------------------------------------------------------
// Feeder 구현부: 시세(캔들, 티커)
// -----------------------------------------------------------------------------

// LastQuote : Ticker로 현재가
func (u *Upbit) LastQuote(pair string) (float64, error) {
	tickers, err := u.Tickers([]string{pair})
	if err != nil {
		return 0, err
	}
	if len(tickers) < 1 {
		return 0, fmt.Errorf("no ticker data for %s", pair)
	}
	return tickers[0].LastPrice, nil
}

// Tickers : (REST) /v1/ticker?markets=KRW-BTC,KRW-ETH
func (u *Upbit) Tickers(pairs []string) ([]model.Ticker, error) {
	markets := strings.Join(collection.Map(pairs, strings.ToUpper), ",")
	body, err := u.requestUpbitGET(u.ctx, "/v1/ticker", map[string]string{"markets": markets})
	if err != nil {
		return nil, err
	}
	var resp []model.UpbitTickerResponse
	if e := json.Unmarshal(body, &resp); e != nil {
		return nil, fmt.Errorf("ticker parse: %w", e)
	}

	return collection.Map(resp, func(t model.UpbitTickerResponse) model.Ticker {
		return model.Ticker{
			Pair:              t.Market,
			LastPrice:         t.TradePrice,
			PrevClosingPrice:  t.PrevClosingPrice,
			SignedChangePrice: t.SignedChangePrice,
			SignedChangeRate:  t.SignedChangeRate,
			High24h:           t.HighPrice,
			Low24h:            t.LowPrice,
			Volume24h:         t.AccTradeVolume24h,
			UpdatedAt:         time.UnixMilli(t.Timestamp),
		}
	}), nil
}

// CandlesByLimit : (REST) /v1/candles/{unit}?market=..&count=..
// Upbit은 최신 봉부터 내려주므로 시간 오름차순으로 뒤집어 반환
func (u *Upbit) CandlesByLimit(pair, period string, limit int) ([]model.Candle, error) {
	endpoint, err := tools.MapPeriodToCandleEndpoint(period)
	if err != nil {
		return nil, err
	}
	params := map[string]string{
		"market": strings.ToUpper(pair),
		"count":  fmt.Sprintf("%d", limit),
	}
	body, err := u.requestUpbitGET(u.ctx, "/v1/candles/"+endpoint, params)
	if err != nil {
		return nil, err
	}
	var resp []model.UpbitCandleResponse
	if e := json.Unmarshal(body, &resp); e != nil {
		return nil, fmt.Errorf("candles parse: %w", e)
	}

	candles := make([]model.Candle, 0, len(resp))
	for i := len(resp) - 1; i >= 0; i-- {
		candles = append(candles, convertUpbitCandle(resp[i]))
	}
	return candles, nil
}

// CandlesByPeriod : (REST) start~end. Upbit의 to 파라미터로 페이지를 거슬러 내려감
func (u *Upbit) CandlesByPeriod(pair, period string, start, end time.Time) ([]model.Candle, error) {
	endpoint, err := tools.MapPeriodToCandleEndpoint(period)
	if err != nil {
		return nil, err
	}

	var all []model.Candle
	to := end
	for {
		params := map[string]string{
			"market": strings.ToUpper(pair),
			"count":  "200",
			"to":     to.UTC().Format("2006-01-02T15:04:05Z"),
		}
		body, err := u.requestUpbitGET(u.ctx, "/v1/candles/"+endpoint, params)
		if err != nil {
			return nil, err
		}
		var resp []model.UpbitCandleResponse
		if e := json.Unmarshal(body, &resp); e != nil {
			return nil, fmt.Errorf("candles parse: %w", e)
		}
		if len(resp) == 0 {
			break
		}
		for _, r := range resp {
			c := convertUpbitCandle(r)
			if c.Time.Before(start) {
				continue
			}
			all = append(all, c)
		}
		oldest := convertUpbitCandle(resp[len(resp)-1])
		if !oldest.Time.After(start) {
			break
		}
		to = oldest.Time
	}

	// 최신순 누적이므로 오름차순으로 뒤집기
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

// CandlesSubscription : WebSocket 실시간 캔들
//
// Upbit 공식 실시간 봉은 "candle.1s"뿐이므로, 1초봉을 받아 aggregator에서
// 요청한 timeframe 봉으로 합성해 전달한다.
func (u *Upbit) CandlesSubscription(pair, timeframe string) (chan model.Candle, chan error) {
	step, err := tools.ParseTimeframeToDuration(timeframe)
	if err != nil {
		step = time.Minute
	}
	u.registerAggregator(strings.ToUpper(pair), step)

	go u.wsRunIfNeeded()
	return u.candleCh, u.errCh
}

func (u *Upbit) registerAggregator(pair string, step time.Duration) {
	u.wsMtx.Lock()
	defer u.wsMtx.Unlock()
	u.aggregatorMap[pair] = &CandleAggregator{
		pair: pair,
		step: step,
	}
	u.resubscribeLocked()
}

// TickersSubscription : WebSocket 실시간 ticker
func (u *Upbit) TickersSubscription(pairs []string) (chan model.Ticker, chan error) {
	u.wsMtx.Lock()
	u.tickerPairs = collection.Map(pairs, strings.ToUpper)
	u.resubscribeLocked()
	u.wsMtx.Unlock()

	go u.wsRunIfNeeded()
	return u.tickerCh, u.tickerErrCh
}

// Start : 소켓은 구독 등록(CandlesSubscription/TickersSubscription)이 붙인다.
// 구독이 하나도 없는 상태에서 미리 연결하면 빈 구독 메시지만 나가게 됨.
func (u *Upbit) Start() {}

func (u *Upbit) Stop() {
	u.cancelFunc()
	if u.wsConn != nil {
		u.wsConn.Close()
	}
	close(u.candleCh)
	close(u.errCh)
	close(u.tickerCh)
	close(u.tickerErrCh)
	log.Info("[Upbit] stopped")
}

// -----------------------------------------------------------------------------
// 실시간 캔들 Aggregator: "1초봉" -> 대상 timeframe 봉
// -----------------------------------------------------------------------------

// CandleAggregator : 특정 pair(예: KRW-BTC)에 대한 실시간 봉 생성기
// 1초봉들(WS) 누적 → step 단위로 종가 확정
type CandleAggregator struct {
	pair          string
	step          time.Duration
	buffer        []model.Candle
	currentBucket time.Time
}

// Push1sCandle : 1초봉을 누적하여 대상 봉이 완성됐는지 체크
// “timestamp의 bucket이 바뀔 때” 봉 완성 -> 새 봉
func (agg *CandleAggregator) Push1sCandle(c model.Candle) (model.Candle, bool) {
	if agg.currentBucket.IsZero() {
		agg.currentBucket = c.Time.Truncate(agg.step)
	}
	thisBucket := c.Time.Truncate(agg.step)
	if thisBucket.After(agg.currentBucket) {
		finishedCandle := agg.aggregateBuffer()
		agg.buffer = []model.Candle{c}
		agg.currentBucket = thisBucket
		return finishedCandle, true
	}
	agg.buffer = append(agg.buffer, c)
	return model.Candle{}, false
}

// aggregateBuffer : buffer 내 모든 1초봉을 합쳐서 대상 봉 생성
func (agg *CandleAggregator) aggregateBuffer() model.Candle {
	if len(agg.buffer) == 0 {
		return model.Candle{}
	}
	first := agg.buffer[0]
	c := model.Candle{
		Pair:      first.Pair,
		Time:      agg.currentBucket,
		UpdatedAt: agg.currentBucket,
		Open:      first.Open,
		High:      first.High,
		Low:       first.Low,
		Close:     first.Close,
		Volume:    0,
		Complete:  true,
		Metadata:  make(map[string]float64),
	}
	for i, sub := range agg.buffer {
		if i > 0 {
			if sub.High > c.High {
				c.High = sub.High
			}
			if sub.Low < c.Low {
				c.Low = sub.Low
			}
		}
		c.Close = sub.Close
		c.Volume += sub.Volume
	}
	return c
}

// handleUpbitCandle1s : upbit "candle.1s" 메시지를 받아 model.Candle로 변환
// 그리고 aggregator에 push
func (u *Upbit) handleUpbitCandle1s(msg []byte) {
	var raw model.WSCandle
	if err := json.Unmarshal(msg, &raw); err != nil {
		log.Errorf("handleUpbitCandle1s unmarshal: %v", err)
		return
	}
	t, _ := time.Parse("2006-01-02T15:04:05", raw.CandleDateTimeUtc)

	c := model.Candle{
		Pair:      raw.Code,
		Time:      t,
		UpdatedAt: t,
		Open:      raw.OpeningPrice,
		High:      raw.HighPrice,
		Low:       raw.LowPrice,
		Close:     raw.TradePrice,
		Volume:    raw.CandleAccTradeVolume,
		Complete:  true, // 1초봉은 이미 완료 상태
		Metadata:  map[string]float64{},
	}
	u.wsMtx.Lock()
	agg, ok := u.aggregatorMap[raw.Code]
	u.wsMtx.Unlock()
	if ok {
		newCandle, finished := agg.Push1sCandle(c)
		if finished {
			u.candleCh <- newCandle
		}
	}
}

func (u *Upbit) handleUpbitTicker(msg []byte) {
	var raw model.UpbitTickerMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		log.Errorf("handleUpbitTicker unmarshal: %v", err)
		return
	}
	u.tickerCh <- raw.ToTicker()
}

// -----------------------------------------------------------------------------
// WebSocket run (candle.1s + ticker 구독)
// -----------------------------------------------------------------------------

func (u *Upbit) wsRunIfNeeded() {
	u.wsMtx.Lock()
	defer u.wsMtx.Unlock()
	if u.wsRunning {
		return
	}
	u.wsRunning = true

	go u.runWebsocket()
}

// buildSubscribeMessageLocked : 현재 등록된 구독들로 Upbit 구독 메시지 구성.
// wsMtx를 잡은 상태에서 호출할 것.
func (u *Upbit) buildSubscribeMessageLocked() []interface{} {
	subMsg := []interface{}{
		map[string]string{"ticket": "pivotdash-upbit-feed"},
	}
	var candleCodes []string
	for p := range u.aggregatorMap {
		candleCodes = append(candleCodes, p)
	}
	if len(candleCodes) > 0 {
		subMsg = append(subMsg, map[string]interface{}{
			"type":  Candle1s,
			"codes": candleCodes,
		})
	}
	if len(u.tickerPairs) > 0 {
		subMsg = append(subMsg, map[string]interface{}{
			"type":  TickerType,
			"codes": u.tickerPairs,
		})
	}
	return append(subMsg, map[string]string{"format": "DEFAULT"})
}

// resubscribeLocked : 소켓이 이미 붙어 있으면 구독 목록을 다시 전송.
// Upbit WS는 같은 ticket으로 보낸 구독 메시지를 최신 것으로 교체한다.
func (u *Upbit) resubscribeLocked() {
	if u.wsConn == nil {
		return
	}
	if err := u.wsConn.WriteJSON(u.buildSubscribeMessageLocked()); err != nil {
		log.Errorf("[UpbitWS] resubscribe fail: %v", err)
	}
}

func (u *Upbit) runWebsocket() {
	defer func() {
		u.wsMtx.Lock()
		u.wsConn = nil
		u.wsRunning = false
		u.wsMtx.Unlock()
	}()

	conn, _, err := websocket.DefaultDialer.Dial(upbitBaseWS, nil)
	if err != nil {
		u.errCh <- fmt.Errorf("websocket dial fail: %w", err)
		return
	}
	log.Info("[UpbitWS] connected")

	u.wsMtx.Lock()
	u.wsConn = conn
	writeErr := conn.WriteJSON(u.buildSubscribeMessageLocked())
	u.wsMtx.Unlock()
	if writeErr != nil {
		u.errCh <- fmt.Errorf("websocket write subscription fail: %w", writeErr)
		return
	}

	for {
		select {
		case <-u.ctx.Done():
			log.Info("[UpbitWS] context canceled, closing ws")
			conn.Close()
			return
		default:
			_, msg, err := conn.ReadMessage()
			if err != nil {
				u.errCh <- fmt.Errorf("websocket read fail: %w", err)
				return
			}
			var raw model.WSCandleBase
			if e := json.Unmarshal(msg, &raw); e != nil {
				log.Warnf("[UpbitWS] unmarshal raw fail: %v", e)
				continue
			}
			if raw.Error.Name != "" {
				u.errCh <- fmt.Errorf("UpbitWS error: %s - %s", raw.Error.Name, raw.Error.Message)
				continue
			}
			switch raw.Type {
			case Candle1s:
				u.handleUpbitCandle1s(msg)
			case TickerType:
				u.handleUpbitTicker(msg)
			default:
				// 다른 타입은 무시 (trade, orderbook, etc.)
			}
		}
	}
}

// -----------------------------------------------------------------------------
// 내부 헬퍼
// -----------------------------------------------------------------------------

func SplitAssetQuote(pair string) (base, quote string) {
	// 예: "KRW-BTC" -> base = "BTC", quote = "KRW"
	parts := strings.Split(pair, "-")
	if len(parts) == 2 {
		return parts[1], parts[0]
	}
	return pair, ""
}

func convertUpbitCandle(r model.UpbitCandleResponse) model.Candle {
	t, _ := time.Parse("2006-01-02T15:04:05", r.CandleDateTimeUtc)
	return model.Candle{
		Pair:      r.Market,
		Time:      t,
		UpdatedAt: t,
		Open:      r.OpeningPrice,
		High:      r.HighPrice,
		Low:       r.LowPrice,
		Close:     r.TradePrice,
		Volume:    r.CandleAccTradeVolume,
		Complete:  true,
		Metadata:  map[string]float64{},
	}
}

// requestUpbitGET : 공개 API GET (인증 불필요)
func (u *Upbit) requestUpbitGET(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	full := upbitBaseREST + path

	var qParams []resty.QueryParam
	for k, v := range params {
		qParams = append(qParams, resty.QueryParam{Key: k, Value: v})
	}

	resp, err := u.resty.
		MakeRequest(ctx, nil, nil).
		Get(full, qParams...)

	if err != nil {
		return nil, fmt.Errorf("API 호출 실패: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API 응답 오류: %d, %s", resp.StatusCode(), resp.String())
	}

	return resp.Body(), nil
}
