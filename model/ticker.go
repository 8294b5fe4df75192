package model

import "time"

// Ticker : normalized 24h market snapshot for one pair
type Ticker struct {
	Pair              string    `json:"pair"`
	LastPrice         float64   `json:"last_price"`
	PrevClosingPrice  float64   `json:"prev_closing_price"`
	SignedChangePrice float64   `json:"signed_change_price"`
	SignedChangeRate  float64   `json:"signed_change_rate"`
	High24h           float64   `json:"high_24h"`
	Low24h            float64   `json:"low_24h"`
	Volume24h         float64   `json:"volume_24h"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UpbitTickerResponse : REST /v1/ticker response item (fields the dashboard uses)
type UpbitTickerResponse struct {
	Market            string  `json:"market"`
	TradePrice        float64 `json:"trade_price"`
	PrevClosingPrice  float64 `json:"prev_closing_price"`
	SignedChangePrice float64 `json:"signed_change_price"`
	SignedChangeRate  float64 `json:"signed_change_rate"`
	HighPrice         float64 `json:"high_price"`
	LowPrice          float64 `json:"low_price"`
	AccTradeVolume24h float64 `json:"acc_trade_volume_24h"`
	Timestamp         int64   `json:"timestamp"`
}

// UpbitTickerMessage : websocket 'ticker' message (fields the dashboard uses)
type UpbitTickerMessage struct {
	Type              string  `json:"type"`
	Code              string  `json:"code"`
	TradePrice        float64 `json:"trade_price"`
	PrevClosingPrice  float64 `json:"prev_closing_price"`
	SignedChangePrice float64 `json:"signed_change_price"`
	SignedChangeRate  float64 `json:"signed_change_rate"`
	HighPrice         float64 `json:"high_price"`
	LowPrice          float64 `json:"low_price"`
	AccTradeVolume24h float64 `json:"acc_trade_volume_24h"`
	Timestamp         int64   `json:"timestamp"`
	StreamType        string  `json:"stream_type"`
}

func (m UpbitTickerMessage) ToTicker() Ticker {
	return Ticker{
		Pair:              m.Code,
		LastPrice:         m.TradePrice,
		PrevClosingPrice:  m.PrevClosingPrice,
		SignedChangePrice: m.SignedChangePrice,
		SignedChangeRate:  m.SignedChangeRate,
		High24h:           m.HighPrice,
		Low24h:            m.LowPrice,
		Volume24h:         m.AccTradeVolume24h,
		UpdatedAt:         time.UnixMilli(m.Timestamp),
	}
}
