package webserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pivotdash/model"
	"pivotdash/store"
	"pivotdash/stream"
)

func newTestServer() *Server {
	return NewServer(Config{
		Pairs:          []string{"KRW-BTC", "KRW-ETH"},
		Timeframe:      "15m",
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		TickerBoard:    store.NewTickerBoard([]string{"KRW-BTC", "KRW-ETH"}),
		CandleBoard:    store.NewCandleBoard(100),
		PivotBoard:     store.NewPivotBoard(),
		IndicatorBoard: store.NewIndicatorBoard(),
		SignalLog:      store.NewSignalLog(10),
		Hub:            stream.NewHub(),
		UserStore:      store.NewInMemoryUserStore(),
	})
}

func jsonRequest(method, target string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func registerAndGetToken(t *testing.T, s *Server, email, password string) string {
	t.Helper()
	resp, err := s.App().Test(jsonRequest(http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Email:    email,
		Password: password,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokenResp model.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tokenResp))
	require.NotEmpty(t, tokenResp.Token)
	return tokenResp.Token
}

func TestServer_Health(t *testing.T) {
	s := newTestServer()
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RegisterValidation(t *testing.T) {
	s := newTestServer()

	// 이메일 형식/비밀번호 길이 검증
	resp, err := s.App().Test(jsonRequest(http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Email:    "not-an-email",
		Password: "longenough",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = s.App().Test(jsonRequest(http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Email:    "user@test.com",
		Password: "short",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_RegisterDuplicateEmail(t *testing.T) {
	s := newTestServer()
	registerAndGetToken(t, s, "user@test.com", "password123")

	resp, err := s.App().Test(jsonRequest(http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Email:    "USER@test.com",
		Password: "password123",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServer_LoginFlow(t *testing.T) {
	s := newTestServer()
	registerAndGetToken(t, s, "user@test.com", "password123")

	resp, err := s.App().Test(jsonRequest(http.MethodPost, "/api/auth/login", model.LoginRequest{
		Email:    "user@test.com",
		Password: "password123",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// 틀린 비밀번호
	resp, err = s.App().Test(jsonRequest(http.MethodPost, "/api/auth/login", model.LoginRequest{
		Email:    "user@test.com",
		Password: "wrong-password",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// 없는 계정
	resp, err = s.App().Test(jsonRequest(http.MethodPost, "/api/auth/login", model.LoginRequest{
		Email:    "nobody@test.com",
		Password: "password123",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_APIRequiresToken(t *testing.T) {
	s := newTestServer()

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/tickers", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/tickers", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	resp, err = s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_TickersWithToken(t *testing.T) {
	s := newTestServer()
	s.tickerBoard.Update(model.Ticker{Pair: "KRW-BTC", LastPrice: 65_000_000})
	token := registerAndGetToken(t, s, "user@test.com", "password123")

	req := httptest.NewRequest(http.MethodGet, "/api/tickers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tickers []model.Ticker
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tickers))
	require.Len(t, tickers, 1)
	require.Equal(t, "KRW-BTC", tickers[0].Pair)
}

func TestServer_CandlesUnknownPair(t *testing.T) {
	s := newTestServer()
	token := registerAndGetToken(t, s, "user@test.com", "password123")

	req := httptest.NewRequest(http.MethodGet, "/api/candles/KRW-DOGE", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_CandlesWindow(t *testing.T) {
	s := newTestServer()
	token := registerAndGetToken(t, s, "user@test.com", "password123")

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.candleBoard.Add("15m", model.Candle{
			Pair:  "KRW-BTC",
			Time:  base.Add(time.Duration(i) * 15 * time.Minute),
			Close: float64(100 + i),
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/candles/krw-btc?limit=3", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var candles []model.Candle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&candles))
	require.Len(t, candles, 3)
	require.Equal(t, 102.0, candles[0].Close)

	// limit 파싱 실패
	req = httptest.NewRequest(http.MethodGet, "/api/candles/KRW-BTC?limit=abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_SignalsAndPivots(t *testing.T) {
	s := newTestServer()
	token := registerAndGetToken(t, s, "user@test.com", "password123")

	s.signalLog.Add(model.Signal{ID: "s1", Pair: "KRW-BTC", Direction: model.SignalLong})
	s.signalLog.Add(model.Signal{ID: "s2", Pair: "KRW-ETH", Direction: model.SignalShort})
	s.pivotBoard.Update(model.PivotLevels{Pair: "KRW-BTC", Timeframe: "15m", RangeHigh: 200, RangeLow: 100})

	req := httptest.NewRequest(http.MethodGet, "/api/signals?pair=KRW-BTC", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var signals []model.Signal
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&signals))
	require.Len(t, signals, 1)
	require.Equal(t, "s1", signals[0].ID)

	req = httptest.NewRequest(http.MethodGet, "/api/pivots/KRW-BTC", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var levels model.PivotLevels
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&levels))
	require.Equal(t, 200.0, levels.RangeHigh)
}

func TestServer_StreamRequiresToken(t *testing.T) {
	s := newTestServer()

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/stream", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = s.App().Test(httptest.NewRequest(http.MethodGet, "/stream?token=bogus", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
