package webserver

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"pivotdash/errors"
	"pivotdash/store"
	"pivotdash/utils/auth"
	"pivotdash/utils/fiberhelper/response"
)

const maxCandleLimit = 500

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return response.Ext{Ctx: c}.Ok(fiber.Map{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func (s *Server) handleTickers(c *fiber.Ctx) error {
	return response.Ext{Ctx: c}.Ok(s.tickerBoard.All())
}

func (s *Server) handleCandles(c *fiber.Ctx) error {
	pair := strings.ToUpper(c.Params("pair"))
	if !s.trackedPair(pair) {
		return errors.NewNotFound(errors.ErrUnknownPair)
	}
	timeframe := c.Query("timeframe", s.timeframe)
	limit, err := strconv.Atoi(c.Query("limit", "200"))
	if err != nil || limit <= 0 {
		return errors.NewBadRequest(errors.ErrInvalidQueryPayload)
	}
	if limit > maxCandleLimit {
		limit = maxCandleLimit
	}
	return response.Ext{Ctx: c}.Ok(s.candleBoard.Window(pair, timeframe, limit))
}

func (s *Server) handleIndicators(c *fiber.Ctx) error {
	pair := strings.ToUpper(c.Params("pair"))
	if !s.trackedPair(pair) {
		return errors.NewNotFound(errors.ErrUnknownPair)
	}
	timeframe := c.Query("timeframe", s.timeframe)
	entry, ok := s.indicatorBoard.Get(pair, timeframe)
	if !ok {
		// 워밍업이 끝나기 전에는 빈 스냅샷
		entry = store.SnapshotEntry{Pair: pair, Timeframe: timeframe}
	}
	return response.Ext{Ctx: c}.Ok(entry)
}

func (s *Server) handlePivots(c *fiber.Ctx) error {
	pair := strings.ToUpper(c.Params("pair"))
	if !s.trackedPair(pair) {
		return errors.NewNotFound(errors.ErrUnknownPair)
	}
	timeframe := c.Query("timeframe", s.timeframe)
	levels, ok := s.pivotBoard.Get(pair, timeframe)
	if !ok {
		levels.Pair = pair
		levels.Timeframe = timeframe
	}
	return response.Ext{Ctx: c}.Ok(levels)
}

func (s *Server) handleSignals(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 {
		return errors.NewBadRequest(errors.ErrInvalidQueryPayload)
	}
	if pair := strings.ToUpper(c.Query("pair")); pair != "" {
		return response.Ext{Ctx: c}.Ok(s.signalLog.ByPair(pair, limit))
	}
	return response.Ext{Ctx: c}.Ok(s.signalLog.Recent(limit))
}

func (s *Server) handleNews(c *fiber.Ctx) error {
	currency := c.Query("currency")
	regulatory := c.Query("regulatory") == "true"

	var err error
	var items interface{}
	if regulatory {
		items, err = s.newsService.Regulatory(c.Context(), currency)
	} else {
		items, err = s.newsService.Latest(c.Context(), currency)
	}
	if err != nil {
		return response.Ext{Ctx: c}.Error(err, errors.ErrNewsUnavailable)
	}
	return response.Ext{Ctx: c}.Ok(items)
}

// handleStream : SSE. EventSource는 커스텀 헤더를 못 붙이므로 토큰은
// ?token= 쿼리로 받는다.
func (s *Server) handleStream(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		header := c.Get(fiber.HeaderAuthorization)
		token = strings.TrimPrefix(header, "Bearer ")
		if token == header {
			token = ""
		}
	}
	if token == "" {
		return errors.NewUnauthorized(errors.ErrMissingToken)
	}
	if _, err := auth.ParseUserToken(token, s.jwtSecret); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	ch, snapshot, unsubscribe := s.hub.Subscribe()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		for _, msg := range snapshot {
			fmt.Fprintf(w, "data: %s\n\n", msg)
		}
		if err := w.Flush(); err != nil {
			return
		}

		for msg := range ch {
			fmt.Fprintf(w, "data: %s\n\n", msg)
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
