package webserver

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"pivotdash/interfaces"
	"pivotdash/news"
	"pivotdash/store"
	"pivotdash/stream"
	fiberhelpers "pivotdash/utils/fiberhelper"
	"pivotdash/utils/fiberhelper/middleware"
)

// Server exposes the dashboard REST API plus the SSE stream.
type Server struct {
	app *fiber.App

	pairs     []string
	timeframe string
	jwtSecret string
	tokenTTL  time.Duration

	tickerBoard    *store.TickerBoard
	candleBoard    *store.CandleBoard
	pivotBoard     *store.PivotBoard
	indicatorBoard *store.IndicatorBoard
	signalLog      *store.SignalLog
	newsService    *news.Service
	hub            *stream.Hub
	userStore      interfaces.UserStore
}

type Config struct {
	Pairs     []string
	Timeframe string
	JWTSecret string
	TokenTTL  time.Duration

	TickerBoard    *store.TickerBoard
	CandleBoard    *store.CandleBoard
	PivotBoard     *store.PivotBoard
	IndicatorBoard *store.IndicatorBoard
	SignalLog      *store.SignalLog
	NewsService    *news.Service
	Hub            *stream.Hub
	UserStore      interfaces.UserStore
}

func NewServer(cfg Config) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	s := &Server{
		pairs:          cfg.Pairs,
		timeframe:      cfg.Timeframe,
		jwtSecret:      cfg.JWTSecret,
		tokenTTL:       cfg.TokenTTL,
		tickerBoard:    cfg.TickerBoard,
		candleBoard:    cfg.CandleBoard,
		pivotBoard:     cfg.PivotBoard,
		indicatorBoard: cfg.IndicatorBoard,
		signalLog:      cfg.SignalLog,
		newsService:    cfg.NewsService,
		hub:            cfg.Hub,
		userStore:      cfg.UserStore,
	}
	s.app = s.buildApp()
	return s
}

func (s *Server) buildApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: fiberhelpers.DefaultErrorHandler,
	})
	app.Use(fiberhelpers.NewRecover())
	app.Use(middleware.LogMiddleware("/api/health", "/stream"))

	app.Get("/api/health", s.handleHealth)
	app.Post("/api/auth/register", s.handleRegister)
	app.Post("/api/auth/login", s.handleLogin)

	app.Get("/stream", s.handleStream)

	api := app.Group("/api", middleware.TokenValidationMiddleware(s.jwtSecret))
	api.Get("/tickers", s.handleTickers)
	api.Get("/candles/:pair", s.handleCandles)
	api.Get("/indicators/:pair", s.handleIndicators)
	api.Get("/pivots/:pair", s.handlePivots)
	api.Get("/signals", s.handleSignals)
	api.Get("/news", s.handleNews)

	return app
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks until SIGINT/SIGTERM.
func (s *Server) Start(port string) {
	fiberhelpers.ListenWithGraceFullyShutdown(s.app, port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) trackedPair(pair string) bool {
	for _, p := range s.pairs {
		if p == pair {
			return true
		}
	}
	return false
}
