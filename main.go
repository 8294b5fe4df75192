package main

import (
	"os"
	"strings"
	"time"

	"pivotdash/dashboard"
	"pivotdash/interfaces"
	"pivotdash/news"
	"pivotdash/notification"
	"pivotdash/store"
	"pivotdash/stream"
	"pivotdash/utils/db"
	"pivotdash/utils/log"
	"pivotdash/webserver"
)

func main() {
	// 1) 환경 변수 설정
	pairs := splitPairs(getEnv("DASH_PAIRS", "KRW-BTC,KRW-ETH"))
	timeframe := getEnv("DASH_TIMEFRAME", "15m")
	dashPort := getEnv("DASH_PORT", "8081")
	chartPort := getEnv("CHART_PORT", ":8080")
	jwtSecret := getEnv("JWT_SECRET", "")
	synthetic := os.Getenv("DASH_SYNTHETIC") == "true"

	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// 2) 공유 스토어 + SSE 허브
	tickerBoard := store.NewTickerBoard(pairs)
	candleBoard := store.NewCandleBoard(500)
	pivotBoard := store.NewPivotBoard()
	indicatorBoard := store.NewIndicatorBoard()
	signalLog := store.NewSignalLog(200)
	hub := stream.NewHub()

	// 3) 뉴스 서비스
	newsClient := news.NewClient(
		getEnv("NEWS_API_URL", "https://cryptopanic.com"),
		os.Getenv("NEWS_API_TOKEN"),
	)
	newsService := news.NewService(newsClient, 5*time.Minute)

	// 4) 텔레그램 알림 (옵션)
	var notifier interfaces.Notifier
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		notifier = notification.NewTelegramNotifier(token, os.Getenv("TELEGRAM_CHAT_ID"))
	}

	// 5) 유저 스토어: DATABASE_URL 있으면 postgres, 없으면 인메모리
	var userStore interfaces.UserStore
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		database, err := db.NewDatabase(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer database.Close()
		userStore = store.NewPostgresUserStore(database)
	} else {
		userStore = store.NewInMemoryUserStore()
	}

	// 6) Dashboard 인스턴스 생성
	dash, err := dashboard.NewDashboard(dashboard.Config{
		Pairs:          pairs,
		Timeframe:      timeframe,
		Synthetic:      synthetic,
		ChartPort:      chartPort,
		TickerBoard:    tickerBoard,
		CandleBoard:    candleBoard,
		PivotBoard:     pivotBoard,
		IndicatorBoard: indicatorBoard,
		SignalLog:      signalLog,
		Hub:            hub,
		Notifier:       notifier,
	})
	if err != nil {
		log.Fatal(err)
	}

	dash.SetupSubscriptions()
	dash.Start()

	// 7) REST API + SSE (SIGINT/SIGTERM까지 블록)
	server := webserver.NewServer(webserver.Config{
		Pairs:          pairs,
		Timeframe:      timeframe,
		JWTSecret:      jwtSecret,
		TokenTTL:       24 * time.Hour,
		TickerBoard:    tickerBoard,
		CandleBoard:    candleBoard,
		PivotBoard:     pivotBoard,
		IndicatorBoard: indicatorBoard,
		SignalLog:      signalLog,
		NewsService:    newsService,
		Hub:            hub,
		UserStore:      userStore,
	})
	server.Start(dashPort)

	log.Infof("Shutting down gracefully...")
	dash.Stop()
	time.Sleep(1 * time.Second)
	log.Infof("Shutdown complete.")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitPairs(raw string) []string {
	parts := strings.Split(raw, ",")
	pairs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			pairs = append(pairs, p)
		}
	}
	return pairs
}
