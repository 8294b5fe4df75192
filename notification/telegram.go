package notification

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"pivotdash/model"
	"pivotdash/utils/log"
)

type TelegramNotifier struct {
	BotToken string
	ChatID   string
}

func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
	}
}

func (t *TelegramNotifier) SendNotification(message string) error {
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.BotToken)
	data := url.Values{}
	data.Set("chat_id", t.ChatID)
	data.Set("text", message)

	resp, err := http.PostForm(apiURL, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.ReadAll(resp.Body)
	return err
}

// SignalNotifier 는 확정된 시그널을 알림 메시지로 전송합니다.
func (t *TelegramNotifier) SignalNotifier(signal model.Signal) {
	var direction string
	switch signal.Direction {
	case model.SignalLong:
		direction = "롱"
	case model.SignalShort:
		direction = "숏"
	default:
		direction = "중립"
	}

	var targets []string
	for _, tgt := range signal.Targets {
		targets = append(targets, fmt.Sprintf("%.3f→%.2f(%s)", tgt.Ratio, tgt.Price, tgt.Strength))
	}

	message := fmt.Sprintf("시그널 발생:\n종목: %s (%s)\n방향: %s\n신뢰도: %.0f%%\n진입가: %.2f\n손절가: %.2f\n타겟: %s",
		signal.Pair, signal.Timeframe, direction, signal.Confidence*100,
		signal.Entry, signal.Stop, strings.Join(targets, ", "))
	if sendErr := t.SendNotification(message); sendErr != nil {
		log.Errorf("텔레그램 알림 전송 실패: %v", sendErr)
	}
}
