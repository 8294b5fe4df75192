package news

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pivotdash/model"
	"pivotdash/utils/resty"
)

func newsPayload(titles ...string) model.NewsEnvelope {
	envelope := model.NewsEnvelope{Count: len(titles)}
	for i, title := range titles {
		envelope.Results = append(envelope.Results, model.NewsAPIResult{
			ID:          int64(i + 1),
			Kind:        "news",
			Title:       title,
			URL:         "https://example.com/post",
			PublishedAt: "2025-06-01T09:00:00Z",
		})
	}
	return envelope
}

func mockNewsClient(calls *int, status int, envelope model.NewsEnvelope) *Client {
	mock := resty.NewMockRestyClient([]resty.MockFunc{
		{
			Method: "GET",
			Path:   "https://news.test/api/v1/posts/",
			ResultBody: func(header any, requestBody any, param ...resty.QueryParam) (resty.MockFuncResponse, error) {
				*calls++
				return resty.MockFuncResponse{
					RawResponse: &http.Response{StatusCode: status},
					Body:        envelope,
				}, nil
			},
		},
	})
	return NewClientWithResty("https://news.test", "token", mock)
}

func TestService_LatestFetchesAndCaches(t *testing.T) {
	calls := 0
	client := mockNewsClient(&calls, 200, newsPayload("Bitcoin rallies", "Ethereum upgrade ships"))
	service := NewService(client, time.Minute)

	items, err := service.Latest(context.Background(), "btc")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Bitcoin rallies", items[0].Title)
	require.Equal(t, "1", items[0].ID)
	require.Equal(t, 2025, items[0].PublishedAt.Year())

	// TTL 이내 재요청은 캐시 히트
	_, err = service.Latest(context.Background(), "BTC")
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestService_LatestServesStaleOnFailure(t *testing.T) {
	calls := 0
	client := mockNewsClient(&calls, 200, newsPayload("First snapshot"))
	service := NewService(client, time.Nanosecond) // 즉시 만료

	items, err := service.Latest(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)

	// 업스트림이 죽어도 이전 스냅샷 유지
	service.client = mockNewsClient(&calls, 503, model.NewsEnvelope{})
	time.Sleep(time.Millisecond)

	items, err = service.Latest(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "First snapshot", items[0].Title)
}

func TestService_LatestErrorWithoutCache(t *testing.T) {
	calls := 0
	client := mockNewsClient(&calls, 500, model.NewsEnvelope{})
	service := NewService(client, time.Minute)

	_, err := service.Latest(context.Background(), "BTC")
	require.Error(t, err)
}

func TestService_RegulatoryFilter(t *testing.T) {
	calls := 0
	client := mockNewsClient(&calls, 200, newsPayload(
		"SEC delays decision on spot ETF",
		"Bitcoin miner expands to Texas",
		"New regulation proposed in EU",
	))
	service := NewService(client, time.Minute)

	items, err := service.Regulatory(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "SEC delays decision on spot ETF", items[0].Title)
	require.Equal(t, "New regulation proposed in EU", items[1].Title)
}
