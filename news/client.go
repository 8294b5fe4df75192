package news

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pivotdash/model"
	"pivotdash/utils/resty"
)

// Client fetches headlines from a CryptoPanic-compatible API.
type Client struct {
	baseURL   string
	authToken string
	resty     resty.RestyClient
}

func NewClient(baseURL, authToken string) *Client {
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		resty:     resty.NewDefaultRestyClientWithRetryCount(false, 2, 10*time.Second),
	}
}

// NewClientWithResty : 테스트에서 mock resty 주입용
func NewClientWithResty(baseURL, authToken string, restyClient resty.RestyClient) *Client {
	return &Client{baseURL: baseURL, authToken: authToken, resty: restyClient}
}

// FetchPosts pulls the latest posts, optionally filtered to one currency
// symbol (e.g. "BTC").
func (c *Client) FetchPosts(ctx context.Context, currency string) ([]model.NewsItem, error) {
	params := []resty.QueryParam{
		{Key: "auth_token", Value: c.authToken},
		{Key: "public", Value: "true"},
	}
	if currency != "" {
		params = append(params, resty.QueryParam{Key: "currencies", Value: currency})
	}

	resp, err := c.resty.MakeRequest(ctx, nil, nil).Get(c.baseURL+"/api/v1/posts/", params...)
	if err != nil {
		return nil, fmt.Errorf("news fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("news fetch: status %d, %s", resp.StatusCode(), resp.String())
	}

	var envelope model.NewsEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("news parse: %w", err)
	}

	items := make([]model.NewsItem, 0, len(envelope.Results))
	for _, r := range envelope.Results {
		items = append(items, r.ToNewsItem())
	}
	return items, nil
}
