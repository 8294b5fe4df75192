package model

import (
	"strconv"
	"time"
)

// NewsItem : normalized news entry served to the dashboard
type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Kind        string    `json:"kind"`
	Currencies  []string  `json:"currencies"`
	PublishedAt time.Time `json:"published_at"`
}

// NewsEnvelope : CryptoPanic-style upstream payload
type NewsEnvelope struct {
	Count   int              `json:"count"`
	Results []NewsAPIResult `json:"results"`
}

type NewsAPIResult struct {
	ID     int64  `json:"id"`
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source struct {
		Title  string `json:"title"`
		Domain string `json:"domain"`
	} `json:"source"`
	Currencies []struct {
		Code string `json:"code"`
	} `json:"currencies"`
	PublishedAt string `json:"published_at"`
}

func (r NewsAPIResult) ToNewsItem() NewsItem {
	publishedAt, _ := time.Parse(time.RFC3339, r.PublishedAt)
	codes := make([]string, 0, len(r.Currencies))
	for _, c := range r.Currencies {
		codes = append(codes, c.Code)
	}
	return NewsItem{
		ID:          strconv.FormatInt(r.ID, 10),
		Title:       r.Title,
		Source:      r.Source.Title,
		URL:         r.URL,
		Kind:        r.Kind,
		Currencies:  codes,
		PublishedAt: publishedAt,
	}
}
