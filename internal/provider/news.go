package provider

import (
	"context"
	"fmt"

	"github.com/sells-group/market-pulse/internal/metric"
	"github.com/sells-group/market-pulse/internal/model"
	"github.com/sells-group/market-pulse/pkg/gnews"
)

const newsResultLimit = 10

// NewsData is the development-news payload for a location.
type NewsData struct {
	Query        string          `json:"query"`
	ResultsCount int             `json:"results_count"`
	Articles     []gnews.Article `json:"articles"`
}

// News searches for local real-estate development news.
type News struct {
	client     gnews.Client
	limiter    *Limiter
	configured bool
}

// NewNews builds the news adapter.
func NewNews(client gnews.Client, limiter *Limiter, configured bool) *News {
	return &News{client: client, limiter: limiter, configured: configured}
}

func (n *News) Name() string { return model.SourceNews }

func (n *News) Fetch(ctx context.Context, geo *model.Geography) metric.Envelope {
	if !n.configured {
		return metric.Missing(model.SourceNews, "news search not configured")
	}

	query := fmt.Sprintf("%s real estate development news", geo.Query)

	if err := n.limiter.Acquire(ctx, "news"); err != nil {
		return metric.Missing(model.SourceNews, err.Error())
	}
	resp, err := n.client.Search(ctx, query, newsResultLimit)
	if err != nil {
		return metric.Missing(model.SourceNews, err.Error())
	}

	data := &NewsData{
		Query:        query,
		ResultsCount: len(resp.Items),
		Articles:     resp.Items,
	}
	return metric.Good(model.SourceNews, data)
}
