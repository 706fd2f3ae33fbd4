package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// hackerNews queries the Algolia HN search API. Results are pre-filtered
// to stories above 100 points, so the per-backend cap is lower (top 3) —
// what comes back is already high-signal.
type hackerNews struct {
	client   *http.Client
	endpoint string
}

func newHackerNews(client *http.Client) *hackerNews {
	return &hackerNews{
		client:   client,
		endpoint: "https://hn.algolia.com/api/v1/search",
	}
}

func (h *hackerNews) Name() string { return HackerNews }

// Search returns the top 3 high-scoring stories for the query. The
// language parameter is unused — HN has no language facet.
func (h *hackerNews) Search(ctx context.Context, queryText, _ string) ([]Result, error) {
	params := url.Values{
		"query":          {queryText},
		"tags":           {"story"},
		"numericFilters": {"points>100"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hackernews http %d", resp.StatusCode)
	}

	var payload struct {
		Hits []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			ObjectID    string `json:"objectID"`
			Points      int    `json:"points"`
			NumComments int    `json:"num_comments"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Hits))
	for _, hit := range payload.Hits {
		link := hit.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}
		results = append(results, Result{
			Title:    hit.Title,
			URL:      link,
			Score:    hit.Points,
			Comments: hit.NumComments,
		})
		if len(results) >= 3 {
			break
		}
	}
	return results, nil
}
