package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// stackOverflow queries the Stack Exchange advanced search API.
type stackOverflow struct {
	client   *http.Client
	endpoint string
}

func newStackOverflow(client *http.Client) *stackOverflow {
	return &stackOverflow{
		client:   client,
		endpoint: "https://api.stackexchange.com/2.3/search/advanced",
	}
}

func (s *stackOverflow) Name() string { return StackOverflow }

// Search returns the top 5 questions tagged with the language, ordered by
// the API's own relevance ranking.
func (s *stackOverflow) Search(ctx context.Context, queryText, language string) ([]Result, error) {
	params := url.Values{
		"order":  {"desc"},
		"sort":   {"relevance"},
		"q":      {queryText},
		"tagged": {lowerTag(language)},
		"site":   {"stackoverflow"},
		"filter": {"withbody"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stackoverflow http %d", resp.StatusCode)
	}

	var payload struct {
		Items []struct {
			Title       string `json:"title"`
			Link        string `json:"link"`
			Score       int    `json:"score"`
			AnswerCount int    `json:"answer_count"`
			Body        string `json:"body"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, Result{
			Title:    item.Title,
			URL:      item.Link,
			Score:    item.Score,
			Comments: item.AnswerCount,
			Snippet:  truncateSnippet(item.Body),
		})
		if len(results) >= 5 {
			break
		}
	}
	return results, nil
}
