package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// gitHub queries the GitHub issue search API for community-reported
// problems and their discussion threads.
type gitHub struct {
	client   *http.Client
	endpoint string
}

func newGitHub(client *http.Client) *gitHub {
	return &gitHub{
		client:   client,
		endpoint: "https://api.github.com/search/issues",
	}
}

func (g *gitHub) Name() string { return GitHub }

// Search returns the top 5 issues for the query, ordered by reactions.
func (g *gitHub) Search(ctx context.Context, queryText, language string) ([]Result, error) {
	params := url.Values{
		"q":        {fmt.Sprintf("%s language:%s is:issue", queryText, language)},
		"sort":     {"reactions"},
		"order":    {"desc"},
		"per_page": {"5"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github http %d", resp.StatusCode)
	}

	var payload struct {
		Items []struct {
			Title    string `json:"title"`
			HTMLURL  string `json:"html_url"`
			Comments int    `json:"comments"`
			Body     string `json:"body"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, Result{
			Title:    item.Title,
			URL:      item.HTMLURL,
			Comments: item.Comments,
			Snippet:  truncateSnippet(item.Body),
		})
		if len(results) >= 5 {
			break
		}
	}
	return results, nil
}

// lowerTag normalizes a language name into tag form.
func lowerTag(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
