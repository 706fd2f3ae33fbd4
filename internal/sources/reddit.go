package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// subredditsByLanguage routes a query to the communities where that
// language is actually discussed. Unknown languages fall back to the
// general programming subreddits.
var subredditsByLanguage = map[string]string{
	"python":     "python+learnpython+pythontips",
	"javascript": "javascript+learnjavascript+reactjs",
	"java":       "java+learnjava",
	"rust":       "rust",
	"go":         "golang",
	"cpp":        "cpp_questions+cpp",
	"csharp":     "csharp",
}

// reddit queries the public Reddit search endpoint, restricted to the
// language's subreddits.
type reddit struct {
	client  *http.Client
	baseURL string
}

func newReddit(client *http.Client) *reddit {
	return &reddit{
		client:  client,
		baseURL: "https://www.reddit.com",
	}
}

func (r *reddit) Name() string { return Reddit }

// Search returns the top 5 posts for the query, ordered by relevance.
func (r *reddit) Search(ctx context.Context, queryText, language string) ([]Result, error) {
	subreddit, ok := subredditsByLanguage[lowerTag(language)]
	if !ok {
		subreddit = "programming+learnprogramming"
	}

	params := url.Values{
		"q":           {queryText},
		"sort":        {"relevance"},
		"limit":       {"5"},
		"restrict_sr": {"on"},
	}
	endpoint := fmt.Sprintf("%s/r/%s/search.json?%s", r.baseURL, subreddit, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	// Reddit rejects requests without an identifying agent.
	req.Header.Set("User-Agent", "scout/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit http %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Children []struct {
				Data struct {
					Title       string `json:"title"`
					Permalink   string `json:"permalink"`
					Score       int    `json:"score"`
					NumComments int    `json:"num_comments"`
					Selftext    string `json:"selftext"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Data.Children))
	for _, child := range payload.Data.Children {
		post := child.Data
		results = append(results, Result{
			Title:    post.Title,
			URL:      r.baseURL + post.Permalink,
			Score:    post.Score,
			Comments: post.NumComments,
			Snippet:  truncateSnippet(post.Selftext),
		})
		if len(results) >= 5 {
			break
		}
	}
	return results, nil
}
