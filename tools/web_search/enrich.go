package web_search

import (
	"context"
	"log"

	"github.com/mohammad-safakhou/paperchat/tools/web_fetch"
	"github.com/mohammad-safakhou/paperchat/tools/web_search/models"
	"github.com/mohammad-safakhou/paperchat/utils"
)

// FetchingSearcher decorates a searcher with page fetching: each hit's URL
// is fetched and the readable article text attached as Content. Fetch
// failures leave the snippet-only result in place.
type FetchingSearcher struct {
	Searcher WebSearcher
	Fetcher  web_fetch.WebFetcher
	MaxChars int
}

func (s FetchingSearcher) Search(ctx context.Context, q string, k int) ([]models.Result, error) {
	results, err := s.Searcher.Search(ctx, q, k)
	if err != nil {
		return nil, err
	}
	for i := range results {
		page, err := s.Fetcher.Exec(ctx, results[i].URL)
		if err != nil || page.Text == "" {
			if err != nil {
				log.Printf("[SEARCH] fetch %s failed: %v", results[i].URL, err)
			}
			continue
		}
		maxChars := s.MaxChars
		if maxChars <= 0 {
			maxChars = 2000
		}
		results[i].Content = utils.Truncate(page.Text, maxChars)
	}
	return results, nil
}
