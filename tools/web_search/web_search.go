package web_search

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/paperchat/tools/web_search/brave"
	"github.com/mohammad-safakhou/paperchat/tools/web_search/models"
	"github.com/mohammad-safakhou/paperchat/tools/web_search/serper"
	"github.com/mohammad-safakhou/paperchat/tools/web_search/tavily"
)

type WebSearcher interface {
	Search(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
	TavilyProvider Provider = "tavily"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey}, nil
	case TavilyProvider:
		return tavily.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
