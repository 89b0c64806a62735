package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"ninjin/internal/config"
	"ninjin/internal/model/news"
	"ninjin/internal/pkg/feed"
	"ninjin/internal/pkg/storage"
	"ninjin/internal/pkg/storage/local"
)

// strongKeywords 标题包含任一关键词即提升为 S 级
var strongKeywords = []string{"Launch", "Release", "Announcing", "Show HN", "GPT", "Gemini", "OpenAI"}

const hackerNews = "Hacker News"

// FeedFetcher 订阅源抓取接口（用于单测/替换实现）
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]feed.Entry, error)
}

// NewsService 新闻抓取与打分
type NewsService struct {
	fetcher   FeedFetcher
	storage   storage.Storage
	sources   []config.SourceConfig
	perSource int
	now       func() time.Time
}

// NewNewsService 创建新闻服务
func NewNewsService(fetcher FeedFetcher, store storage.Storage, cfg *config.NewsConfig) *NewsService {
	perSource := cfg.PerSource
	if perSource <= 0 {
		perSource = 10
	}
	return &NewsService{
		fetcher:   fetcher,
		storage:   store,
		sources:   cfg.Sources,
		perSource: perSource,
		now:       time.Now,
	}
}

// Fetch 顺序抓取所有源，打分、按链接去重并排序
func (s *NewsService) Fetch(ctx context.Context) (*news.Document, error) {
	var all []news.Item

	for _, src := range s.sources {
		log.Info().Str("source", src.Name).Msg("fetching feed")

		entries, err := s.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error().Err(err).Str("source", src.Name).Msg("failed to fetch feed")
			continue
		}

		if len(entries) > s.perSource {
			entries = entries[:s.perSource]
		}
		for _, e := range entries {
			all = append(all, itemFromEntry(src, e))
		}
	}

	items := lo.UniqBy(lo.Map(all, func(item news.Item, _ int) news.Item {
		return AssignSignal(item)
	}), func(item news.Item) string {
		return item.Link
	})

	SortItems(items)

	return &news.Document{
		UpdatedAt: news.NewTimestamp(s.now()),
		Items:     items,
	}, nil
}

// WriteDocument 写出 news.json，本地存储时目录不存在会先创建
func (s *NewsService) WriteDocument(ctx context.Context, path string, doc *news.Document) (string, error) {
	if ls, ok := s.storage.(*local.LocalStorage); ok {
		if err := os.MkdirAll(filepath.Dir(ls.Path(path)), 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := doc.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to marshal news document: %w", err)
	}

	location, err := s.storage.Upload(ctx, path, bytes.NewReader(data), "application/json")
	if err != nil {
		return "", err
	}

	log.Info().Str("output", location).Int("items", len(doc.Items)).Msg("news document written")
	return location, nil
}

func itemFromEntry(src config.SourceConfig, e feed.Entry) news.Item {
	itemID := e.GUID
	if itemID == "" {
		itemID = e.Link
	}
	return news.Item{
		ID:             itemID,
		Title:          e.Title,
		Link:           e.Link,
		PubDate:        news.NewTimestamp(e.Published),
		ContentSnippet: e.Snippet,
		SourceName:     src.Name,
		Weight:         news.Signal(src.Weight),
	}
}

// AssignSignal 按关键词与来源计算信号强度与说明
func AssignSignal(item news.Item) news.Item {
	signal := item.Weight
	why := ""

	if lo.SomeBy(strongKeywords, func(k string) bool { return strings.Contains(item.Title, k) }) {
		signal = news.SignalS
		why = "Contains strong signal keyword."
	} else if item.SourceName == hackerNews && signal != news.SignalS {
		signal = news.SignalA
	}

	if why == "" {
		switch signal {
		case news.SignalS:
			why = "High impact source/keyword."
		case news.SignalA:
			why = "Trending in community."
		default:
			why = "Latest update."
		}
	}

	item.Signal = signal
	item.WhyItMatters = why
	return item
}

// SortItems S > A > B，同级按发布时间倒序
func SortItems(items []news.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Signal.Rank(), items[j].Signal.Rank()
		if ri != rj {
			return ri > rj
		}
		return items[i].PubDate.After(items[j].PubDate.Time)
	})
}
