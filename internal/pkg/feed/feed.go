package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// Entry 订阅源中的一条内容
type Entry struct {
	GUID      string
	Title     string
	Link      string
	Snippet   string // 去掉 HTML 的正文摘要
	Published time.Time
}

// Fetcher RSS/Atom 订阅源抓取器
type Fetcher struct {
	parser *gofeed.Parser
	now    func() time.Time
}

// NewFetcher 创建抓取器，client 为 nil 时使用 http.DefaultClient
func NewFetcher(userAgent string, client *http.Client) *Fetcher {
	parser := gofeed.NewParser()
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	if client != nil {
		parser.Client = client
	}
	return &Fetcher{parser: parser, now: time.Now}
}

// Fetch 抓取并解析订阅源；没有发布时间的条目记为当前时间
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Entry, error) {
	parsed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", url, err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		published := f.now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}

		entries = append(entries, Entry{
			GUID:      item.GUID,
			Title:     strings.TrimSpace(item.Title),
			Link:      item.Link,
			Snippet:   StripHTML(body),
			Published: published,
		})
	}
	return entries, nil
}

// StripHTML 提取 HTML 片段中的纯文本
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
