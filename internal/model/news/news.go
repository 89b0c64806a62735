package news

import (
	"encoding/json"
	"fmt"
	"os"
)

// Signal 信号强度
type Signal string

const (
	SignalS Signal = "S" // 高影响
	SignalA Signal = "A" // 社区热议
	SignalB Signal = "B" // 常规更新
)

// Rank 排序权重（S > A > B）
func (s Signal) Rank() int {
	switch s {
	case SignalS:
		return 3
	case SignalA:
		return 2
	case SignalB:
		return 1
	default:
		return 0
	}
}

// Document news.json 文档
type Document struct {
	UpdatedAt Timestamp `json:"updatedAt"`
	Items     []Item    `json:"items"`
}

// Item 新闻条目
type Item struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Link           string    `json:"link"`
	PubDate        Timestamp `json:"pubDate"`
	ContentSnippet string    `json:"contentSnippet"`
	SourceName     string    `json:"sourceName"`
	Weight         Signal    `json:"weight"`
	Signal         Signal    `json:"signal,omitempty"`
	WhyItMatters   string    `json:"whyItMatters,omitempty"`
}

// Load 读取文档，items 缺省时视为空列表
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse news document: %w", err)
	}
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	return doc, nil
}

// CountItems 只查找 items 键并计数，不校验条目结构；items 缺省时为 0
func CountItems(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var raw struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("failed to parse news document: %w", err)
	}
	return len(raw.Items), nil
}

// Marshal 以两个空格缩进序列化
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
