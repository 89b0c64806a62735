package translator

import (
	"context"
	"errors"
	"fmt"

	"ninjin/internal/model/news"
)

// ErrNotImplemented 尚未接入任何翻译后端
var ErrNotImplemented = errors.New("translator: translation backend not implemented")

// DefaultLanguage 默认目标语言
const DefaultLanguage = "zh-CN"

// Translator 文档翻译能力（用于单测/替换实现）
type Translator interface {
	// Name 后端名称
	Name() string

	// Available 后端是否可用（凭证、依赖是否就绪）
	Available() bool

	// TranslateDocument 翻译文档中的自然语言字段，返回新文档
	TranslateDocument(ctx context.Context, doc *news.Document) (*news.Document, error)
}

// Unimplemented 占位后端：永远不可用，调用即返回 ErrNotImplemented
type Unimplemented struct {
	Language string
}

// Name 后端名称
func (u *Unimplemented) Name() string {
	return "none"
}

// Available 永远返回 false
func (u *Unimplemented) Available() bool {
	return false
}

// TranslateDocument 不做任何翻译
func (u *Unimplemented) TranslateDocument(ctx context.Context, doc *news.Document) (*news.Document, error) {
	return nil, fmt.Errorf("%w (target language %s)", ErrNotImplemented, u.language())
}

func (u *Unimplemented) language() string {
	if u.Language == "" {
		return DefaultLanguage
	}
	return u.Language
}

// New 按名称查找翻译后端；目前只有占位实现
func New(backend, language string) (Translator, error) {
	switch backend {
	case "", "none":
		return &Unimplemented{Language: language}, nil
	default:
		return nil, fmt.Errorf("unknown translation backend: %s", backend)
	}
}
