package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"ninjin/internal/model/news"
	"ninjin/internal/pkg/translator"
)

// ErrDocumentNotFound news.json 不存在
var ErrDocumentNotFound = errors.New("news document not found")

// TranslateReport 翻译任务报告
type TranslateReport struct {
	Path             string `json:"path"`
	ItemCount        int    `json:"item_count"`
	Backend          string `json:"backend"`
	BackendAvailable bool   `json:"backend_available"`
	Translated       bool   `json:"translated"`             // 目前恒为 false
	FailureKind      string `json:"failure_kind,omitempty"` // 后端不可用时为 missing_dependency
}

// TranslateService 新闻文档翻译任务
type TranslateService struct {
	translator translator.Translator
}

// NewTranslateService 创建翻译服务
func NewTranslateService(t translator.Translator) *TranslateService {
	return &TranslateService{translator: t}
}

// TranslateNewsDocument 读取文档并统计条目，探测翻译后端是否可用
// 尚未接入翻译后端：不翻译、不写回任何文件
func (s *TranslateService) TranslateNewsDocument(ctx context.Context, path string) (*TranslateReport, error) {
	report := &TranslateReport{
		Path:    path,
		Backend: s.translator.Name(),
	}

	count, err := news.CountItems(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return report, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return report, err
	}

	report.ItemCount = count
	report.BackendAvailable = s.translator.Available()
	if !report.BackendAvailable {
		report.FailureKind = FailureMissingDependency
	}

	log.Info().
		Str("path", path).
		Int("items", report.ItemCount).
		Str("backend", report.Backend).
		Bool("backend_available", report.BackendAvailable).
		Str("failure_kind", report.FailureKind).
		Msg("news document loaded")

	return report, nil
}
