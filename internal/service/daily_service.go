package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"ninjin/internal/config"
)

const defaultAuthor = "Ninjin 数字化实验室"

// indexDatePattern 首页日期行，例如 "2026年2月1日 · Ninjin 数字化实验室"
var indexDatePattern = regexp.MustCompile(`\d{4}年\d{1,2}月\d{1,2}日 · `)

const reportTemplate = `# 📄 Ninjin 超级公司 · 任务复盘日报
# 日期: %s

## 1. 今日战果

## 2. 遇到的问题与解决

## 3. 目前的不足与缺口

## 4. 明日计划
`

// DailyResult 每日周期结果
type DailyResult struct {
	ReportPath   string `json:"report_path"`
	IndexUpdated bool   `json:"index_updated"`
}

// DailyService 每日报告与首页日期刷新
type DailyService struct {
	projectDir string
	reportDir  string
	indexFile  string
	author     string
	now        func() time.Time
}

// NewDailyService 创建每日周期服务
func NewDailyService(cfg *config.DailyConfig) *DailyService {
	s := &DailyService{
		projectDir: cfg.ProjectDir,
		reportDir:  cfg.ReportDir,
		indexFile:  cfg.IndexFile,
		author:     cfg.Author,
		now:        time.Now,
	}
	if s.projectDir == "" {
		s.projectDir = "."
	}
	if s.reportDir == "" {
		s.reportDir = filepath.Join("reports", "daily-reports")
	}
	if s.indexFile == "" {
		s.indexFile = "index.html"
	}
	if s.author == "" {
		s.author = defaultAuthor
	}
	return s
}

// Run 写入当日日报并刷新首页日期
func (s *DailyService) Run(ctx context.Context) (*DailyResult, error) {
	// 日报按 UTC 日期命名，首页日期使用本地日期
	now := s.now()
	dateISO := now.UTC().Format("2006-01-02")

	log.Info().Str("date", dateISO).Msg("initiating daily cycle")

	reportPath, err := s.writeReport(dateISO)
	if err != nil {
		return nil, err
	}

	updated, err := s.updateIndexDate(FormatChineseDate(now))
	if err != nil {
		return nil, err
	}

	log.Info().Str("report", reportPath).Bool("index_updated", updated).Msg("daily cycle complete")

	return &DailyResult{ReportPath: reportPath, IndexUpdated: updated}, nil
}

func (s *DailyService) writeReport(dateISO string) (string, error) {
	dir := filepath.Join(s.projectDir, s.reportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("Report_%s.md", dateISO))
	if err := os.WriteFile(path, []byte(fmt.Sprintf(reportTemplate, dateISO)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write daily report: %w", err)
	}
	return path, nil
}

// updateIndexDate 首页不存在或没有日期行时不做修改
func (s *DailyService) updateIndexDate(dateCN string) (bool, error) {
	path := filepath.Join(s.projectDir, s.indexFile)
	html, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("index", path).Msg("index file not found, skipping date refresh")
			return false, nil
		}
		return false, fmt.Errorf("failed to read index: %w", err)
	}

	pattern := regexp.MustCompile(indexDatePattern.String() + regexp.QuoteMeta(s.author))
	loc := pattern.FindIndex(html)
	if loc == nil {
		return false, nil
	}

	// 只替换第一处
	replaced := make([]byte, 0, len(html))
	replaced = append(replaced, html[:loc[0]]...)
	replaced = append(replaced, dateCN+" · "+s.author...)
	replaced = append(replaced, html[loc[1]:]...)
	if err := os.WriteFile(path, replaced, 0o644); err != nil {
		return false, fmt.Errorf("failed to write index: %w", err)
	}
	return true, nil
}

// FormatChineseDate 格式化为 "2026年2月1日"
func FormatChineseDate(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
}
