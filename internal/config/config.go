package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	DashScope DashScopeConfig `mapstructure:"dashscope"`
	Render    RenderConfig    `mapstructure:"render"`
	Translate TranslateConfig `mapstructure:"translate"`
	News      NewsConfig      `mapstructure:"news"`
	Daily     DailyConfig     `mapstructure:"daily"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// DashScopeConfig DashScope（阿里云百炼）服务配置
type DashScopeConfig struct {
	APIKey         string        `mapstructure:"api_key"`         // 访问凭证（必需，建议使用环境变量 DASHSCOPE_API_KEY）
	BaseURL        string        `mapstructure:"base_url"`        // HTTP API 地址
	WebSocketURL   string        `mapstructure:"websocket_url"`   // WebSocket 推理地址（SDK 模式）
	DataInspection bool          `mapstructure:"data_inspection"` // 是否开启 X-DashScope-Data-Inspection
	Timeout        time.Duration `mapstructure:"timeout"`         // 0 表示使用传输层默认值
}

// RenderConfig 语音渲染任务配置
type RenderConfig struct {
	Strategy    string `mapstructure:"strategy"`     // sdk / direct
	Model       string `mapstructure:"model"`        // 模型名称
	Voice       string `mapstructure:"voice"`        // 音色，为空时按策略取默认值
	Script      string `mapstructure:"script"`       // 旁白文本
	ScriptFile  string `mapstructure:"script_file"`  // 旁白文本文件（优先于 script）
	VoiceSample string `mapstructure:"voice_sample"` // 参考音色样本路径
	Output      string `mapstructure:"output"`       // 输出音频路径，为空时按策略取默认值
	Format      string `mapstructure:"format"`       // 音频格式 mp3 / wav / pcm（SDK 模式）
	SampleRate  int    `mapstructure:"sample_rate"`  // 采样率（SDK 模式）
	Strict      bool   `mapstructure:"strict"`       // 渲染失败时是否以非零状态退出
}

// TranslateConfig 新闻翻译任务配置
type TranslateConfig struct {
	Input    string `mapstructure:"input"`    // news.json 路径
	Backend  string `mapstructure:"backend"`  // 翻译后端名称
	Language string `mapstructure:"language"` // 目标语言
}

// NewsConfig 新闻抓取配置
type NewsConfig struct {
	Output    string         `mapstructure:"output"`     // 输出文件路径
	PerSource int            `mapstructure:"per_source"` // 每个源最多保留的条目数
	UserAgent string         `mapstructure:"user_agent"` // 抓取时使用的 User-Agent
	Sources   []SourceConfig `mapstructure:"sources"`    // 新闻源列表
}

// SourceConfig 单个新闻源
type SourceConfig struct {
	Name   string `mapstructure:"name"`
	URL    string `mapstructure:"url"`
	Type   string `mapstructure:"type"`
	Weight string `mapstructure:"weight"` // S / A / B
}

// DailyConfig 每日周期任务配置
type DailyConfig struct {
	ProjectDir string `mapstructure:"project_dir"` // 站点项目目录
	ReportDir  string `mapstructure:"report_dir"`  // 日报目录（相对 project_dir）
	IndexFile  string `mapstructure:"index_file"`  // 首页文件（相对 project_dir）
	Author     string `mapstructure:"author"`      // 首页日期行后的署名
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"` // 相对路径的基础目录
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
}

// 渲染策略
const (
	StrategySDK    = "sdk"
	StrategyDirect = "direct"
)

// ErrAPIKeyMissing DashScope 凭证缺失
var ErrAPIKeyMissing = errors.New("dashscope api key is not configured (set DASHSCOPE_API_KEY or NINJIN_DASHSCOPE_API_KEY)")

// ValidateRender 验证渲染任务配置，在任何网络调用之前执行
func (c *Config) ValidateRender() error {
	if strings.TrimSpace(c.DashScope.APIKey) == "" {
		return ErrAPIKeyMissing
	}

	switch c.Render.Strategy {
	case StrategySDK, StrategyDirect:
	default:
		return fmt.Errorf("invalid render strategy %q, must be sdk/direct", c.Render.Strategy)
	}

	if c.Render.Model == "" {
		return errors.New("render model is required")
	}

	return nil
}

// ValidateTranslate 验证翻译任务配置
func (c *Config) ValidateTranslate() error {
	if c.Translate.Input == "" {
		return errors.New("translate input path is required")
	}
	return nil
}

// ValidateNews 验证新闻抓取配置
func (c *Config) ValidateNews() error {
	if c.News.Output == "" {
		return errors.New("news output path is required")
	}
	if len(c.News.Sources) == 0 {
		return errors.New("at least one news source is required")
	}
	for i, src := range c.News.Sources {
		if src.URL == "" {
			return fmt.Errorf("news source #%d has no url", i)
		}
	}
	return nil
}
