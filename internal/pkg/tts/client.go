package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL DashScope HTTP API 地址
	DefaultBaseURL = "https://dashscope.aliyuncs.com"
	// SpeechPath 语音合成（参考音色）接口路径
	SpeechPath = "/api/v1/services/audio/tts/v2/text-to-speech"
	// ReferVoice 使用参考音频复刻音色时的 voice 取值
	ReferVoice = "refer"
)

// Config TTS 配置
type Config struct {
	BaseURL        string        // API 地址，默认: https://dashscope.aliyuncs.com
	APIKey         string        // 访问令牌（必需）
	DataInspection bool          // 是否发送 X-DashScope-Data-Inspection: enable
	Timeout        time.Duration // 0 表示不设置超时
}

// Client DashScope 语音合成 HTTP 客户端（直连协议，不依赖 SDK）
type Client struct {
	baseURL        string
	dataInspection bool
	http           *resty.Client
}

// NewClient 创建 TTS 客户端
func NewClient(config Config) (*Client, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("TTS api key is required")
	}

	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := resty.New().
		SetAuthToken(config.APIKey).
		SetHeader("Content-Type", "application/json")
	if config.Timeout > 0 {
		httpClient.SetTimeout(config.Timeout)
	}

	return &Client{
		baseURL:        baseURL,
		dataInspection: config.DataInspection,
		http:           httpClient,
	}, nil
}

// SpeechRequest 合成请求体
type SpeechRequest struct {
	Model      string           `json:"model"`
	Input      SpeechInput      `json:"input"`
	Parameters SpeechParameters `json:"parameters"`
}

// SpeechInput 输入文本
type SpeechInput struct {
	Text string `json:"text"`
}

// SpeechParameters 合成参数
type SpeechParameters struct {
	Voice         string `json:"voice"`          // 参考音色模式固定为 refer
	AudioResource string `json:"audio_resource"` // 参考音频的 base64 编码
}

// StatusError 服务端返回非 200 状态
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API request failed, status: %d, body: %s", e.StatusCode, body)
}

// NewSpeechRequest 构建请求体，voice 固定为 refer，参考音频以 base64 内联
func NewSpeechRequest(model, text string, sample []byte) *SpeechRequest {
	return &SpeechRequest{
		Model: model,
		Input: SpeechInput{Text: text},
		Parameters: SpeechParameters{
			Voice:         ReferVoice,
			AudioResource: base64.StdEncoding.EncodeToString(sample),
		},
	}
}

// Synthesize 发送一次同步合成请求，200 时返回响应体中的音频数据
func (c *Client) Synthesize(ctx context.Context, req *SpeechRequest) ([]byte, error) {
	r := c.http.R().
		SetContext(ctx).
		SetBody(req)
	if c.dataInspection {
		r.SetHeader("X-DashScope-Data-Inspection", "enable")
	}

	log.Debug().
		Str("model", req.Model).
		Str("voice", req.Parameters.Voice).
		Int("text_len", len([]rune(req.Input.Text))).
		Msg("sending TTS request")

	resp, err := r.Post(c.baseURL + SpeechPath)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return resp.Body(), nil
}
