// Package dashscope 是 DashScope（阿里云百炼）推理服务的客户端库。
//
// 语音合成通过 WebSocket 双工协议完成：
//
//	client, _ := dashscope.NewClient(dashscope.Config{APIKey: key})
//	audio, err := client.NewSpeechSynthesizer("qwen3-tts-vc-flash", "longxiaoyun").
//		Call(ctx, script, "voice.mp3")
package dashscope

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWebSocketURL 推理服务 WebSocket 地址
const DefaultWebSocketURL = "wss://dashscope.aliyuncs.com/api-ws/v1/inference"

const userAgent = "ninjin-dashscope-go/1.0"

// ErrAPIKeyRequired 未提供访问凭证
var ErrAPIKeyRequired = errors.New("dashscope: api key is required")

// Config 客户端配置
type Config struct {
	APIKey           string        // 访问凭证（必需）
	WebSocketURL     string        // 默认: wss://dashscope.aliyuncs.com/api-ws/v1/inference
	DataInspection   bool          // 是否开启数据检查头
	HandshakeTimeout time.Duration // 0 使用 websocket 默认值
}

// Client DashScope 客户端
type Client struct {
	apiKey         string
	wsURL          string
	dataInspection bool
	dialer         *websocket.Dialer
}

// NewClient 创建客户端
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrAPIKeyRequired
	}

	wsURL := cfg.WebSocketURL
	if wsURL == "" {
		wsURL = DefaultWebSocketURL
	}

	dialer := *websocket.DefaultDialer
	if cfg.HandshakeTimeout > 0 {
		dialer.HandshakeTimeout = cfg.HandshakeTimeout
	}

	return &Client{
		apiKey:         cfg.APIKey,
		wsURL:          wsURL,
		dataInspection: cfg.DataInspection,
		dialer:         &dialer,
	}, nil
}

func (c *Client) headers() http.Header {
	header := make(http.Header)
	header.Set("Authorization", "bearer "+c.apiKey)
	header.Set("User-Agent", userAgent)
	if c.dataInspection {
		header.Set("X-DashScope-DataInspection", "enable")
	}
	return header
}

// TaskError 服务端返回 task-failed
type TaskError struct {
	TaskID  string
	Code    string
	Message string
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("dashscope task %s failed: %s: %s", e.TaskID, e.Code, e.Message)
}
