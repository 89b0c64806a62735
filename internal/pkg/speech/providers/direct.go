package providers

import (
	"context"
	"fmt"
	"os"

	"ninjin/internal/pkg/speech"
	"ninjin/internal/pkg/tts"
)

// DirectProvider 手工构造 HTTP 请求直连 DashScope
// 实现了 speech.Synthesizer 接口
type DirectProvider struct {
	client *tts.Client
}

// NewDirectProvider 创建直连协议提供者
func NewDirectProvider(client *tts.Client) *DirectProvider {
	return &DirectProvider{client: client}
}

// Name 策略名称
func (p *DirectProvider) Name() string {
	return "direct"
}

// SynthesizeSpeech 读取参考音频并内联为 base64，返回 200 响应体；VoiceID 不参与请求
func (p *DirectProvider) SynthesizeSpeech(ctx context.Context, req *speech.Request) ([]byte, error) {
	if p.client == nil {
		return nil, fmt.Errorf("tts client is required")
	}
	if err := req.Validate(true); err != nil {
		return nil, err
	}

	sample, err := os.ReadFile(req.VoiceSamplePath)
	if err != nil {
		return nil, fmt.Errorf("read voice sample: %w", err)
	}

	return p.client.Synthesize(ctx, tts.NewSpeechRequest(req.Model, req.Text, sample))
}
