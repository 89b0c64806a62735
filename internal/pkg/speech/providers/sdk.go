package providers

import (
	"context"
	"fmt"

	"ninjin/internal/pkg/dashscope"
	"ninjin/internal/pkg/speech"
)

// SDKProvider 通过 DashScope 客户端库完成合成
// 实现了 speech.Synthesizer 接口
type SDKProvider struct {
	client *dashscope.Client
	opts   []dashscope.SynthesizerOption
}

// NewSDKProvider 创建基于客户端库的提供者，opts 应用于每次合成
func NewSDKProvider(client *dashscope.Client, opts ...dashscope.SynthesizerOption) *SDKProvider {
	return &SDKProvider{client: client, opts: opts}
}

// Name 策略名称
func (p *SDKProvider) Name() string {
	return "sdk"
}

// SynthesizeSpeech 交由 SpeechSynthesizer 构建请求，参考音色以本地路径传入
func (p *SDKProvider) SynthesizeSpeech(ctx context.Context, req *speech.Request) ([]byte, error) {
	if p.client == nil {
		return nil, fmt.Errorf("dashscope client is required")
	}
	if err := req.Validate(false); err != nil {
		return nil, err
	}

	return p.client.NewSpeechSynthesizer(req.Model, req.VoiceID, p.opts...).
		Call(ctx, req.Text, req.VoiceSamplePath)
}
