package providers

import (
	"fmt"

	"ninjin/internal/config"
	"ninjin/internal/pkg/dashscope"
	"ninjin/internal/pkg/speech"
	"ninjin/internal/pkg/tts"
)

// New 按 render.strategy 创建合成提供者，凭证缺失时在任何网络调用前失败
func New(cfg *config.Config) (speech.Synthesizer, error) {
	if cfg.DashScope.APIKey == "" {
		return nil, config.ErrAPIKeyMissing
	}

	switch cfg.Render.Strategy {
	case config.StrategySDK:
		client, err := dashscope.NewClient(dashscope.Config{
			APIKey:           cfg.DashScope.APIKey,
			WebSocketURL:     cfg.DashScope.WebSocketURL,
			DataInspection:   cfg.DashScope.DataInspection,
			HandshakeTimeout: cfg.DashScope.Timeout,
		})
		if err != nil {
			return nil, err
		}
		var opts []dashscope.SynthesizerOption
		if cfg.Render.Format != "" {
			opts = append(opts, dashscope.WithFormat(cfg.Render.Format))
		}
		if cfg.Render.SampleRate > 0 {
			opts = append(opts, dashscope.WithSampleRate(cfg.Render.SampleRate))
		}
		return NewSDKProvider(client, opts...), nil
	case config.StrategyDirect:
		client, err := tts.NewClient(tts.Config{
			BaseURL:        cfg.DashScope.BaseURL,
			APIKey:         cfg.DashScope.APIKey,
			DataInspection: cfg.DashScope.DataInspection,
			Timeout:        cfg.DashScope.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return NewDirectProvider(client), nil
	default:
		return nil, fmt.Errorf("unsupported render strategy: %s", cfg.Render.Strategy)
	}
}
