package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrEmptyText 输入文本为空
	ErrEmptyText = errors.New("speech: input text is empty")
	// ErrVoiceSampleRequired 当前策略需要参考音色样本
	ErrVoiceSampleRequired = errors.New("speech: reference voice sample is required")
)

// Request 一次语音渲染请求，单次使用
type Request struct {
	Model           string // 模型名称
	Text            string // 旁白文本
	VoiceID         string // 音色标识
	VoiceSamplePath string // 参考音色样本路径（可选，依策略而定）
}

// Validate 校验请求；requireSample 为 true 时样本必须存在且可读
func (r *Request) Validate(requireSample bool) error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}

	if r.VoiceSamplePath == "" {
		if requireSample {
			return ErrVoiceSampleRequired
		}
		return nil
	}

	f, err := os.Open(r.VoiceSamplePath)
	if err != nil {
		return fmt.Errorf("speech: open voice sample: %w", err)
	}
	return f.Close()
}

// Synthesizer 语音合成能力（用于单测/替换实现）
type Synthesizer interface {
	// Name 策略名称
	Name() string

	// SynthesizeSpeech 同步合成，成功时返回服务端的原始音频数据
	SynthesizeSpeech(ctx context.Context, req *Request) ([]byte, error)
}
