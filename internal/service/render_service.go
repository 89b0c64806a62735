package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"ninjin/internal/config"
	"ninjin/internal/pkg/dashscope"
	"ninjin/internal/pkg/speech"
	"ninjin/internal/pkg/storage"
	"ninjin/internal/pkg/storage/local"
	"ninjin/internal/pkg/tts"
)

// 失败分类；凭证缺失属于 invalid_request，missing_dependency 只用于翻译后端不可用
const (
	FailureLocalFile         = "local_file"
	FailureTransport         = "transport"
	FailureServiceStatus     = "service_status"
	FailureMissingDependency = "missing_dependency"
	FailureInvalidRequest    = "invalid_request"
)

// ErrOutputMismatch 写入后的文件与收到的音频大小不一致
var ErrOutputMismatch = errors.New("saved audio does not match received audio")

// RenderResult 一次渲染的结果
type RenderResult struct {
	Success      bool   `json:"success"`
	Strategy     string `json:"strategy"`
	OutputPath   string `json:"output_path"`
	Bytes        int    `json:"bytes"`
	ETag         string `json:"etag,omitempty"`
	Replaced     bool   `json:"replaced"` // 覆盖了已有的输出文件
	StatusCode   int    `json:"status_code,omitempty"` // 服务端非 200 状态码
	FailureKind  string `json:"failure_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// RenderService 语音渲染任务
type RenderService struct {
	synthesizer speech.Synthesizer
	storage     storage.Storage
}

// NewRenderService 创建语音渲染服务
func NewRenderService(synthesizer speech.Synthesizer, store storage.Storage) *RenderService {
	return &RenderService{
		synthesizer: synthesizer,
		storage:     store,
	}
}

// RenderVoice 合成语音并写入 outputPath
// 失败时不写任何文件；返回的 result 总是非 nil
func (s *RenderService) RenderVoice(ctx context.Context, req *speech.Request, outputPath string) (*RenderResult, error) {
	result := &RenderResult{
		Strategy:   s.synthesizer.Name(),
		OutputPath: outputPath,
	}

	// 1. 网络调用前的本地检查
	if err := req.Validate(false); err != nil {
		return s.fail(result, err)
	}
	if err := storage.Preflight(ctx, s.storage, outputPath); err != nil {
		return s.fail(result, err)
	}

	log.Info().
		Str("strategy", result.Strategy).
		Str("model", req.Model).
		Str("voice", req.VoiceID).
		Str("voice_sample", req.VoiceSamplePath).
		Msg("synthesizing speech")

	// 2. 同步调用外部服务
	audio, err := s.synthesizer.SynthesizeSpeech(ctx, req)
	if err != nil {
		return s.fail(result, err)
	}
	if len(audio) == 0 {
		return s.fail(result, errors.New("service returned empty audio"))
	}

	// 3. 完整响应到手后一次性写入
	replaced, err := s.storage.Exists(ctx, outputPath)
	if err != nil {
		log.Warn().Err(err).Str("output", outputPath).Msg("failed to check existing output")
	}
	result.Replaced = replaced

	location, err := s.storage.Upload(ctx, outputPath, bytes.NewReader(audio), local.ContentType(outputPath))
	if err != nil {
		return s.fail(result, fmt.Errorf("failed to save audio: %w", err))
	}

	// 4. 校验写入结果，不一致时删除
	info, err := s.storage.GetFileInfo(ctx, outputPath)
	if err != nil {
		return s.fail(result, fmt.Errorf("failed to verify saved audio: %w", err))
	}
	if info.Size != int64(len(audio)) {
		if delErr := s.storage.Delete(ctx, outputPath); delErr != nil {
			log.Error().Err(delErr).Str("output", location).Msg("failed to remove mismatched output")
		}
		return s.fail(result, fmt.Errorf("%w: wrote %d of %d bytes", ErrOutputMismatch, info.Size, len(audio)))
	}

	result.Success = true
	result.OutputPath = location
	result.Bytes = len(audio)
	result.ETag = info.ETag

	log.Info().
		Str("strategy", result.Strategy).
		Str("output", location).
		Int("bytes", result.Bytes).
		Str("etag", result.ETag).
		Bool("replaced", result.Replaced).
		Msg("audio saved")

	return result, nil
}

func (s *RenderService) fail(result *RenderResult, err error) (*RenderResult, error) {
	result.FailureKind = ClassifyFailure(err)
	result.ErrorMessage = err.Error()

	var statusErr *tts.StatusError
	if errors.As(err, &statusErr) {
		result.StatusCode = statusErr.StatusCode
	}

	log.Error().
		Err(err).
		Str("strategy", result.Strategy).
		Str("failure_kind", result.FailureKind).
		Int("status_code", result.StatusCode).
		Msg("speech render failed")

	return result, err
}

// ClassifyFailure 将错误归入失败分类
func ClassifyFailure(err error) string {
	var (
		statusErr *tts.StatusError
		taskErr   *dashscope.TaskError
		pathErr   *os.PathError
	)

	switch {
	case errors.Is(err, speech.ErrEmptyText),
		errors.Is(err, dashscope.ErrAPIKeyRequired),
		errors.Is(err, config.ErrAPIKeyMissing):
		return FailureInvalidRequest
	case errors.As(err, &statusErr), errors.As(err, &taskErr):
		return FailureServiceStatus
	case errors.Is(err, speech.ErrVoiceSampleRequired),
		errors.Is(err, storage.ErrParentDirMissing),
		errors.Is(err, ErrOutputMismatch),
		errors.As(err, &pathErr):
		return FailureLocalFile
	default:
		return FailureTransport
	}
}
