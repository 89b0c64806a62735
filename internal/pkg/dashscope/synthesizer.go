package dashscope

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"ninjin/internal/pkg/id"
)

// SpeechSynthesizer 语音合成器，一次 Call 对应一个推理任务
type SpeechSynthesizer struct {
	client     *Client
	Model      string
	Voice      string
	Format     string
	SampleRate int
	Volume     int
	Rate       float64
	Pitch      float64
}

// SynthesizerOption 合成器选项
type SynthesizerOption func(*SpeechSynthesizer)

// WithFormat 设置音频格式（mp3 / wav / pcm）
func WithFormat(format string) SynthesizerOption {
	return func(s *SpeechSynthesizer) { s.Format = format }
}

// WithSampleRate 设置采样率
func WithSampleRate(rate int) SynthesizerOption {
	return func(s *SpeechSynthesizer) { s.SampleRate = rate }
}

// NewSpeechSynthesizer 创建语音合成器
func (c *Client) NewSpeechSynthesizer(model, voice string, opts ...SynthesizerOption) *SpeechSynthesizer {
	s := &SpeechSynthesizer{
		client:     c,
		Model:      model,
		Voice:      voice,
		Format:     "mp3",
		SampleRate: 22050,
		Volume:     50,
		Rate:       1,
		Pitch:      1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Call 同步合成 text，voiceFile 非空时读取该文件作为参考音色，返回完整音频数据
func (s *SpeechSynthesizer) Call(ctx context.Context, text, voiceFile string) ([]byte, error) {
	params := SynthesisParameters{
		TextType:   "PlainText",
		Voice:      s.Voice,
		Format:     s.Format,
		SampleRate: s.SampleRate,
		Volume:     s.Volume,
		Rate:       s.Rate,
		Pitch:      s.Pitch,
	}

	if voiceFile != "" {
		sample, err := os.ReadFile(voiceFile)
		if err != nil {
			return nil, fmt.Errorf("dashscope: read voice file: %w", err)
		}
		params.AudioResource = base64.StdEncoding.EncodeToString(sample)
	}

	conn, _, err := s.client.dialer.DialContext(ctx, s.client.wsURL, s.client.headers())
	if err != nil {
		return nil, fmt.Errorf("dashscope: dial: %w", err)
	}
	defer conn.Close()

	// ctx 取消时关闭连接以打断阻塞读
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	taskID := id.NewTaskID()
	runTask, err := newCommand(ActionRunTask, taskID, RunTaskPayload{
		TaskGroup:  "audio",
		Task:       "tts",
		Function:   "SpeechSynthesizer",
		Model:      s.Model,
		Parameters: params,
		Input:      TaskInput{},
	})
	if err != nil {
		return nil, fmt.Errorf("dashscope: build run-task: %w", err)
	}
	if err := conn.WriteJSON(runTask); err != nil {
		return nil, fmt.Errorf("dashscope: send run-task: %w", err)
	}

	log.Debug().
		Str("task_id", taskID).
		Str("model", s.Model).
		Str("voice", s.Voice).
		Msg("dashscope task submitted")

	audio, err := s.receive(conn, taskID, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return audio, nil
}

// receive 驱动任务状态机：task-started 后发送文本与结束指令，收集二进制音频帧直到 task-finished
func (s *SpeechSynthesizer) receive(conn *websocket.Conn, taskID, text string) ([]byte, error) {
	var audio bytes.Buffer

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("dashscope: read: %w", err)
		}

		if msgType == websocket.BinaryMessage {
			audio.Write(data)
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("dashscope: decode event: %w", err)
		}

		switch msg.Header.Event {
		case EventTaskStarted:
			if err := s.sendText(conn, taskID, text); err != nil {
				return nil, err
			}
		case EventResultGenerated:
		case EventTaskFinished:
			if audio.Len() == 0 {
				return nil, errors.New("dashscope: task finished without audio")
			}
			log.Debug().Str("task_id", taskID).Int("bytes", audio.Len()).Msg("dashscope task finished")
			return audio.Bytes(), nil
		case EventTaskFailed:
			return nil, &TaskError{
				TaskID:  taskID,
				Code:    msg.Header.ErrorCode,
				Message: msg.Header.ErrorMessage,
			}
		default:
			log.Warn().Str("event", msg.Header.Event).Msg("dashscope: unexpected event")
		}
	}
}

func (s *SpeechSynthesizer) sendText(conn *websocket.Conn, taskID, text string) error {
	cont, err := newCommand(ActionContinueTask, taskID, ContinueTaskPayload{Input: TaskInput{Text: text}})
	if err != nil {
		return fmt.Errorf("dashscope: build continue-task: %w", err)
	}
	if err := conn.WriteJSON(cont); err != nil {
		return fmt.Errorf("dashscope: send continue-task: %w", err)
	}

	finish, err := newCommand(ActionFinishTask, taskID, ContinueTaskPayload{})
	if err != nil {
		return fmt.Errorf("dashscope: build finish-task: %w", err)
	}
	if err := conn.WriteJSON(finish); err != nil {
		return fmt.Errorf("dashscope: send finish-task: %w", err)
	}
	return nil
}
