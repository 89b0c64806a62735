package dashscope

import "encoding/json"

// 双工推理协议的动作与事件
const (
	ActionRunTask      = "run-task"
	ActionContinueTask = "continue-task"
	ActionFinishTask   = "finish-task"

	EventTaskStarted     = "task-started"
	EventResultGenerated = "result-generated"
	EventTaskFinished    = "task-finished"
	EventTaskFailed      = "task-failed"

	streamingDuplex = "duplex"
)

// Header 消息头，客户端指令与服务端事件共用
type Header struct {
	Action       string          `json:"action,omitempty"`
	Event        string          `json:"event,omitempty"`
	TaskID       string          `json:"task_id"`
	Streaming    string          `json:"streaming,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Attributes   json.RawMessage `json:"attributes,omitempty"`
}

// Message 协议消息
type Message struct {
	Header  Header          `json:"header"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RunTaskPayload run-task 指令的 payload
type RunTaskPayload struct {
	TaskGroup  string              `json:"task_group"`
	Task       string              `json:"task"`
	Function   string              `json:"function"`
	Model      string              `json:"model"`
	Parameters SynthesisParameters `json:"parameters"`
	Input      TaskInput           `json:"input"`
}

// SynthesisParameters 语音合成参数
type SynthesisParameters struct {
	TextType      string  `json:"text_type"`
	Voice         string  `json:"voice"`
	Format        string  `json:"format,omitempty"`
	SampleRate    int     `json:"sample_rate,omitempty"`
	Volume        int     `json:"volume,omitempty"`
	Rate          float64 `json:"rate,omitempty"`
	Pitch         float64 `json:"pitch,omitempty"`
	AudioResource string  `json:"audio_resource,omitempty"` // 参考音频 base64（复刻音色）
}

// TaskInput 任务输入
type TaskInput struct {
	Text string `json:"text,omitempty"`
}

// ContinueTaskPayload continue-task / finish-task 指令的 payload
type ContinueTaskPayload struct {
	Input TaskInput `json:"input"`
}

func newCommand(action, taskID string, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Header: Header{
			Action:    action,
			TaskID:    taskID,
			Streaming: streamingDuplex,
		},
		Payload: raw,
	}, nil
}
