// Package dashscopetest 提供模拟 DashScope WebSocket 推理服务的测试服务器
package dashscopetest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"ninjin/internal/pkg/dashscope"
)

// Behavior 服务端行为
type Behavior struct {
	APIKey      string   // 期望的凭证，不匹配时返回 401
	Audio       [][]byte // 依次发送的二进制音频帧
	FailCode    string   // 非空时以 task-failed 结束
	FailMessage string
}

// Server 模拟服务器
type Server struct {
	*httptest.Server
	URL string // ws:// 地址

	behavior Behavior
	mu       sync.Mutex
	commands []dashscope.Message
	headers  []http.Header
}

// NewServer 启动模拟服务器，调用方负责 Close
func NewServer(b Behavior) *Server {
	s := &Server{behavior: b}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	s.URL = "ws" + strings.TrimPrefix(s.Server.URL, "http")
	return s
}

// Commands 返回收到的客户端指令
func (s *Server) Commands() []dashscope.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dashscope.Message(nil), s.commands...)
}

// Headers 返回每次握手的请求头
func (s *Server) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

var upgrader = websocket.Upgrader{}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.headers = append(s.headers, r.Header.Clone())
	s.mu.Unlock()

	if s.behavior.APIKey != "" && r.Header.Get("Authorization") != "bearer "+s.behavior.APIKey {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	runTask, ok := s.read(conn)
	if !ok {
		return
	}
	taskID := runTask.Header.TaskID

	if !s.event(conn, dashscope.EventTaskStarted, taskID, "", "") {
		return
	}

	// continue-task 与 finish-task
	for i := 0; i < 2; i++ {
		if _, ok := s.read(conn); !ok {
			return
		}
	}

	if s.behavior.FailCode != "" {
		s.event(conn, dashscope.EventTaskFailed, taskID, s.behavior.FailCode, s.behavior.FailMessage)
		return
	}

	for _, frame := range s.behavior.Audio {
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
		if !s.event(conn, dashscope.EventResultGenerated, taskID, "", "") {
			return
		}
	}
	s.event(conn, dashscope.EventTaskFinished, taskID, "", "")
}

func (s *Server) read(conn *websocket.Conn) (dashscope.Message, bool) {
	var msg dashscope.Message
	if err := conn.ReadJSON(&msg); err != nil {
		return msg, false
	}
	s.mu.Lock()
	s.commands = append(s.commands, msg)
	s.mu.Unlock()
	return msg, true
}

func (s *Server) event(conn *websocket.Conn, event, taskID, code, message string) bool {
	msg := dashscope.Message{
		Header: dashscope.Header{
			Event:        event,
			TaskID:       taskID,
			ErrorCode:    code,
			ErrorMessage: message,
		},
		Payload: []byte(`{}`),
	}
	return conn.WriteJSON(msg) == nil
}
