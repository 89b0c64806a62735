package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewTaskID 生成去掉连字符的32位任务ID（DashScope task_id 格式）
func NewTaskID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
