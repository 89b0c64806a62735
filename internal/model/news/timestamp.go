package news

import (
	"bytes"
	"encoding/json"
	"time"
)

// isoLayout 与 JavaScript Date.toISOString 输出一致
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp 宽松解析的时间字段，无法识别的值记为零值
type Timestamp struct {
	time.Time
}

// NewTimestamp 包装 time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON 输出 UTC 毫秒精度 ISO 字符串，零值输出 null
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(isoLayout))
}

// UnmarshalJSON 接受 RFC3339 与常见 RSS 日期格式
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC1123Z, time.RFC1123} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}
