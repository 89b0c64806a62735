package speech

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRequest_Validate(t *testing.T) {
	Convey("Request.Validate 检查文本与参考样本", t, func() {
		sample := filepath.Join(t.TempDir(), "voice.mp3")
		So(os.WriteFile(sample, []byte("mp3"), 0o644), ShouldBeNil)

		Convey("空白文本被拒绝", func() {
			req := &Request{Text: " \n\t "}
			So(errors.Is(req.Validate(false), ErrEmptyText), ShouldBeTrue)
		})

		Convey("可选样本缺省时通过", func() {
			req := &Request{Text: "Hello"}
			So(req.Validate(false), ShouldBeNil)
		})

		Convey("必需样本缺省时失败", func() {
			req := &Request{Text: "Hello"}
			So(errors.Is(req.Validate(true), ErrVoiceSampleRequired), ShouldBeTrue)
		})

		Convey("样本不可读时失败", func() {
			req := &Request{Text: "Hello", VoiceSamplePath: sample + ".missing"}
			So(errors.Is(req.Validate(false), os.ErrNotExist), ShouldBeTrue)
		})

		Convey("样本存在时通过", func() {
			req := &Request{Text: "Hello", VoiceSamplePath: sample}
			So(req.Validate(true), ShouldBeNil)
		})
	})
}
