package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"ninjin/internal/config"
	"ninjin/internal/pkg/dashscope/dashscopetest"
	"ninjin/internal/pkg/speech"
	"ninjin/internal/pkg/speech/providers"
	"ninjin/internal/pkg/storage/local"
)

type fakeSynthesizer struct {
	audio []byte
	err   error
	calls int
}

func (f *fakeSynthesizer) Name() string { return "fake" }

func (f *fakeSynthesizer) SynthesizeSpeech(ctx context.Context, req *speech.Request) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

// truncatingStorage 只写入一半数据，用于覆盖写入校验
type truncatingStorage struct {
	*local.LocalStorage
	deleted []string
}

func (s *truncatingStorage) Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	raw, _ := io.ReadAll(data)
	return s.LocalStorage.Upload(ctx, key, bytes.NewReader(raw[:len(raw)/2]), contentType)
}

func (s *truncatingStorage) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return s.LocalStorage.Delete(ctx, key)
}

func TestRenderService_RenderVoice(t *testing.T) {
	Convey("RenderVoice 成功时写入完整音频，失败时不写文件", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		store, err := local.NewLocalStorage(dir)
		So(err, ShouldBeNil)
		output := filepath.Join(dir, "qwen_direct_v1.mp3")
		req := &speech.Request{Model: "qwen3-tts-vc-flash", Text: "Hello"}

		Convey("成功写入返回的字节", func() {
			synth := &fakeSynthesizer{audio: []byte{0x00, 0x01, 0x02}}
			result, err := NewRenderService(synth, store).RenderVoice(ctx, req, output)
			So(err, ShouldBeNil)
			So(result.Success, ShouldBeTrue)
			So(result.Bytes, ShouldEqual, 3)

			got, err := os.ReadFile(output)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []byte{0x00, 0x01, 0x02})
			So(result.Replaced, ShouldBeFalse)
			So(result.ETag, ShouldEqual, "b95f67f61ebb03619622d798f45fc2d3")
		})

		Convey("覆盖已有输出时标记 Replaced", func() {
			So(os.WriteFile(output, []byte("previous take"), 0o644), ShouldBeNil)
			synth := &fakeSynthesizer{audio: []byte{0x07}}
			result, err := NewRenderService(synth, store).RenderVoice(ctx, req, output)
			So(err, ShouldBeNil)
			So(result.Replaced, ShouldBeTrue)
		})

		Convey("写入结果不一致时删除输出", func() {
			truncating := &truncatingStorage{LocalStorage: store}
			synth := &fakeSynthesizer{audio: []byte{0x00, 0x01, 0x02, 0x03}}
			result, err := NewRenderService(synth, truncating).RenderVoice(ctx, req, output)
			So(errors.Is(err, ErrOutputMismatch), ShouldBeTrue)
			So(result.Success, ShouldBeFalse)
			So(result.FailureKind, ShouldEqual, FailureLocalFile)
			So(truncating.deleted, ShouldResemble, []string{output})
			_, statErr := os.Stat(output)
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})

		Convey("服务失败时不创建文件", func() {
			synth := &fakeSynthesizer{err: errors.New("connection reset")}
			result, err := NewRenderService(synth, store).RenderVoice(ctx, req, output)
			So(err, ShouldNotBeNil)
			So(result.Success, ShouldBeFalse)
			So(result.FailureKind, ShouldEqual, FailureTransport)
			_, statErr := os.Stat(output)
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})

		Convey("服务失败时已有文件保持不变", func() {
			So(os.WriteFile(output, []byte("previous take"), 0o644), ShouldBeNil)
			synth := &fakeSynthesizer{err: errors.New("boom")}
			_, err := NewRenderService(synth, store).RenderVoice(ctx, req, output)
			So(err, ShouldNotBeNil)
			got, _ := os.ReadFile(output)
			So(string(got), ShouldEqual, "previous take")
		})

		Convey("空文本不调用服务", func() {
			synth := &fakeSynthesizer{audio: []byte{1}}
			result, err := NewRenderService(synth, store).RenderVoice(ctx, &speech.Request{Text: ""}, output)
			So(errors.Is(err, speech.ErrEmptyText), ShouldBeTrue)
			So(result.FailureKind, ShouldEqual, FailureInvalidRequest)
			So(synth.calls, ShouldEqual, 0)
		})

		Convey("输出父目录不存在时不调用服务", func() {
			synth := &fakeSynthesizer{audio: []byte{1}}
			result, err := NewRenderService(synth, store).RenderVoice(ctx, req, filepath.Join(dir, "final-cuts", "a.mp3"))
			So(err, ShouldNotBeNil)
			So(result.FailureKind, ShouldEqual, FailureLocalFile)
			So(synth.calls, ShouldEqual, 0)
		})

		Convey("空音频视为失败", func() {
			synth := &fakeSynthesizer{audio: []byte{}}
			_, err := NewRenderService(synth, store).RenderVoice(ctx, req, output)
			So(err, ShouldNotBeNil)
			_, statErr := os.Stat(output)
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})
	})
}

func TestRenderService_Strategies(t *testing.T) {
	Convey("两种策略端到端渲染", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		store, _ := local.NewLocalStorage(dir)
		sample := filepath.Join(dir, "voice.mp3")
		So(os.WriteFile(sample, []byte("reference"), 0o644), ShouldBeNil)
		output := filepath.Join(dir, "out.mp3")
		req := &speech.Request{Model: "qwen3-tts-vc-flash", Text: "Hello", VoiceSamplePath: sample}

		Convey("direct: 200 写入响应体", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte{0x00, 0x01, 0x02})
			}))
			defer server.Close()

			synth := mustProvider(config.StrategyDirect, server.URL, "")
			result, err := NewRenderService(synth, store).RenderVoice(ctx, req, output)
			So(err, ShouldBeNil)
			So(result.Success, ShouldBeTrue)
			got, _ := os.ReadFile(output)
			So(got, ShouldResemble, []byte{0x00, 0x01, 0x02})
		})

		Convey("direct: 500 不写文件，错误包含状态码", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("rate limited"))
			}))
			defer server.Close()

			synth := mustProvider(config.StrategyDirect, server.URL, "")
			result, err := NewRenderService(synth, store).RenderVoice(ctx, req, output)
			So(err, ShouldNotBeNil)
			So(result.StatusCode, ShouldEqual, 500)
			So(result.FailureKind, ShouldEqual, FailureServiceStatus)
			So(result.ErrorMessage, ShouldContainSubstring, "500")
			So(result.ErrorMessage, ShouldContainSubstring, "rate limited")
			_, statErr := os.Stat(output)
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})

		Convey("sdk: 写入拼接后的音频", func() {
			server := dashscopetest.NewServer(dashscopetest.Behavior{Audio: [][]byte{{0x00}, {0x01, 0x02}}})
			defer server.Close()

			synth := mustProvider(config.StrategySDK, "", server.URL)
			result, err := NewRenderService(synth, store).RenderVoice(ctx, req, output)
			So(err, ShouldBeNil)
			So(result.Strategy, ShouldEqual, "sdk")
			got, _ := os.ReadFile(output)
			So(got, ShouldResemble, []byte{0x00, 0x01, 0x02})
		})

		Convey("sdk: task-failed 不写文件", func() {
			server := dashscopetest.NewServer(dashscopetest.Behavior{FailCode: "InvalidParameter", FailMessage: "bad voice"})
			defer server.Close()

			synth := mustProvider(config.StrategySDK, "", server.URL)
			result, err := NewRenderService(synth, store).RenderVoice(ctx, req, output)
			So(err, ShouldNotBeNil)
			So(result.FailureKind, ShouldEqual, FailureServiceStatus)
			_, statErr := os.Stat(output)
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})
	})
}

func TestClassifyFailure(t *testing.T) {
	Convey("ClassifyFailure 归类", t, func() {
		So(ClassifyFailure(config.ErrAPIKeyMissing), ShouldEqual, FailureInvalidRequest)
		So(ClassifyFailure(speech.ErrEmptyText), ShouldEqual, FailureInvalidRequest)
		So(ClassifyFailure(speech.ErrVoiceSampleRequired), ShouldEqual, FailureLocalFile)
		So(ClassifyFailure(errors.New("connection reset")), ShouldEqual, FailureTransport)
	})
}

func mustProvider(strategy, baseURL, wsURL string) speech.Synthesizer {
	p, err := providers.New(&config.Config{
		DashScope: config.DashScopeConfig{APIKey: "sk-test", BaseURL: baseURL, WebSocketURL: wsURL},
		Render:    config.RenderConfig{Strategy: strategy, Model: "qwen3-tts-vc-flash"},
	})
	if err != nil {
		panic(err)
	}
	return p
}
