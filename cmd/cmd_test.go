package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"ninjin/internal/config"
	"ninjin/internal/pkg/feed"
	"ninjin/internal/service"
)

func renderConfig(dir, baseURL string) *config.Config {
	sample := filepath.Join(dir, "voice.mp3")
	_ = os.WriteFile(sample, []byte("reference"), 0o644)
	return &config.Config{
		DashScope: config.DashScopeConfig{APIKey: "sk-test", BaseURL: baseURL, DataInspection: true},
		Render: config.RenderConfig{
			Strategy:    config.StrategyDirect,
			Model:       "qwen3-tts-vc-flash",
			Script:      "我是 Ninjin，明早九点见。",
			VoiceSample: sample,
			Output:      filepath.Join(dir, "qwen_direct_v1.mp3"),
		},
	}
}

func TestRenderVoice(t *testing.T) {
	Convey("render 打印状态行并按 strict 决定退出码", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		var out bytes.Buffer

		Convey("成功时写文件并打印路径", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte{0x00, 0x01, 0x02})
			}))
			defer server.Close()

			cfg := renderConfig(dir, server.URL)
			So(renderVoice(ctx, cfg, &out), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "✅ Success! Audio saved to "+cfg.Render.Output)

			got, _ := os.ReadFile(cfg.Render.Output)
			So(got, ShouldResemble, []byte{0x00, 0x01, 0x02})
		})

		Convey("服务返回 500 时打印状态码", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("rate limited"))
			}))
			defer server.Close()

			cfg := renderConfig(dir, server.URL)
			So(renderVoice(ctx, cfg, &out), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "❌ Error: 500")
			So(out.String(), ShouldContainSubstring, "rate limited")

			cfg.Render.Strict = true
			So(renderVoice(ctx, cfg, &out), ShouldNotBeNil)

			_, statErr := os.Stat(cfg.Render.Output)
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})

		Convey("缺少凭证时不发起请求", func() {
			hits := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits++
			}))
			defer server.Close()

			cfg := renderConfig(dir, server.URL)
			cfg.DashScope.APIKey = ""
			cfg.Render.Strict = true
			err := renderVoice(ctx, cfg, &out)
			So(errors.Is(err, config.ErrAPIKeyMissing), ShouldBeTrue)
			So(out.String(), ShouldContainSubstring, "DASHSCOPE_API_KEY")
			So(hits, ShouldEqual, 0)
		})

		Convey("未指定时按策略填充默认音色与输出", func() {
			cfg := renderConfig(dir, "http://127.0.0.1:0")
			cfg.DashScope.APIKey = ""
			cfg.Render.Output = ""
			cfg.Render.Voice = ""
			_ = renderVoice(ctx, cfg, &out)
			So(cfg.Render.Voice, ShouldEqual, "")
			So(cfg.Render.Output, ShouldEqual, filepath.Join("podcast", "final-cuts", "qwen_direct_v1.mp3"))
		})

		Convey("script_file 优先于 script", func() {
			scriptFile := filepath.Join(dir, "script.txt")
			So(os.WriteFile(scriptFile, []byte("  from file \n"), 0o644), ShouldBeNil)
			text, err := loadScript(&config.RenderConfig{Script: "inline", ScriptFile: scriptFile})
			So(err, ShouldBeNil)
			So(text, ShouldEqual, "from file")
		})
	})
}

func TestTranslateNews(t *testing.T) {
	Convey("translate 统计条目且不写文件", t, func() {
		dir := t.TempDir()
		var out bytes.Buffer
		cfg := &config.Config{Translate: config.TranslateConfig{Backend: "none"}}

		Convey("文档不存在时返回错误", func() {
			cfg.Translate.Input = filepath.Join(dir, "news.json")
			err := translateNews(context.Background(), cfg, &out)
			So(errors.Is(err, service.ErrDocumentNotFound), ShouldBeTrue)
			So(out.String(), ShouldContainSubstring, "No news document found at "+cfg.Translate.Input)
		})

		Convey("打印条目数", func() {
			cfg.Translate.Input = filepath.Join(dir, "news.json")
			So(os.WriteFile(cfg.Translate.Input, []byte(`{"items":[{"title":"a"},{"title":"b"}]}`), 0o644), ShouldBeNil)
			So(translateNews(context.Background(), cfg, &out), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "Translating 2 items to Chinese...")
		})
	})
}

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, url string) ([]feed.Entry, error) {
	return []feed.Entry{{Title: "OpenAI ships", Link: "https://x/" + url, Published: time.Now()}}, nil
}

func TestFetchNews(t *testing.T) {
	Convey("news fetch 写出文档", t, func() {
		dir := t.TempDir()
		var out bytes.Buffer
		cfg := &config.Config{
			News: config.NewsConfig{
				Output:    filepath.Join(dir, "static", "news.json"),
				PerSource: 10,
				Sources:   []config.SourceConfig{{Name: "TechCrunch", URL: "tc", Weight: "B"}},
			},
		}

		So(fetchNews(context.Background(), cfg, stubFetcher{}, &out), ShouldBeNil)
		So(out.String(), ShouldContainSubstring, "Saved 1 items to")
		_, err := os.Stat(cfg.News.Output)
		So(err, ShouldBeNil)
	})
}

func TestRunDailyCycle(t *testing.T) {
	Convey("daily 写出当日日报", t, func() {
		dir := t.TempDir()
		var out bytes.Buffer
		cfg := &config.Config{Daily: config.DailyConfig{ProjectDir: dir}}

		So(runDailyCycle(context.Background(), cfg, &out), ShouldBeNil)
		So(out.String(), ShouldContainSubstring, "Daily report created:")
		matches, _ := filepath.Glob(filepath.Join(dir, "reports", "daily-reports", "Report_*.md"))
		So(len(matches), ShouldEqual, 1)
	})
}
