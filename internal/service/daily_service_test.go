package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"ninjin/internal/config"
)

func TestDailyService_Run(t *testing.T) {
	Convey("Run 写日报并刷新首页日期", t, func() {
		dir := t.TempDir()
		svc := NewDailyService(&config.DailyConfig{ProjectDir: dir})
		svc.now = func() time.Time { return time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC) }

		index := filepath.Join(dir, "index.html")

		Convey("首页包含日期行时替换", func() {
			So(os.WriteFile(index, []byte(`<p class="text-gray-400">2026年1月31日 · Ninjin 数字化实验室</p>`), 0o644), ShouldBeNil)

			result, err := svc.Run(context.Background())
			So(err, ShouldBeNil)
			So(result.IndexUpdated, ShouldBeTrue)
			So(result.ReportPath, ShouldEqual, filepath.Join(dir, "reports", "daily-reports", "Report_2026-02-03.md"))

			report, err := os.ReadFile(result.ReportPath)
			So(err, ShouldBeNil)
			So(string(report), ShouldContainSubstring, "# 日期: 2026-02-03")
			So(string(report), ShouldContainSubstring, "## 4. 明日计划")

			html, _ := os.ReadFile(index)
			So(string(html), ShouldEqual, `<p class="text-gray-400">2026年2月3日 · Ninjin 数字化实验室</p>`)
		})

		Convey("只替换第一处日期行", func() {
			So(os.WriteFile(index, []byte("<p>2026年1月31日 · Ninjin 数字化实验室</p>\n<footer>2025年12月1日 · Ninjin 数字化实验室</footer>"), 0o644), ShouldBeNil)

			_, err := svc.Run(context.Background())
			So(err, ShouldBeNil)
			html, _ := os.ReadFile(index)
			So(string(html), ShouldEqual, "<p>2026年2月3日 · Ninjin 数字化实验室</p>\n<footer>2025年12月1日 · Ninjin 数字化实验室</footer>")
		})

		Convey("日报使用 UTC 日期，首页使用本地日期", func() {
			svc.now = func() time.Time { return time.Date(2026, 2, 3, 1, 0, 0, 0, time.FixedZone("CST", 8*3600)) }
			So(os.WriteFile(index, []byte("<p>2026年1月31日 · Ninjin 数字化实验室</p>"), 0o644), ShouldBeNil)

			result, err := svc.Run(context.Background())
			So(err, ShouldBeNil)
			So(filepath.Base(result.ReportPath), ShouldEqual, "Report_2026-02-02.md")
			html, _ := os.ReadFile(index)
			So(string(html), ShouldEqual, "<p>2026年2月3日 · Ninjin 数字化实验室</p>")
		})

		Convey("首页缺少日期行时不修改", func() {
			So(os.WriteFile(index, []byte("<h1>hello</h1>"), 0o644), ShouldBeNil)
			result, err := svc.Run(context.Background())
			So(err, ShouldBeNil)
			So(result.IndexUpdated, ShouldBeFalse)
			html, _ := os.ReadFile(index)
			So(string(html), ShouldEqual, "<h1>hello</h1>")
		})

		Convey("首页不存在时只写日报", func() {
			result, err := svc.Run(context.Background())
			So(err, ShouldBeNil)
			So(result.IndexUpdated, ShouldBeFalse)
			_, statErr := os.Stat(result.ReportPath)
			So(statErr, ShouldBeNil)
		})
	})

	Convey("FormatChineseDate 不补零", t, func() {
		So(FormatChineseDate(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)), ShouldEqual, "2026年3月7日")
	})
}
