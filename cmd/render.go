package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ninjin/internal/config"
	"ninjin/internal/pkg/speech"
	"ninjin/internal/pkg/speech/providers"
	"ninjin/internal/pkg/storagefactory"
	"ninjin/internal/service"
)

// SDK 模式的默认音色；直连模式固定使用参考音色
const defaultSDKVoice = "longxiaoyun"

// 各策略的默认输出
var (
	defaultOutputs = map[string]string{
		config.StrategySDK:    filepath.Join("podcast", "final-cuts", "qwen_solo_broadcast.mp3"),
		config.StrategyDirect: filepath.Join("podcast", "final-cuts", "qwen_direct_v1.mp3"),
	}
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the narration script with DashScope TTS",
	Long: `Render the narration script to an audio file with a cloned reference voice.
The sdk strategy uses the DashScope inference WebSocket, the direct strategy
posts to the HTTP text-to-speech endpoint.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	flags := renderCmd.Flags()

	flags.StringP("strategy", "s", config.StrategySDK, "render strategy (sdk/direct)")
	flags.String("model", "qwen3-tts-vc-flash", "TTS model name")
	flags.String("voice", "", "voice id for the sdk strategy (default: longxiaoyun); direct always uses refer")
	flags.String("format", "mp3", "audio format for the sdk strategy (mp3/wav/pcm)")
	flags.Int("sample-rate", 22050, "sample rate for the sdk strategy")
	flags.String("script", "", "narration text")
	flags.String("script-file", "", "read narration text from file")
	flags.String("voice-sample", "", "reference voice sample path")
	flags.StringP("output", "o", "", "output audio path")
	flags.Bool("strict", false, "exit non-zero when rendering fails")

	_ = viper.BindPFlag("render.strategy", flags.Lookup("strategy"))
	_ = viper.BindPFlag("render.model", flags.Lookup("model"))
	_ = viper.BindPFlag("render.voice", flags.Lookup("voice"))
	_ = viper.BindPFlag("render.script", flags.Lookup("script"))
	_ = viper.BindPFlag("render.script_file", flags.Lookup("script-file"))
	_ = viper.BindPFlag("render.voice_sample", flags.Lookup("voice-sample"))
	_ = viper.BindPFlag("render.output", flags.Lookup("output"))
	_ = viper.BindPFlag("render.format", flags.Lookup("format"))
	_ = viper.BindPFlag("render.sample_rate", flags.Lookup("sample-rate"))
	_ = viper.BindPFlag("render.strict", flags.Lookup("strict"))
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	return renderVoice(ctx, GetConfig(), cmd.OutOrStdout())
}

// renderVoice 执行一次渲染并打印一行状态；非 strict 模式下渲染失败不返回错误
func renderVoice(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if cfg.Render.Strategy == config.StrategySDK && cfg.Render.Voice == "" {
		cfg.Render.Voice = defaultSDKVoice
	}
	if cfg.Render.Output == "" {
		cfg.Render.Output = defaultOutputs[cfg.Render.Strategy]
	}

	if err := cfg.ValidateRender(); err != nil {
		if errors.Is(err, config.ErrAPIKeyMissing) {
			return reportRenderFailure(cfg, out, err)
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	text, err := loadScript(&cfg.Render)
	if err != nil {
		return reportRenderFailure(cfg, out, err)
	}

	synth, err := providers.New(cfg)
	if err != nil {
		return reportRenderFailure(cfg, out, err)
	}

	store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	fmt.Fprintf(out, "Synthesizing with %s via DashScope (%s)...\n", cfg.Render.Model, cfg.Render.Strategy)

	result, err := service.NewRenderService(synth, store).RenderVoice(ctx, &speech.Request{
		Model:           cfg.Render.Model,
		Text:            text,
		VoiceID:         cfg.Render.Voice,
		VoiceSamplePath: cfg.Render.VoiceSample,
	}, cfg.Render.Output)
	if err != nil {
		if result.StatusCode != 0 {
			fmt.Fprintf(out, "❌ Error: %d - %s\n", result.StatusCode, result.ErrorMessage)
			return strictError(cfg, err)
		}
		return reportRenderFailure(cfg, out, err)
	}

	fmt.Fprintf(out, "✅ Success! Audio saved to %s\n", result.OutputPath)
	return nil
}

func reportRenderFailure(cfg *config.Config, out io.Writer, err error) error {
	fmt.Fprintf(out, "❌ Error during synthesis: %v\n", err)
	return strictError(cfg, err)
}

func strictError(cfg *config.Config, err error) error {
	if cfg.Render.Strict {
		return fmt.Errorf("render failed: %w", err)
	}
	log.Debug().Err(err).Msg("render failed, exiting 0 without --strict")
	return nil
}

// loadScript script_file 优先于 script
func loadScript(rc *config.RenderConfig) (string, error) {
	if rc.ScriptFile == "" {
		return rc.Script, nil
	}
	data, err := os.ReadFile(rc.ScriptFile)
	if err != nil {
		return "", fmt.Errorf("failed to read script file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// signalContext SIGINT / SIGTERM 时取消
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
