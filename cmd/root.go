package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ninjin/internal/config"
	"ninjin/internal/pkg/logger"
)

var (
	cfgFile string
	envFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ninjin",
	Short: "Ninjin - content production jobs",
	Long: `Ninjin runs the small standalone jobs behind the Ninjin site:
voice rendering with DashScope TTS, news fetching and translation,
and the daily report cycle.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"dotenv file to load before reading the environment (e.g. .env.local)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace/debug/info/warn/error/fatal)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// 先加载 dotenv，已存在的环境变量不会被覆盖
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load env file %s: %v\n", envFile, err)
			os.Exit(1)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.ninjin")
	}

	// 环境变量设置
	viper.SetEnvPrefix("NINJIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("dashscope.api_key", "NINJIN_DASHSCOPE_API_KEY", "DASHSCOPE_API_KEY")

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	// 反序列化到结构体
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// DashScope
	viper.SetDefault("dashscope.base_url", "https://dashscope.aliyuncs.com")
	viper.SetDefault("dashscope.websocket_url", "wss://dashscope.aliyuncs.com/api-ws/v1/inference")
	viper.SetDefault("dashscope.data_inspection", true)
	viper.SetDefault("dashscope.timeout", "0s")

	// Render
	viper.SetDefault("render.strategy", config.StrategySDK)
	viper.SetDefault("render.model", "qwen3-tts-vc-flash")
	viper.SetDefault("render.voice", "")
	viper.SetDefault("render.script", defaultScript)
	viper.SetDefault("render.script_file", "")
	viper.SetDefault("render.voice_sample", "podcast/voice-sample/voice.mp3")
	viper.SetDefault("render.output", "")
	viper.SetDefault("render.format", "mp3")
	viper.SetDefault("render.sample_rate", 22050)
	viper.SetDefault("render.strict", false)

	// Translate
	viper.SetDefault("translate.input", "static/news.json")
	viper.SetDefault("translate.backend", "none")
	viper.SetDefault("translate.language", "zh-CN")

	// News
	viper.SetDefault("news.output", "static/news.json")
	viper.SetDefault("news.per_source", 10)
	viper.SetDefault("news.user_agent", "Mozilla/5.0 (compatible; NinjinBot/1.0)")
	viper.SetDefault("news.sources", defaultSources)

	// Daily
	viper.SetDefault("daily.project_dir", ".")
	viper.SetDefault("daily.report_dir", "reports/daily-reports")
	viper.SetDefault("daily.index_file", "index.html")
	viper.SetDefault("daily.author", "Ninjin 数字化实验室")

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stderr")
	viper.SetDefault("log.time_format", "RFC3339")

	// Storage
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local.base_path", ".")
}

const defaultScript = `又是凌晨两点。
很多人问我，为什么还要做一个独立站。
因为绝大多数人都在玩玩具，而我想造的是意义系统。
2026年了，如果你的公司还没学会自动化剥削AI劳动力，那你迟早会被时代清算。
我是 Ninjin，明早九点见。`

var defaultSources = []map[string]any{
	{"name": "Hacker News", "url": "https://hnrss.org/frontpage?points=100", "type": "tech", "weight": "S"},
	{"name": "Reddit /r/startups", "url": "https://www.reddit.com/r/startups/top/.rss?t=day", "type": "startup", "weight": "A"},
	{"name": "TechCrunch", "url": "https://techcrunch.com/feed/", "type": "tech", "weight": "B"},
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
