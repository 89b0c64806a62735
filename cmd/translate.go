package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ninjin/internal/config"
	"ninjin/internal/pkg/translator"
	"ninjin/internal/service"
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate the news document into Chinese",
	Long: `Load the news document and hand it to the configured translation backend.
No backend is shipped yet: the job reports the item count and backend
availability and leaves the document untouched.`,
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	flags := translateCmd.Flags()

	flags.StringP("input", "i", "static/news.json", "news document path")
	flags.String("backend", "none", "translation backend")
	flags.String("language", translator.DefaultLanguage, "target language")

	_ = viper.BindPFlag("translate.input", flags.Lookup("input"))
	_ = viper.BindPFlag("translate.backend", flags.Lookup("backend"))
	_ = viper.BindPFlag("translate.language", flags.Lookup("language"))
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	return translateNews(ctx, GetConfig(), cmd.OutOrStdout())
}

func translateNews(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := cfg.ValidateTranslate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	t, err := translator.New(cfg.Translate.Backend, cfg.Translate.Language)
	if err != nil {
		return err
	}

	report, err := service.NewTranslateService(t).TranslateNewsDocument(ctx, cfg.Translate.Input)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			fmt.Fprintf(out, "No news document found at %s\n", cfg.Translate.Input)
		}
		return err
	}

	fmt.Fprintf(out, "Translating %d items to Chinese...\n", report.ItemCount)
	if !report.BackendAvailable {
		fmt.Fprintf(out, "Translation backend %q is not available, document left unchanged.\n", report.Backend)
	}
	return nil
}
