package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ninjin/internal/config"
	"ninjin/internal/pkg/feed"
	"ninjin/internal/pkg/storagefactory"
	"ninjin/internal/service"
)

const feedTimeout = 30 * time.Second

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "News document jobs",
}

var newsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch, rank and write the news document",
	RunE:  runNewsFetch,
}

func init() {
	rootCmd.AddCommand(newsCmd)
	newsCmd.AddCommand(newsFetchCmd)

	flags := newsFetchCmd.Flags()

	flags.StringP("output", "o", "static/news.json", "news document path")
	flags.Int("per-source", 10, "max items kept per source")

	_ = viper.BindPFlag("news.output", flags.Lookup("output"))
	_ = viper.BindPFlag("news.per_source", flags.Lookup("per-source"))
}

func runNewsFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg := GetConfig()
	fetcher := feed.NewFetcher(cfg.News.UserAgent, &http.Client{Timeout: feedTimeout})
	return fetchNews(ctx, cfg, fetcher, cmd.OutOrStdout())
}

func fetchNews(ctx context.Context, cfg *config.Config, fetcher service.FeedFetcher, out io.Writer) error {
	if err := cfg.ValidateNews(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	svc := service.NewNewsService(fetcher, store, &cfg.News)

	fmt.Fprintln(out, "Fetching news sources...")
	doc, err := svc.Fetch(ctx)
	if err != nil {
		return err
	}

	location, err := svc.WriteDocument(ctx, cfg.News.Output, doc)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Saved %d items to %s\n", len(doc.Items), location)
	return nil
}
