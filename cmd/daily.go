package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ninjin/internal/config"
	"ninjin/internal/service"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Write today's report and refresh the index date",
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)

	flags := dailyCmd.Flags()
	flags.String("project-dir", ".", "site project directory")

	_ = viper.BindPFlag("daily.project_dir", flags.Lookup("project-dir"))
}

func runDaily(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	return runDailyCycle(ctx, GetConfig(), cmd.OutOrStdout())
}

func runDailyCycle(ctx context.Context, cfg *config.Config, out io.Writer) error {
	result, err := service.NewDailyService(&cfg.Daily).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Daily report created: %s\n", result.ReportPath)
	if result.IndexUpdated {
		fmt.Fprintln(out, "Index date refreshed.")
	}
	return nil
}
