package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wavenation/wavenation/internal/app"
	"github.com/wavenation/wavenation/internal/config"
	"github.com/wavenation/wavenation/internal/logger"
)

var version = "dev"

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

func printBanner(w io.Writer) {
	logo := []string{
		` __      __                 _  _      _   _           `,
		` \ \    / /_ ___ _____     | \| |__ _| |_(_)___ _ _   `,
		`  \ \/\/ / _' \ V / -_)    | .' / _' |  _| / _ \ ' \  `,
		`   \_/\_/\__,_|\_/\___|    |_|\_\__,_|\__|_\___/_||_| `,
	}
	width := 0
	for _, line := range logo {
		width = max(width, len(line))
	}
	border := strings.Repeat("═", width+2)
	fmt.Fprintf(w, "\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		line += strings.Repeat(" ", width-len(line))
		fmt.Fprintf(w, "  %s║ %s%s%s ║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Fprintf(w, "  %s╚%s╝%s\n\n", cyan, border, reset)
}

type cli struct {
	configPath string
	cfg        *config.Config
	log        logger.Logger
}

// load reads the configuration and builds the logger
func (c *cli) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.NewWithLevel(logger.ParseLevel(cfg.Log.Level))
	return nil
}

func (c *cli) open(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, c.cfg, c.log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return a, nil
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "wavenation",
		Short:         "WaveNation charts, radio schedule and audience polls",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(c),
		newImportChartCmd(c),
		newImportScheduleCmd(c),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "wavenation %s\n", version)
			},
		},
	)
	return root
}

func newServeCmd(c *cli) *cobra.Command {
	var port int
	var noBanner bool

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API and websocket server",
		PreRunE: c.load,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port > 0 {
				c.cfg.Server.Port = port
			}
			if !noBanner {
				printBanner(cmd.OutOrStdout())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			c.log.Info("Editorial login", "url", fmt.Sprintf("http://localhost:%d/api/admin/login", c.cfg.Server.Port))
			return a.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override server.port")
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "skip the startup banner")
	return cmd
}

func newImportChartCmd(c *cli) *cobra.Command {
	var chartID int
	var file string

	cmd := &cobra.Command{
		Use:     "import-chart",
		Short:   "Replace a chart's entries from a CSV file",
		PreRunE: c.load,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			chart, err := a.ImportChartCSV(cmd.Context(), chartID, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries into %s\n", len(chart.Entries), chart.Slug)
			return nil
		},
	}
	cmd.Flags().IntVar(&chartID, "chart-id", 0, "chart to replace entries of")
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file with title and artist columns")
	cmd.MarkFlagRequired("chart-id")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newImportScheduleCmd(c *cli) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "import-schedule",
		Short:   "Upsert radio shows and slots from a YAML file",
		PreRunE: c.load,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.ImportSchedule(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shows created: %d, updated: %d, slots: %d\n",
				res.ShowsCreated, res.ShowsUpdated, res.Slots)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML schedule file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
