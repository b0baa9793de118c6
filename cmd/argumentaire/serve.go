package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/argumentaire/internal/platform"
	"github.com/aretw0/argumentaire/pkg/adapters/httpapi"
	lifecycleadapter "github.com/aretw0/argumentaire/pkg/adapters/lifecycle"
)

var (
	serveAddr   string
	serveStatic string
	serveWatch  bool
	serveRate   float64
	serveBurst  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalogue API and the static site",
	Long: `Start the HTTP server. The catalogue is rebuilt once at startup
(seed, current store, legacy database) before requests are accepted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr = serveAddr
		}
		if cmd.Flags().Changed("static") {
			cfg.StaticDir = serveStatic
		}
		if cmd.Flags().Changed("rate-limit") {
			cfg.RateLimit = serveRate
		}
		if cmd.Flags().Changed("burst") {
			cfg.RateBurst = serveBurst
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		inst, err := openInstance(ctx, cfg, platform.WithAutoInit(true))
		if err != nil {
			return err
		}
		slog.Info("catalogue ready",
			"data_dir", inst.DataDir,
			"records", inst.Report.Total,
			"legacy", inst.Report.Legacy,
			"read_only", cfg.ReadOnly,
		)

		if serveWatch {
			if err := watchStore(ctx, inst); err != nil {
				return err
			}
		}

		var components []httpapi.Inspectable
		for _, c := range inst.Components() {
			components = append(components, c)
		}

		srv := httpapi.New(inst.Service,
			httpapi.WithLogger(slog.Default()),
			httpapi.WithStaticDir(cfg.StaticDir),
			httpapi.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
			httpapi.WithComponents(components...),
		)
		return srv.Run(ctx, cfg.Addr)
	},
}

// watchStore logs changes of the store file, including those made by other processes.
func watchStore(ctx context.Context, inst *platform.Instance) error {
	events, err := inst.Service.Watch(ctx)
	if err != nil {
		return err
	}
	src := lifecycleadapter.NewSource(events)
	if err := src.Start(ctx); err != nil {
		return err
	}
	go func() {
		for e := range src.Events() {
			slog.Info("store changed", "event", e.String())
		}
	}()
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "Listen address")
	serveCmd.Flags().StringVar(&serveStatic, "static", ".", "Directory of the static site")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Log changes of the store file")
	serveCmd.Flags().Float64Var(&serveRate, "rate-limit", 5, "Submissions allowed per second (0 disables)")
	serveCmd.Flags().IntVar(&serveBurst, "burst", 10, "Submission burst size")
}
