package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rushteam/reviewkit/pkg/logging"
	"github.com/rushteam/reviewkit/recommend"
	"github.com/rushteam/reviewkit/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the data sets and serve the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := appConfig
		if flagAddr != "" {
			cfg.Server.Addr = flagAddr
		}
		log := logging.Component("serve")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := newStore(ctx, cfg)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close()
		}

		engine, err := newEngine(cfg, st)
		if err != nil {
			return err
		}

		holder, loader, err := loadSnapshot(ctx, cfg)
		if err != nil {
			return err
		}
		go loader.Watch(ctx, holder, sources(cfg), cfg.Data.Refresh)

		cached := recommend.NewCachedRecommender(engine, st, cfg.Cache.TTL, logging.Component("cache"))
		srv := server.New(holder, cached, logging.Component("server"))

		log.Info().Str("addr", cfg.Server.Addr).Strs("pipeline", engine.Pipeline().Names()).Msg("starting reviewkit")
		return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides server.addr)")
}
