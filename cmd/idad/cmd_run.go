package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iov-one/ida/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	var serve bool
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a scenario and print the report",
		Long: `Run loads the scenario genesis, unless the store was already initialized,
and delivers all steps in order. The report lists the result and the events of
every step followed by the final balances of all accounts involved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := flags.config()
			if err != nil {
				return err
			}
			scenario, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), conf.LogLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var reg *prometheus.Registry
			if conf.MetricsAddr != "" {
				reg = prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector())
				srv := serveMetrics(conf.MetricsAddr, reg, logger)
				defer shutdown(srv, logger)
			}

			n, err := newNode(ctx, conf, logger, registerer(reg))
			if err != nil {
				return err
			}
			defer n.close()

			report, err := runScenario(ctx, n, scenario, logger)
			if report != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if eerr := enc.Encode(report); eerr != nil {
					return errors.Append(err, eerr)
				}
			}
			if err != nil {
				return err
			}
			if serve && reg != nil {
				logger.Info("serving metrics until interrupted", "addr", conf.MetricsAddr)
				<-ctx.Done()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&serve, "serve", false, "keep serving metrics after the scenario completes")
	return cmd
}

func runScenario(ctx context.Context, n *node, s *Scenario, logger log.Logger) (*Report, error) {
	opts, err := s.Genesis.Options()
	if err != nil {
		return nil, err
	}
	switch _, err := n.ledger.InitGenesis(opts); {
	case err == nil:
	case errors.ErrState.Is(err):
		logger.Info("store already initialized, genesis skipped")
	default:
		return nil, err
	}
	return s.Run(ctx, n)
}

// registerer avoids passing a typed nil registry as an interface.
func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}

func serveMetrics(addr string, reg *prometheus.Registry, logger log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server", "err", err)
		}
	}()
	return srv
}

func shutdown(srv *http.Server, logger log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("metrics server shutdown", "err", err)
	}
}
