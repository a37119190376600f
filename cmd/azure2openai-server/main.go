package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/LubyRuffy/azure2openai/auth"
	"github.com/LubyRuffy/azure2openai/backend"
	"github.com/LubyRuffy/azure2openai/config"
	"github.com/LubyRuffy/azure2openai/logging"
	"github.com/LubyRuffy/azure2openai/openaihttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var (
		listen        = flag.String("listen", "", "listen address (default: $LISTEN or 127.0.0.1:8080)")
		metricsListen = flag.String("metrics-listen", "", "prometheus listen address (default: $METRICS_LISTEN, empty disables)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *metricsListen != "" {
		cfg.MetricsListen = *metricsListen
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, JSON: cfg.Log.JSON})
	if err != nil {
		logrus.Fatalf("setup logging failed: %v", err)
	}
	defer logger.Close()
	gin.SetMode(gin.ReleaseMode)
	logger.BridgeGin()

	if err := run(cfg, logger); err != nil {
		logger.Errorf("server exited: %v", err)
		_ = logger.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := auth.NewStore(cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return err
	}
	defer auth.Close(store)
	if err := auth.Ping(ctx, store); err != nil {
		return err
	}

	invoker, err := backend.NewInvoker(backend.InvokerConfig{
		ResourceName: cfg.ResourceName,
		APIKey:       cfg.AzureAPIKey,
		APIVersion:   cfg.APIVersion,
		Endpoint:     cfg.Endpoint,
	})
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := openaihttp.NewMetrics(registry)
	if err != nil {
		return err
	}

	engine, err := openaihttp.NewEngine(openaihttp.Config{
		AdminSecret: cfg.AccessToken,
		Models:      cfg.ModelTable(),
		Store:       store,
		Invoker:     invoker,
		StreamPace:  cfg.StreamPace,
		Metrics:     metrics,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	servers := []*http.Server{{
		Addr:              cfg.Listen,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsListen,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
		logger.Infof("metrics listening on http://%s/metrics", cfg.MetricsListen)
	}

	logger.WithFields(logrus.Fields{
		"store":  cfg.StoreDriver,
		"models": cfg.ModelTable().Len(),
	}).Infof("azure2openai server listening on http://%s", cfg.Listen)
	logger.Infof("try: curl http://%s/v1/models -H 'Authorization: Bearer <key>'", addrForLocalClient(cfg.Listen))

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

// addrForLocalClient 把监听地址转换为本机客户端可直接访问的地址（通配地址替换为 127.0.0.1）。
func addrForLocalClient(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
