// Command cat-gateway runs the CAT validation and denylist-management HTTP
// service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof" // registers the /debug/pprof handlers on DefaultServeMux
	"os"

	"github.com/jmhodges/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/streamcat/authgateway/asnresolver"
	"github.com/streamcat/authgateway/catpipeline"
	"github.com/streamcat/authgateway/denylist"
	"github.com/streamcat/authgateway/gatewayfe"
	"github.com/streamcat/authgateway/kv"
	"github.com/streamcat/authgateway/metrics"
	"github.com/streamcat/authgateway/metrics/measured_http"
)

func main() {
	configPath := flag.String("config", "", "Path to the JSON config file")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "cat-gateway: -config is required")
		os.Exit(1)
	}

	var c Config
	if err := loadConfig(*configPath, &c); err != nil {
		fmt.Fprintf(os.Stderr, "cat-gateway: loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cat-gateway: building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	tp := trace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	otel.SetTracerProvider(tp)

	stats := metrics.NewPromScope(prometheus.DefaultRegisterer, "cat_gateway")
	clk := clock.Default()

	if c.DebugAddr != "" {
		go debugServer(logger, c.DebugAddr)
	}

	store := denylist.NewStore(kv.NewRedisStore(c.Redis.Addr))
	pipeline := catpipeline.NewPipeline(store)
	resolver := asnresolver.NewHTTPResolver(c.ASNResolver.BaseURL)

	gw := &gatewayfe.GatewayFrontEnd{
		Pipeline:          pipeline,
		Store:             store,
		Resolver:          resolver,
		SigningKey:        []byte(c.SigningKey),
		EvaluateASNBlocks: c.EvaluateASNBlocks,
		SubjectRequired:   c.SubjectRequired,
		Stats:             stats,
		Log:               logger,
		Clk:               clk,
		RequestTimeout:    c.RequestTimeout.Duration,
	}

	handler := otelhttp.NewHandler(measured_http.New(gw.Handler(), clk), "cat-gateway")

	logger.Info("cat-gateway listening", zap.String("address", c.ListenAddress))
	if err := http.ListenAndServe(c.ListenAddress, handler); err != nil {
		logger.Fatal("cat-gateway server exited", zap.Error(err))
	}
}

// debugServer serves pprof profiling and the Prometheus scrape endpoint on
// a listener separate from the gateway's public routes, the way boulder's
// cmd.DebugServer keeps /debug/pprof and /metrics off a service's actual
// API surface.
func debugServer(logger *zap.Logger, addr string) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("cat-gateway: unable to start debug server", zap.String("address", addr), zap.Error(err))
	}
	http.Handle("/metrics", promhttp.Handler())
	if err := http.Serve(ln, nil); err != nil {
		logger.Fatal("cat-gateway: debug server exited", zap.Error(err))
	}
}

func loadConfig(path string, c *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(c)
}
