// Command buttplugd serves the Buttplug websocket protocol: one
// handshake/device-manager session per connection, optionally backed
// by a Bluetooth LE communication manager.
//
// Usage:
//
//	go run ./cmd/buttplugd                       # listen on :12345
//	go run ./cmd/buttplugd -addr :9999 -ble
//	go build -o buttplugd ./cmd/buttplugd && ./buttplugd
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	blelib "github.com/go-ble/ble"

	"github.com/nonpolynomial/buttplug-go/comm/ble"
	"github.com/nonpolynomial/buttplug-go/device"
	"github.com/nonpolynomial/buttplug-go/observability"
	"github.com/nonpolynomial/buttplug-go/protocols"
	"github.com/nonpolynomial/buttplug-go/server"
)

func main() {
	addr := flag.String("addr", ":12345", "websocket listen address")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus /metrics listen address, empty to disable")
	maxPing := flag.Duration("max-ping", server.DefaultMaxPing, "client ping interval before devices are stopped and a ping timeout error is sent")
	useBLE := flag.Bool("ble", false, "scan for and connect to BLE peripherals")
	otlpEndpoint := flag.String("otlp-endpoint", "", "OTLP/gRPC trace collector endpoint, empty to disable tracing")
	flag.Parse()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	if *otlpEndpoint != "" {
		shutdown, err := observability.InitTracer(context.Background(), server.Name, *otlpEndpoint)
		if err != nil {
			log.Fatalf("buttplugd: initializing tracer: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Printf("buttplugd: tracer shutdown: %v", err)
			}
		}()
	}

	protocolRegistry := map[string]device.Creator{
		"lovehoney-desire": protocols.NewLovehoneyDesireCreator(metrics),
	}

	handler := server.NewWSHandler(server.Config{
		MaxPingTime: *maxPing,
		Protocols:   protocolRegistry,
		Metrics:     metrics,
	})

	if *useBLE {
		handler.OnSession = func(s *server.Session) {
			mgr, err := newBLECentralManager()
			if err != nil {
				log.Printf("buttplugd: BLE unavailable: %v", err)
				return
			}
			if err := s.Manager().AddCommManager(ble.NewCentralManagerBuilder(mgr)); err != nil {
				log.Printf("buttplugd: registering BLE comm manager: %v", err)
			}
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/", handler)

	httpServer := &http.Server{Addr: *addr, Handler: mux}

	if *metricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsServer := &http.Server{Addr: *metricsAddr, Handler: metricsMux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("buttplugd: metrics server: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(ctx)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("buttplugd: listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("buttplugd: %v", err)
		}
	}()

	sig := <-sigCh
	log.Printf("buttplugd: received %s, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("buttplugd: shutdown: %v", err)
	}
}

// lovehoneyDesireEndpoints maps the Generic/LovehoneyDesire write
// endpoint to the HM-10-style UART characteristic most cheap BLE
// vibrators of this era expose. A deployment targeting different
// hardware supplies its own ble.Resolver instead of this placeholder.
var lovehoneyDesireEndpoints = ble.EndpointMap{
	device.Tx: blelib.MustParse("0000ffe1-0000-1000-8000-00805f9b34fb"),
}

func newBLECentralManager() (*ble.CentralManager, error) {
	dev, err := newBLEDevice()
	if err != nil {
		return nil, err
	}
	resolver := ble.ResolverFunc(func(localName string) (ble.EndpointMap, bool) {
		if !strings.HasPrefix(localName, "Lovehoney Desire") {
			return nil, false
		}
		return lovehoneyDesireEndpoints, true
	})
	return ble.NewCentralManager(ble.Config{
		Name:     "ble",
		Device:   dev,
		Resolver: resolver,
		ScanFor:  30 * time.Second,
	}), nil
}
