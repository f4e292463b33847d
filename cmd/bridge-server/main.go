// Command bridge-server exposes the schema bridge to hosts over framed TCP
// and ZeroMQ, with Prometheus metrics on the side.
//
// The host contract assumes field proxies are registered before schemas are
// built from them, so the server seeds its registry from the -fields flag,
// e.g. -fields "id:int64,name:string,price:float64".
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/arrowmex/arrowmex-bridge/field"
	"github.com/arrowmex/arrowmex-bridge/metrics"
	"github.com/arrowmex/arrowmex-bridge/network"
	"github.com/arrowmex/arrowmex-bridge/proxy"
)

var fieldTypes = map[string]arrow.DataType{
	"bool":    arrow.FixedWidthTypes.Boolean,
	"int32":   arrow.PrimitiveTypes.Int32,
	"int64":   arrow.PrimitiveTypes.Int64,
	"float32": arrow.PrimitiveTypes.Float32,
	"float64": arrow.PrimitiveTypes.Float64,
	"string":  arrow.BinaryTypes.String,
	"binary":  arrow.BinaryTypes.Binary,
}

func main() {
	tcpAddr := flag.String("tcp", ":50052", "framed TCP listen address")
	zmqAddr := flag.String("zmq", "", "ZeroMQ listen address, e.g. tcp://127.0.0.1:5555 (disabled when empty)")
	metricsAddr := flag.String("metrics", ":9091", "Prometheus metrics listen address (disabled when empty)")
	fieldSpec := flag.String("fields", "", "comma-separated name:type pairs to pre-register as field proxies")
	showToken := flag.Bool("show-token", false, "log the active auth token at startup")
	flag.Parse()

	registry := proxy.NewRegistry()
	auth := network.NewAuthenticatorFromEnv()
	if banner := authBanner(auth, *showToken); banner != "" {
		log.Print(banner)
	}

	if *fieldSpec != "" {
		if err := seedFields(registry, *fieldSpec); err != nil {
			log.Fatalf("Failed to parse -fields: %v", err)
		}
	}

	handler := network.NewHandler(registry, auth, metrics.Default)

	server := network.NewServer(handler)
	log.Printf("Starting bridge server on %s...", *tcpAddr)
	if err := server.StartAsync(*tcpAddr); err != nil {
		log.Fatalf("Failed to start TCP server: %v", err)
	}

	var endpoint *network.ZmqEndpoint
	if *zmqAddr != "" {
		endpoint = network.NewZmqEndpoint(*zmqAddr, handler)
		log.Printf("Starting ZeroMQ endpoint on %s...", *zmqAddr)
		if err := endpoint.Start(); err != nil {
			log.Fatalf("Failed to start ZeroMQ endpoint: %v", err)
		}
	}

	var metricsServer *metrics.Server
	if *metricsAddr != "" {
		metricsServer = metrics.NewServer(*metricsAddr)
		log.Printf("Serving metrics on %s/metrics", *metricsAddr)
		metricsServer.StartAsync()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	server.Stop()
	if endpoint != nil {
		endpoint.Stop()
	}
	if metricsServer != nil {
		_ = metricsServer.Stop()
	}
	log.Println("Bridge server stopped.")
}

// authBanner describes the authentication state for the startup log. The
// token itself is only included when explicitly requested.
func authBanner(a *network.Authenticator, showToken bool) string {
	if !a.Enabled() {
		return ""
	}
	if showToken {
		return fmt.Sprintf("Authentication enabled (token: %s)", a.Token())
	}
	return "Authentication enabled"
}

// seedFields registers one field proxy per name:type pair and logs the
// identifier the host should use in make calls.
func seedFields(registry *proxy.Registry, list string) error {
	for _, pair := range strings.Split(list, ",") {
		name, typeName, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" {
			return fmt.Errorf("malformed field definition %q, want name:type", pair)
		}
		dt, ok := fieldTypes[typeName]
		if !ok {
			return fmt.Errorf("unknown field type %q in %q", typeName, pair)
		}

		id := registry.Manage(field.New(arrow.Field{Name: name, Type: dt, Nullable: true}))
		log.Printf("Registered field proxy %d: %s (%s)", id, name, typeName)
	}
	return nil
}
