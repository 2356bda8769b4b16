// Command ps-worker drives one instance of the parameter-service client
// against a running cluster of ps-server processes. Run standalone it
// performs a single push/pull round trip and prints the result, which
// doubles as a smoke test of a freshly bootstrapped cluster. Dial holds
// the bootstrap steps main uses; being in package main, it is not
// importable by other packages, and test/integration builds its workers
// with kvapp.NewWorker directly.
//
// Configuration:
//   - PS_NODE_ID: this worker's node id, used for dial-back addressing
//     of pull responses (required)
//   - PS_CLUSTER_CONFIG: path to the cluster.yaml bootstrap file
//     (default: "cluster.yaml")
//   - PS_LISTEN: local HTTP listen address for inbound responses
//     (default: ":9000")
//   - PS_SLICER: "0" for range slicing, nonzero for modulo, overriding
//     the cluster config's slicer policy
//
// Example usage:
//
//	PS_NODE_ID=worker-0 PS_LISTEN=:9000 PS_CLUSTER_CONFIG=cluster.yaml \
//	  ./ps-worker
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dreamware/parasrv/internal/kvapp"
	"github.com/dreamware/parasrv/internal/postoffice"
)

const appID = 7

var logFatal = log.Fatalf

// Dial bootstraps a Van and Worker for nodeID against the cluster
// described by cfg, optionally overriding its slicer policy, and starts
// serving inbound responses on listenAddr. Callers must call the
// returned shutdown function when done with the worker.
func Dial(cfg *postoffice.ClusterConfig, nodeID, listenAddr string, kindOverride *kvapp.SlicerKind) (*kvapp.Worker[float32], func(context.Context) error, error) {
	_, v, err := postoffice.Bootstrap(cfg, nodeID, listenAddr)
	if err != nil {
		return nil, nil, err
	}
	kind := cfg.SlicerKind()
	if kindOverride != nil {
		kind = *kindOverride
	}
	go func() {
		if err := v.Serve(); err != nil {
			log.Printf("ps-worker[%s]: listen: %v", nodeID, err)
		}
	}()
	w := kvapp.NewWorker[float32](appID, 0, v, kind)
	return w, v.Shutdown, nil
}

func main() {
	nodeID := mustGetenv("PS_NODE_ID")
	cfgPath := getenv("PS_CLUSTER_CONFIG", "cluster.yaml")
	listen := getenv("PS_LISTEN", ":9000")
	slicerOverride := getenv("PS_SLICER", "")

	cfg, err := postoffice.LoadConfig(cfgPath)
	if err != nil {
		logFatal("ps-worker[%s]: %v", nodeID, err)
	}

	var kindOverride *kvapp.SlicerKind
	if slicerOverride != "" {
		n, err := strconv.Atoi(slicerOverride)
		if err != nil {
			logFatal("ps-worker[%s]: invalid PS_SLICER: %v", nodeID, err)
		}
		kind := kvapp.SlicerRange
		if n != 0 {
			kind = kvapp.SlicerModulo
		}
		kindOverride = &kind
	}

	w, shutdown, err := Dial(cfg, nodeID, listen, kindOverride)
	if err != nil {
		logFatal("ps-worker[%s]: %v", nodeID, err)
	}

	// Wait briefly for the HTTP listener to come up before sending the
	// demonstration round trip.
	time.Sleep(50 * time.Millisecond)

	keys := []kvapp.Key{1, 2, 3}
	vals := []float32{1.0, 2.0, 3.0}
	pushTS := w.Push(keys, vals, nil, 0, nil)
	w.Wait(pushTS)

	var pulled []float32
	pullTS := w.Pull(keys, &pulled, nil, 0, nil)
	w.Wait(pullTS)
	log.Printf("ps-worker[%s]: pulled %v for keys %v", nodeID, pulled, keys)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Printf("ps-worker[%s]: shutdown error: %v", nodeID, err)
	}
	log.Printf("ps-worker[%s]: stopped", nodeID)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustGetenv(k string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	logFatal("missing env %s", k)
	return ""
}
