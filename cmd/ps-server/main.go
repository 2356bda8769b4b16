// Command ps-server runs one server rank of the parameter service: it
// owns a slice of the key space (per the cluster's range table) and
// answers push/pull requests against it with a summation handler, the
// Go analogue of ps-lite's KVServerDefaultHandle.
//
// Configuration:
//   - PS_NODE_ID: this server's node id, must match an entry in the
//     cluster config (required)
//   - PS_CLUSTER_CONFIG: path to the cluster.yaml bootstrap file
//     (default: "cluster.yaml")
//   - PS_LISTEN: local HTTP listen address (default: ":9090")
//   - PS_VERBOSE: diagnostic logging level override, 0/1/2 (default:
//     whatever the cluster config says)
//
// Example usage:
//
//	PS_NODE_ID=server-0 PS_LISTEN=:9090 PS_CLUSTER_CONFIG=cluster.yaml \
//	  ./ps-server
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
	"github.com/dreamware/parasrv/internal/partition"
	"github.com/dreamware/parasrv/internal/postoffice"
	"github.com/dreamware/parasrv/internal/sarray"
)

// appID is the application id this binary's worker and server agree on
// out of band; a real deployment would make this configurable per
// workload, but the reference handler only ever runs one.
const appID = 7

// logFatal is a variable to allow mocking log.Fatal in tests.
var logFatal = log.Fatalf

func main() {
	nodeID := mustGetenv("PS_NODE_ID")
	cfgPath := getenv("PS_CLUSTER_CONFIG", "cluster.yaml")
	listen := getenv("PS_LISTEN", ":9090")
	verboseOverride := getenv("PS_VERBOSE", "")

	cfg, err := postoffice.LoadConfig(cfgPath)
	if err != nil {
		logFatal("ps-server[%s]: %v", nodeID, err)
	}
	if verboseOverride != "" {
		v, err := strconv.Atoi(verboseOverride)
		if err != nil {
			logFatal("ps-server[%s]: invalid PS_VERBOSE: %v", nodeID, err)
		}
		cfg.Verbose = v
	}

	reg, v, err := postoffice.Bootstrap(cfg, nodeID, listen)
	if err != nil {
		logFatal("ps-server[%s]: %v", nodeID, err)
	}

	rank := -1
	for _, a := range reg.All() {
		if a.NodeID == nodeID {
			rank = a.Rank
		}
	}
	if rank == -1 {
		logFatal("ps-server[%s]: node id is not a server rank in %s", nodeID, cfgPath)
	}
	rng := reg.Ranges().At(rank)
	part := partition.New[float32](rank, rng)

	kvapp.NewServer[float32](appID, v, func(req kvapp.KVMeta, data kvapp.KVPairs[float32], respond func(kvapp.KVPairs[float32])) {
		handleRequest(part, req, data, respond)
	})

	if cfg.Verbose > 0 {
		log.Printf("ps-server[%s]: rank %d owns %v, %d servers total", nodeID, rank, rng, reg.NumServers())
	}

	go func() {
		log.Printf("ps-server[%s]: listening on %s", nodeID, listen)
		if err := v.Serve(); err != nil {
			logFatal("ps-server[%s]: listen: %v", nodeID, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := v.Shutdown(ctx); err != nil {
		log.Printf("ps-server[%s]: shutdown error: %v", nodeID, err)
	}
	log.Printf("ps-server[%s]: stopped", nodeID)
}

// handleRequest is KVServerDefaultHandle's summation policy: a push adds
// the pushed value onto whatever is on file, zero if the key has never
// been seen; a pull reads it back unchanged.
func handleRequest(part *partition.Partition[float32], req kvapp.KVMeta, data kvapp.KVPairs[float32], respond func(kvapp.KVPairs[float32])) {
	keys := data.Keys.Data()
	for _, k := range keys {
		if !part.OwnsKey(k) {
			logFatal("ps-server: received key %d outside of owned range %v", k, part.Range)
		}
	}

	if req.Push {
		vals := data.Vals.Data()
		for i, k := range keys {
			part.Push(k, vals[i], addFloat32)
		}
		respond(kvapp.KVPairs[float32]{})
		return
	}

	vals := make([]float32, len(keys))
	for i, k := range keys {
		vals[i] = part.Pull(k)
	}
	respond(kvapp.KVPairs[float32]{
		Keys: data.Keys,
		Vals: sarray.FromSlice(vals),
	})
}

func addFloat32(a, b float32) float32 { return a + b }

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
