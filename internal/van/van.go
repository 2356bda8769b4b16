// Package van implements the HTTP transport that carries Messages between
// workers and servers: the Go counterpart of ps-lite's Van. A Van knows
// the address of every node in the cluster and the current range-table
// partitioning of the key space; it does not know anything about keys,
// values, or slicing.
package van

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dreamware/parasrv/internal/psmsg"
	"github.com/dreamware/parasrv/internal/psnet"
	"github.com/dreamware/parasrv/internal/rangetable"
)

type route struct {
	customerID int
	handle     func(psmsg.Message)
}

// Van is a concrete kvapp.Transport backed by net/http. Messages are
// exchanged as JSON-encoded POSTs to each peer's /ps/msg endpoint.
type Van struct {
	nodeID string
	addr   string

	mu          sync.RWMutex
	nodeAddrs   map[string]string
	ranges      *rangetable.RangeTable
	serverRanks []string
	routes      map[int]route

	srv *http.Server
}

// New creates a Van for the local node nodeID, which will listen on
// listenAddr once Serve is called.
func New(nodeID, listenAddr string) *Van {
	return &Van{
		nodeID:    nodeID,
		addr:      listenAddr,
		nodeAddrs: make(map[string]string),
		routes:    make(map[int]route),
	}
}

// SetNode records the HTTP address other nodes should use to reach
// nodeID.
func (v *Van) SetNode(nodeID, addr string) {
	v.mu.Lock()
	v.nodeAddrs[nodeID] = addr
	v.mu.Unlock()
}

// SetTopology installs the key-space partitioning and the node id that
// owns each rank. It must be called before any Worker or Server issues
// requests through this Van, and must not change afterward.
func (v *Van) SetTopology(ranges *rangetable.RangeTable, serverRanks []string) {
	v.mu.Lock()
	v.ranges = ranges
	v.serverRanks = append([]string(nil), serverRanks...)
	v.mu.Unlock()
}

// Ranges implements kvapp.Transport.
func (v *Van) Ranges() *rangetable.RangeTable {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ranges
}

// NumServers implements kvapp.Transport.
func (v *Van) NumServers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.serverRanks)
}

// ServerRankToNodeID implements kvapp.Transport.
func (v *Van) ServerRankToNodeID(rank int) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.serverRanks[rank]
}

// MyNodeID implements kvapp.Transport.
func (v *Van) MyNodeID() string { return v.nodeID }

// Register implements kvapp.Transport.
func (v *Van) Register(appID, customerID int, handle func(psmsg.Message)) {
	v.mu.Lock()
	v.routes[appID] = route{customerID: customerID, handle: handle}
	v.mu.Unlock()
}

// Send implements kvapp.Transport, POSTing msg to the node named by
// msg.Meta.Recver.
func (v *Van) Send(msg psmsg.Message) error {
	v.mu.RLock()
	addr, ok := v.nodeAddrs[msg.Meta.Recver]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("van: unknown node %q", msg.Meta.Recver)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return psnet.PostJSON(ctx, addr+"/ps/msg", msg, nil)
}

func (v *Van) handleMsg(w http.ResponseWriter, r *http.Request) {
	var msg psmsg.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "malformed message", http.StatusBadRequest)
		return
	}
	v.mu.RLock()
	reg, ok := v.routes[msg.Meta.AppID]
	v.mu.RUnlock()
	if !ok {
		http.Error(w, fmt.Sprintf("no customer registered for app %d", msg.Meta.AppID), http.StatusNotFound)
		return
	}
	reg.handle(msg)
	w.WriteHeader(http.StatusNoContent)
}

// Serve starts the Van's HTTP listener and blocks until it stops.
func (v *Van) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ps/msg", v.handleMsg)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	srv := &http.Server{
		Addr:              v.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	v.mu.Lock()
	v.srv = srv
	v.mu.Unlock()
	return srv.ListenAndServe()
}

// Shutdown gracefully stops the Van's HTTP listener.
func (v *Van) Shutdown(ctx context.Context) error {
	v.mu.RLock()
	srv := v.srv
	v.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
