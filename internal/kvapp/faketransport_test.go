package kvapp

import (
	"fmt"
	"sync"

	"github.com/dreamware/parasrv/internal/psmsg"
	"github.com/dreamware/parasrv/internal/rangetable"
)

// fakeNetwork wires a handful of fakeTransports together in-process, for
// tests that need real Send/Register round trips without an HTTP server.
type fakeNetwork struct {
	mu    sync.Mutex
	nodes map[string]*fakeTransport
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{nodes: make(map[string]*fakeTransport)}
}

func (n *fakeNetwork) node(id string, ranges *rangetable.RangeTable, serverRanks []string) *fakeTransport {
	t := &fakeTransport{
		net:         n,
		nodeID:      id,
		ranges:      ranges,
		serverRanks: serverRanks,
		routes:      make(map[int]func(psmsg.Message)),
	}
	n.mu.Lock()
	n.nodes[id] = t
	n.mu.Unlock()
	return t
}

type fakeTransport struct {
	net         *fakeNetwork
	nodeID      string
	ranges      *rangetable.RangeTable
	serverRanks []string

	mu     sync.Mutex
	routes map[int]func(psmsg.Message)
}

func (t *fakeTransport) Ranges() *rangetable.RangeTable        { return t.ranges }
func (t *fakeTransport) NumServers() int                       { return len(t.serverRanks) }
func (t *fakeTransport) ServerRankToNodeID(rank int) string     { return t.serverRanks[rank] }
func (t *fakeTransport) MyNodeID() string                      { return t.nodeID }

func (t *fakeTransport) Register(appID, customerID int, handle func(psmsg.Message)) {
	t.mu.Lock()
	t.routes[appID] = handle
	t.mu.Unlock()
}

func (t *fakeTransport) Send(msg psmsg.Message) error {
	t.net.mu.Lock()
	dest, ok := t.net.nodes[msg.Meta.Recver]
	t.net.mu.Unlock()
	if !ok {
		return fmt.Errorf("fake transport: unknown node %q", msg.Meta.Recver)
	}
	dest.mu.Lock()
	handle, ok := dest.routes[msg.Meta.AppID]
	dest.mu.Unlock()
	if !ok {
		return fmt.Errorf("fake transport: no route for app %d on %q", msg.Meta.AppID, dest.nodeID)
	}
	go handle(msg)
	return nil
}
