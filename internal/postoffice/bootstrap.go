package postoffice

import (
	"fmt"

	"github.com/dreamware/parasrv/internal/kvapp"
	"github.com/dreamware/parasrv/internal/van"
)

// SlicerKind translates a ClusterConfig's string slicer policy into the
// kvapp.SlicerKind a Worker needs.
func (cfg *ClusterConfig) SlicerKind() kvapp.SlicerKind {
	if cfg.Slicer == "modulo" {
		return kvapp.SlicerModulo
	}
	return kvapp.SlicerRange
}

// Bootstrap builds the Registry for cfg and wires a Van for the local
// node (nodeID, listening on listenAddr) with every server's address and
// the resulting range table. listenAddr may be empty for a pure worker
// process that never accepts inbound connections other than responses
// routed back to it.
func Bootstrap(cfg *ClusterConfig, nodeID, listenAddr string) (*Registry, *van.Van, error) {
	reg, err := NewRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}
	v := van.New(nodeID, listenAddr)
	for _, a := range reg.All() {
		v.SetNode(a.NodeID, a.Addr)
	}
	v.SetTopology(reg.Ranges(), reg.ServerNodeIDs())
	return reg, v, nil
}

// RequireServerAddr looks up the dial-back address a worker should have
// recorded for its own node id, failing loudly if the bootstrap config
// never named this node — a configuration error, not a transient one.
func RequireServerAddr(reg *Registry, nodeID string) (string, error) {
	for _, a := range reg.All() {
		if a.NodeID == nodeID {
			return a.Addr, nil
		}
	}
	return "", fmt.Errorf("postoffice: node %q is not listed in the cluster config", nodeID)
}
