package kvapp

import (
	"github.com/dreamware/parasrv/internal/psmsg"
	"github.com/dreamware/parasrv/internal/rangetable"
)

// Transport is the subset of Van's behavior that a Worker or Server needs:
// key-space topology, message delivery, and the ability to register as
// the local handler for an application id. It is defined here, not in
// package van, so that van need not import kvapp.
type Transport interface {
	// Ranges returns the current server-rank partitioning of the key
	// space. It must not change during the lifetime of a Worker or Server
	// bound to this Transport.
	Ranges() *rangetable.RangeTable
	// NumServers returns the number of server ranks, equal to Ranges().Len().
	NumServers() int
	// ServerRankToNodeID resolves a rank to the node id that owns it.
	ServerRankToNodeID(rank int) string
	// MyNodeID returns the node id of the local process.
	MyNodeID() string
	// Send delivers msg to the node named by msg.Meta.Recver.
	Send(msg psmsg.Message) error
	// Register installs handle as the local delivery target for every
	// message whose Meta.AppID matches appID.
	Register(appID, customerID int, handle func(psmsg.Message))
}
