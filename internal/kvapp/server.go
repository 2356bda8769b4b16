package kvapp

import (
	"log"

	"github.com/dreamware/parasrv/internal/customer"
	"github.com/dreamware/parasrv/internal/psmsg"
)

// Handler processes one incoming request for a Server. It receives the
// request's metadata and payload and must call Respond exactly once (even
// for push requests, which typically respond with an empty KVPairs) so
// the worker's completion count advances.
type Handler[V any] func(meta KVMeta, data KVPairs[V], respond func(KVPairs[V]))

// Server is the request demultiplexer that answers a worker pool's push
// and pull requests: KVServer in ps-lite's terms. It holds no state of
// its own beyond the dispatch machinery; all key-value storage lives in
// the Handler supplied to NewServer.
type Server[V any] struct {
	appID    int
	van      Transport
	customer *customer.Customer
	handler  Handler[V]
}

// NewServer creates a Server for the given application id, bound to van,
// dispatching every request to handler.
func NewServer[V any](appID int, van Transport, handler Handler[V]) *Server[V] {
	s := &Server[V]{appID: appID, van: van, handler: handler}
	s.customer = customer.New(s.process)
	// The server's own customer id conventionally equals its app id,
	// mirroring KVServer's `new Customer(app_id, app_id, ...)`.
	van.Register(appID, appID, s.customer.Enqueue)
	return s
}

func (s *Server[V]) process(msg psmsg.Message) {
	if msg.Meta.SimpleApp {
		log.Printf("kvapp: server: dropping simple-app message from %s (out of scope)", msg.Meta.Sender)
		return
	}
	req := KVMeta{
		Cmd:        msg.Meta.Cmd,
		Push:       msg.Meta.IsPush,
		Sender:     msg.Meta.Sender,
		Timestamp:  msg.Meta.Timestamp,
		CustomerID: msg.Meta.CustomerID,
	}
	var data KVPairs[V]
	if len(msg.Data) > 0 {
		kv, err := FromMessage[V](msg)
		if err != nil {
			panic(err)
		}
		data = kv
	}
	if s.handler == nil {
		panic("kvapp: server: no request handler registered")
	}
	s.handler(req, data, func(res KVPairs[V]) { s.respond(req, res) })
}

func (s *Server[V]) respond(req KVMeta, res KVPairs[V]) {
	meta := psmsg.Meta{
		AppID:      s.appID,
		CustomerID: req.CustomerID,
		Sender:     s.van.MyNodeID(),
		Recver:     req.Sender,
		Timestamp:  req.Timestamp,
		IsRequest:  false,
		IsPush:     req.Push,
		Cmd:        req.Cmd,
	}
	if err := s.van.Send(ToMessage(meta, res)); err != nil {
		log.Printf("kvapp: server: response to %s failed: %v", meta.Recver, err)
	}
}
