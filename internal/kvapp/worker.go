package kvapp

import (
	"log"
	"sync"

	"github.com/dreamware/parasrv/internal/customer"
	"github.com/dreamware/parasrv/internal/psmsg"
	"github.com/dreamware/parasrv/internal/sarray"
)

// Worker is the request multiplexer a client uses to push and pull
// key-value batches against the server pool: KVWorker in ps-lite's
// terms. A single Worker may issue many concurrent requests; each gets
// its own timestamp and is tracked independently.
type Worker[V any] struct {
	appID      int
	customerID int
	van        Transport
	customer   *customer.Customer
	slicer     Slicer[V]
	slicerKind SlicerKind

	mu        sync.Mutex
	recvKVs   map[int64][]KVPairs[V]
	callbacks map[int64]func()
}

// NewWorker creates a Worker for the given application id and binds it to
// van. appID must be unique among the Workers and Servers registered on
// van for this process.
func NewWorker[V any](appID, customerID int, van Transport, kind SlicerKind) *Worker[V] {
	w := &Worker[V]{
		appID:      appID,
		customerID: customerID,
		van:        van,
		slicerKind: kind,
		recvKVs:    make(map[int64][]KVPairs[V]),
		callbacks:  make(map[int64]func()),
	}
	switch kind {
	case SlicerModulo:
		w.slicer = ModSlicer[V]
	default:
		w.slicer = RangeSlicer[V]
	}
	w.customer = customer.New(w.process)
	van.Register(appID, customerID, w.customer.Enqueue)
	return w
}

// SetSlicer overrides the slicing strategy used for subsequent requests.
// kind must match fn's partitioning scheme so that Pull's reassembly step
// chooses the matching merge algorithm.
func (w *Worker[V]) SetSlicer(kind SlicerKind, fn Slicer[V]) {
	w.slicerKind = kind
	w.slicer = fn
}

// Wait blocks until the request identified by ts has received a response
// from every server rank it was sent to.
func (w *Worker[V]) Wait(ts int64) {
	w.customer.WaitRequest(ts)
}

// ZPush sends a zero-copy push of keys/vals (optionally variable-width,
// via lens) tagged with cmd, and returns the request's timestamp. cb, if
// non-nil, runs once every addressed server has acknowledged the push.
func (w *Worker[V]) ZPush(keys *sarray.SArray[Key], vals *sarray.SArray[V], lens *sarray.SArray[int32], cmd int, cb func()) int64 {
	ts := w.customer.NewRequest(w.van.NumServers())
	if cb != nil {
		w.setCallback(ts, cb)
	}
	w.send(ts, true, cmd, KVPairs[V]{Keys: keys, Vals: vals, Lens: lens})
	return ts
}

// Push copies keys/vals/lens into fresh SArrays and issues a ZPush.
func (w *Worker[V]) Push(keys []Key, vals []V, lens []int32, cmd int, cb func()) int64 {
	var ls *sarray.SArray[int32]
	if lens != nil {
		ls = sarray.FromSlice(lens)
	}
	return w.ZPush(sarray.FromSlice(keys), sarray.FromSlice(vals), ls, cmd, cb)
}

// ZPull requests the values currently held for keys, writing the merged
// result into vals (and lens, for variable-width batches) once every
// addressed server has replied. cb, if non-nil, runs after the merge.
func (w *Worker[V]) ZPull(keys *sarray.SArray[Key], vals *sarray.SArray[V], lens *sarray.SArray[int32], cmd int, cb func()) int64 {
	ts := w.customer.NewRequest(w.van.NumServers())
	w.setCallback(ts, w.pullCompletion(ts, keys, vals, lens, cb))
	w.send(ts, false, cmd, KVPairs[V]{Keys: keys, Vals: sarray.Empty[V]()})
	return ts
}

// Pull is ZPull's plain-slice convenience wrapper: *vals (and *lens, if
// non-nil) are replaced with the merged result once the pull completes.
func (w *Worker[V]) Pull(keys []Key, vals *[]V, lens *[]int32, cmd int, cb func()) int64 {
	ks := sarray.FromSlice(keys)
	vs := sarray.FromSlice(*vals)
	var ls *sarray.SArray[int32]
	if lens != nil {
		ls = sarray.FromSlice(*lens)
	}
	return w.ZPull(ks, vs, ls, cmd, func() {
		*vals = vs.Data()
		if lens != nil {
			*lens = ls.Data()
		}
		if cb != nil {
			cb()
		}
	})
}

func (w *Worker[V]) setCallback(ts int64, cb func()) {
	w.mu.Lock()
	w.callbacks[ts] = cb
	w.mu.Unlock()
}

func (w *Worker[V]) send(ts int64, push bool, cmd int, kv KVPairs[V]) {
	ranges := w.van.Ranges()
	sliced := w.slicer(kv, ranges)

	skipped := 0
	for _, s := range sliced {
		if !s.Active {
			skipped++
		}
	}
	if w.customer.AddResponse(ts, skipped) {
		w.runCallback(ts)
	}

	for rank, s := range sliced {
		if !s.Active {
			continue
		}
		meta := psmsg.Meta{
			AppID:      w.appID,
			CustomerID: w.customerID,
			Sender:     w.van.MyNodeID(),
			Recver:     w.van.ServerRankToNodeID(rank),
			Timestamp:  ts,
			IsRequest:  true,
			IsPush:     push,
			Cmd:        cmd,
		}
		if err := w.van.Send(ToMessage(meta, s.Shard)); err != nil {
			log.Printf("kvapp: worker: send to %s failed: %v", meta.Recver, err)
		}
	}
}

// process is the Customer's dispatcher handler: it buffers pull response
// fragments and drives the completion count toward the threshold that
// triggers runCallback.
func (w *Worker[V]) process(msg psmsg.Message) {
	if msg.Meta.SimpleApp {
		log.Printf("kvapp: worker: dropping simple-app message from %s (out of scope)", msg.Meta.Sender)
		return
	}
	ts := msg.Meta.Timestamp
	if !msg.Meta.IsPush && len(msg.Data) > 0 {
		kv, err := FromMessage[V](msg)
		if err != nil {
			panic(err)
		}
		w.mu.Lock()
		w.recvKVs[ts] = append(w.recvKVs[ts], kv)
		w.mu.Unlock()
	}
	if w.customer.AddResponse(ts, 1) {
		w.runCallback(ts)
	}
}

func (w *Worker[V]) runCallback(ts int64) {
	w.mu.Lock()
	cb, ok := w.callbacks[ts]
	if ok {
		delete(w.callbacks, ts)
	}
	w.mu.Unlock()
	if ok && cb != nil {
		cb()
	}
	w.customer.Forget(ts)
}

func (w *Worker[V]) pullCompletion(ts int64, keys *sarray.SArray[Key], vals *sarray.SArray[V], lens *sarray.SArray[int32], userCB func()) func() {
	return func() {
		w.mu.Lock()
		frags := w.recvKVs[ts]
		delete(w.recvKVs, ts)
		w.mu.Unlock()

		switch w.slicerKind {
		case SlicerModulo:
			mergeModulo(keys.Data(), frags, vals, lens, w.van.NumServers())
		default:
			mergeRange(keys.Data(), frags, vals, lens)
		}
		if userCB != nil {
			userCB()
		}
	}
}
