package kvapp

import (
	"fmt"

	"github.com/dreamware/parasrv/internal/psmsg"
	"github.com/dreamware/parasrv/internal/sarray"
	"github.com/dreamware/parasrv/internal/wire"
)

// ToMessage flattens kv into msg.Data. An empty batch produces a Message
// with no Data segments, matching the push/pull acknowledgements that
// carry meta only.
func ToMessage[V any](meta psmsg.Meta, kv KVPairs[V]) psmsg.Message {
	msg := psmsg.Message{Meta: meta}
	if kv.Keys == nil || kv.Keys.Size() == 0 {
		return msg
	}
	msg.Data = append(msg.Data, wire.EncodeNums(kv.Keys.Data()))
	msg.Data = append(msg.Data, wire.EncodeNums(kv.Vals.Data()))
	if kv.Lens != nil && kv.Lens.Size() > 0 {
		msg.Data = append(msg.Data, wire.EncodeNums(kv.Lens.Data()))
	}
	return msg
}

// FromMessage reconstructs a KVPairs batch from a Message's Data segments.
// A Message with no Data yields a zero-value KVPairs. Any other segment
// count is malformed, mirroring KVServer::Process's CHECK on msg.data.size().
func FromMessage[V any](msg psmsg.Message) (KVPairs[V], error) {
	n := len(msg.Data)
	if n == 0 {
		return KVPairs[V]{}, nil
	}
	if n != 2 && n != 3 {
		return KVPairs[V]{}, fmt.Errorf("kvapp: malformed message: got %d data segments, want 2 or 3", n)
	}
	keys := wire.DecodeNums[Key](msg.Data[0])
	vals := wire.DecodeNums[V](msg.Data[1])
	kv := KVPairs[V]{Keys: sarray.Adopt(keys), Vals: sarray.Adopt(vals)}
	if n == 3 {
		lens := wire.DecodeNums[int32](msg.Data[2])
		if len(lens) != len(keys) {
			return KVPairs[V]{}, fmt.Errorf("kvapp: lens length %d does not match keys length %d", len(lens), len(keys))
		}
		kv.Lens = sarray.Adopt(lens)
	}
	return kv, nil
}
