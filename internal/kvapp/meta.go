package kvapp

// KVMeta is the request metadata a Server's handler sees, stripped of the
// transport-level field (AppID) that the handler never needs to act on
// directly. A message with its SimpleApp flag set never reaches a
// handler as KVMeta at all; Server.process and Worker.process intercept
// it before decoding.
type KVMeta struct {
	Cmd        int
	Push       bool
	Sender     string
	Timestamp  int64
	CustomerID int
}
