// Package wire implements the fixed-width little-endian codec used to
// flatten SArray segments into the byte-slice data segments carried by a
// Message, the Go rendition of ps-lite's raw memcpy-based wire format.
package wire

import (
	"bytes"
	"encoding/binary"
)

// EncodeNums flattens a slice of fixed-size numeric elements into its
// little-endian byte representation.
func EncodeNums[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	buf := new(bytes.Buffer)
	buf.Grow(len(s) * elemSize[T]())
	if err := binary.Write(buf, binary.LittleEndian, s); err != nil {
		// Only fixed-size numeric types are ever passed here; a failure
		// indicates a caller bug, not a runtime condition to recover from.
		panic("wire: encode: " + err.Error())
	}
	return buf.Bytes()
}

// DecodeNums reconstructs a slice of fixed-size numeric elements from its
// little-endian byte representation. The element count is derived from
// len(b) / sizeof(T); b whose length is not a multiple of sizeof(T) is a
// malformed message and panics.
func DecodeNums[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	size := elemSize[T]()
	if len(b)%size != 0 {
		panic("wire: decode: byte length not a multiple of element size")
	}
	out := make([]T, len(b)/size)
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, out); err != nil {
		panic("wire: decode: " + err.Error())
	}
	return out
}

func elemSize[T any]() int {
	var zero T
	n := binary.Size(zero)
	if n <= 0 {
		panic("wire: unsupported element type for fixed-width encoding")
	}
	return n
}
