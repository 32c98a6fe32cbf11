// Package xatomic is the streaming core's thin re-export of
// go.uber.org/atomic, mirroring the teacher's own 3rdparty/atomic shim
// (imported in transport/send.go as
// "github.com/NVIDIA/aistore/3rdparty/atomic" and used for session
// state, refcounts, and Stream.Stats). Keeping the indirection means a
// future swap of the underlying atomic package touches one file.
package xatomic

import "go.uber.org/atomic"

type (
	Int64 = atomic.Int64
	Bool  = atomic.Bool
)

func NewInt64(v int64) *Int64 { return atomic.NewInt64(v) }
func NewBool(v bool) *Bool    { return atomic.NewBool(v) }
