// Package props answers typed device property queries.
//
// Every query walks an ordered chain of stages and takes the first answer:
// the active profile's overrides, then the device's static table, then the
// base implementation. A stage that has nothing to say about a property
// passes it on.
package props

import "github.com/teslashibe/go-hmdbridge/pkg/vr"

// Result is a property value with its legacy error code.
type Result[T any] struct {
	Value T
	Err   vr.TrackedPropertyError
}

// Value answers with v and no error.
func Value[T any](v T) Result[T] {
	return Result[T]{Value: v, Err: vr.PropErrSuccess}
}

// Stage answers a property query, or reports false to defer to the next
// stage.
type Stage[T any] func(prop vr.TrackedDeviceProperty) (Result[T], bool)

// Chain is an ordered list of stages.
type Chain[T any] []Stage[T]

// Resolve returns the first stage's answer. A property no stage knows
// resolves to the zero value with PropErrUnknownProperty.
func (c Chain[T]) Resolve(prop vr.TrackedDeviceProperty) Result[T] {
	for _, stage := range c {
		if stage == nil {
			continue
		}
		if r, ok := stage(prop); ok {
			return r
		}
	}
	return Result[T]{Err: vr.PropErrUnknownProperty}
}

// Table is a stage backed by a fixed map.
func Table[T any](values map[vr.TrackedDeviceProperty]T) Stage[T] {
	return func(prop vr.TrackedDeviceProperty) (Result[T], bool) {
		v, ok := values[prop]
		if !ok {
			return Result[T]{}, false
		}
		return Value(v), true
	}
}

// CopyString writes s into buf as a NUL-terminated string and returns the
// size needed to hold it, terminator included. An empty buf only queries
// the size. When buf is too small it receives an empty string and the
// returned error is PropErrBufferTooSmall.
func CopyString(buf []byte, s string) (uint32, vr.TrackedPropertyError) {
	size := uint32(len(s) + 1)
	if len(buf) == 0 {
		return size, vr.PropErrSuccess
	}
	if len(buf) < len(s)+1 {
		buf[0] = 0
		return size, vr.PropErrBufferTooSmall
	}
	copy(buf, s)
	buf[len(s)] = 0
	return size, vr.PropErrSuccess
}
