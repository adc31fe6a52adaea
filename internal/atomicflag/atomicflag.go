// Package atomicflag provides small atomic primitives used to track
// connection and result-set lifecycle state without taking a lock.
package atomicflag

import "sync/atomic"

// noCopy may be embedded into structs which must not be copied after first
// use. See https://github.com/golang/go/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock() {}

// Bool is a wrapper around uint32 for atomic boolean access.
type Bool struct {
	_noCopy noCopy
	value   uint32
}

// IsSet reports whether the flag is currently true.
func (b *Bool) IsSet() bool {
	return atomic.LoadUint32(&b.value) > 0
}

// Set sets the flag regardless of its previous value.
func (b *Bool) Set(value bool) {
	if value {
		atomic.StoreUint32(&b.value, 1)
	} else {
		atomic.StoreUint32(&b.value, 0)
	}
}

// TrySet sets the flag and reports whether the value actually changed.
func (b *Bool) TrySet(value bool) bool {
	if value {
		return atomic.SwapUint32(&b.value, 1) == 0
	}
	return atomic.SwapUint32(&b.value, 0) > 0
}

// Error is a wrapper for atomically accessed error values.
type Error struct {
	_noCopy noCopy
	value   atomic.Value
}

// Set stores the error value. value must not be nil.
func (e *Error) Set(value error) {
	e.value.Store(value)
}

// Value returns the currently stored error, or nil if none was set.
func (e *Error) Value() error {
	if v := e.value.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Counter is a wrapper around uint64 for atomic generation counters, used to
// invalidate borrowed rows whenever the connection's read buffer advances.
type Counter struct {
	_noCopy noCopy
	value   uint64
}

// Next increments the counter and returns the new value.
func (c *Counter) Next() uint64 {
	return atomic.AddUint64(&c.value, 1)
}

// Load returns the current value without mutating it.
func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}
