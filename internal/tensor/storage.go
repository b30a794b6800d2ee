package tensor

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/x448/float16"
)

// Storage is a reference-counted block of elements of one data type on one
// device. Views share a Storage; writes through any view are visible to all
// of them. The count starts at 1 for the allocating owner and the bytes are
// dropped when the last reference is released.
//
// A Storage never changes size. Tensors that grow allocate a new Storage and
// copy.
type Storage struct {
	data     []byte
	length   int
	dtype    DataType
	device   Device
	refCount atomic.Int32
	mu       sync.Mutex // guards data on free
}

// NewStorage allocates a zero-filled buffer of n elements.
func NewStorage(n int, dtype DataType, device Device) (*Storage, error) {
	if n < 0 {
		return nil, fmt.Errorf("storage: negative element count %d", n)
	}
	size := n * dtype.Size()
	s := &Storage{
		data:   make([]byte, size),
		length: n,
		dtype:  dtype,
		device: device,
	}
	s.refCount.Store(1)
	storageAllocations.WithLabelValues(dtype.String(), device.String()).Inc()
	storageLiveBytes.Add(float64(size))
	return s, nil
}

// Retain adds a reference and returns s for chaining.
func (s *Storage) Retain() *Storage {
	if s.refCount.Add(1) <= 1 {
		panic("storage: retain after free")
	}
	return s
}

// Release drops a reference, freeing the bytes when none remain.
func (s *Storage) Release() {
	n := s.refCount.Add(-1)
	switch {
	case n == 0:
		s.mu.Lock()
		defer s.mu.Unlock()
		storageFrees.Inc()
		storageLiveBytes.Sub(float64(len(s.data)))
		s.data = nil
	case n < 0:
		panic("storage: release of freed buffer")
	}
}

// Refs returns the current reference count.
func (s *Storage) Refs() int {
	return int(s.refCount.Load())
}

// IsUnique reports whether exactly one reference is held.
func (s *Storage) IsUnique() bool {
	return s.refCount.Load() == 1
}

// Freed reports whether the bytes have been released.
func (s *Storage) Freed() bool {
	return s.refCount.Load() <= 0
}

// Len returns the number of elements.
func (s *Storage) Len() int { return s.length }

// DType returns the element type.
func (s *Storage) DType() DataType { return s.dtype }

// Device returns the device tag.
func (s *Storage) Device() Device { return s.device }

// Bytes returns the raw bytes.
// WARNING: direct access to shared memory.
func (s *Storage) Bytes() []byte { return s.data }

// Elems returns the storage as a typed slice (zero-copy).
// Panics if T does not match the storage dtype.
func Elems[T Element](s *Storage) []T {
	if dt := DataTypeOf[T](); dt != s.dtype {
		panic(fmt.Sprintf("storage dtype is %s, not %s", s.dtype, dt))
	}
	if s.length == 0 || len(s.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, length fixed at allocation
	return unsafe.Slice((*T)(unsafe.Pointer(&s.data[0])), s.length)
}

// Load reads element i converted to float64.
func (s *Storage) Load(i int) float64 {
	switch s.dtype {
	case Float32:
		return float64(Elems[float32](s)[i])
	case Float64:
		return Elems[float64](s)[i]
	case Float16:
		return float64(Elems[float16.Float16](s)[i].Float32())
	case Int32:
		return float64(Elems[int32](s)[i])
	case Int64:
		return float64(Elems[int64](s)[i])
	case Uint8:
		return float64(Elems[uint8](s)[i])
	default:
		panic("unsupported dtype")
	}
}

// Store writes v to element i, converting to the storage dtype.
// Integer types truncate toward zero and saturate at the type's range; NaN
// stores 0.
func (s *Storage) Store(i int, v float64) {
	switch s.dtype {
	case Float32:
		Elems[float32](s)[i] = float32(v)
	case Float64:
		Elems[float64](s)[i] = v
	case Float16:
		Elems[float16.Float16](s)[i] = float16.Fromfloat32(float32(v))
	case Int32:
		Elems[int32](s)[i] = int32(saturate(v, math.MinInt32, math.MaxInt32))
	case Int64:
		Elems[int64](s)[i] = saturateInt64(v)
	case Uint8:
		Elems[uint8](s)[i] = uint8(saturate(v, 0, math.MaxUint8))
	default:
		panic("unsupported dtype")
	}
}

// saturate clamps v to [lo, hi]. Both bounds must be exactly representable
// as float64.
func saturate(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

func saturateInt64(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= 0x1p63:
		return math.MaxInt64
	case v < -0x1p63:
		return math.MinInt64
	}
	return int64(v)
}
