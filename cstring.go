package libvlc

import (
	"unsafe"
)

// maxCStringLen bounds reads of C strings whose terminator we cannot trust.
const maxCStringLen = 1 << 16

// goStringFromPtr copies a NUL-terminated C string into Go memory.
func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr)
	var length int
	for length < maxCStringLen {
		if *(*byte)(unsafe.Add(p, length)) == 0 {
			break
		}
		length++
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}

// cStrings holds NUL-terminated copies of Go strings and a pointer array
// referencing them, laid out as a C argv. The value must stay reachable
// until the native call returns.
type cStrings struct {
	bufs [][]byte
	ptrs []*byte
}

func newCStrings(values []string) *cStrings {
	cs := &cStrings{
		bufs: make([][]byte, len(values)),
		ptrs: make([]*byte, len(values)+1),
	}
	for i, v := range values {
		b := make([]byte, len(v)+1)
		copy(b, v)
		cs.bufs[i] = b
		cs.ptrs[i] = &b[0]
	}
	return cs
}

// argv returns the address of the pointer array, or 0 when empty.
func (cs *cStrings) argv() uintptr {
	if len(cs.bufs) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&cs.ptrs[0]))
}

func (cs *cStrings) argc() int32 { return int32(len(cs.bufs)) }
