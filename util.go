package vkbase

import "unsafe"

// safeString returns a copy of s that is guaranteed to be null-terminated,
// as the Vulkan C ABI expects.
func safeString(s string) string {
	if len(s) == 0 {
		return "\x00"
	}
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

// checkExisting intersects the required names with the actually available
// ones, returning the usable subset and how many were missing.
func checkExisting(actual, required []string) (existing []string, missing int) {
	for _, req := range required {
		found := false
		for _, act := range actual {
			if safeString(req) == safeString(act) {
				found = true
				break
			}
		}
		if found {
			existing = append(existing, safeString(req))
		} else {
			missing++
		}
	}
	return existing, missing
}

// sliceUint32 reinterprets SPIR-V bytes as the uint32 words Vulkan expects.
func sliceUint32(data []byte) []uint32 {
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&data)).Data))[:len(data)/4]
}

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}

// AsBytes views a value as its raw bytes, for uniform and vertex uploads.
func AsBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(unsafe.Sizeof(*v)))
}

// SliceBytes views a slice's backing array as raw bytes.
func SliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}
