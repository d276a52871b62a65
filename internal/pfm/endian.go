package pfm

import "golang.org/x/sys/cpu"

// HostLittleEndian reports whether the running machine is little-endian.
func HostLittleEndian() bool {
	return !cpu.IsBigEndian
}

// NeedSwap reports whether samples stored with the byte order encoded by
// scale must be byte-swapped on a host with the given byte order.
// A negative scale marks a little-endian file.
func NeedSwap(scale float32, hostLittleEndian bool) bool {
	fileLittleEndian := scale < 0
	return fileLittleEndian != hostLittleEndian
}

// swapSamples reverses the byte order of every 4-byte sample in buf in place.
// A trailing partial sample is left untouched.
func swapSamples(buf []byte) {
	for i := 0; i+SampleSize <= len(buf); i += SampleSize {
		s := buf[i : i+SampleSize : i+SampleSize]
		s[0], s[3] = s[3], s[0]
		s[1], s[2] = s[2], s[1]
	}
}
