package common

// WipeByteArray zeroes b. It is used on password buffers once they have
// been copied into a request.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
