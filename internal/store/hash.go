// internal/store/hash.go
package store

// hashBuckets bounds hash values; 0 is reserved for "row free".
const hashBuckets = 128

// makeHash folds (nn, en) into a non-zero bucket.
func makeHash(nn, en uint16) byte {
	h := byte(nn ^ (nn >> 8))
	h = 7*h + byte(en^(en>>8))
	h %= hashBuckets
	if h == 0 {
		return 255
	}
	return h
}
