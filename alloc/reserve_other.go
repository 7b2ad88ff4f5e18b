//go:build !linux && !darwin

package alloc

// reserve falls back to a Go slice where anonymous mappings are not
// available through x/sys/unix. Go heap objects are never moved, so
// addresses stay stable for the arena's lifetime.
func reserve(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func release(mem []byte) error {
	return nil
}
