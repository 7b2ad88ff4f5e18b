//go:build linux || darwin

package alloc

import "golang.org/x/sys/unix"

// reserve maps a private anonymous span. The kernel hands it out zeroed and
// the Go collector never scans or moves it.
func reserve(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
}

func release(mem []byte) error {
	return unix.Munmap(mem)
}
