package pulse

import "github.com/cespare/xxhash/v2"

// Router assigns routing keys to workers: index = xxhash(key) mod size.
//
// The same key always lands on the same worker, which is what serializes
// jobs for one path. It does not balance load: a few hot keys can share a
// worker while others sit idle.
type Router struct {
	size int
}

// NewRouter returns a router over size workers. size must be positive.
func NewRouter(size int) Router {
	if size < 1 {
		size = 1
	}
	return Router{size: size}
}

// Route returns the worker index for key
func (r Router) Route(key string) int {
	return int(xxhash.Sum64String(key) % uint64(r.size))
}

// Size is the number of workers routed over
func (r Router) Size() int {
	return r.size
}
