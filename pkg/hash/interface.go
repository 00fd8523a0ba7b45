package hash

// hash.Interface is an object that can map keys to target processes.
type Interface interface {
	Get(string) (int, error)
	Members() []int
	Set([]int)
	TestAndSet([]int) bool
}

// Check for satisfaction from our hash options
var _ Interface = &Ring{}
