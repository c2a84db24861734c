// Package concurrency implements a simple channel based resource manager for concurrent operations.
package concurrency

import (
	"errors"
	"sync"
)

// ResourceManager is a pool of resources of some given type (e.g. a
// [native.Engine]) meant to be used concurrently, one task at a time.
type ResourceManager[T any] struct {
	wg        sync.WaitGroup
	resources chan T

	mu       sync.Mutex
	errs     []error
	failFast bool
}

// NewResourceManager instantiates a new [ResourceManager]. The number
// of resources bounds the number of tasks running at the same time.
// It panics if resources is empty.
func NewResourceManager[T any](resources []T) *ResourceManager[T] {

	if len(resources) == 0 {
		panic("concurrency: NewResourceManager called with no resources")
	}

	ch := make(chan T, len(resources))
	for i := range resources {
		ch <- resources[i]
	}

	return &ResourceManager[T]{
		resources: ch,
	}
}

// FailFast makes the tasks that have not started yet return immediately
// once a task has failed.
func (r *ResourceManager[T]) FailFast() *ResourceManager[T] {
	r.failFast = true
	return r
}

// Task is an abstract templates for a function taking as input
// a resource of any kind that can be used concurrently.
type Task[T any] func(resource T) (err error)

// Run runs a [Task] concurrently, as soon as a resource is available.
// Any error returned by the [Task] is recorded.
func (r *ResourceManager[T]) Run(f Task[T]) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		resource := <-r.resources
		defer func() { r.resources <- resource }()

		if r.failFast && r.failed() {
			return
		}

		if err := f(resource); err != nil {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		}
	}()
}

func (r *ResourceManager[T]) failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs) != 0
}

// Wait waits until all the [Task] have finished and returns the
// errors they returned, joined, in order of completion.
func (r *ResourceManager[T]) Wait() (err error) {
	r.wg.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}
