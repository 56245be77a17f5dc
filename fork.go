package heapkit

// Acquire serializes with every in-flight operation of this heap and
// the underlying allocator, then holds the allocator's lock. It blocks
// until no other thread is inside an allocator operation.
//
// Every Acquire must be matched by exactly one Release. The bracket
// exists for fork safety: call Acquire once before forking, then
// Release once in the parent and once in the child after the fork
// returns (the child inherits the locked state).
func (h *Heap) Acquire() {
	h.alloc.Lock()
}

// Release releases the lock taken by Acquire.
func (h *Heap) Release() {
	h.alloc.Unlock()
}

// ForkPrepare is the _malloc_fork_prepare binding: Acquire under the
// name the platform surface expects.
func (h *Heap) ForkPrepare() {
	h.Acquire()
}

// ForkParent is the _malloc_fork_parent binding, called in the parent
// process after a fork to resume normal operation.
func (h *Heap) ForkParent() {
	h.Release()
}

// ForkChild is the _malloc_fork_child binding, called in the child
// process after a fork to resume normal operation.
func (h *Heap) ForkChild() {
	h.Release()
}
