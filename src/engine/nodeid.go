package engine

// ----- Node IDs ----- //

const (
	firstNodeID = 1000
	maxNodeID   = 1 << 28 // stay clear of scsynth's reserved high ranges
)

// nodeIDAllocator hands out server node ids. The ids are a plain
// monotonic counter wrapping at maxNodeID: unlike drawing randomly
// from a small range, two live voices can never collide. Ids below
// firstNodeID are left to the server's own root/default nodes.
type nodeIDAllocator struct {
	next int32
}

func newNodeIDAllocator() *nodeIDAllocator {
	return &nodeIDAllocator{next: firstNodeID}
}

func (a *nodeIDAllocator) alloc() int32 {
	id := a.next
	a.next++
	if a.next >= maxNodeID {
		a.next = firstNodeID
	}
	return id
}
