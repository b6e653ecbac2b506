package bus

import (
	"sync/atomic"

	"github.com/ZentaChain/zentalk-bus/pkg/protocol"
)

type node struct {
	msg  protocol.Message
	next atomic.Pointer[node]
}

// Queue is an unbounded multi-producer, multi-consumer FIFO. Add and Remove
// never block. Use NewQueue to create one.
type Queue struct {
	head atomic.Pointer[node] // sentinel; head.next is the oldest message
	tail atomic.Pointer[node]
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	sentinel := &node{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Add appends m. It never fails.
func (q *Queue) Add(m protocol.Message) {
	n := &node{msg: m}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next != nil {
			// Tail is lagging; help it forward.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			return
		}
	}
}

// Remove dequeues the oldest message. ok is false when the queue is empty.
func (q *Queue) Remove() (m protocol.Message, ok bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if next == nil {
			return nil, false
		}
		if head == tail {
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		m = next.msg
		if q.head.CompareAndSwap(head, next) {
			return m, true
		}
	}
}

// Size counts the queued messages. It walks the queue, so it is O(n) and
// only a snapshot under concurrent use.
func (q *Queue) Size() int {
	n := 0
	for cur := q.head.Load().next.Load(); cur != nil; cur = cur.next.Load() {
		n++
	}
	return n
}

// Empty reports whether the queue holds no messages.
func (q *Queue) Empty() bool {
	return q.head.Load().next.Load() == nil
}
