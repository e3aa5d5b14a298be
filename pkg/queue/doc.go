/*
Package queue provides SafeQueue, an unbounded blocking FIFO used to hand tasks
from producers to pool workers.

# Synchronization

All state (the ring buffer, the closed flag) is guarded by one mutex. Consumers
wait on a condition variable tied to that mutex, so an idle consumer is parked
by the runtime instead of polling, and the shutdown flag can never change
between a consumer's check and its wait.

Pop is the only way to take an item. Checking for work and removing it happen
in the same critical section, so two consumers can never both claim the same
head element.

# Closing

Close(false) stops new pushes and lets consumers drain what is queued; Pop
reports false once the queue is both closed and empty. Close(true) also
removes everything still queued and hands it back to the caller.

	q := queue.New[int]()
	_ = q.Push(1)
	q.Close(false)

	v, ok := q.Pop() // 1, true
	_, ok = q.Pop()  // 0, false
*/
package queue
