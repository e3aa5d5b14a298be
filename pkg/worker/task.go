package worker

import (
	"fmt"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// queuedTask is a submitted task together with its submission sequence number
type queuedTask struct {
	seq uint64
	fn  types.Task
}

// newQueuedTask wraps fn for the pool queue
func newQueuedTask(seq uint64, fn types.Task) *queuedTask {
	return &queuedTask{
		seq: seq,
		fn:  fn,
	}
}

// ID returns a printable task identifier
func (t *queuedTask) ID() string {
	return fmt.Sprintf("task-%d", t.seq)
}

// Seq returns the submission sequence number
func (t *queuedTask) Seq() uint64 {
	return t.seq
}

// run executes the task
func (t *queuedTask) run() {
	t.fn()
}
