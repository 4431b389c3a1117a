// Copyright 2026 The auditai Authors
// This file is part of the auditai library.
//
// The auditai library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The auditai library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the auditai library. If not, see <http://www.gnu.org/licenses/>.

package pipeline

// Task is the completion handle of a triggered operation.
type Task struct {
	op   Op
	done chan struct{}

	result Result
	err    error
}

func newTask(op Op) *Task {
	return &Task{op: op, done: make(chan struct{})}
}

func (t *Task) finish(res Result, err error) {
	t.result, t.err = res, err
	close(t.done)
}

// Op returns the operation kind the task runs.
func (t *Task) Op() Op { return t.op }

// Done is closed once the operation has finished and its result is on display.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the operation finishes and returns the result it
// displayed together with the adapter error, if any.
func (t *Task) Wait() (Result, error) {
	<-t.done
	return t.result, t.err
}
