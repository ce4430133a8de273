// Package scheduler provides a single-threaded, cooperative event loop:
// a microtask FIFO queue and a timer min-heap, plus a Promise/A+-compliant
// ChainedPromise built on top of them.
//
// # Architecture
//
// [Loop] owns both queues. Microtasks ([Loop.QueueMicrotask]) always drain
// to empty before the next macrotask runs or before the loop reports idle;
// [Loop.SetTimeout]/[Loop.SetInterval] schedule macrotasks on a
// (dueTime, id)-ordered heap, matching the ordering guarantees a real
// engine's setTimeout/setInterval give callers.
//
// This is deliberately not the concurrent, multi-goroutine, OS-poll-backed
// design its origin carries: nothing here accepts submissions from another
// goroutine, and there are no file descriptors to poll. A single embedding
// goroutine drives one Loop for the lifetime of one script, which is the
// only concurrency model this engine's host API exposes.
package scheduler
