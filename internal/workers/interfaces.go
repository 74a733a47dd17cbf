// Package workers provides the background workers of the journal.
// It defines the Worker interface, a Workers aggregate that starts and
// stops several workers together, and KDFPool, the bounded pool that runs
// slow key derivations off the caller's goroutine.
package workers

// Worker is the interface that must be implemented by any background worker.
//
// Run starts the worker and returns once it is ready to accept work; Stop
// waits for in-flight work to finish and releases the worker's goroutines.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run()  { /* start goroutines */ }
//	func (w *MyWorker) Stop() { /* drain and wait */ }
type Worker interface {
	Run()
	Stop()
}
