package models

const (
	// DefaultPageFrom and DefaultPageSize apply when listing endpoints omit
	// pagination params.
	DefaultPageFrom = 0
	DefaultPageSize = 20

	// WorkerQueueSize bounds the in-memory sheets sync queue.
	WorkerQueueSize = 128
)
