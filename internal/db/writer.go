package db

import (
	"context"
	"sync"
)

const defaultBufferSize = 1000

// AsyncWriter provides non-blocking event persistence with a buffered channel.
// The dashboard must never stall on archive writes.
type AsyncWriter struct {
	store   Store
	fetchID int64
	ch      chan *EventRecord
	wg      sync.WaitGroup
	done    chan struct{}
}

// NewAsyncWriter creates a new async writer bound to one recorded fetch.
func NewAsyncWriter(store Store, fetchID int64) *AsyncWriter {
	w := &AsyncWriter{
		store:   store,
		fetchID: fetchID,
		ch:      make(chan *EventRecord, defaultBufferSize),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Save queues an event for persistence. Non-blocking; drops the event if
// the buffer is full.
func (w *AsyncWriter) Save(rec *EventRecord) bool {
	rec.FetchID = w.fetchID
	select {
	case w.ch <- rec:
		return true
	default:
		return false
	}
}

func (w *AsyncWriter) run() {
	defer w.wg.Done()
	for {
		select {
		case rec, ok := <-w.ch:
			if !ok {
				return
			}
			// Best effort insert, ignore errors
			_, _ = w.store.InsertEvent(context.Background(), rec)
		case <-w.done:
			// Drain remaining events
			for {
				select {
				case rec, ok := <-w.ch:
					if !ok {
						return
					}
					_, _ = w.store.InsertEvent(context.Background(), rec)
				default:
					return
				}
			}
		}
	}
}

// Close gracefully shuts down the writer, draining the buffer.
func (w *AsyncWriter) Close() {
	close(w.done)
	close(w.ch)
	w.wg.Wait()
}
