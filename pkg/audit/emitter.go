package audit

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const emitterBuffer = 256

// Emitter fans audit events out to the syslog-format logger and, when
// configured, the database store. Store delivery is fire-and-forget on a
// buffered queue with one retry: a slow or unavailable sink must never
// block the decision path.
type Emitter struct {
	logger *Logger
	store  *Store

	ch   chan Event
	wg   sync.WaitGroup
	once sync.Once
}

// NewEmitter creates an emitter and starts its store writer. A nil store
// disables persistence; the syslog line is still written.
func NewEmitter(logger *Logger, store *Store) *Emitter {
	e := &Emitter{
		logger: logger,
		store:  store,
		ch:     make(chan Event, emitterBuffer),
	}

	e.wg.Add(1)
	go e.writeLoop()
	return e
}

// Emit writes the event's syslog line and enqueues it for persistence.
// When the queue is full the event is dropped from the store path, noted on
// stderr; the syslog line has already been written.
func (e *Emitter) Emit(event Event) {
	e.logger.Log(event)

	if e.store == nil {
		return
	}
	select {
	case e.ch <- event:
	default:
		fmt.Fprintf(os.Stderr, "audit: buffer full, dropping %s event from store path\n", event.MessageID())
	}
}

// Close drains the queue and stops the store writer.
func (e *Emitter) Close() {
	e.once.Do(func() { close(e.ch) })
	e.wg.Wait()
	if e.store != nil {
		_ = e.store.Close()
	}
}

func (e *Emitter) writeLoop() {
	defer e.wg.Done()
	for event := range e.ch {
		if err := e.store.Save(event); err != nil {
			// One retry, then report and move on.
			time.Sleep(100 * time.Millisecond)
			if err := e.store.Save(event); err != nil {
				fmt.Fprintf(os.Stderr, "audit: failed to save %s event: %v\n", event.MessageID(), err)
			}
		}
	}
}
