package qbench

import (
	"sync"
	"time"
)

// QuantumValue wraps a pool job result with metadata. The value stays in
// superposition (unknown) until the job stores it; awaiting channels
// collapse to the stored value.
type QuantumValue struct {
	Value     any
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

// QuantumSpace correlates job IDs with their eventual results. Schedulers
// Await an ID before or after the result exists; whichever side arrives
// second completes the exchange.
type QuantumSpace struct {
	mu      sync.Mutex
	values  map[string]QuantumValue
	waiting map[string][]chan QuantumValue
	quit    chan struct{}
	wg      sync.WaitGroup
}

func newQuantumSpace() *QuantumSpace {
	qs := &QuantumSpace{
		values:  make(map[string]QuantumValue),
		waiting: make(map[string][]chan QuantumValue),
		quit:    make(chan struct{}),
	}

	qs.wg.Add(1)
	go func() {
		defer qs.wg.Done()
		qs.cleanup()
	}()

	return qs
}

// Store records a value and notifies every channel already awaiting it.
func (qs *QuantumSpace) Store(id string, value any, err error, ttl time.Duration) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	qv := QuantumValue{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	qs.values[id] = qv

	for _, ch := range qs.waiting[id] {
		ch <- qv
		close(ch)
	}
	delete(qs.waiting, id)
}

// Await returns a channel that receives the value for id once it exists.
// The channel is buffered and closed after the single delivery.
func (qs *QuantumSpace) Await(id string) chan QuantumValue {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	ch := make(chan QuantumValue, 1)

	if qv, ok := qs.values[id]; ok {
		ch <- qv
		close(ch)
		return ch
	}

	qs.waiting[id] = append(qs.waiting[id], ch)
	return ch
}

// cleanup evicts expired values so a long-lived pool does not accumulate
// every result it ever produced.
func (qs *QuantumSpace) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-qs.quit:
			return
		case <-ticker.C:
			qs.mu.Lock()
			now := time.Now()
			for id, qv := range qs.values {
				if qv.TTL > 0 && now.Sub(qv.CreatedAt) > qv.TTL {
					delete(qs.values, id)
				}
			}
			qs.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (qs *QuantumSpace) Close() {
	close(qs.quit)
	qs.wg.Wait()
}
