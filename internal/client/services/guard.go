package services

import "sync"

// Resource names used with the stale-response guard.
const (
	resourceBalance      = "balance"
	resourceFacilities   = "facilities"
	resourceReservations = "reservations"
	resourceTransactions = "transactions"
)

// Sequencer is the stale-response guard: each logical resource carries a
// monotonically increasing sequence number, and only the response belonging
// to the latest issued request may be applied to cached state. A slow early
// response can therefore never overwrite a fast later one.
type Sequencer struct {
	mu  sync.Mutex
	seq map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{seq: map[string]uint64{}}
}

// Begin registers a new request for resource and returns its sequence number.
func (g *Sequencer) Begin(resource string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq[resource]++
	return g.seq[resource]
}

// Latest reports whether seq still identifies the most recent request for
// resource; a false result means the response is stale and must be discarded.
func (g *Sequencer) Latest(resource string, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq[resource] == seq
}
