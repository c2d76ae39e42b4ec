package transcript

import (
	"sort"
	"sync"

	"github.com/mindhaven/sessioncore/internal/media"
)

// Aggregator maintains the live transcript view for one call. Fragments
// arrive out of order and may revise earlier utterances; the aggregator keeps
// exactly one entry per fragment ID, always the most recently received
// version, ordered by each ID's first-received time.
type Aggregator struct {
	mu      sync.Mutex
	entries map[string]*media.Fragment
}

func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[string]*media.Fragment)}
}

// Upsert applies a batch of fragments. First receipt of an ID fixes its
// FirstReceived time; later receipts replace text, final flag, and
// LastReceived only, so an utterance never moves once placed.
func (a *Aggregator) Upsert(fragments []media.Fragment) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, f := range fragments {
		existing, ok := a.entries[f.ID]
		if !ok {
			copied := f
			a.entries[f.ID] = &copied
			continue
		}
		existing.Text = f.Text
		existing.Final = f.Final
		existing.LastReceived = f.LastReceived
		if f.Participant != "" {
			existing.Participant = f.Participant
		}
	}
}

// Ordered returns the full working set sorted by first-received time
// ascending, ties broken by ID. Callers may re-read at any time.
func (a *Aggregator) Ordered() []media.Fragment {
	a.mu.Lock()
	out := make([]media.Fragment, 0, len(a.entries))
	for _, f := range a.entries {
		out = append(out, *f)
	}
	a.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].FirstReceived.Equal(out[j].FirstReceived) {
			return out[i].FirstReceived.Before(out[j].FirstReceived)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Texts returns the ordered fragment texts for display.
func (a *Aggregator) Texts() []string {
	ordered := a.Ordered()
	texts := make([]string, 0, len(ordered))
	for _, f := range ordered {
		texts = append(texts, f.Text)
	}
	return texts
}

func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Reset discards the working set. Called when the call ends; the persisted
// transcript comes from the post-session pipeline, not from this view.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = make(map[string]*media.Fragment)
}
