package client

import (
	"errors"
	"strings"
	"sync"
)

var ErrBlankQuery = errors.New("query must not be blank")

// Entry is one client-local transcript row. Answer == nil means the
// submission is still pending; Failed marks a submission whose request
// errored so it is never left looking pending forever.
type Entry struct {
	Query         string  `json:"user_message"`
	Answer        *string `json:"ai_message"`
	CorrelationID string  `json:"-"`
	Failed        bool    `json:"-"`
}

// Transcript keeps the user-visible ordered message list consistent while a
// submission's direct reply and its room notification race each other, with
// several submissions possibly in flight at once.
//
// Submission inserts a pending placeholder immediately (phase one); the
// room notification resolves it (phase two). The direct reply never mutates
// entries itself beyond tagging the placeholder with its correlation id, so
// the two deliveries of one answer cannot double-apply.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Submit appends a pending placeholder and returns its index. Indices stay
// valid until Replace; entries are never removed mid-session.
func (t *Transcript) Submit(query string) (int, error) {
	if strings.TrimSpace(query) == "" {
		return 0, ErrBlankQuery
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{Query: query})
	return len(t.entries) - 1, nil
}

// Tag attaches the correlation id from the direct reply to the placeholder,
// so a still-outstanding notification can match it exactly.
func (t *Transcript) Tag(index int, correlationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.entries) {
		return
	}
	t.entries[index].CorrelationID = correlationID
}

// Resolve merges one room notification into the transcript.
//
// A pending entry with the notification's correlation id wins outright.
// Without one (the notification can beat the direct reply that carries the
// id, or originate elsewhere) the most recently inserted pending entry is
// resolved, preferring entries not yet tagged with some other request's id:
// a tagged placeholder is already claimed by a different in-flight answer
// and is only filled as a last resort. The remaining misassignment window
// is several untagged placeholders resolving out of order; the correlation
// tag closes it whenever the direct reply has already landed. With no
// pending entry at all, the notification is appended as a new resolved row.
func (t *Transcript) Resolve(query, answer, correlationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if correlationID != "" {
		for i := range t.entries {
			if t.entries[i].Answer == nil && !t.entries[i].Failed &&
				t.entries[i].CorrelationID == correlationID {
				t.entries[i].Answer = &answer
				return
			}
		}
	}
	lastTagged := -1
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Answer != nil || t.entries[i].Failed {
			continue
		}
		if t.entries[i].CorrelationID == "" {
			t.entries[i].Answer = &answer
			return
		}
		if lastTagged == -1 {
			lastTagged = i
		}
	}
	if lastTagged >= 0 {
		t.entries[lastTagged].Answer = &answer
		return
	}
	t.entries = append(t.entries, Entry{
		Query:         query,
		Answer:        &answer,
		CorrelationID: correlationID,
	})
}

// Fail marks a placeholder whose submission errored. The row stays visible
// but stops being a resolution target.
func (t *Transcript) Fail(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.entries) {
		return
	}
	if t.entries[index].Answer == nil {
		t.entries[index].Failed = true
	}
}

// Replace swaps in the durable history, dropping any stale pending rows.
// Used on session start and reconnect.
func (t *Transcript) Replace(entries []Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append([]Entry(nil), entries...)
}

// Entries returns a snapshot copy.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

// Pending reports how many placeholders are still awaiting an answer.
func (t *Transcript) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, e := range t.entries {
		if e.Answer == nil && !e.Failed {
			n++
		}
	}
	return n
}
