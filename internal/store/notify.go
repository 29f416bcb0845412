package store

import "sync"

type Collection string

const (
	CollectionTransactions Collection = "transactions"
	CollectionChallenges   Collection = "user_challenges"
	CollectionUsers        Collection = "users"
)

// Change identifies which of a user's collections was mutated.
type Change struct {
	Collection Collection
	UserID     string
}

// Bus fans out change notifications to live subscribers. Subscribers
// get a coalesced tick per user, not a diff: on every tick they
// re-read the full result set, which keeps the push model free of
// incremental-update bugs. A tick channel holds at most one pending
// signal; publishing while one is pending is a no-op because the
// subscriber will already re-read the latest state.
type Bus struct {
	mu   sync.Mutex
	subs map[int]*subscriber
	next int
}

type subscriber struct {
	userID string
	ch     chan Change
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// Subscribe registers interest in one user's records. The returned
// cancel func must be called to release the subscription.
func (b *Bus) Subscribe(userID string) (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	sub := &subscriber{userID: userID, ch: make(chan Change, 1)}
	b.subs[id] = sub

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub.ch)
		}
	}
	return sub.ch, cancel
}

// Publish notifies every subscriber watching the changed user.
func (b *Bus) Publish(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if sub.userID != c.UserID {
			continue
		}
		select {
		case sub.ch <- c:
		default: // a signal is already pending, coalesce
		}
	}
}

// Subscribers reports the current subscription count.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
