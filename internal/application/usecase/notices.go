package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notice is a user facing error message.
type Notice struct {
	ID        string
	Message   string
	CreatedAt time.Time
}

// Notices keeps the messages shown to the user. With a positive ttl a notice
// leaves Active on its own after ttl; with ttl <= 0 it stays until dismissed.
// Drain ignores the ttl: a notice nobody displayed yet is never lost.
type Notices struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items []Notice
}

func NewNotices(ttl time.Duration) *Notices {
	return &Notices{ttl: ttl, now: time.Now}
}

// Add registra uma nova mensagem e devolve a notice criada.
func (n *Notices) Add(message string) Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	notice := Notice{ID: uuid.NewString(), Message: message, CreatedAt: n.now()}
	n.items = append(n.items, notice)
	return notice
}

// Dismiss removes a notice; it reports whether the id was present.
func (n *Notices) Dismiss(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, item := range n.items {
		if item.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the notices that have not expired, oldest first.
func (n *Notices) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prune()
	return append([]Notice(nil), n.items...)
}

// Drain returns every pending notice, expired or not, and forgets all of them.
func (n *Notices) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	return out
}

func (n *Notices) prune() {
	if n.ttl <= 0 {
		return
	}
	now := n.now()
	kept := n.items[:0]
	for _, item := range n.items {
		if now.Sub(item.CreatedAt) < n.ttl {
			kept = append(kept, item)
		}
	}
	n.items = kept
}
