package draft

import "sync"

// SubscriptionSet owns the teardown functions of a draft's live listeners
type SubscriptionSet struct {
	mu       sync.Mutex
	cancels  []func()
	disposed bool
}

// NewSubscriptionSet returns an empty set
func NewSubscriptionSet() *SubscriptionSet {
	return &SubscriptionSet{}
}

// Add registers an unsubscribe function. Once the set is disposed, unsubscribe
// runs immediately instead.
func (s *SubscriptionSet) Add(unsubscribe func()) {
	if unsubscribe == nil {
		return
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		unsubscribe()
		return
	}
	s.cancels = append(s.cancels, unsubscribe)
	s.mu.Unlock()
}

// Len returns the number of live subscriptions
func (s *SubscriptionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}

// DisposeAll runs every unsubscribe function exactly once
func (s *SubscriptionSet) DisposeAll() {
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	s.disposed = true
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
