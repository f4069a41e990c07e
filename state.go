package session

import "sync"

// Status is the session machine state
type Status string

const (
	StatusLoading         Status = "loading"
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
)

func (s Status) String() string {
	return string(s)
}

// Snapshot is an immutable view of the session
type Snapshot struct {
	User    User
	Status  Status
	Loading bool
}

// Authenticated reports whether a user is present
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && !isNilUser(s.User)
}

// ProfileIncomplete is derived from the user the snapshot carries
func (s Snapshot) ProfileIncomplete() bool {
	return IsProfileIncomplete(s.User)
}

// MissingProfileFields is derived from the user the snapshot carries
func (s Snapshot) MissingProfileFields() []ProfileField {
	return MissingProfileFields(s.User)
}

// Listener receives every new snapshot
type Listener func(Snapshot)

// State holds the session. The controller is its only writer.
type State struct {
	mu        sync.RWMutex
	snapshot  Snapshot
	listeners map[int]Listener
	nextID    int
}

// NewState returns a state in the initial loading status
func NewState() *State {
	return &State{
		snapshot: Snapshot{
			Status:  StatusLoading,
			Loading: true,
		},
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the current session
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// User returns the current user, nil when unauthenticated
func (s *State) User() User {
	return s.Snapshot().User
}

// Loading reports whether a session operation is in flight
func (s *State) Loading() bool {
	return s.Snapshot().Loading
}

// Subscribe registers fn for every change and returns a function that removes it.
// Listeners run outside the lock, after the change is visible, and must not call
// session mutating controller methods.
func (s *State) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *State) set(next Snapshot) {
	s.mu.Lock()
	s.snapshot = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
}

func (s *State) setLoading(loading bool) {
	next := s.Snapshot()
	next.Loading = loading
	s.set(next)
}
