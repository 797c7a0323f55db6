package intake

import "sync"

// Session is the per-conversation state of the intake flow. It is a pure
// value: the state machine takes a Session and returns a new one, so callers
// never share mutable state and a failed turn leaves the stored session
// untouched.
type Session struct {
	// Record holds the answers collected so far.
	Record Record
	// retries counts consecutive failed extraction attempts per field. It
	// resets only together with the record.
	retries [fieldCount]int
	// CaseResolved is set once the case type has been decided for the
	// current conversation segment.
	CaseResolved bool
	// TenantCase is set when the conversation is a tenant security deposit
	// intake rather than a general legal query.
	TenantCase bool
	// Started is set after the greeting has been sent.
	Started bool
}

// RetryCount returns the number of consecutive failed extractions for the field.
func (s Session) RetryCount(f Field) int {
	return s.retries[f]
}

func (s Session) withAnswer(f Field, a Answer) Session {
	s.Record = s.Record.WithAnswer(f, a)
	return s
}

func (s Session) withRetry(f Field) Session {
	s.retries[f]++
	return s
}

// reset clears the record, retry counters, and case flags. The greeting flag
// survives so a mid-conversation reset does not re-introduce the bot.
func (s Session) reset() Session {
	started := s.Started
	return Session{Started: started}
}

// Store hands out the one Session value per session identifier. The host must
// serialize turns within one identifier; the store only isolates identifiers
// from each other.
type Store interface {
	// GetOrCreate returns the session for the identifier, creating a fresh
	// one on first contact.
	GetOrCreate(id string) Session
	// Put stores the session produced by a completed turn.
	Put(id string, session Session)
	// Evict drops the session. Eviction policy belongs to the caller.
	Evict(id string)
}

// MemoryStore keeps sessions in process memory for the process lifetime.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) GetOrCreate(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		session = Session{}
		s.sessions[id] = session
	}
	return session
}

func (s *MemoryStore) Put(id string, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = session
}

func (s *MemoryStore) Evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
