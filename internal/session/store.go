package session

import (
	"sync"
	"time"

	"github.com/arludent/clinic-ai/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one conversation. The message sequence is append-only; the
// window keeps at most `limit` of the most recent user/assistant messages,
// oldest evicted first.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time

	mu       sync.RWMutex
	turnMu   sync.Mutex
	messages []models.Message
	window   []models.Message
	limit    int
	metadata map[string]any
}

// BeginTurn serializes full agent turns against this session. Concurrent
// requests on the same session id queue up instead of interleaving appends.
func (s *Session) BeginTurn() { s.turnMu.Lock() }

func (s *Session) EndTurn() { s.turnMu.Unlock() }

// Append adds a message to the history. User and assistant messages also
// enter the rolling window; system messages do not.
func (s *Session) Append(role models.MessageRole, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, msg)

	if role != models.RoleUser && role != models.RoleAssistant {
		return
	}
	s.window = append(s.window, msg)
	if s.limit > 0 && len(s.window) > s.limit {
		s.window = s.window[len(s.window)-s.limit:]
	}
}

// History returns a copy of the full message sequence.
func (s *Session) History() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Window returns a snapshot of the rolling memory window, oldest first.
func (s *Session) Window() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.window))
	copy(out, s.window)
	return out
}

func (s *Session) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Store is an in-memory session table, safe for concurrent use across
// distinct sessions. Nothing is persisted; sessions live until deleted or
// the process exits.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	limit    int
	logger   *zap.Logger
}

func NewStore(historyLimit int, logger *zap.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		limit:    historyLimit,
		logger:   logger,
	}
}

// GetOrCreate returns the session for the given id, allocating a new one
// (with a fresh uuid when the id is empty) if it does not exist yet.
func (st *Store) GetOrCreate(sessionID string, userID int64) *Session {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if sess, exists := st.sessions[sessionID]; exists {
		return sess
	}

	sess := &Session{
		ID:        sessionID,
		UserID:    userID,
		CreatedAt: time.Now(),
		limit:     st.limit,
		metadata:  make(map[string]any),
	}
	st.sessions[sessionID] = sess
	st.logger.Info("New session created", zap.String("session_id", sessionID))
	return sess
}

// Get returns the session for the given id, or nil if unknown.
func (st *Store) Get(sessionID string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[sessionID]
}

// History returns the message sequence for a session, empty if unknown.
func (st *Store) History(sessionID string) []models.Message {
	sess := st.Get(sessionID)
	if sess == nil {
		return []models.Message{}
	}
	return sess.History()
}

// Delete removes all state for a session. Deleting an unknown id is a no-op.
func (st *Store) Delete(sessionID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.sessions[sessionID]; exists {
		delete(st.sessions, sessionID)
		st.logger.Info("Session deleted", zap.String("session_id", sessionID))
	}
}

func (st *Store) ActiveCount() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
