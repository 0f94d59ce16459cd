package bot

import "sync"

// State состояние диалога
type State string

const (
	StateIdle         State = "idle"
	StateAwaitCameras State = "await_cameras"
	StateAwaitArea    State = "await_area"
	StateAwaitBudget  State = "await_budget"
	StateAwaitPhone   State = "await_phone"
	StateAwaitConfirm State = "await_confirm"
)

// Session сеанс многошагового диалога одного аккаунта. Поля накапливаются
// по ходу шагов и обнуляются при завершении или отмене.
type Session struct {
	State   State
	Cameras int64
	Area    int64
	ItemID  int64
	Price   float64
}

// SessionStore потокобезопасное хранилище сеансов по внешнему id.
// Новый сеанс вытесняет незавершённый прежний.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]Session)}
}

// Get возвращает копию сеанса; второй результат false, если сеанса нет
func (s *SessionStore) Get(externalID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[externalID]
	return sess, ok
}

func (s *SessionStore) Put(externalID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[externalID] = sess
}

func (s *SessionStore) Clear(externalID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, externalID)
}
