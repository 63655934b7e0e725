// Package stub is an in-memory implementation of the marketplace API the
// client consumes. The real backend is out of scope; the stub pins down only
// the contract shapes, for local development and end-to-end tests.
package stub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
)

// account is a registered marketplace user.
type account struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	LastRole     domain.Role
}

// memoryStore holds all stub state behind one lock. Everything is lost on
// restart, deliberately: the stub has no persistence story to get wrong.
type memoryStore struct {
	mu sync.RWMutex

	accountsByEmail map[string]*account
	accountsByID    map[string]*account
	rfqs            map[string]*domain.RFQ
	bids            map[string]*domain.Bid
	products        map[string]*domain.Product
	transactions    map[string]*domain.Transaction
	feedback        map[string]*domain.Feedback
	files           map[string][]byte // "<scope>/<entity id>/<file name>"
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accountsByEmail: make(map[string]*account),
		accountsByID:    make(map[string]*account),
		rfqs:            make(map[string]*domain.RFQ),
		bids:            make(map[string]*domain.Bid),
		products:        make(map[string]*domain.Product),
		transactions:    make(map[string]*domain.Transaction),
		feedback:        make(map[string]*domain.Feedback),
		files:           make(map[string][]byte),
	}
}

// addAccount registers a user with a bcrypt-hashed password.
func (m *memoryStore) addAccount(email, password, firstName, lastName, phone string, role domain.Role) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accountsByEmail[email]; exists {
		return nil, domain.ErrUserExists
	}
	acc := &account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		LastRole:     role,
	}
	m.accountsByEmail[email] = acc
	m.accountsByID[acc.ID] = acc
	return acc, nil
}

// authenticate checks credentials and returns the matching account.
func (m *memoryStore) authenticate(email, password string) (*account, error) {
	m.mu.RLock()
	acc, ok := m.accountsByEmail[email]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return acc, nil
}

func (m *memoryStore) accountByID(id string) (*account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accountsByID[id]
	return acc, ok
}

func (m *memoryStore) setRole(userID string, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accountsByID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	acc.LastRole = role
	return nil
}

func (m *memoryStore) putFile(key string, content []byte) {
	m.mu.Lock()
	m.files[key] = content
	m.mu.Unlock()
}

func (m *memoryStore) getFile(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[key]
	return content, ok
}

func now() time.Time { return time.Now().UTC() }
