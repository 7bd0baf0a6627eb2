package auth

import (
	"context"
	"sync"
)

var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store used by tests and local development. All
// operations are safe for concurrent use.
type MemStore struct {
	mu         sync.RWMutex
	principals map[string]*Principal
	tokens     map[string]*TokenRecord
}

func NewMemStore() *MemStore {
	return &MemStore{
		principals: make(map[string]*Principal),
		tokens:     make(map[string]*TokenRecord),
	}
}

func (s *MemStore) Identities(ctx context.Context) IdentityStore { return (*memIdentities)(s) }
func (s *MemStore) Tokens(ctx context.Context) TokenStore        { return (*memTokens)(s) }

// TokenCount reports the number of recorded tokens.
func (s *MemStore) TokenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// PrincipalCount reports the number of stored principals.
func (s *MemStore) PrincipalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.principals)
}

type memIdentities MemStore

func (s *memIdentities) Create(ctx context.Context, p *Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.principals {
		if existing.Username == p.Username || existing.Email == p.Email {
			return ErrAlreadyExists
		}
	}
	cp := clonePrincipal(p)
	s.principals[p.ID] = cp
	return nil
}

func (s *memIdentities) Find(ctx context.Context, id string) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.principals[id]; ok {
		return clonePrincipal(p), nil
	}
	return nil, ErrNotFound
}

func (s *memIdentities) FindByUsername(ctx context.Context, username string) (*Principal, error) {
	return s.findBy(func(p *Principal) bool { return p.Username == username })
}

func (s *memIdentities) FindByExternalID(ctx context.Context, externalID string) (*Principal, error) {
	return s.findBy(func(p *Principal) bool { return p.ExternalID == externalID })
}

func (s *memIdentities) FindByProviderSubject(ctx context.Context, subject string) (*Principal, error) {
	return s.findBy(func(p *Principal) bool { return p.ProviderSubject != "" && p.ProviderSubject == subject })
}

func (s *memIdentities) findBy(match func(*Principal) bool) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.principals {
		if match(p) {
			return clonePrincipal(p), nil
		}
	}
	return nil, ErrNotFound
}

func (s *memIdentities) UpdateRole(ctx context.Context, id string, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[id]
	if !ok {
		return ErrNotFound
	}
	p.Role = role
	return nil
}

func (s *memIdentities) UpdateResources(ctx context.Context, id string, resources []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[id]
	if !ok {
		return ErrNotFound
	}
	p.Resources = append([]string(nil), resources...)
	return nil
}

func (s *memIdentities) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[id]
	if !ok {
		return ErrNotFound
	}
	p.PasswordHash = passwordHash
	return nil
}

func (s *memIdentities) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.principals[id]; !ok {
		return ErrNotFound
	}
	delete(s.principals, id)
	return nil
}

type memTokens MemStore

func (s *memTokens) Insert(ctx context.Context, rec *TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[rec.JTI]; ok {
		return ErrAlreadyExists
	}
	cp := *rec
	s.tokens[rec.JTI] = &cp
	return nil
}

func (s *memTokens) Find(ctx context.Context, jti string) (*TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tokens[jti]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *memTokens) MarkRevoked(ctx context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.tokens[jti]; ok {
		rec.Revoked = true
	}
	return nil
}

func clonePrincipal(p *Principal) *Principal {
	cp := *p
	cp.Resources = append([]string(nil), p.Resources...)
	return &cp
}
