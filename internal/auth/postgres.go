package auth

import (
	"context"
	"database/sql"
	"encoding/json"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Identities(ctx context.Context) IdentityStore { return &identityStore{db: s.db} }
func (s *PGStore) Tokens(ctx context.Context) TokenStore        { return &tokenStore{db: s.db} }

// Identity store -----------------------------------------------------------
type identityStore struct{ db *sql.DB }

const principalColumns = `id, external_id, username, email, password_hash, role, resources, provider_subject, status, created_at, updated_at`

func (s *identityStore) Create(ctx context.Context, p *Principal) error {
	resources, _ := json.Marshal(p.Resources)
	var subject sql.NullString
	if p.ProviderSubject != "" {
		subject = sql.NullString{String: p.ProviderSubject, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`insert into principals(id, external_id, username, email, password_hash, role, resources, provider_subject, status)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.ExternalID, p.Username, p.Email, p.PasswordHash, string(p.Role), resources, subject, p.Status,
	)
	return err
}

func (s *identityStore) Find(ctx context.Context, id string) (*Principal, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`select `+principalColumns+` from principals where id=$1`, id))
}

func (s *identityStore) FindByUsername(ctx context.Context, username string) (*Principal, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`select `+principalColumns+` from principals where username=$1`, username))
}

func (s *identityStore) FindByExternalID(ctx context.Context, externalID string) (*Principal, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`select `+principalColumns+` from principals where external_id=$1`, externalID))
}

func (s *identityStore) FindByProviderSubject(ctx context.Context, subject string) (*Principal, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`select `+principalColumns+` from principals where provider_subject=$1`, subject))
}

func (s *identityStore) UpdateRole(ctx context.Context, id string, role Role) error {
	res, err := s.db.ExecContext(ctx,
		`update principals set role=$2, updated_at=now() where id=$1`, id, string(role))
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *identityStore) UpdateResources(ctx context.Context, id string, resources []string) error {
	encoded, _ := json.Marshal(resources)
	res, err := s.db.ExecContext(ctx,
		`update principals set resources=$2, updated_at=now() where id=$1`, id, encoded)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *identityStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`update principals set password_hash=$2, updated_at=now() where id=$1`, id, passwordHash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *identityStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from principals where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *identityStore) scanOne(row *sql.Row) (*Principal, error) {
	var (
		p         Principal
		role      string
		resources []byte
		subject   sql.NullString
	)
	err := row.Scan(&p.ID, &p.ExternalID, &p.Username, &p.Email, &p.PasswordHash,
		&role, &resources, &subject, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Role = ParseRole(role)
	_ = json.Unmarshal(resources, &p.Resources)
	if subject.Valid {
		p.ProviderSubject = subject.String
	}
	return &p, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Token store --------------------------------------------------------------
type tokenStore struct{ db *sql.DB }

func (s *tokenStore) Insert(ctx context.Context, rec *TokenRecord) error {
	_, err := s.db.ExecContext(ctx,
		`insert into tokens(jti, kind, principal_id, issued_at, expires_at, revoked)
		 values($1,$2,$3,$4,$5,$6)`,
		rec.JTI, string(rec.Kind), rec.PrincipalID, rec.IssuedAt, rec.ExpiresAt, rec.Revoked,
	)
	return err
}

func (s *tokenStore) Find(ctx context.Context, jti string) (*TokenRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`select jti, kind, principal_id, issued_at, expires_at, revoked from tokens where jti=$1`, jti)
	var (
		rec  TokenRecord
		kind string
	)
	if err := row.Scan(&rec.JTI, &kind, &rec.PrincipalID, &rec.IssuedAt, &rec.ExpiresAt, &rec.Revoked); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec.Kind = TokenKind(kind)
	return &rec, nil
}

func (s *tokenStore) MarkRevoked(ctx context.Context, jti string) error {
	// The revoked flag is monotonic; marking an already-revoked jti is a
	// no-op by construction.
	_, err := s.db.ExecContext(ctx, `update tokens set revoked=true where jti=$1`, jti)
	return err
}
