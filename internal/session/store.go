package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tadoku-client/internal/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Ключ, под которым токен лежит в локальном хранилище.
const tokenKey = "session.token"

// Store holds the authentication session: the current bearer token and the
// derived authenticated/unauthenticated state. The token is persisted in an
// embedded Badger database so the session survives restarts. The store never
// performs network I/O; it is the single source of truth for request
// authorization.
type Store struct {
	db     *badger.DB
	logger *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewStore opens (or creates) the session database at dir.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.Named("SessionStore"),
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Restore loads a previously persisted token, if any. Absence of a token is
// not an error: the session simply stays unauthenticated. A stored JWT whose
// expiry is already past is discarded as if it were absent, so the caller is
// not left believing in a credential the server will reject anyway.
func (s *Store) Restore() error {
	var token string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tokenKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			token = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		s.logger.Debug("No persisted session token found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read persisted session token: %w", err)
	}

	if tokenExpired(token) {
		s.logger.Info("Persisted session token has expired, discarding it")
		// Чистим хранилище, чтобы не натыкаться на мертвый токен при каждом старте.
		if err := s.Logout(); err != nil {
			s.logger.Warn("Failed to remove expired session token", zap.Error(err))
		}
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.logger.Debug("Session restored from persisted token")
	return nil
}

// Login persists the token and marks the session authenticated. An empty or
// whitespace-only token is rejected locally.
func (s *Store) Login(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: token must not be empty", models.ErrInvalidInput)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(tokenKey), []byte(token))
	})
	if err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.logger.Debug("Session token stored")
	return nil
}

// Logout clears the persisted token and marks the session unauthenticated.
// Calling it on an already unauthenticated session is a no-op.
func (s *Store) Logout() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(tokenKey))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove session token: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	s.logger.Debug("Session token cleared")
	return nil
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether the session currently holds a token.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// tokenExpired проверяет клейм exp без проверки подписи. Непрозрачные токены
// (не JWT или без exp) считаются действительными - решает сервер.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
