package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	storageKeyToken        = "token"
	storageKeyTokenExpires = "token_expires_at"
	storageKeyUser         = "user"
)

// stateRecord is a row of the local key-value state table.
type stateRecord struct {
	bun.BaseModel `bun:"table:auth_state,alias:ast"`
	Key           string `bun:"key,pk" json:"key"`
	Value         string `bun:"value,notnull" json:"value"`
}

var _ TokenStore = (*BunTokenStore)(nil)

// BunTokenStore keeps session state in a local SQLite database. Storage is
// externally mutable (another process, a user editing the file), so reads
// validate shape and purge anything that no longer parses.
type BunTokenStore struct {
	db     *bun.DB
	logger Logger
	now    func() time.Time
}

// TokenStoreOption customizes BunTokenStore construction.
type TokenStoreOption func(*BunTokenStore)

// WithStoreClock injects a custom clock (useful for tests).
func WithStoreClock(clock func() time.Time) TokenStoreOption {
	return func(s *BunTokenStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithStoreLogger overrides the default logger.
func WithStoreLogger(logger Logger) TokenStoreOption {
	return func(s *BunTokenStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewBunTokenStore returns a TokenStore backed by the given bun database.
func NewBunTokenStore(db *bun.DB, opts ...TokenStoreOption) *BunTokenStore {
	s := &BunTokenStore{
		db:     db,
		logger: defLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// OpenStorage opens (creating if needed) the local state database.
func OpenStorage(dsn string) (*bun.DB, error) {
	if dsn == "" {
		dsn = "file:session.db?cache=shared"
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open local session storage")
	}
	sqldb.SetMaxOpenConns(1)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Init creates the state table when it does not exist yet.
func (s *BunTokenStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*stateRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to initialize session storage")
	}
	return nil
}

func (s *BunTokenStore) SetToken(ctx context.Context, token string, ttl ...time.Duration) error {
	if err := s.put(ctx, storageKeyToken, token); err != nil {
		return err
	}

	if len(ttl) == 0 {
		// No TTL supplied: expiry is governed by the token's own exp claim.
		return s.delete(ctx, storageKeyTokenExpires)
	}

	expiresAt := s.now().Add(ttl[0]).Unix()
	return s.put(ctx, storageKeyTokenExpires, strconv.FormatInt(expiresAt, 10))
}

func (s *BunTokenStore) GetToken(ctx context.Context) (string, error) {
	token, found, err := s.get(ctx, storageKeyToken)
	if err != nil {
		return "", err
	}
	if !found || token == "" {
		return "", nil
	}

	rawExpiry, hasExpiry, err := s.get(ctx, storageKeyTokenExpires)
	if err != nil {
		return "", err
	}
	if !hasExpiry {
		return token, nil
	}

	expiresAt, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		s.logger.Warn("purging unreadable token expiration record: %v", err)
		if err := s.delete(ctx, storageKeyToken, storageKeyTokenExpires); err != nil {
			return "", err
		}
		return "", nil
	}

	if !s.now().Before(time.Unix(expiresAt, 0)) {
		s.logger.Debug("stored token lapsed, purging")
		if err := s.delete(ctx, storageKeyToken, storageKeyTokenExpires); err != nil {
			return "", err
		}
		return "", nil
	}

	return token, nil
}

func (s *BunTokenStore) ClearToken(ctx context.Context) error {
	return s.delete(ctx, storageKeyToken, storageKeyTokenExpires, storageKeyUser)
}

func (s *BunTokenStore) SetUser(ctx context.Context, user *User) error {
	if user == nil {
		return s.delete(ctx, storageKeyUser)
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode cached user")
	}

	return s.put(ctx, storageKeyUser, string(payload))
}

func (s *BunTokenStore) GetUser(ctx context.Context) (*User, error) {
	raw, found, err := s.get(ctx, storageKeyUser)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	user := &User{}
	if err := json.Unmarshal([]byte(raw), user); err != nil {
		// Self-heal: a cache that no longer parses is treated as absent.
		s.logger.Warn("purging corrupted cached user record: %v", err)
		if err := s.delete(ctx, storageKeyUser); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return user, nil
}

func (s *BunTokenStore) put(ctx context.Context, key, value string) error {
	record := &stateRecord{Key: key, Value: value}
	if _, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to write session storage")
	}
	return nil
}

func (s *BunTokenStore) get(ctx context.Context, key string) (string, bool, error) {
	record := &stateRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, errors.CategoryInternal, "failed to read session storage")
	}
	return record.Value, true, nil
}

func (s *BunTokenStore) delete(ctx context.Context, keys ...string) error {
	if _, err := s.db.NewDelete().
		Model((*stateRecord)(nil)).
		Where("key IN (?)", bun.In(keys)).
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete session storage keys")
	}
	return nil
}
