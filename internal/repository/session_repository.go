package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
	"github.com/noah-isme/eufiscalizo-api/pkg/storage"
)

// SessionKey is the fixed storage key holding the signed-in principal.
const SessionKey = "eufiscalizo_user"

// FileSessionRepository keeps the session record in <dir>/eufiscalizo_user.json.
type FileSessionRepository struct {
	storage *storage.LocalStorage
}

// NewFileSessionRepository wraps a local storage directory.
func NewFileSessionRepository(store *storage.LocalStorage) *FileSessionRepository {
	return &FileSessionRepository{storage: store}
}

func (r *FileSessionRepository) filename() string {
	return SessionKey + ".json"
}

// Load returns the raw record or ErrSessionMissing.
func (r *FileSessionRepository) Load(ctx context.Context) ([]byte, error) {
	data, err := r.storage.Read(r.filename())
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, appErrors.ErrSessionMissing
		}
		return nil, err
	}
	return data, nil
}

// Save replaces the record.
func (r *FileSessionRepository) Save(ctx context.Context, payload []byte) error {
	return r.storage.Save(r.filename(), payload)
}

// Clear removes the record.
func (r *FileSessionRepository) Clear(ctx context.Context) error {
	return r.storage.Delete(r.filename())
}

// RedisSessionRepository keeps the session record under SessionKey (optionally prefixed).
type RedisSessionRepository struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisSessionRepository constructs a Redis backed session repository. A non-empty
// namespace is prepended to the key as "<namespace>:eufiscalizo_user".
func NewRedisSessionRepository(client *redis.Client, namespace string, logger *zap.Logger) *RedisSessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := SessionKey
	if namespace != "" {
		key = namespace + ":" + SessionKey
	}
	return &RedisSessionRepository{client: client, key: key, logger: logger}
}

// Load retrieves the record. A nil client behaves like an empty store.
func (r *RedisSessionRepository) Load(ctx context.Context) ([]byte, error) {
	if r.client == nil {
		return nil, appErrors.ErrSessionMissing
	}
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrSessionMissing
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return raw, nil
}

// Save stores the record without expiry.
func (r *RedisSessionRepository) Save(ctx context.Context, payload []byte) error {
	if r.client == nil {
		r.logger.Warn("redis session store has no client, session not persisted")
		return nil
	}
	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Clear deletes the record.
func (r *RedisSessionRepository) Clear(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", r.key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *RedisSessionRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
