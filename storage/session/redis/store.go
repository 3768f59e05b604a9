// Package redissession shares the sessions between API instances through redis.
package redissession

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/teamunity/lms/core/session"
)

type Store struct {
	rdb    *redis.Client
	prefix string
}

var _ session.Store = (*Store)(nil)

// Open connects to the redis server at url, eg: redis://localhost:6379/0.
func Open(url, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis URL")
	}
	return NewStore(redis.NewClient(opts), prefix), nil
}

func NewStore(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(token string) string {
	return s.prefix + token
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// Save stores sess without expiry: sessions end at logout only.
func (s *Store) Save(ctx context.Context, sess session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "marshalling session")
	}
	return s.rdb.Set(ctx, s.key(sess.Token), data, 0).Err()
}

func (s *Store) Get(ctx context.Context, token string) (session.Session, error) {
	data, err := s.rdb.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "getting session")
	}

	var sess session.Session
	if err = json.Unmarshal(data, &sess); err != nil {
		// unreadable entry, drop it
		s.rdb.Del(ctx, s.key(token))
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, s.key(token)).Err()
}

func (s *Store) PingContext(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
