package sessionstore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/session"
)

const redisKeyPrefix = "session:"

// Redis stores sessions as JSON values expiring with the session.
type Redis struct {
	client *redis.Client
}

var _ session.Store = (*Redis)(nil)

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// NewRedisClient connects to the configured Redis server.
func NewRedisClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

func (s *Redis) key(id string) string {
	return redisKeyPrefix + id
}

// wrap annotates err. A closed client cannot recover, so the server is asked to stop.
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.ErrClosed) {
		return core.NewShutdownError("session store closed")
	}
	return errors.Wrap(err, msg)
}

func (s *Redis) Create(ctx context.Context, sess session.Session) error {
	ttl := sess.ExpiresAt.Sub(core.NowFunc())
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "marshalling session")
	}
	return wrap(s.client.Set(ctx, s.key(sess.ID), data, ttl).Err(), "storing session")
}

func (s *Redis) Get(ctx context.Context, id string) (session.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, wrap(err, "getting session")
	}

	var sess session.Session
	if err = json.Unmarshal(data, &sess); err != nil {
		return session.Session{}, errors.Wrap(err, "unmarshalling session")
	}
	return sess, nil
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	return wrap(s.client.Del(ctx, s.key(id)).Err(), "deleting session")
}
