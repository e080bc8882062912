package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mergington/activities/internal/domain/model"
)

const redisBackend = "redis"

// Script results shared by the roster scripts.
const (
	scriptOK          = 1
	scriptNotFound    = -1
	scriptConflict    = -2
	scriptCapacityHit = -3
)

// KEYS: activity hash, roster list, member set. ARGV: email, enforce flag.
var signupScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
if redis.call("SISMEMBER", KEYS[3], ARGV[1]) == 1 then
  return -2
end
if ARGV[2] == "1" then
  local max = tonumber(redis.call("HGET", KEYS[1], "max_participants") or "0")
  if redis.call("SCARD", KEYS[3]) >= max then
    return -3
  end
end
redis.call("SADD", KEYS[3], ARGV[1])
redis.call("RPUSH", KEYS[2], ARGV[1])
return 1
`)

// KEYS: activity hash, roster list, member set. ARGV: email.
var unregisterScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
if redis.call("SREM", KEYS[3], ARGV[1]) == 0 then
  return -2
end
redis.call("LREM", KEYS[2], 0, ARGV[1])
return 1
`)

// RedisStore keeps the registry in Redis so several service replicas share
// one roster. Each activity uses three keys sharing a hash tag: a hash with
// metadata, a list with the roster in signup order and a set for membership.
// A sorted set indexes activity names in seed order.
type RedisStore struct {
	client redis.UniversalClient
	opts   options
}

// NewRedisStore creates a store on top of an existing client.
// The store takes ownership of the client and closes it on Close.
func NewRedisStore(client redis.UniversalClient, opts ...Option) *RedisStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore{client: client, opts: o}
}

func (s *RedisStore) catalogKey() string { return s.opts.keyPrefix + "catalog" }

// tagEscaper keeps braces out of hash tags. Redis Cluster hashes only up to
// the first "}", so a raw brace in a name would split one activity's keys
// across slots. The mapping is injective because "%" is escaped too.
var tagEscaper = strings.NewReplacer("%", "%25", "{", "%7B", "}", "%7D")

func hashTag(name string) string {
	return "{" + tagEscaper.Replace(name) + "}"
}

func (s *RedisStore) activityKey(name string) string {
	return s.opts.keyPrefix + "activity:" + hashTag(name)
}

func (s *RedisStore) rosterKey(name string) string {
	return s.opts.keyPrefix + "roster:" + hashTag(name)
}

func (s *RedisStore) membersKey(name string) string {
	return s.opts.keyPrefix + "members:" + hashTag(name)
}

func (s *RedisStore) keys(name string) []string {
	return []string{s.activityKey(name), s.rosterKey(name), s.membersKey(name)}
}

// Ping checks connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Seed writes the activities to Redis. Unless state preservation is enabled,
// every previously seeded activity is removed first so the registry starts
// from the seed set, as the memory store does.
func (s *RedisStore) Seed(ctx context.Context, activities []model.Activity) error {
	defer observe(redisBackend, "seed", time.Now())

	if !s.opts.preserveState {
		if err := s.reset(ctx); err != nil {
			return err
		}
	}

	for i, a := range activities {
		if s.opts.preserveState {
			n, err := s.client.Exists(ctx, s.activityKey(a.Name)).Result()
			if err != nil {
				return fmt.Errorf("redis seed %q: %w", a.Name, err)
			}
			if n > 0 {
				continue
			}
		}
		if err := s.writeActivity(ctx, i, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStore) reset(ctx context.Context) error {
	names, err := s.client.ZRange(ctx, s.catalogKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("redis reset: %w", err)
	}
	del := []string{s.catalogKey()}
	for _, name := range names {
		del = append(del, s.keys(name)...)
	}
	if err := s.client.Del(ctx, del...).Err(); err != nil {
		return fmt.Errorf("redis reset: %w", err)
	}
	return nil
}

func (s *RedisStore) writeActivity(ctx context.Context, pos int, a model.Activity) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.keys(a.Name)...)
		pipe.HSet(ctx, s.activityKey(a.Name),
			"description", a.Description,
			"schedule", a.Schedule,
			"max_participants", a.MaxParticipants,
		)
		if len(a.Participants) > 0 {
			members := make([]interface{}, len(a.Participants))
			for i, p := range a.Participants {
				members[i] = p
			}
			pipe.RPush(ctx, s.rosterKey(a.Name), members...)
			pipe.SAdd(ctx, s.membersKey(a.Name), members...)
		}
		pipe.ZAdd(ctx, s.catalogKey(), redis.Z{Score: float64(pos), Member: a.Name})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis seed %q: %w", a.Name, err)
	}
	return nil
}

// List returns a snapshot of all activities in seed order.
func (s *RedisStore) List(ctx context.Context) ([]model.Activity, error) {
	defer observe(redisBackend, "list", time.Now())

	names, err := s.client.ZRange(ctx, s.catalogKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}

	metas := make([]*redis.MapStringStringCmd, len(names))
	rosters := make([]*redis.StringSliceCmd, len(names))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, name := range names {
			metas[i] = pipe.HGetAll(ctx, s.activityKey(name))
			rosters[i] = pipe.LRange(ctx, s.rosterKey(name), 0, -1)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}

	out := make([]model.Activity, 0, len(names))
	for i, name := range names {
		meta := metas[i].Val()
		if len(meta) == 0 {
			// removed between ZRANGE and the pipeline
			continue
		}
		out = append(out, toActivity(name, meta, rosters[i].Val()))
	}
	return out, nil
}

// Get returns a snapshot of one activity.
func (s *RedisStore) Get(ctx context.Context, name string) (model.Activity, error) {
	defer observe(redisBackend, "get", time.Now())

	var (
		meta   *redis.MapStringStringCmd
		roster *redis.StringSliceCmd
	)
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		meta = pipe.HGetAll(ctx, s.activityKey(name))
		roster = pipe.LRange(ctx, s.rosterKey(name), 0, -1)
		return nil
	})
	if err != nil {
		return model.Activity{}, fmt.Errorf("redis get %q: %w", name, err)
	}
	if len(meta.Val()) == 0 {
		return model.Activity{}, ErrActivityNotFound
	}
	return toActivity(name, meta.Val(), roster.Val()), nil
}

// Signup appends email to the roster in a single script call.
func (s *RedisStore) Signup(ctx context.Context, name, email string) error {
	defer observe(redisBackend, "signup", time.Now())

	enforce := "0"
	if s.opts.enforceCapacity {
		enforce = "1"
	}
	code, err := signupScript.Run(ctx, s.client, s.keys(name), email, enforce).Int()
	if err != nil {
		return fmt.Errorf("redis signup %q: %w", name, err)
	}
	switch code {
	case scriptOK:
		return nil
	case scriptNotFound:
		return ErrActivityNotFound
	case scriptConflict:
		return ErrAlreadySignedUp
	case scriptCapacityHit:
		return ErrActivityFull
	default:
		return fmt.Errorf("redis signup %q: unexpected script result %d", name, code)
	}
}

// Unregister removes email from the roster in a single script call.
func (s *RedisStore) Unregister(ctx context.Context, name, email string) error {
	defer observe(redisBackend, "unregister", time.Now())

	code, err := unregisterScript.Run(ctx, s.client, s.keys(name), email).Int()
	if err != nil {
		return fmt.Errorf("redis unregister %q: %w", name, err)
	}
	switch code {
	case scriptOK:
		return nil
	case scriptNotFound:
		return ErrActivityNotFound
	case scriptConflict:
		return ErrNotRegistered
	default:
		return fmt.Errorf("redis unregister %q: unexpected script result %d", name, code)
	}
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func toActivity(name string, meta map[string]string, roster []string) model.Activity {
	maxParticipants, _ := strconv.Atoi(meta["max_participants"])
	a := model.Activity{
		Name:            name,
		Description:     meta["description"],
		Schedule:        meta["schedule"],
		MaxParticipants: maxParticipants,
		Participants:    roster,
	}
	return a.Clone()
}
