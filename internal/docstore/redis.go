package docstore

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"wanderlink/backend/internal/logger"
)

// RedisStore keeps each record in a hash (value + version) under
// prefix+name, with a Lua script guarding the version check and a Pub/Sub
// channel as the push delivery path.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	channel string
}

// casScript bumps the version only when it matches ARGV[2]; an absent key
// counts as version 0. Returns the new version, or 0 on mismatch.
var casScript = redis.NewScript(`
local v = tonumber(redis.call('HGET', KEYS[1], 'version') or '0')
if v ~= tonumber(ARGV[2]) then
  return 0
end
local nv = v + 1
redis.call('HSET', KEYS[1], 'value', ARGV[1], 'version', nv)
return nv
`)

var writeScript = redis.NewScript(`
local v = tonumber(redis.call('HGET', KEYS[1], 'version') or '0')
local nv = v + 1
redis.call('HSET', KEYS[1], 'value', ARGV[1], 'version', nv)
return nv
`)

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  prefix,
		channel: prefix + "changes",
	}
}

func (s *RedisStore) key(name string) string { return s.prefix + "doc:" + name }

func (s *RedisStore) Read(ctx context.Context, name string) (*Document, error) {
	fields, err := s.client.HGetAll(ctx, s.key(name)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	var version uint64
	if v, ok := fields["version"]; ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			version = n
		}
	}
	return &Document{Value: []byte(fields["value"]), Version: version}, nil
}

func (s *RedisStore) Write(ctx context.Context, name string, value []byte) (uint64, error) {
	n, err := writeScript.Run(ctx, s.client, []string{s.key(name)}, value).Int64()
	if err != nil {
		return 0, err
	}
	s.publish(ctx, name, value, uint64(n))
	return uint64(n), nil
}

func (s *RedisStore) CompareAndSwap(ctx context.Context, name string, value []byte, expect uint64) (uint64, error) {
	n, err := casScript.Run(ctx, s.client, []string{s.key(name)}, value, expect).Int64()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrVersionMismatch
	}
	s.publish(ctx, name, value, uint64(n))
	return uint64(n), nil
}

func (s *RedisStore) publish(ctx context.Context, name string, value []byte, version uint64) {
	payload, err := json.Marshal(Event{Name: name, Value: value, Version: version})
	if err != nil {
		return
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		// Push is best effort; the poll fallback guarantees convergence.
		logger.Log.Warnw("redis publish failed", "name", name, "error", err)
	}
}

func (s *RedisStore) Remove(ctx context.Context, name string) error {
	return s.client.Del(ctx, s.key(name)).Err()
}

func (s *RedisStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	pattern := s.key(prefix) + "*"
	iter := s.client.Scan(ctx, 0, pattern, 200).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix+"doc:"))
	}
	return names, iter.Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Watch subscribes to the change channel.
func (s *RedisStore) Watch(ctx context.Context) (Feed, error) {
	sub := s.client.Subscribe(ctx, s.channel)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, err
	}
	f := &redisFeed{sub: sub, ch: make(chan Event, 64)}
	go f.pump()
	return f, nil
}

type redisFeed struct {
	sub *redis.PubSub
	ch  chan Event
}

func (f *redisFeed) pump() {
	defer close(f.ch)
	for msg := range f.sub.Channel() {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			logger.Log.Warnw("discarding malformed change event", "error", err)
			continue
		}
		select {
		case f.ch <- ev:
		default:
		}
	}
}

func (f *redisFeed) Events() <-chan Event { return f.ch }

func (f *redisFeed) Close() error { return f.sub.Close() }
