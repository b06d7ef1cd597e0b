package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetNXAndCompareAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newMockCmdable()
	client := &Client{store: store}

	ok, err := client.SetNX(ctx, "k", "owner-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "k", "owner-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second SetNX must not overwrite")

	deleted, err := client.CompareAndDelete(ctx, "k", "owner-2")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, "owner-1", store.data["k"])

	deleted, err = client.CompareAndDelete(ctx, "k", "owner-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NotContains(t, store.data, "k")
	assert.Equal(t, 1, store.evals, "release runs as one script call")
}

func TestCompareAndDeleteFallsBackToEval(t *testing.T) {
	ctx := context.Background()
	store := newMockCmdable()
	store.noScriptCache = true
	store.data["k"] = "owner-1"
	client := &Client{store: store}

	deleted, err := client.CompareAndDelete(ctx, "k", "owner-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, store.data)
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	ctx := context.Background()

	_, err := client.SetNX(ctx, "k", "v", time.Second)
	assert.Error(t, err)
	_, err = client.CompareAndDelete(ctx, "k", "v")
	assert.Error(t, err)
	assert.Error(t, client.Ping(ctx))
	assert.NoError(t, client.Close())
}

func TestLockKey(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "agrimarket:lock:migrate", client.LockKey("migrate"))
	assert.Equal(t, "agrimarket:lock", client.LockKey("  "))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 2, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://:secret@cache:6380/3"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)
}

// serverError mimics an error reply from the redis server.
type serverError string

func (e serverError) Error() string { return string(e) }
func (serverError) RedisError()     {}

// mockCmdable keeps keys in memory and evaluates the release script natively.
type mockCmdable struct {
	data          map[string]string
	evals         int
	noScriptCache bool
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) compareAndDelete(keys []string, args []any) *redis.Cmd {
	m.evals++
	if len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, errors.New("ERR wrong number of arguments"))
	}
	if v, ok := m.data[keys[0]]; ok && v == fmt.Sprint(args[0]) {
		delete(m.data, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func (m *mockCmdable) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return m.compareAndDelete(keys, args)
}

func (m *mockCmdable) EvalSha(ctx context.Context, sha1 string, keys []string, args ...any) *redis.Cmd {
	if m.noScriptCache {
		return redis.NewCmdResult(nil, serverError("NOSCRIPT No matching script. Please use EVAL."))
	}
	return m.compareAndDelete(keys, args)
}

func (m *mockCmdable) EvalRO(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return redis.NewCmdResult(nil, errors.New("read-only eval not supported"))
}

func (m *mockCmdable) EvalShaRO(ctx context.Context, sha1 string, keys []string, args ...any) *redis.Cmd {
	return redis.NewCmdResult(nil, errors.New("read-only eval not supported"))
}

func (m *mockCmdable) ScriptExists(ctx context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (m *mockCmdable) ScriptLoad(ctx context.Context, script string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}
