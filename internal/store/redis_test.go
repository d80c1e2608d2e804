package store

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedisClient struct {
	getReturn  *redis.StringCmd
	pingReturn *redis.StatusCmd
	closeErr   error
	lastGetKey string
}

func (f *fakeRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	f.lastGetKey = key
	return f.getReturn
}

func (f *fakeRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	if f.pingReturn != nil {
		return f.pingReturn
	}
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedisClient) Close() error {
	return f.closeErr
}

func TestNew_NilPoolOptions(t *testing.T) {
	_, err := New(context.Background(), "redis://localhost:6379/0", nil)
	assert.Error(t, err)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(context.Background(), "://bad", &PoolOptions{})
	assert.Error(t, err)
}

func TestNewWithClientNil(t *testing.T) {
	_, err := NewWithClient(nil)
	assert.Error(t, err)
}

func TestSensitiveFieldsFound(t *testing.T) {
	client := &fakeRedisClient{
		getReturn: redis.NewStringResult("Authorization,X-Api-Key", nil),
	}

	s, err := NewWithClient(client)
	require.NoError(t, err)

	raw, found, err := s.SensitiveFields(context.Background(), "datashield:sensitive_fields")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Authorization,X-Api-Key", raw)
	assert.Equal(t, "datashield:sensitive_fields", client.lastGetKey)
}

func TestSensitiveFieldsEmptyValue(t *testing.T) {
	client := &fakeRedisClient{
		getReturn: redis.NewStringResult("", nil),
	}

	s, err := NewWithClient(client)
	require.NoError(t, err)

	raw, found, err := s.SensitiveFields(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, raw)
}

func TestSensitiveFieldsMissingKey(t *testing.T) {
	client := &fakeRedisClient{
		getReturn: redis.NewStringResult("", redis.Nil),
	}

	s, err := NewWithClient(client)
	require.NoError(t, err)

	raw, found, err := s.SensitiveFields(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, raw)
}

func TestSensitiveFieldsRedisError(t *testing.T) {
	client := &fakeRedisClient{
		getReturn: redis.NewStringResult("", errors.New("boom")),
	}

	s, err := NewWithClient(client)
	require.NoError(t, err)

	_, found, err := s.SensitiveFields(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestClose(t *testing.T) {
	s, err := NewWithClient(&fakeRedisClient{})
	require.NoError(t, err)

	assert.NoError(t, s.Close())
}

func TestCloseError(t *testing.T) {
	s, err := NewWithClient(&fakeRedisClient{closeErr: errors.New("close error")})
	require.NoError(t, err)

	assert.Error(t, s.Close())
}

func TestCloseNilStore(t *testing.T) {
	var s *Store
	assert.Error(t, s.Close())
}

func TestCloseNilClient(t *testing.T) {
	s := &Store{client: nil}
	assert.Error(t, s.Close())
}
