package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisProfileCache_MGet(t *testing.T) {
	t.Run("aligns missing keys", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectMGet("user:a", "user:b", "user:c").SetVal([]interface{}{"1", nil, "3"})

		got, err := NewRedisProfileCache(db).MGet(context.Background(), "user:a", "user:b", "user:c")
		require.NoError(t, err)
		assert.Equal(t, [][]byte{[]byte("1"), nil, []byte("3")}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no keys", func(t *testing.T) {
		db, _ := redismock.NewClientMock()
		got, err := NewRedisProfileCache(db).MGet(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectMGet("user:a").SetErr(errors.New("down"))
		_, err := NewRedisProfileCache(db).MGet(context.Background(), "user:a")
		assert.EqualError(t, err, "down")
	})
}

func TestRedisProfileCache_SetMany(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisProfileCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	require.NoError(t, cache.SetMany(ctx, nil, time.Minute))
	require.NoError(t, cache.SetMany(ctx, map[string][]byte{
		"user:a": []byte(`{"id":"a"}`),
		"user:b": []byte(`{"id":"b"}`),
	}, 5*time.Minute))

	got, err := mr.Get("user:b")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"b"}`, got)
	assert.Equal(t, 5*time.Minute, mr.TTL("user:a"))

	values, err := cache.MGet(ctx, "user:a", "user:x")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"a"}`), values[0])
	assert.Nil(t, values[1])
}

func TestRedisProfileCache_SetManyError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	err := NewRedisProfileCache(client).SetMany(context.Background(), map[string][]byte{"user:a": []byte("x")}, time.Minute)
	assert.Error(t, err)
}
