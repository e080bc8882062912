package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mergington/activities/internal/adapters/repository"
	"github.com/mergington/activities/internal/domain/model"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func newSeededRedisStore(t *testing.T, opts ...repository.Option) (*miniredis.Miniredis, *repository.RedisStore) {
	mr, client := setupRedis(t)
	store := repository.NewRedisStore(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Seed(context.Background(), seedActivities()))
	return mr, store
}

func TestRedisStore_SeedAndList(t *testing.T) {
	ctx := context.Background()
	_, store := newSeededRedisStore(t)

	require.NoError(t, store.Ping(ctx))

	activities, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, activities, 2)

	assert.Equal(t, "Chess Club", activities[0].Name)
	assert.Equal(t, "Fridays, 3:30 PM - 5:00 PM", activities[0].Schedule)
	assert.Equal(t, 3, activities[0].MaxParticipants)
	assert.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, activities[0].Participants)

	assert.Equal(t, "Art Club", activities[1].Name)
	assert.NotNil(t, activities[1].Participants)
	assert.Empty(t, activities[1].Participants)
}

func TestRedisStore_KeysUseHashTags(t *testing.T) {
	mr, _ := newSeededRedisStore(t, repository.WithKeyPrefix("school:"))

	assert.True(t, mr.Exists("school:catalog"))
	assert.True(t, mr.Exists("school:activity:{Chess Club}"))
	assert.True(t, mr.Exists("school:roster:{Chess Club}"))
	assert.True(t, mr.Exists("school:members:{Chess Club}"))
}

func TestRedisStore_BracesInNamesStayInOneSlot(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := repository.NewRedisStore(client, repository.WithKeyPrefix("school:"))
	t.Cleanup(func() { _ = store.Close() })

	names := []string{"Art {Advanced}", "Art %7BAdvanced%7D"}
	seed := make([]model.Activity, 0, len(names))
	for _, name := range names {
		seed = append(seed, model.Activity{Name: name, Description: "d", Schedule: "s", MaxParticipants: 5})
	}
	require.NoError(t, store.Seed(ctx, seed))

	assert.True(t, mr.Exists("school:activity:{Art %7BAdvanced%7D}"))
	assert.True(t, mr.Exists("school:roster:{Art %7BAdvanced%7D}"))
	assert.True(t, mr.Exists("school:members:{Art %7BAdvanced%7D}"))
	assert.True(t, mr.Exists("school:activity:{Art %257BAdvanced%257D}"))

	require.NoError(t, store.Signup(ctx, "Art {Advanced}", "ada@mergington.edu"))
	a, err := store.Get(ctx, "Art {Advanced}")
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@mergington.edu"}, a.Participants)

	other, err := store.Get(ctx, "Art %7BAdvanced%7D")
	require.NoError(t, err)
	assert.Empty(t, other.Participants)
}

func TestRedisStore_SignupAndDuplicate(t *testing.T) {
	ctx := context.Background()
	_, store := newSeededRedisStore(t)

	require.NoError(t, store.Signup(ctx, "Chess Club", "newstudent@mergington.edu"))

	a, err := store.Get(ctx, "Chess Club")
	require.NoError(t, err)
	assert.Equal(t, "newstudent@mergington.edu", a.Participants[len(a.Participants)-1])

	err = store.Signup(ctx, "Chess Club", "newstudent@mergington.edu")
	assert.ErrorIs(t, err, repository.ErrAlreadySignedUp)
}

func TestRedisStore_SignupUnknownActivity(t *testing.T) {
	ctx := context.Background()
	_, store := newSeededRedisStore(t)

	assert.ErrorIs(t, store.Signup(ctx, "Unknown Activity", "x@y.com"), repository.ErrActivityNotFound)
	assert.ErrorIs(t, store.Unregister(ctx, "Unknown Activity", "x@y.com"), repository.ErrActivityNotFound)

	_, err := store.Get(ctx, "Unknown Activity")
	assert.ErrorIs(t, err, repository.ErrActivityNotFound)
}

func TestRedisStore_Capacity(t *testing.T) {
	ctx := context.Background()

	t.Run("not enforced by default", func(t *testing.T) {
		_, store := newSeededRedisStore(t)
		require.NoError(t, store.Signup(ctx, "Chess Club", "third@mergington.edu"))
		assert.NoError(t, store.Signup(ctx, "Chess Club", "fourth@mergington.edu"))
	})

	t.Run("enforced", func(t *testing.T) {
		_, store := newSeededRedisStore(t, repository.WithCapacityEnforcement(true))
		require.NoError(t, store.Signup(ctx, "Chess Club", "third@mergington.edu"))
		assert.ErrorIs(t, store.Signup(ctx, "Chess Club", "fourth@mergington.edu"), repository.ErrActivityFull)
	})
}

func TestRedisStore_Unregister(t *testing.T) {
	ctx := context.Background()
	_, store := newSeededRedisStore(t)

	require.NoError(t, store.Unregister(ctx, "Chess Club", "michael@mergington.edu"))

	a, err := store.Get(ctx, "Chess Club")
	require.NoError(t, err)
	assert.Equal(t, []string{"daniel@mergington.edu"}, a.Participants)

	err = store.Unregister(ctx, "Chess Club", "michael@mergington.edu")
	assert.ErrorIs(t, err, repository.ErrNotRegistered)

	// the same email can sign up again after leaving
	require.NoError(t, store.Signup(ctx, "Chess Club", "michael@mergington.edu"))
}

func TestRedisStore_SeedResetsByDefault(t *testing.T) {
	ctx := context.Background()
	_, store := newSeededRedisStore(t)

	require.NoError(t, store.Signup(ctx, "Art Club", "new@mergington.edu"))
	require.NoError(t, store.Seed(ctx, seedActivities()[:1]))

	activities, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "Chess Club", activities[0].Name)

	_, err = store.Get(ctx, "Art Club")
	assert.ErrorIs(t, err, repository.ErrActivityNotFound)
}

func TestRedisStore_SeedPreservesState(t *testing.T) {
	ctx := context.Background()
	_, client := setupRedis(t)
	t.Cleanup(func() { _ = client.Close() })

	first := repository.NewRedisStore(client, repository.WithPreserveState(true))
	require.NoError(t, first.Seed(ctx, seedActivities()))
	require.NoError(t, first.Signup(ctx, "Art Club", "kept@mergington.edu"))

	// a second replica starting against the same Redis
	second := repository.NewRedisStore(client, repository.WithPreserveState(true))
	require.NoError(t, second.Seed(ctx, seedActivities()))

	a, err := second.Get(ctx, "Art Club")
	require.NoError(t, err)
	assert.Equal(t, []string{"kept@mergington.edu"}, a.Participants)
}

func TestRedisStore_ConcurrentSignups(t *testing.T) {
	ctx := context.Background()
	_, store := newSeededRedisStore(t, repository.WithCapacityEnforcement(true))

	var wg sync.WaitGroup
	results := make(chan error, 40)
	for i := range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Signup(ctx, "Art Club", fmt.Sprintf("student%d@mergington.edu", i))
		}()
	}
	wg.Wait()
	close(results)

	var ok, full int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, repository.ErrActivityFull):
			full++
		default:
			t.Errorf("unexpected signup error: %v", err)
		}
	}
	assert.Equal(t, 15, ok)
	assert.Equal(t, 25, full)

	a, err := store.Get(ctx, "Art Club")
	require.NoError(t, err)
	assert.Len(t, a.Participants, 15)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	ctx := context.Background()
	mr, store := newSeededRedisStore(t)
	mr.Close()

	_, err := store.List(ctx)
	assert.Error(t, err)
	assert.Error(t, store.Signup(ctx, "Chess Club", "x@y.com"))
	assert.Error(t, store.Ping(ctx))
}
