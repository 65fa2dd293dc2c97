package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cloo-solutions/khub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the contract every backend must satisfy.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Load(ctx, Key("s1", KeyQuery))
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Save(ctx, Key("s1", KeyQuery), []byte(`"budget"`)))
	require.NoError(t, s.Save(ctx, Key("s1", KeyQuery), []byte(`"roadmap"`)))

	value, found, err := s.Load(ctx, Key("s1", KeyQuery))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `"roadmap"`, string(value))

	_, found, err = s.Load(ctx, Key("s2", KeyQuery))
	require.NoError(t, err)
	assert.False(t, found, "sessions are isolated")

	require.NoError(t, SaveJSON(ctx, s, Key("s1", KeyVoted), true))
	var voted bool
	found, err = LoadJSON(ctx, s, Key("s1", KeyVoted), &voted)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, voted)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Save(context.Background(), "k", buf))
	buf[0] = 'x'

	got, _, _ := s.Load(context.Background(), "k")
	assert.Equal(t, "abc", string(got))
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Save(context.Background(), "k", []byte("v"))
			_, _, _ = s.Load(context.Background(), "k")
		}()
	}
	wg.Wait()
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, Key("s1", KeyRandomSide), []byte("1")))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	value, found, err := s.Load(ctx, Key("s1", KeyRandomSide))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", string(value))
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) GetObject(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func TestS3Store_ObjectKeys(t *testing.T) {
	objects := new(MockObjectStore)
	objects.On("PutObject", mock.Anything, "sessions/khub/s1/query.json", []byte(`"q"`), "application/json").Return(nil)
	objects.On("GetObject", mock.Anything, "sessions/khub/s1/query.json").Return([]byte(`"q"`), true, nil)
	objects.On("GetObject", mock.Anything, "sessions/khub/s1/voted.json").Return(nil, false, nil)

	s := NewS3Store(objects, "sessions")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Key("s1", KeyQuery), []byte(`"q"`)))

	value, found, err := s.Load(ctx, Key("s1", KeyQuery))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `"q"`, string(value))

	_, found, err = s.Load(ctx, Key("s1", KeyVoted))
	require.NoError(t, err)
	assert.False(t, found)

	objects.AssertExpectations(t)
}

func TestS3Store_LoadError(t *testing.T) {
	objects := new(MockObjectStore)
	objects.On("GetObject", mock.Anything, mock.Anything).Return(nil, false, errors.New("access denied"))

	_, _, err := NewS3Store(objects, "").Load(context.Background(), "k")
	assert.Error(t, err)
}

func TestLoadJSON_Malformed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Save(context.Background(), "k", []byte("{")))

	var v map[string]any
	found, err := LoadJSON(context.Background(), s, "k", &v)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestOpen_MemoryAndSQLite(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, &config.Config{SessionStore: config.SessionStoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, &config.Config{
		SessionStore: config.SessionStoreSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "s.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, &config.Config{SessionStore: "etcd"})
	assert.Error(t, err)
}
