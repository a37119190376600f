package auth

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/LubyRuffy/azure2openai"
)

func TestGenerateKey_Format(t *testing.T) {
	re := regexp.MustCompile(`^sk-cfw[A-Za-z0-9]{45}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		key, err := GenerateKey()
		require.NoError(t, err)
		require.Regexp(t, re, key)
		seen[key] = struct{}{}
	}
	require.Len(t, seen, 20)
}

func TestBearerToken(t *testing.T) {
	require.Equal(t, "sk-abc", BearerToken("Bearer sk-abc"))
	require.Equal(t, "sk-abc", BearerToken("sk-abc"))
	require.Equal(t, "", BearerToken("Bearer "))
	require.Equal(t, "", BearerToken(""))
}

func TestGate_Authenticate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Users{
		"alice": {Key: "sk-alice"},
		"bob":   {Key: "sk-bob"},
	}))
	gate := NewGate(store)

	name, err := gate.Authenticate(ctx, "sk-bob")
	require.NoError(t, err)
	require.Equal(t, "bob", name)

	_, err = gate.Authenticate(ctx, "")
	require.True(t, azure2openai.IsKind(err, azure2openai.KindAuthentication))
	require.EqualError(t, err, azure2openai.MsgAuthRequired)

	_, err = gate.Authenticate(ctx, "sk-nobody")
	require.True(t, azure2openai.IsKind(err, azure2openai.KindAuthentication))
	require.EqualError(t, err, azure2openai.MsgInvalidToken)
}

func TestGate_EmptyStore(t *testing.T) {
	_, err := NewGate(NewMemoryStore()).Authenticate(context.Background(), "sk-x")
	require.EqualError(t, err, azure2openai.MsgInvalidToken)
}

func TestGate_StoreFailure(t *testing.T) {
	_, err := NewGate(failingStore{}).Authenticate(context.Background(), "sk-x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "store down")
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	reg := NewRegistry(store)
	gate := NewGate(store)

	first, err := reg.Register(ctx, "alice")
	require.NoError(t, err)
	second, err := reg.Register(ctx, "alice")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	name, err := gate.Authenticate(ctx, second)
	require.NoError(t, err)
	require.Equal(t, "alice", name)

	_, err = gate.Authenticate(ctx, first)
	require.EqualError(t, err, azure2openai.MsgInvalidToken)

	users, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestRegistry_RevokeUnknownLeavesStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Users{"alice": {Key: "sk-alice"}}))
	reg := NewRegistry(store)

	err := reg.Revoke(ctx, "ghost")
	require.True(t, azure2openai.IsKind(err, azure2openai.KindNotFound))
	require.EqualError(t, err, azure2openai.MsgUserNotFound)

	users, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, Users{"alice": {Key: "sk-alice"}}, users)

	require.NoError(t, reg.Revoke(ctx, "alice"))
	users, err = store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestRegistry_EmptyUsernameSkipsStorage(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(failingStore{})

	_, err := reg.Register(ctx, "")
	require.True(t, azure2openai.IsKind(err, azure2openai.KindValidation))
	err = reg.Revoke(ctx, "")
	require.True(t, azure2openai.IsKind(err, azure2openai.KindValidation))
}

func TestRegistry_KeyGeneratorFailure(t *testing.T) {
	store := NewMemoryStore()
	reg := NewRegistry(store)
	reg.newKey = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := reg.Register(context.Background(), "alice")
	require.EqualError(t, err, "entropy exhausted")

	users, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestDecodeUsers_WorkerDocument(t *testing.T) {
	users, err := DecodeUsers([]byte(`{"alice":{"key":"sk-cfwA"},"bob":{"key":"sk-cfwB"}}`))
	require.NoError(t, err)
	require.Equal(t, "sk-cfwB", users["bob"].Key)

	users, err = DecodeUsers([]byte("null"))
	require.NoError(t, err)
	require.NotNil(t, users)
	require.Empty(t, users)

	_, err = DecodeUsers([]byte("{"))
	require.Error(t, err)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("", "")
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)
	require.NoError(t, Ping(context.Background(), s))
	require.NoError(t, Close(s))

	_, err = NewStore("etcd", "")
	require.Error(t, err)

	_, err = NewStore("sqlite", "")
	require.Error(t, err)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Skipf("miniredis unavailable: %v", err)
	}
	t.Cleanup(mr.Close)

	s, err := NewStore("redis", "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(s) })
	require.NoError(t, Ping(ctx, s))

	users, err := s.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, users)

	require.NoError(t, s.Save(ctx, Users{"alice": {Key: "sk-alice"}}))
	raw, err := mr.Get(UsersKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"alice":{"key":"sk-alice"}}`, raw)

	users, err = s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, Users{"alice": {Key: "sk-alice"}}, users)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	s, err := NewStore("sqlite", path)
	require.NoError(t, err)
	require.NoError(t, Ping(ctx, s))

	users, err := s.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, users)

	require.NoError(t, s.Save(ctx, Users{"alice": {Key: "sk-1"}}))
	require.NoError(t, s.Save(ctx, Users{"alice": {Key: "sk-2"}, "bob": {Key: "sk-3"}}))
	require.NoError(t, Close(s))

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	users, err = reopened.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, Users{"alice": {Key: "sk-2"}, "bob": {Key: "sk-3"}}, users)
}

type failingStore struct{}

func (failingStore) Load(context.Context) (Users, error) { return nil, errors.New("store down") }
func (failingStore) Save(context.Context, Users) error   { return errors.New("store down") }
