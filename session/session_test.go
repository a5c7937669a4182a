package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager()

	_, err := m.Get("alice")
	assert.ErrorIs(t, err, ErrNoActiveSession)

	s, err := m.Login("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.User)
	assert.Equal(t, core.ScopePersonal, s.Selection)
	assert.Equal(t, 1, m.Active())

	got, err := m.Get("alice")
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Logout("alice"))
	assert.ErrorIs(t, m.Logout("alice"), ErrNoActiveSession)
	assert.Equal(t, 0, m.Active())
}

func TestManager_LoginRequiresUser(t *testing.T) {
	_, err := NewManager().Login("")
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestManager_LoginReplacesSession(t *testing.T) {
	m := NewManager()
	first, err := m.Login("bob")
	require.NoError(t, err)
	require.NoError(t, first.SelectIndex(core.ScopeShared))

	second, err := m.Login("bob")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, core.ScopePersonal, second.Selection)
}

func TestManager_ConcurrentLogins(t *testing.T) {
	m := NewManager()
	users := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Login(u)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, len(users), m.Active())
}

func TestSession_CurrentIndexName(t *testing.T) {
	s := &Session{User: "alice", Selection: core.ScopePersonal}

	name, err := s.CurrentIndexName()
	require.NoError(t, err)
	assert.Equal(t, "pdf-qa-personal-alice", name)

	require.NoError(t, s.SelectIndex(core.ScopeShared))
	name, err = s.CurrentIndexName()
	require.NoError(t, err)
	assert.Equal(t, "pdf-qa-shared", name)
}

func TestSession_SelectIndexRejectsUnknownScope(t *testing.T) {
	s := &Session{User: "alice", Selection: core.ScopePersonal}
	err := s.SelectIndex(core.IndexScope(42))
	assert.ErrorIs(t, err, core.ErrInvalidIndexScope)
	assert.Equal(t, core.ScopePersonal, s.Selection)
}

func TestSession_SelectIndexByName(t *testing.T) {
	s := &Session{User: "alice", Selection: core.ScopePersonal}

	require.NoError(t, s.SelectIndexByName("pdf-qa-shared"))
	assert.Equal(t, core.ScopeShared, s.Selection)

	require.NoError(t, s.SelectIndexByName("pdf-qa-personal-alice"))
	assert.Equal(t, core.ScopePersonal, s.Selection)

	require.NoError(t, s.SelectIndexByName("pdf-qa-shared"))
	require.NoError(t, s.SelectIndexByName(""))
	assert.Equal(t, core.ScopePersonal, s.Selection)

	err := s.SelectIndexByName("something-else")
	assert.ErrorIs(t, err, core.ErrInvalidIndexScope)
}

type fakeIndexes struct {
	name  string
	calls []core.IndexScope
	err   error
}

func (f *fakeIndexes) VectorStore(_ context.Context, scope core.IndexScope, _ string) (vectorstores.VectorStore, error) {
	f.calls = append(f.calls, scope)
	if f.err != nil {
		return nil, f.err
	}
	return namedStore(f.name), nil
}

type namedStore string

func (namedStore) AddDocuments(context.Context, []schema.Document, ...vectorstores.Option) ([]string, error) {
	return nil, nil
}

func (namedStore) SimilaritySearch(context.Context, string, int, ...vectorstores.Option) ([]schema.Document, error) {
	return nil, nil
}

func TestRouter_DispatchesByScope(t *testing.T) {
	personal := &fakeIndexes{name: "local"}
	shared := &fakeIndexes{name: "remote"}
	r, err := NewRouter(personal, shared)
	require.NoError(t, err)

	store, err := r.VectorStore(context.Background(), core.ScopePersonal, "alice")
	require.NoError(t, err)
	assert.Equal(t, namedStore("local"), store)

	store, err = r.VectorStore(context.Background(), core.ScopeShared, "alice")
	require.NoError(t, err)
	assert.Equal(t, namedStore("remote"), store)

	assert.Equal(t, []core.IndexScope{core.ScopePersonal}, personal.calls)
	assert.Equal(t, []core.IndexScope{core.ScopeShared}, shared.calls)
}

func TestRouter_SharedFallsBackToPersonal(t *testing.T) {
	personal := &fakeIndexes{name: "local"}
	r, err := NewRouter(personal, nil)
	require.NoError(t, err)

	store, err := r.VectorStore(context.Background(), core.ScopeShared, "alice")
	require.NoError(t, err)
	assert.Equal(t, namedStore("local"), store)
}

func TestRouter_PropagatesErrors(t *testing.T) {
	boom := errors.New("unreachable")
	r, err := NewRouter(&fakeIndexes{err: boom}, nil)
	require.NoError(t, err)

	_, err = r.VectorStore(context.Background(), core.ScopePersonal, "alice")
	assert.ErrorIs(t, err, boom)
}

func TestNewRouter_RequiresPersonal(t *testing.T) {
	_, err := NewRouter(nil, &fakeIndexes{})
	assert.ErrorIs(t, err, ErrIndexManagerRequired)
}
