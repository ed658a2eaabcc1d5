package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionCommitAndReload(t *testing.T) {
	sm := testManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser(7)
	sess.SetCompany(3)
	sess.SetFiscal(&FiscalSnapshot{ID: 81, Name: "2081/82"})

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	reloaded, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), reloaded.User())
	assert.Equal(t, int64(3), reloaded.Company())
	require.NotNil(t, reloaded.Fiscal())
	assert.Equal(t, int64(81), reloaded.Fiscal().ID)
}

func TestSetCompanyClearsForeignFiscalSnapshot(t *testing.T) {
	sess := &Session{}
	sess.SetCompany(3)
	sess.SetFiscal(&FiscalSnapshot{ID: 81})

	sess.SetCompany(4)
	assert.Nil(t, sess.Fiscal(), "snapshot of the previous company must not leak")

	sess.SetFiscal(&FiscalSnapshot{ID: 90})
	sess.SetCompany(4)
	assert.NotNil(t, sess.Fiscal(), "re-selecting the same company keeps the snapshot")
}

func TestDestroyedSessionExpiresCookie(t *testing.T) {
	sm := testManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser(7)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	sm.Destroy(sess)
	rec2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec2, sess))
	cookies := rec2.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	reloaded, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	assert.Zero(t, reloaded.User(), "destroyed session must not resurrect")
}
