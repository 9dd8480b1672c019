package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dutch/internal/app"
	"dutch/internal/protocol"
)

type nopConn struct{}

func (nopConn) Send([]byte) error { return nil }
func (nopConn) Close() error      { return nil }

// lobbyWithTable registers one client and seats it at a fresh public table.
func lobbyWithTable(t *testing.T) (*app.Lobby, app.TableInfo) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	lobby := app.NewLobby(ctx, app.LobbyOptions{})
	id, err := lobby.Register(nopConn{})
	require.NoError(t, err)
	lobby.Handle(ctx, id, protocol.Join(""))
	require.Eventually(t, func() bool { return len(lobby.Tables()) == 1 }, time.Second, 5*time.Millisecond)
	return lobby, lobby.Tables()[0]
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	lobby, _ := lobbyWithTable(t)
	rec := do(t, NewRouter(lobby, nil, nil), http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.OK)
	assert.Equal(t, 1, got.Clients)
	assert.Equal(t, 1, got.Tables)
}

func TestListAndGetTables(t *testing.T) {
	lobby, info := lobbyWithTable(t)
	h := NewRouter(lobby, nil, nil)

	rec := do(t, h, http.MethodGet, "/tables", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tables []app.TableInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tables))
	require.Len(t, tables, 1)
	assert.Equal(t, info.Code, tables[0].Code)
	assert.Equal(t, 1, tables[0].Humans)

	rec = do(t, h, http.MethodGet, "/tables?open=true", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tables))
	assert.Len(t, tables, 1)

	rec = do(t, h, http.MethodGet, "/tables/"+info.Code, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var one app.TableInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, info.ID, one.ID)

	rec = do(t, h, http.MethodGet, "/tables/NOPE00", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvite(t *testing.T) {
	lobby, info := lobbyWithTable(t)
	invites := app.NewInviteService("admin-secret", time.Minute)
	h := NewRouter(lobby, invites, nil)

	rec := do(t, h, http.MethodPost, "/tables/"+info.Code+"/invite", `{"from":"ops"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var got inviteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	code, err := invites.Redeem(got.Token)
	require.NoError(t, err)
	assert.Equal(t, info.Code, code)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/tables/"+info.Code+"/invite", `{`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/tables/NOPE00/invite", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/tables/"+info.Code+"/invite", "").Code)
}

func TestInviteDisabled(t *testing.T) {
	lobby, info := lobbyWithTable(t)
	rec := do(t, NewRouter(lobby, app.NewInviteService("", 0), nil), http.MethodPost, "/tables/"+info.Code+"/invite", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, NewRouter(lobby, nil, nil), http.MethodPost, "/tables/"+info.Code+"/invite", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
