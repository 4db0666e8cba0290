package gmail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/justinnhli/send-gmail/internal/google"
)

const sendPath = "/gmail/v1/users/me/messages/send"

// fakeGmailAPI serves users.messages.send.
type fakeGmailAPI struct {
	*httptest.Server

	mu       sync.Mutex
	calls    int
	lastRaw  string
	lastAuth string
	status   int // non-zero makes every call fail with this status
}

func newFakeGmailAPI(t *testing.T) *fakeGmailAPI {
	t.Helper()
	f := &fakeGmailAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGmailAPI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method != http.MethodPost || r.URL.Path != sendPath {
		http.NotFound(w, r)
		return
	}
	f.calls++
	f.lastAuth = r.Header.Get("Authorization")

	var msg gmail.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.lastRaw = msg.Raw

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": f.status, "message": "Insufficient Permission"},
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":       "msg-1",
		"threadId": "thread-1",
		"labelIds": []string{"SENT"},
	})
}

func (f *fakeGmailAPI) option() option.ClientOption {
	return option.WithEndpoint(f.URL + "/")
}

func (f *fakeGmailAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func validCredential() *google.Credential {
	return &google.Credential{
		AccessToken: "ya29.valid",
		Expiry:      time.Now().Add(time.Hour),
		Scopes:      google.DefaultScopes,
	}
}

func TestNewClient_NilCredential(t *testing.T) {
	_, err := NewClient(context.Background(), nil)
	var authErr *google.AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestClient_Send(t *testing.T) {
	api := newFakeGmailAPI(t)
	ctx := context.Background()

	client, err := NewClient(ctx, validCredential(), api.option())
	require.NoError(t, err)
	assert.Zero(t, api.callCount(), "constructing a client makes no request")

	env, err := Build([]string{"a@x.com"}, "hi", "body", false, nil)
	require.NoError(t, err)

	res, err := client.Send(ctx, env)
	require.NoError(t, err)

	assert.Equal(t, "msg-1", res.ID)
	assert.Equal(t, "thread-1", res.ThreadID)
	assert.Equal(t, []string{"SENT"}, res.LabelIDs)
	assert.Equal(t, 1, api.callCount())
	assert.Equal(t, "Bearer ya29.valid", api.lastAuth)
	assert.Equal(t, env.Raw(), api.lastRaw)
}

func TestClient_SendError(t *testing.T) {
	api := newFakeGmailAPI(t)
	api.status = http.StatusForbidden
	ctx := context.Background()

	client, err := NewClient(ctx, validCredential(), api.option())
	require.NoError(t, err)

	env, err := Build([]string{"a@x.com"}, "hi", "body", false, nil)
	require.NoError(t, err)

	res, err := client.Send(ctx, env)
	assert.Nil(t, res)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusForbidden, terr.StatusCode)
	assert.Contains(t, err.Error(), "Insufficient Permission")
	assert.Equal(t, 1, api.callCount(), "no retry")
}

func TestClient_SendUnreachable(t *testing.T) {
	api := newFakeGmailAPI(t)
	opt := api.option()
	api.Close()

	client, err := NewClient(context.Background(), validCredential(), opt)
	require.NoError(t, err)

	env, err := Build([]string{"a@x.com"}, "hi", "body", false, nil)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), env)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, terr.StatusCode)
}
