package evermem

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newTestClient starts an httptest server mounted under /api/v1 and returns a
// client pointing at it. Caller-provided handler sees the full request.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	opts = append([]Option{WithHTTPClient(ts.Client())}, opts...)
	return New(ts.URL+"/api/v1", opts...)
}

// --- Search ---

func TestSearch_EncodesQuery(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = io.WriteString(w, `{"result":{"memories":[],"total_count":0}}`)
	})

	include := true
	data, err := c.Search(context.Background(), SearchParams{
		Query:           "coffee preferences",
		UserID:          "u1",
		RetrieveMethod:  MethodHybrid,
		TopK:            3,
		MemoryTypes:     []string{TypeEpisodic, TypeProfile},
		IncludeMetadata: &include,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":{"memories":[],"total_count":0}}`, string(data))

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/v1/memories/search", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Accept"))

	q := got.URL.Query()
	assert.Equal(t, "coffee preferences", q.Get("query"))
	assert.Equal(t, "u1", q.Get("user_id"))
	assert.Equal(t, "hybrid", q.Get("retrieve_method"))
	assert.Equal(t, "3", q.Get("top_k"))
	assert.Equal(t, "true", q.Get("include_metadata"))
	assert.Equal(t, []string{"episodic_memory", "profile"}, q["memory_types"])
	assert.NotContains(t, q, "group_id", "zero values must be omitted")
	assert.NotContains(t, q, "radius")
}

func TestSearch_NonOKIsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	})

	_, err := c.Search(context.Background(), SearchParams{Query: "x"})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "search", se.Op)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, "EverMemOS search failed: 503 Service Unavailable", err.Error())
}

func TestSearch_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>not json</html>")
	})

	_, err := c.Search(context.Background(), SearchParams{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestSearch_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, WithTimeouts(20*time.Millisecond, 20*time.Millisecond))

	start := time.Now()
	_, err := c.Search(context.Background(), SearchParams{Query: "slow"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

// --- Store ---

func TestStore_PostsJSONBody(t *testing.T) {
	var body map[string]any
	var contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/memories", r.URL.Path)
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"result":{"count":2,"status_info":"extracted"}}`)
	})

	data, err := c.Store(context.Background(), StoreParams{
		MessageID:  "oc_1",
		CreateTime: "2026-01-02T03:04:05.000Z",
		Sender:     "openclaw",
		Content:    "my email is a@b.co",
		Role:       "user",
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "oc_1", body["message_id"])
	assert.Equal(t, "my email is a@b.co", body["content"])
	assert.NotContains(t, body, "group_id")
	assert.NotContains(t, body, "refer_list")

	ack := ParseStoreAck(data)
	assert.Equal(t, StoreAck{Count: 2, Status: "extracted"}, ack)
}

func TestParseStoreAck_Defaults(t *testing.T) {
	tests := []struct {
		name string
		data string
		want StoreAck
	}{
		{"empty object", `{}`, StoreAck{Status: "unknown"}},
		{"null status", `{"result":{"count":1,"status_info":null}}`, StoreAck{Count: 1, Status: "unknown"}},
		{"invalid", `nope`, StoreAck{Status: "unknown"}},
		{"empty status kept", `{"result":{"status_info":""}}`, StoreAck{Status: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStoreAck([]byte(tt.data)))
		})
	}
}

// --- Fetch / Delete ---

func TestFetch_EncodesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/memories", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "profile", q.Get("memory_type"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "u2", q.Get("user_id"))
		assert.NotContains(t, q, "offset")
		_, _ = io.WriteString(w, `{"result":{"total_count":7}}`)
	})

	_, err := c.Fetch(context.Background(), FetchParams{UserID: "u2", MemoryType: TypeProfile, Limit: 1})
	require.NoError(t, err)
}

func TestDelete_UsesDeleteMethod(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "evt-9", r.URL.Query().Get("event_id"))
		_, _ = io.WriteString(w, `{"result":{"count":1}}`)
	})

	_, err := c.Delete(context.Background(), DeleteParams{EventID: "evt-9"})
	require.NoError(t, err)
}

// --- Health ---

func TestHealth_StripsAPIPrefix(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"healthy"}`)
	})

	h := c.Health(context.Background())
	assert.True(t, h.OK)
	assert.Equal(t, "healthy", h.Status)
	assert.Empty(t, h.Error)
}

func TestHealth_NonOK(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	h := c.Health(context.Background())
	assert.False(t, h.OK)
	assert.Equal(t, "HTTP 502", h.Error)
}

func TestHealth_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	h := New(url+"/api/v1", WithTimeouts(time.Second, 200*time.Millisecond)).Health(context.Background())
	assert.False(t, h.OK)
	assert.NotEmpty(t, h.Error)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:8001/api/v1/")
	assert.Equal(t, "http://localhost:8001/api/v1", c.BaseURL())
}
