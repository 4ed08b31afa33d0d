package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML(), "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, &Options{Timeout: 20 * time.Millisecond})
	require.Error(t, err)
	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
}

func TestURL_HeadersAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Authorization-Key"))
		assert.Equal(t, "data.example.gov", r.Host)
		assert.Equal(t, "nurse", r.URL.Query().Get("Keyword"))
		assert.Equal(t, "2", r.URL.Query().Get("Page"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, &Options{
		Headers: map[string]string{"Authorization-Key": "secret", "Host": "data.example.gov"},
		Query:   url.Values{"Keyword": {"nurse"}, "Page": {"2"}},
	})
	require.NoError(t, err)
}

func TestClient_Page(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`<html><body><div class="job-card"><h3>Analyst</h3></div></body></html>`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{UserAgent: "custom-agent"})
	doc, err := client.Page(context.Background(), server.URL+"/careers")
	require.NoError(t, err)
	require.NotNil(t, doc.Url)
	assert.Equal(t, "/careers", doc.Url.Path)
	assert.Equal(t, "Analyst", doc.Find("h3").Text())
}

func TestClient_Describe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><nav>Menu</nav><div class="job-description"><p>Build</p><p>pipelines</p></div></body></html>`))
	}))
	defer server.Close()

	text, err := NewClient(ClientConfig{}).Describe(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Build pipelines", text)
}

func TestClient_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "abc", r.Header.Get("X-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count": 3}`))
	}))
	defer server.Close()

	var out struct {
		Count int `json:"count"`
	}
	err := NewClient(ClientConfig{}).JSON(context.Background(), server.URL, map[string]string{"X-Key": "abc"}, nil, time.Second, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
}

func TestClient_JSONInvalid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	var out map[string]any
	err := NewClient(ClientConfig{}).JSON(context.Background(), server.URL, nil, nil, time.Second, &out)
	require.Error(t, err)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "invalid JSON")
}
