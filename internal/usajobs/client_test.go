package usajobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-scraper/internal/fetch"
)

func newTestServer(t *testing.T, body []byte) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var requests []*http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Clone(context.Background()))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func testConfig(baseURL string) Config {
	return Config{BaseURL: baseURL, APIKey: "test-key", UserEmail: "ops@example.com", ResultsPerPage: 25}
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{UserEmail: "ops@example.com"}, fetch.NewClient(fetch.ClientConfig{}), nil)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "api_key", cfgErr.Field)

	_, err = NewClient(Config{APIKey: "k"}, fetch.NewClient(fetch.ClientConfig{}), nil)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "user_email", cfgErr.Field)
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(Config{APIKey: "k", UserEmail: "e@example.com"}, fetch.NewClient(fetch.ClientConfig{}), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, "data.usajobs.gov", c.host)
	assert.Equal(t, DefaultResultsPerPage, c.cfg.ResultsPerPage)
	assert.Equal(t, DefaultMaxPages, c.MaxPages())
}

func TestSearch_RequestShape(t *testing.T) {
	server, requests := newTestServer(t, []byte(`{"SearchResult": {"SearchResultCount": 0, "SearchResultCountAll": 0, "SearchResultItems": []}}`))

	c, err := NewClient(testConfig(server.URL), fetch.NewClient(fetch.ClientConfig{}), nil)
	require.NoError(t, err)

	page, err := c.Search(context.Background(), "data scientist", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Count)
	assert.Empty(t, page.Items)

	require.Len(t, *requests, 1)
	r := (*requests)[0]
	assert.Equal(t, "test-key", r.Header.Get("Authorization-Key"))
	assert.Equal(t, "ops@example.com", r.Header.Get("User-Agent"))
	q := r.URL.Query()
	assert.Equal(t, "data scientist", q.Get("Keyword"))
	assert.Equal(t, "25", q.Get("ResultsPerPage"))
	assert.Equal(t, "2", q.Get("Page"))
	assert.Equal(t, "Full", q.Get("Fields"))
}

func TestSearch_DecodesItems(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("testdata", "search_page.json"))
	require.NoError(t, err)
	server, _ := newTestServer(t, body)

	c, err := NewClient(testConfig(server.URL), fetch.NewClient(fetch.ClientConfig{}), nil)
	require.NoError(t, err)

	page, err := c.Search(context.Background(), "it specialist", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	require.Len(t, page.Invalid, 1)

	var parseErr *ParseError
	require.True(t, errors.As(page.Invalid[0], &parseErr))
	assert.Equal(t, 2, parseErr.Index)

	first := page.Items[0].MatchedObjectDescriptor
	assert.Equal(t, "IT Specialist (Data Management)", first.PositionTitle)
	assert.Equal(t, TextList{"Bethesda, Maryland"}, first.PositionLocationDisplay)
	require.Len(t, first.PositionLocation, 1)
	assert.True(t, first.PositionLocation[0].Latitude.Valid)
	assert.InDelta(t, 38.98067, first.PositionLocation[0].Latitude.Value, 1e-9)
	assert.Equal(t, "Maintain databases. Brief leadership on metrics.", first.UserArea.Details.MajorDuties.Join())
	assert.True(t, bool(first.UserArea.Details.TeleworkEligible))
	assert.False(t, bool(first.UserArea.Details.RemoteIndicator))

	second := page.Items[1].MatchedObjectDescriptor
	assert.Equal(t, TextList{"Multiple Locations", "Anywhere in the U.S. (remote job)"}, second.PositionLocationDisplay)
	assert.Equal(t, "Pathways program. 2024", second.UserArea.Details.JobSummary.Join())
	assert.Nil(t, second.UserArea.Details.MajorDuties)
	assert.True(t, bool(second.UserArea.Details.RemoteIndicator))
}

func TestSearch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c, err := NewClient(testConfig(server.URL), fetch.NewClient(fetch.ClientConfig{}), nil)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "nurse", 1)
	var fetchErr *fetch.Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
}

func TestTextList_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want TextList
	}{
		{name: "string", json: `"Denver, Colorado"`, want: TextList{"Denver, Colorado"}},
		{name: "list", json: `["A", " B ", "", null]`, want: TextList{"A", "B"}},
		{name: "number", json: `42`, want: TextList{"42"}},
		{name: "null", json: `null`, want: nil},
		{name: "empty string", json: `""`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TextList
			require.NoError(t, json.Unmarshal([]byte(tt.json), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad TextList
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &bad))
}

func TestCoordinate_Unmarshal(t *testing.T) {
	var loc Location
	require.NoError(t, json.Unmarshal([]byte(`{"Latitude": "39.74", "Longitude": null}`), &loc))
	assert.True(t, loc.Latitude.Valid)
	assert.Equal(t, 39.74, loc.Latitude.Value)
	assert.False(t, loc.Longitude.Valid)

	assert.Error(t, json.Unmarshal([]byte(`{"Latitude": "north"}`), &loc))
}

func TestSearch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c, err := NewClient(testConfig(server.URL), fetch.NewClient(fetch.ClientConfig{}), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Search(ctx, "nurse", 1)
	assert.Error(t, err)
}
