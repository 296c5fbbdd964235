package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(ClientConfig{
		APIKey:  "test-key",
		URL:     url,
		Target:  "en",
		Referer: "https://tw.defrag.racing",
		Timeout: time.Second,
	})
}

func TestClient_Translate(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"key":    r.PostFormValue("key"),
			"q":      r.PostFormValue("q"),
			"target": r.PostFormValue("target"),
			"format": r.PostFormValue("format"),
		}
		assert.Equal(t, "https://tw.defrag.racing", r.Header.Get("Referer"))
		w.Write([]byte(`{"data":{"translations":[{"translatedText":"hello world"}]}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	translation, err := c.Translate(context.Background(), "hallo welt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", translation)
	assert.Equal(t, map[string]string{
		"key":    "test-key",
		"q":      "hallo welt",
		"target": "en",
		"format": "text",
	}, gotForm)
}

func TestClient_NoAPIKey(t *testing.T) {
	c := NewClient(ClientConfig{Timeout: time.Second})
	_, err := c.Translate(context.Background(), "hallo")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestClient_Non200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Translate(context.Background(), "hallo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestClient_EmptyTranslationsArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"translations":[]}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Translate(context.Background(), "hallo")
	assert.Error(t, err)
}

func TestClient_MalformedResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Translate(context.Background(), "hallo")
	assert.Error(t, err)
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	for i := 0; i < 10; i++ {
		_, err := c.Translate(context.Background(), "hallo")
		assert.Error(t, err)
	}
}
