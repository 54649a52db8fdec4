package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSONDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"text":"fever and cough","language":"en-US"}`, string(body))

		w.Write([]byte(`{"category":"Respiratory"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	var out struct {
		Category string `json:"category"`
	}
	err := client.PostJSON(context.Background(), "/api/analyze/text", map[string]string{
		"text":     "fever and cough",
		"language": "en-US",
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "Respiratory", out.Category)
}

func TestRemoteFailureCarriesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"symptoms too short"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	err := client.PostJSON(context.Background(), "/api/analyze/text", map[string]string{}, nil)
	require.Error(t, err)

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, KindRemote, failure.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, failure.Status)
	assert.Equal(t, "symptoms too short", failure.Detail)
}

func TestRemoteFailureGenericWithoutDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	err := client.GetJSON(context.Background(), "/api/admin/logs", nil, &struct{}{})
	require.Error(t, err)

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "request failed with status 500", failure.Detail)
}

func TestTransportFailureKind(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)

	err := client.GetJSON(context.Background(), "/api/admin/logs", nil, &struct{}{})
	require.Error(t, err)

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, KindTransport, failure.Kind)
	assert.NotEmpty(t, failure.Detail)
}

func TestTokenAttachedOnlyWhenArmed(t *testing.T) {
	var tokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.URL.Query().Get("token"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	require.NoError(t, client.GetJSON(context.Background(), "/api/admin/logs", nil, &struct{}{}))

	client.UseToken("tok-123")
	require.NoError(t, client.GetJSON(context.Background(), "/api/admin/logs", nil, &struct{}{}))

	client.ClearToken()
	require.NoError(t, client.GetJSON(context.Background(), "/api/admin/logs", nil, &struct{}{}))

	assert.Equal(t, []string{"", "tok-123", ""}, tokens)
}

func TestAuthFailureHookFires(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid token"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	client.UseToken("expired")

	fired := 0
	client.SetAuthFailureHook(func() { fired++ })

	err := client.GetJSON(context.Background(), "/api/admin/logs", nil, &struct{}{})
	require.Error(t, err)
	assert.Equal(t, 1, fired)
}

func TestPostMultipartFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Len(t, r.MultipartForm.File, 1)
		assert.Len(t, r.MultipartForm.File["file"], 1)
		assert.Equal(t, "rx.png", r.MultipartForm.File["file"][0].Filename)

		assert.Len(t, r.MultipartForm.Value, 2)
		assert.Equal(t, "en-US", r.FormValue("language"))
		assert.Equal(t, "headache", r.FormValue("symptoms"))

		file, err := r.MultipartForm.File["file"][0].Open()
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, []byte("image-bytes"), content)

		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	err := client.PostMultipart(context.Background(), "/api/analyze/image",
		bytes.NewReader([]byte("image-bytes")), "rx.png",
		map[string]string{"language": "en-US", "symptoms": "headache"}, &struct{}{})
	require.NoError(t, err)
}

func TestGetBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hello", r.URL.Query().Get("text"))
		assert.Equal(t, "en-US", r.URL.Query().Get("lang"))
		w.Write([]byte{0x49, 0x44, 0x33})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	params := url.Values{}
	params.Set("text", "hello")
	params.Set("lang", "en-US")

	audio, err := client.GetBytes(context.Background(), "/api/tts", params)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x49, 0x44, 0x33}, audio)
}
