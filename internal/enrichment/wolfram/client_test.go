package wolfram_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriadvisor/nutriadvisor/internal/enrichment"
	"github.com/nutriadvisor/nutriadvisor/internal/enrichment/wolfram"
	"github.com/nutriadvisor/nutriadvisor/internal/provider/resilience"
)

func newTestClient(serverURL string) *wolfram.Client {
	return wolfram.NewClient(wolfram.ClientConfig{
		AppID:      "****",
		BaseURL:    serverURL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
		Logger:     zerolog.Nop(),
	})
}

func TestClient_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "****", r.URL.Query().Get("appid"))
		assert.Equal(t, "BMI for 80 kg and 180 cm", r.URL.Query().Get("i"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))

		_, _ = w.Write([]byte("24.7 (body mass index)"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	answer, err := client.Query(context.Background(), "BMI for 80 kg and 180 cm")
	require.NoError(t, err)
	assert.Equal(t, "24.7 (body mass index)", answer)
}

func TestClient_Query_TrimsWhitespace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("  1905 calories\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	answer, err := client.Query(context.Background(), "BMR calculation")
	require.NoError(t, err)
	assert.Equal(t, "1905 calories", answer)
}

func TestClient_Query_NoAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
		_, _ = w.Write([]byte("Wolfram|Alpha did not understand your input"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Query(context.Background(), "gibberish")
	require.Error(t, err)
	assert.ErrorIs(t, err, enrichment.ErrNoAnswer)
}

func TestClient_Query_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Query(context.Background(), "BMI for 80 kg and 180 cm")
	require.Error(t, err)
	assert.ErrorIs(t, err, enrichment.ErrEmptyAnswer)
}

func TestClient_Query_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Error 1: Invalid appid"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Query(context.Background(), "BMI for 80 kg and 180 cm")
	require.Error(t, err)
	assert.ErrorIs(t, err, enrichment.ErrUnavailable)
}

func TestClient_Query_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Query(ctx, "BMI for 80 kg and 180 cm")
	require.Error(t, err)
	assert.ErrorIs(t, err, enrichment.ErrUnavailable)
}

func TestClient_Name(t *testing.T) {
	client := wolfram.NewClient(wolfram.ClientConfig{AppID: "****"})
	assert.Equal(t, "wolframalpha", client.Name())
}
