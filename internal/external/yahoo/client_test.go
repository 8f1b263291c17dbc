package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/yuutai/pkg/httputil"
	"github.com/wonny/yuutai/pkg/logger"
)

func newTestClient(baseURL string) *Client {
	httpClient := httputil.NewWithTimeout(logger.Nop(), 5*time.Second).DisableRetry()
	return NewClient(httpClient, baseURL, ".T", logger.Nop())
}

func TestQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/7203.T", r.URL.Path)
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"7203.T","currency":"JPY","regularMarketPrice":2850.5}}],"error":null}}`))
	}))
	defer server.Close()

	price, err := newTestClient(server.URL).Quote(context.Background(), "7203")
	require.NoError(t, err)
	assert.Equal(t, 2850.5, price)
}

func TestQuote_NoQuote(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty result", `{"chart":{"result":[],"error":null}}`},
		{"zero price", `{"chart":{"result":[{"meta":{"regularMarketPrice":0}}],"error":null}}`},
		{"chart error", `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Quote(context.Background(), "9999")
			assert.ErrorIs(t, err, ErrNoQuote)
		})
	}
}

func TestQuote_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Quote(context.Background(), "9999")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoQuote)
}
