package zaiko

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

	"github.com/wonny/yuutai/pkg/httputil"
	"github.com/wonny/yuutai/pkg/logger"
)

func newTestClient(baseURL string) *Client {
	httpClient := httputil.NewWithTimeout(logger.Nop(), 5*time.Second).DisableRetry()
	return NewClient(httpClient, baseURL, logger.Nop())
}

func TestFetchMonth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, monthlyPath, r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "3", r.PostForm.Get("month"))
		assert.NotEmpty(t, r.Header.Get("Referer"))

		w.Write([]byte(`[{"code":"0000","nvol":1749000000},{"code":"1234","nvol":500,"kabuka":"1500"}]`))
	}))
	defer server.Close()

	payload, err := newTestClient(server.URL).FetchMonth(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, payload, 2)

	// sentinel is kept; dropping it is the normalizer's job
	assert.Equal(t, "0000", payload[0]["code"])
	assert.Equal(t, json.Number("1749000000"), payload[0]["nvol"])
	assert.Equal(t, "1500", payload[1]["kabuka"])
}

func TestFetchMonth_InvalidMonth(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	for _, m := range []int{0, 13, -1} {
		_, err := c.FetchMonth(context.Background(), m)
		assert.Error(t, err)
	}
}

func TestFetchMonth_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchMonth(context.Background(), 3)
	assert.Error(t, err)
}

func TestFetchMonth_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchMonth(context.Background(), 3)
	assert.Error(t, err)
}

func TestFetchMonths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		month := r.PostForm.Get("month")
		if month == "5" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"code":"0000"},{"code":"1` + month + `"}]`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	got, err := c.FetchMonths(context.Background(), []int{1, 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "12", got[2][1]["code"])

	got, err = c.FetchMonths(context.Background(), []int{4, 5, 6})
	assert.Error(t, err)
	assert.Len(t, got, 1, "months before the failure are kept")
}

func TestFetchRealtime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, realtimePath, r.URL.Path)
		assert.Equal(t, "ionic://localhost", r.Header.Get("Origin"))
		w.Write([]byte(`[{"code":"0000"},{"code":"3387","nvol":100}]`))
	}))
	defer server.Close()

	payload, err := newTestClient(server.URL).FetchRealtime(context.Background())
	require.NoError(t, err)
	assert.Len(t, payload, 2)
}

func TestParseMaxCost(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		want      int64
		wantFound bool
	}{
		{"single", `<html><body><p>逆日歩最大額:1200円</p></body></html>`, 1200, true},
		{"largest wins", `<body><li>逆日歩最大額：300円</li><li>逆日歩最大額:4,500円</li><li>逆日歩最大額:900円</li></body>`, 4500, true},
		{"split across tags", `<body><span>逆日歩最大額:</span><b>750</b>円</body>`, 750, true},
		{"absent", `<body><p>逆日歩なし</p></body>`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := parseMaxCost(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchMaxCosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/1111yutai"):
			w.Write([]byte(`<body>逆日歩最大額:2400円</body>`))
		case strings.HasPrefix(r.URL.Path, "/2222yutai"):
			w.Write([]byte(`<body>no data</body>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).FetchMaxCosts(context.Background(), []string{"1111", "2222", "3333"})
	require.NoError(t, err)

	require.Contains(t, got, "1111")
	require.NotNil(t, got["1111"])
	assert.Equal(t, int64(2400), *got["1111"])

	require.Contains(t, got, "2222")
	assert.Nil(t, got["2222"])

	assert.NotContains(t, got, "3333", "failed lookups are retried next time")
}
