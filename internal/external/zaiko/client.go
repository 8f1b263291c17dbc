package zaiko

import (
	"github.com/wonny/yuutai/pkg/httputil"
	"github.com/wonny/yuutai/pkg/logger"
)

const (
	monthlyPath  = "/api/00ForWeb/ForZaiko2.php"
	realtimePath = "/api/00ForWeb/ForIonicZaikoPon.php"
)

// Client talks to the broker inventory site
// ⭐ SSOT: 재고 사이트 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new inventory site client.
// httpClient should carry the minimum call spacing for the site.
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://gokigen-life.tokyo"
	}
	return &Client{
		httpClient: httpClient.WithHeader("Referer", baseURL+"/"),
		logger:     log.WithModule("zaiko"),
		baseURL:    baseURL,
	}
}
