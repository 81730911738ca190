package api

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/config"
)

// ProxyHandler relays selected browser requests to the parent application.
// The caller's parent session cookie travels with the relayed request; the
// parent's status and body come back unchanged.
type ProxyHandler struct {
	baseURL           string
	sessionCookieName string
	httpClient        *http.Client
	logger            *slog.Logger
}

func NewProxyHandler(cfg config.ParentConfig, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		baseURL:           strings.TrimRight(strings.TrimSpace(cfg.AppURL), "/"),
		sessionCookieName: cfg.SessionCookieName,
		httpClient:        &http.Client{Timeout: 30 * time.Second},
		logger:            logger,
	}
}

// SuggestAI relays a text suggestion request.
func (h *ProxyHandler) SuggestAI(c *gin.Context) {
	h.relay(c, http.MethodPost, "/api/ai/suggest.json")
}

// UploadMedia relays a media upload to the parent's media pipeline.
func (h *ProxyHandler) UploadMedia(c *gin.Context) {
	h.relay(c, http.MethodPost, "/api/media/upload.json")
}

// UnreadCount relays the parent notification badge counter.
func (h *ProxyHandler) UnreadCount(c *gin.Context) {
	h.relay(c, http.MethodGet, "/api/notifications/unread-count.json")
}

func (h *ProxyHandler) relay(c *gin.Context, method, parentPath string) {
	if h.baseURL == "" {
		Internal(c, "parent application not configured")
		return
	}

	logger := middleware.LoggerFromContext(c)

	var body io.Reader
	if method != http.MethodGet {
		body = c.Request.Body
	}
	req, err := http.NewRequestWithContext(c.Request.Context(), method, h.baseURL+parentPath, body)
	if err != nil {
		logger.Error("build relay request failed", slog.Any("error", err))
		Internal(c, "failed to relay request")
		return
	}
	if body != nil {
		req.Header.Set("Content-Type", c.GetHeader("Content-Type"))
	}

	if h.sessionCookieName != "" {
		if cookie, err := c.Cookie(h.sessionCookieName); err == nil && cookie != "" {
			req.AddCookie(&http.Cookie{Name: h.sessionCookieName, Value: cookie})
		}
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		logger.Error("relay request failed", slog.String("path", parentPath), slog.Any("error", err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "parent application unreachable"})
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.DataFromReader(resp.StatusCode, resp.ContentLength, contentType, resp.Body, nil)
}
