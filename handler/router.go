package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const serviceName = "Marhaba Haji Chat API"

// RouterConfig tunes the standalone HTTP server.
type RouterConfig struct {
	// AllowedOrigins lists CORS origins; empty or "*" allows every origin.
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the gin engine serving /api/, /api/health and /api/chat.
func NewRouter(uc ChatUseCase, cfg RouterConfig) (*gin.Engine, error) {
	h, err := NewHandler(uc)
	if err != nil {
		return nil, err
	}
	if cfg.Logger != nil {
		h.logger = cfg.Logger.With("component", "handler")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(correlationID())
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	api := r.Group("/api")
	{
		api.GET("/", index)
		api.GET("/health", health)
		api.POST("/chat", h.chat)
	}
	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", correlationHeader},
		ExposeHeaders: []string{"Content-Length", correlationHeader},
		MaxAge:        12 * time.Hour,
	}
	var explicit []string
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			explicit = nil
			break
		}
		if o != "" {
			explicit = append(explicit, o)
		}
	}
	if len(explicit) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = explicit
	return cfg
}

// correlationID echoes X-Correlation-Id or assigns a fresh one.
func correlationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(correlationHeader))
		if id == "" {
			id = newCorrelationID()
		}
		c.Set(correlationHeader, id)
		c.Header(correlationHeader, id)
		c.Next()
	}
}

func index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": serviceName + " is running",
		"endpoints": gin.H{
			"/api/chat": "POST - Send questions about visas, flights, hotels and packages",
		},
	})
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
}

func (h *Handler) chat(c *gin.Context) {
	logger := h.logger.With("correlation_id", c.GetString(correlationHeader))

	var body chatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		logger.Info("rejected malformed body", "err", err)
		c.JSON(http.StatusBadRequest, invalidBody())
		return
	}
	status, payload := runChat(c.Request.Context(), h.uc, logger, body)
	c.JSON(status, payload)
}
