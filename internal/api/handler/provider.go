package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/internal/git/provider"
	"github.com/verustcode/giteebridge/internal/git/remoteurl"
	"github.com/verustcode/giteebridge/pkg/logger"
)

// ProviderHandler exposes the state of the hosting service adapter
type ProviderHandler struct {
	provider provider.Provider
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(p provider.Provider) *ProviderHandler {
	return &ProviderHandler{provider: p}
}

// ProviderStatus is the response of GET /api/v1/provider
type ProviderStatus struct {
	Name        string               `json:"name"`
	DisplayName string               `json:"display_name"`
	Server      remoteurl.ServerPath `json:"server"`
	APIURL      string               `json:"api_url"`
	Enabled     bool                 `json:"enabled"`
}

func (h *ProviderHandler) status() ProviderStatus {
	server := h.provider.Server()
	return ProviderStatus{
		Name:        h.provider.Name(),
		DisplayName: h.provider.DisplayName(),
		Server:      server,
		APIURL:      server.APIURL(),
		Enabled:     h.provider.IsEnabled(),
	}
}

// GetStatus handles GET /api/v1/provider
func (h *ProviderHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.status())
}

// Enable handles POST /api/v1/provider/enable
// It verifies the configured token; a rejected token disables the provider.
func (h *ProviderHandler) Enable(c *gin.Context) {
	if err := h.provider.Enable(c.Request.Context()); err != nil {
		logger.Warn("Failed to enable provider",
			zap.String("provider", h.provider.Name()),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.status())
}
