package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beatfarda/studio-api/internal/service/catalog"
	apperrors "github.com/beatfarda/studio-api/pkg/errors"
)

type Handler struct {
	catalog *catalog.Service
}

func NewHandler(catalogSvc *catalog.Service) *Handler {
	return &Handler{catalog: catalogSvc}
}

func (h *Handler) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": h.catalog.List()})
}

func (h *Handler) GetService(c *gin.Context) {
	svc, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		message := "internal server error"
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			status = appErr.StatusCode()
			message = appErr.Message
		}
		c.JSON(status, gin.H{"status": "error", "message": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": svc})
}
