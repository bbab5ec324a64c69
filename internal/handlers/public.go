package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"asthma-care-server/internal/service"
	"asthma-care-server/internal/utils"
)

// PublicHandler serves the unauthenticated patient link.
type PublicHandler struct {
	Clinic *service.Clinic
	Logger *zap.Logger
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(clinic *service.Clinic, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{Clinic: clinic, Logger: logger}
}

// hnParam reads the HN from the path or, for the printed link, the query.
func hnParam(c *gin.Context) string {
	if hn := c.Param("hn"); hn != "" {
		return hn
	}
	return c.Query("hn")
}

// GetSummary returns the masked patient summary.
func (h *PublicHandler) GetSummary(c *gin.Context) {
	hn := hnParam(c)
	if strings.TrimSpace(hn) == "" {
		utils.BadRequest(c, service.ErrInvalidHN.Error())
		return
	}
	summary, err := h.Clinic.PublicSummary(c.Request.Context(), hn)
	if err != nil {
		respondError(c, h.Logger, err, hn)
		return
	}
	utils.Success(c, "Patient summary retrieved", summary)
}

// GetChart renders the patient's PEFR trend.
func (h *PublicHandler) GetChart(c *gin.Context) {
	hn := hnParam(c)
	if strings.TrimSpace(hn) == "" {
		utils.BadRequest(c, service.ErrInvalidHN.Error())
		return
	}
	summary, err := h.Clinic.PublicSummary(c.Request.Context(), hn)
	if err != nil {
		respondError(c, h.Logger, err, hn)
		return
	}
	renderPEFRChart(c, h.Logger, summary.Visits, summary.ReferencePEFR)
}
