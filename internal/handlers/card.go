package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"asthma-care-server/internal/utils"
)

// qrSize is the edge of the card QR image in pixels.
const qrSize = 256

// CardResponse is the printable asthma card.
type CardResponse struct {
	HN            string  `json:"hn"`
	Name          string  `json:"name"`
	PredictedPEFR float64 `json:"predictedPefr"`
	Link          string  `json:"link"`
	QRPath        string  `json:"qrPath"`
}

// GetCard returns the asthma card of one patient.
func (h *PatientHandler) GetCard(c *gin.Context) {
	hn := c.Param("hn")
	rec, err := h.Clinic.PatientRecord(c.Request.Context(), hn)
	if err != nil {
		respondError(c, h.Logger, err, hn)
		return
	}
	utils.Success(c, "Asthma card retrieved", CardResponse{
		HN:            rec.Patient.HN,
		Name:          rec.Patient.FullName(),
		PredictedPEFR: rec.PredictedPEFR,
		Link:          rec.Link,
		QRPath:        c.Request.URL.Path + "/qr.png",
	})
}

// GetCardQR renders the patient link as a QR code PNG.
func (h *PatientHandler) GetCardQR(c *gin.Context) {
	hn := c.Param("hn")
	rec, err := h.Clinic.PatientRecord(c.Request.Context(), hn)
	if err != nil {
		respondError(c, h.Logger, err, hn)
		return
	}
	png, err := qrcode.Encode(rec.Link, qrcode.Medium, qrSize)
	if err != nil {
		utils.InternalServerError(c, "Failed to encode QR code: "+err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
