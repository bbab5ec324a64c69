package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"asthma-care-server/internal/charts"
	"asthma-care-server/internal/models"
	"asthma-care-server/internal/service"
	"asthma-care-server/internal/store"
	"asthma-care-server/internal/utils"
)

// PatientHandler serves the staff patient pages.
type PatientHandler struct {
	Clinic *service.Clinic
	Logger *zap.Logger
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(clinic *service.Clinic, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{Clinic: clinic, Logger: logger}
}

// RegisterPatientRequest represents the registration form.
type RegisterPatientRequest struct {
	HN          string  `json:"hn" binding:"required" validate:"hn"`
	Prefix      string  `json:"prefix" binding:"required,oneof=นาย นาง น.ส. ด.ช. ด.ญ."`
	FirstName   string  `json:"firstName" binding:"required"`
	LastName    string  `json:"lastName" binding:"required"`
	DateOfBirth string  `json:"dob" binding:"required" validate:"sheetdate"`
	BestPEFR    int     `json:"bestPefr" binding:"min=0,max=900"`
	HeightCM    float64 `json:"height" binding:"required,min=50,max=250"`
	Sex         string  `json:"sex" binding:"omitempty,oneof=male female"`
}

// RecordVisitRequest represents the visit form.
type RecordVisitRequest struct {
	Date            string   `json:"date" validate:"sheetdate"`
	PEFR            int      `json:"pefr" binding:"min=0,max=900"`
	NotMeasured     bool     `json:"notMeasured"`
	ControlLevel    string   `json:"controlLevel" binding:"required,oneof=Controlled 'Partly Controlled' Uncontrolled"`
	Controllers     []string `json:"controllers"`
	Relievers       []string `json:"relievers"`
	Adherence       int      `json:"adherence" binding:"min=0,max=100"`
	RelativePickup  bool     `json:"relativePickup"`
	TechniqueTaught bool     `json:"techniqueTaught"`
	DRP             string   `json:"drp"`
	Advice          string   `json:"advice"`
	NextAppointment string   `json:"nextAppointment" validate:"sheetdate"`
	Note            string   `json:"note"`
}

// ListPatients returns the patient picker entries.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	utils.Success(c, "Patients retrieved successfully", h.Clinic.ListPatients(c.Request.Context()))
}

// GetPatient returns the full staff record of one patient.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	hn := c.Param("hn")
	rec, err := h.Clinic.PatientRecord(c.Request.Context(), hn)
	if err != nil {
		respondError(c, h.Logger, err, hn)
		return
	}
	utils.Success(c, "Patient retrieved successfully", rec)
}

// RegisterPatient appends a new patient.
func (h *PatientHandler) RegisterPatient(c *gin.Context) {
	var req RegisterPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	p, err := h.Clinic.RegisterPatient(c.Request.Context(), service.RegisterInput{
		HN:          req.HN,
		Prefix:      req.Prefix,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: store.ParseDate(req.DateOfBirth),
		BestPEFR:    req.BestPEFR,
		HeightCM:    req.HeightCM,
		Sex:         models.ParseSex(req.Sex),
	})
	if err != nil {
		respondError(c, h.Logger, err, req.HN)
		return
	}
	utils.Created(c, "ลงทะเบียนสำเร็จ", p)
}

// RecordVisit appends a visit for the patient in the path.
func (h *PatientHandler) RecordVisit(c *gin.Context) {
	hn := c.Param("hn")
	var req RecordVisitRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	in := service.VisitInput{
		Date:            store.ParseDate(req.Date),
		PEFR:            req.PEFR,
		NotMeasured:     req.NotMeasured,
		ControlLevel:    models.ControlLevel(req.ControlLevel),
		Controllers:     trimAll(req.Controllers),
		Relievers:       trimAll(req.Relievers),
		Adherence:       req.Adherence,
		RelativePickup:  req.RelativePickup,
		TechniqueTaught: req.TechniqueTaught,
		DRP:             strings.TrimSpace(req.DRP),
		Advice:          strings.TrimSpace(req.Advice),
		Note:            strings.TrimSpace(req.Note),
	}
	if next := store.ParseDate(req.NextAppointment); !next.IsZero() {
		in.NextAppointment = &next
	}

	v, err := h.Clinic.RecordVisit(c.Request.Context(), hn, in)
	if err != nil {
		respondError(c, h.Logger, err, hn)
		return
	}
	utils.Created(c, "บันทึกสำเร็จ", v)
}

// PatientChart renders the PEFR trend of one patient.
func (h *PatientHandler) PatientChart(c *gin.Context) {
	hn := c.Param("hn")
	rec, err := h.Clinic.PatientRecord(c.Request.Context(), hn)
	if err != nil {
		respondError(c, h.Logger, err, hn)
		return
	}
	renderPEFRChart(c, h.Logger, rec.Visits, rec.ReferencePEFR)
}

func renderPEFRChart(c *gin.Context, logger *zap.Logger, views []service.VisitView, reference float64) {
	visits := make([]models.Visit, len(views))
	for i, v := range views {
		visits[i] = v.Visit
	}
	html, err := charts.PEFRTrend(visits, reference)
	if err != nil {
		logger.Error("Failed to render PEFR chart", zap.Error(err))
		utils.InternalServerError(c, "Failed to render chart: "+err.Error())
		return
	}
	utils.HTML(c, html)
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
