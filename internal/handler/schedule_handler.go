package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
	"github.com/noah-isme/hemo-scheduler-api/pkg/response"
)

// ScheduleHandler manages the chair map and patient placement endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Get godoc
// @Summary Current schedule snapshot
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Get(c.Request.Context()))
}

// Records godoc
// @Summary Schedule as flat records
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/records [get]
func (h *ScheduleHandler) Records(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Records(c.Request.Context()))
}

// ReplaceRecords godoc
// @Summary Rebuild the schedule from flat records
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceRecordsRequest true "Records"
// @Success 200 {object} response.Envelope
// @Router /schedule/records [put]
func (h *ScheduleHandler) ReplaceRecords(c *gin.Context) {
	var req dto.ReplaceRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid records payload"))
		return
	}
	resp, err := h.service.ReplaceRecords(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Matrix godoc
// @Summary Occupancy matrix of one rotation
// @Tags Schedule
// @Produce json
// @Param dayGroup query string true "SEG/QUA/SEX or TER/QUI/SÁB"
// @Success 200 {object} response.Envelope
// @Router /schedule/matrix [get]
func (h *ScheduleHandler) Matrix(c *gin.Context) {
	g, err := dayGroupQuery(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	matrix, err := h.service.Matrix(c.Request.Context(), g)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matrix)
}

// TimeSlots lists the grid row labels.
func (h *ScheduleHandler) TimeSlots(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.TimeSlots())
}

// SavePatient godoc
// @Summary Create or edit a patient placement
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.SavePatientRequest true "Placement"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/patients [post]
func (h *ScheduleHandler) SavePatient(c *gin.Context) {
	var req dto.SavePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid patient payload"))
		return
	}
	resp, err := h.service.SavePatient(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.ID == "" && req.Editing == nil {
		response.Created(c, resp)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// UpdatePatient godoc
// @Summary Update patient fields on every slot
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param payload body dto.UpdatePatientRequest true "Fields"
// @Success 200 {object} response.Envelope
// @Router /schedule/patients/{id} [patch]
func (h *ScheduleHandler) UpdatePatient(c *gin.Context) {
	var req dto.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid patient payload"))
		return
	}
	resp, err := h.service.UpdatePatient(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// MovePatient godoc
// @Summary Move or swap a turn occupant
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.MovePatientRequest true "Move"
// @Success 200 {object} response.Envelope
// @Router /schedule/patients/move [post]
func (h *ScheduleHandler) MovePatient(c *gin.Context) {
	var req dto.MovePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid move payload"))
		return
	}
	resp, err := h.service.MovePatient(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// DropPatient godoc
// @Summary Drop a patient on a grid cell
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.DropPatientRequest true "Drop"
// @Success 200 {object} response.Envelope
// @Router /schedule/patients/drop [post]
func (h *ScheduleHandler) DropPatient(c *gin.Context) {
	var req dto.DropPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid drop payload"))
		return
	}
	resp, err := h.service.DropPatient(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// DeletePatient godoc
// @Summary Remove a patient from every slot
// @Tags Schedule
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/patients/{id} [delete]
func (h *ScheduleHandler) DeletePatient(c *gin.Context) {
	resp, err := h.service.DeletePatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Lookup godoc
// @Summary Find the sessions of a patient by name
// @Tags Schedule
// @Produce json
// @Param name query string true "Patient name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/patients/lookup [get]
func (h *ScheduleHandler) Lookup(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "name required"))
		return
	}
	result, err := h.service.Lookup(c.Request.Context(), name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Enrollments lists one entry per patient with all memberships.
func (h *ScheduleHandler) Enrollments(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Enrollments(c.Request.Context()))
}

// ApplyEnrollment godoc
// @Summary Replace the memberships of a patient
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param payload body dto.EnrollmentRequest true "Enrollment"
// @Success 200 {object} response.Envelope
// @Router /schedule/enrollments/{id} [put]
func (h *ScheduleHandler) ApplyEnrollment(c *gin.Context) {
	var req dto.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid enrollment payload"))
		return
	}
	resp, err := h.service.ApplyEnrollment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Drift lists patients whose copies disagree across slots.
func (h *ScheduleHandler) Drift(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Drift(c.Request.Context()))
}
