package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	"github.com/noah-isme/hemo-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
	"github.com/noah-isme/hemo-scheduler-api/pkg/response"
)

const maxUploadBytes = 8 << 20

// ImportHandler receives spreadsheet imports.
type ImportHandler struct {
	imports *service.ImportService
}

// NewImportHandler constructs handler.
func NewImportHandler(imports *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// Import godoc
// @Summary Import spreadsheet rows into a rotation
// @Description Accepts JSON rows or a multipart CSV upload in the "file" field with a "dayGroup" form value.
// @Tags Imports
// @Accept json,mpfd
// @Produce json
// @Param payload body dto.ImportRequest false "Rows"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /imports [post]
func (h *ImportHandler) Import(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.importUpload(c)
		return
	}
	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid import payload"))
		return
	}
	if g, ok := models.ParseDayGroup(string(req.DayGroup)); ok {
		req.DayGroup = g
	}
	summary, err := h.imports.ImportRows(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

func (h *ImportHandler) importUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	g, ok := models.ParseDayGroup(c.PostForm("dayGroup"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dayGroup is required"))
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, bindError(err, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, bindError(err, "unreadable upload"))
		return
	}
	defer file.Close()

	summary, err := h.imports.ImportCSV(c.Request.Context(), g, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
