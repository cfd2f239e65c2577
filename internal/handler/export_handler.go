package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/service"
	"github.com/noah-isme/hemo-scheduler-api/pkg/response"
)

// ExportHandler streams CSV and PDF reports.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export godoc
// @Summary Download a report
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param kind path string true "map, roster, records or template"
// @Param format query string false "csv or pdf"
// @Param dayGroup query string false "Rotation; required for map"
// @Success 200 {file} file
// @Router /exports/{kind} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid export query"))
		return
	}
	g, err := dayGroupQuery(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Generate(c.Request.Context(), c.Param("kind"), q.Format, g)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
