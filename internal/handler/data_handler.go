package handler

import (
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
	"github.com/noah-isme/hemo-scheduler-api/pkg/response"
)

// DataHandler covers save status, backup files, restore, reload and wipe.
type DataHandler struct {
	data    *service.DataService
	backups *service.BackupService
}

// NewDataHandler constructs handler. backups may be nil when off-site copies are disabled.
func NewDataHandler(data *service.DataService, backups *service.BackupService) *DataHandler {
	return &DataHandler{data: data, backups: backups}
}

// Status godoc
// @Summary Save indicator
// @Tags Data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /data/status [get]
func (h *DataHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.data.Status(c.Request.Context()))
}

// Backup godoc
// @Summary Download the current schedule as a backup file
// @Tags Data
// @Produce json
// @Success 200 {file} file
// @Router /data/backup [get]
func (h *DataHandler) Backup(c *gin.Context) {
	filename, body, err := h.data.Download(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, "application/json", body)
}

// Restore godoc
// @Summary Replace the schedule with a backup file
// @Description Accepts the file as the raw JSON body or a multipart "file" field.
// @Tags Data
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /data/restore [post]
func (h *DataHandler) Restore(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	raw, err := readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.data.Restore(c.Request.Context(), raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

func readUpload(c *gin.Context) ([]byte, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, bindError(err, "unreadable body")
		}
		return raw, nil
	}
	header, err := c.FormFile("file")
	if err != nil {
		return nil, bindError(err, "file is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, bindError(err, "unreadable upload")
	}
	defer file.Close()
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, bindError(err, "unreadable upload")
	}
	return raw, nil
}

// Reload godoc
// @Summary Discard unsaved changes and read the store again
// @Tags Data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /data/reload [post]
func (h *DataHandler) Reload(c *gin.Context) {
	resp, err := h.data.Reload(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Wipe godoc
// @Summary Erase the schedule and every stored copy
// @Tags Data
// @Produce json
// @Param confirm query bool true "Must be true"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /data/wipe [post]
func (h *DataHandler) Wipe(c *gin.Context) {
	confirm, _ := strconv.ParseBool(c.Query("confirm"))
	resp, err := h.data.Wipe(c.Request.Context(), confirm)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// ListBackups godoc
// @Summary Off-site backup copies with signed download links
// @Tags Data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /data/backups [get]
func (h *DataHandler) ListBackups(c *gin.Context) {
	if h.backups == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "off-site backups are disabled"))
		return
	}
	items, err := h.backups.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.BackupListResponse{Backups: items})
}

// DownloadBackup serves one off-site copy. The signed token is the credential.
func (h *DataHandler) DownloadBackup(c *gin.Context) {
	if h.backups == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "off-site backups are disabled"))
		return
	}
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "token required"))
		return
	}
	key, body, err := h.backups.Open(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, path.Base(key), "application/json", body)
}
