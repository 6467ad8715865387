package application

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harryli1024/hotel-purchase/internal/storage"
)

const (
	dateLayout        = "2006-01-02"
	maxAttachments    = 5
	maxAttachmentSize = 10 << 20
)

var allowedExtensions = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true,
	".bmp": true, ".pdf": true, ".doc": true, ".docx": true, ".xls": true,
	".xlsx": true,
}

// Uploader stores attachment files. It is nil when object storage is not
// configured, in which case submissions with files are rejected.
type Uploader interface {
	UploadAttachment(ctx context.Context, key string, file *multipart.FileHeader) (string, error)
}

type Handler struct {
	service  *Service
	uploader Uploader
	logger   *zap.Logger
}

func NewHandler(service *Service, uploader Uploader, logger *zap.Logger) *Handler {
	return &Handler{service: service, uploader: uploader, logger: logger}
}

func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请填写完整的申请信息"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "申请不存在"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "无权限操作此申请"})
	case errors.Is(err, ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "申请状态不允许此操作"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "服务器错误"})
	}
}

func checkAttachments(files []*multipart.FileHeader) string {
	if len(files) > maxAttachments {
		return "附件数量不能超过5个"
	}
	for _, file := range files {
		if file.Size > maxAttachmentSize {
			return "附件大小不能超过10MB"
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedExtensions[ext] {
			return "不支持的附件类型"
		}
	}
	return ""
}

func (h *Handler) Submit(c *gin.Context) {
	date, err := time.Parse(dateLayout, c.PostForm("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的采购日期"})
		return
	}

	var items []ItemInput
	if err := json.Unmarshal([]byte(c.PostForm("items")), &items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的物品清单"})
		return
	}

	var notes *string
	if v := c.PostForm("notes"); v != "" {
		notes = &v
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["attachments"]
	}
	if len(files) > 0 {
		if h.uploader == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "附件上传未启用"})
			return
		}
		if msg := checkAttachments(files); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": msg})
			return
		}
	}

	app, err := h.service.Submit(c.Request.Context(),
		c.GetInt("userID"), c.GetString("userName"), date, notes, items)
	if err != nil {
		respondErr(c, err)
		return
	}

	// Attachment failures do not undo the submission; the application is
	// already visible to reviewers at this point.
	for _, file := range files {
		key := storage.AttachmentKey(app.ID, file.Filename)
		url, err := h.uploader.UploadAttachment(c.Request.Context(), key, file)
		if err != nil {
			h.logger.Error("attachment upload failed",
				zap.Int("applicationID", app.ID), zap.String("file", file.Filename), zap.Error(err))
			continue
		}
		att := &Attachment{
			ApplicationID: app.ID,
			FileName:      file.Filename,
			FilePath:      url,
			FileType:      file.Header.Get("Content-Type"),
			FileSize:      file.Size,
		}
		if err := h.service.AddAttachment(c.Request.Context(), att); err != nil {
			h.logger.Error("attachment record failed",
				zap.Int("applicationID", app.ID), zap.String("file", file.Filename), zap.Error(err))
			continue
		}
		app.Attachments = append(app.Attachments, *att)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "提交成功", "data": app})
}

func (h *Handler) List(c *gin.Context) {
	filter := ListFilter{Status: c.Query("status"), ItemName: c.Query("itemName")}
	filter.PurchaserID, _ = strconv.Atoi(c.Query("purchaserId"))
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if v := c.Query("dateFrom"); v != "" {
		if t, err := time.Parse(dateLayout, v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := c.Query("dateTo"); v != "" {
		if t, err := time.Parse(dateLayout, v); err == nil {
			filter.DateTo = &t
		}
	}

	apps, total, err := h.service.List(c.Request.Context(), c.GetInt("userID"), c.GetString("userRole"), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"list":     apps,
			"total":    total,
			"page":     filter.Page,
			"pageSize": filter.PageSize,
		},
	})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的申请ID"})
		return
	}

	app, err := h.service.Get(c.Request.Context(), id, c.GetInt("userID"), c.GetString("userRole"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": app})
}

type reviewRequest struct {
	Approve bool    `json:"approve"`
	Notes   *string `json:"notes"`
}

func (h *Handler) Review(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的申请ID"})
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的审核数据"})
		return
	}

	app, err := h.service.Review(c.Request.Context(), id, c.GetInt("userID"), req.Approve, req.Notes)
	if err != nil {
		respondErr(c, err)
		return
	}
	message := "已拒绝"
	if req.Approve {
		message = "审核通过"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": app})
}

type accountingRequest struct {
	Notes *string `json:"notes"`
}

func (h *Handler) MarkAccounted(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的申请ID"})
		return
	}
	var req accountingRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.MarkAccounted(c.Request.Context(), id, c.GetString("userName"), req.Notes); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "已入账"})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的申请ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "删除成功"})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.GetInt("userID"), c.GetString("userRole"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

func (h *Handler) ExportExcel(c *gin.Context) {
	filter := ListFilter{Status: c.Query("status"), ItemName: c.Query("itemName")}
	filter.PurchaserID, _ = strconv.Atoi(c.Query("purchaserId"))
	if v := c.Query("dateFrom"); v != "" {
		if t, err := time.Parse(dateLayout, v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := c.Query("dateTo"); v != "" {
		if t, err := time.Parse(dateLayout, v); err == nil {
			filter.DateTo = &t
		}
	}

	f, err := h.service.ExportExcel(c.Request.Context(), c.GetInt("userID"), c.GetString("userRole"), filter)
	if err != nil {
		respondErr(c, err)
		return
	}

	filename := "采购申请_" + time.Now().Format("20060102150405") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("excel export write failed", zap.Error(err))
	}
}
