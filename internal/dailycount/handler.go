package dailycount

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func parseDateParam(value string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, value)
	return t, err == nil
}

func (h *Handler) List(c *gin.Context) {
	var from, to *time.Time
	if v := c.Query("dateFrom"); v != "" {
		if t, ok := parseDateParam(v); ok {
			from = &t
		}
	}
	if v := c.Query("dateTo"); v != "" {
		if t, ok := parseDateParam(v); ok {
			to = &t
		}
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	records, stats, err := h.service.List(c.Request.Context(), from, to, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "服务器错误"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"list":  records,
			"stats": stats,
		},
	})
}

func (h *Handler) Get(c *gin.Context) {
	date, ok := parseDateParam(c.Param("date"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的日期"})
		return
	}

	record, err := h.service.Get(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "服务器错误"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}

type saveRequest struct {
	Date  string  `json:"date"`
	Count *int    `json:"count"`
	Notes *string `json:"notes"`
}

func (h *Handler) Save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Date == "" || req.Count == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请填写日期和人数"})
		return
	}
	date, ok := parseDateParam(req.Date)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的日期"})
		return
	}

	err := h.service.Save(c.Request.Context(), date, *req.Count, req.Notes, c.GetInt("userID"))
	if err != nil {
		if err == ErrInvalidRecord {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "服务器错误"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "保存成功"})
}

type batchRequest struct {
	Records []saveRequest `json:"records"`
}

func (h *Handler) SaveBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Records == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的数据"})
		return
	}

	entries := make([]BatchEntry, 0, len(req.Records))
	for _, rec := range req.Records {
		if rec.Date == "" || rec.Count == nil {
			continue
		}
		date, ok := parseDateParam(rec.Date)
		if !ok {
			continue
		}
		entries = append(entries, BatchEntry{Date: date, Count: *rec.Count, Notes: rec.Notes})
	}

	saved, err := h.service.SaveBatch(c.Request.Context(), entries, c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "服务器错误"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "已保存 " + strconv.Itoa(saved) + " 条记录"})
}

func (h *Handler) Delete(c *gin.Context) {
	date, ok := parseDateParam(c.Param("date"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的日期"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), date); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "服务器错误"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "已删除"})
}
