package ai

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service    *Service
	reconciler *Reconciler
}

func NewHandler(service *Service, reconciler *Reconciler) *Handler {
	return &Handler{service: service, reconciler: reconciler}
}

func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "物品不存在"})
	case errors.Is(err, ErrExists):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "物品已存在"})
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "服务器错误"})
	}
}

// --------------------------------------------------
// PRICE DATA
// --------------------------------------------------

func (h *Handler) ListPrices(c *gin.Context) {
	views, err := h.service.ListPrices(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
}

type updatePriceRequest struct {
	AvgPrice       *decimal.Decimal `json:"avgPrice"`
	AlertThreshold *decimal.Decimal `json:"alertThreshold"`
}

func (h *Handler) UpdatePrice(c *gin.Context) {
	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求"})
		return
	}

	err := h.service.UpdatePrice(c.Request.Context(), c.Param("itemName"), req.AvgPrice, req.AlertThreshold)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "已更新"})
}

type addPriceRequest struct {
	ItemName string          `json:"itemName"`
	Price    decimal.Decimal `json:"price"`
}

func (h *Handler) AddPrice(c *gin.Context) {
	var req addPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求"})
		return
	}
	if req.ItemName == "" || req.Price.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请填写物品名称和价格"})
		return
	}

	if err := h.service.AddPrice(c.Request.Context(), req.ItemName, req.Price); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "已添加"})
}

func (h *Handler) DeletePrice(c *gin.Context) {
	if err := h.service.DeletePrice(c.Request.Context(), c.Param("itemName")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "已删除"})
}

// --------------------------------------------------
// CONSUMPTION DATA
// --------------------------------------------------

func (h *Handler) ListConsumption(c *gin.Context) {
	aggs, err := h.service.ListConsumption(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": aggs})
}

type updateConsumptionRequest struct {
	AvgRate decimal.Decimal `json:"avgRate"`
}

func (h *Handler) UpdateConsumption(c *gin.Context) {
	var req updateConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求"})
		return
	}

	err := h.service.UpdateConsumption(c.Request.Context(), c.Param("itemName"), req.AvgRate)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "已更新"})
}

type addConsumptionRequest struct {
	ItemName string          `json:"itemName"`
	Rate     decimal.Decimal `json:"rate"`
}

func (h *Handler) AddConsumption(c *gin.Context) {
	var req addConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求"})
		return
	}
	if req.ItemName == "" || req.Rate.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请填写物品名称和用量"})
		return
	}

	if err := h.service.AddConsumption(c.Request.Context(), req.ItemName, req.Rate); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "已添加"})
}

func (h *Handler) DeleteConsumption(c *gin.Context) {
	if err := h.service.DeleteConsumption(c.Request.Context(), c.Param("itemName")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "已删除"})
}

// --------------------------------------------------
// EXPORT / IMPORT
// --------------------------------------------------

func (h *Handler) Export(c *gin.Context) {
	snap, err := h.reconciler.Export(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": snap})
}

type importRequest struct {
	Prices      []PriceAggregate       `json:"prices"`
	Consumption []ConsumptionAggregate `json:"consumption"`
	Mode        string                 `json:"mode"`
}

func (h *Handler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求"})
		return
	}

	mode := ImportMode(req.Mode)
	if req.Mode == "" {
		mode = ImportMerge
	}

	snap := &Snapshot{Prices: req.Prices, Consumption: req.Consumption}
	applied, err := h.reconciler.Import(c.Request.Context(), snap, mode)
	if err != nil {
		// Records before the failing one stay committed; report how far we got.
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"success": false,
			"message": "导入失败",
			"data":    gin.H{"applied": applied},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "导入成功",
		"data":    gin.H{"applied": applied},
	})
}
