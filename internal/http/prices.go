package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"price-board/internal/domain"
)

// PricesResponse maps date to item to price.
type PricesResponse map[string]map[string]float64

func pricesToResponse(tables []domain.PriceTable) PricesResponse {
	resp := make(PricesResponse, len(tables))
	for _, table := range tables {
		resp[table.Date] = table.Items
	}
	return resp
}

func (h *Handler) listPrices(c *gin.Context) {
	tables, err := h.prices.ListPrices(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Failed to read prices")
		return
	}
	c.JSON(http.StatusOK, pricesToResponse(tables))
}

func (h *Handler) getPrices(c *gin.Context) {
	table, err := h.prices.GetPrices(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.writeError(c, err, "Failed to read prices")
		return
	}
	c.JSON(http.StatusOK, table.Items)
}

func (h *Handler) replacePrices(c *gin.Context) {
	var req map[string]map[string]float64
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	tables, err := h.prices.ReplacePrices(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "Failed to update prices")
		return
	}
	h.logger.WithField("dates", len(tables)).Info("prices replaced")
	c.JSON(http.StatusOK, gin.H{"message": "Prices updated successfully", "prices": pricesToResponse(tables)})
}

func (h *Handler) setPrices(c *gin.Context) {
	var req map[string]float64
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	table, err := h.prices.SetPrices(c.Request.Context(), c.Param("date"), req)
	if err != nil {
		h.writeError(c, err, "Failed to update prices")
		return
	}
	h.logger.WithFields(logrus.Fields{"date": table.Date, "items": len(table.Items)}).Info("prices updated")
	c.JSON(http.StatusOK, gin.H{"message": "Prices updated successfully", "date": table.Date, "prices": table.Items})
}

func (h *Handler) deletePrices(c *gin.Context) {
	if err := h.prices.DeletePrices(c.Request.Context(), c.Param("date")); err != nil {
		h.writeError(c, err, "Failed to delete prices")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prices deleted successfully"})
}
