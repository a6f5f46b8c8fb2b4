package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"clinic-logistics-backend/internal/model"
)

// Catalog handlers are the mechanical CRUD surface; no rules beyond storage.

// GetProducts handles GET /api/products.
func (h *Handler) GetProducts(c *gin.Context) {
	var products []model.Product
	if err := h.store.DB().WithContext(c.Request.Context()).
		Order("code ASC").Find(&products).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

type productRequest struct {
	Code       string  `json:"code" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Unit       string  `json:"unit"`
	UnitPrice  float64 `json:"unit_price"`
	SupplierID string  `json:"supplier_id"`
}

// PostProduct handles POST /api/products.
func (h *Handler) PostProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := model.Product{
		ID:         uuid.NewString(),
		Code:       req.Code,
		Name:       req.Name,
		Unit:       req.Unit,
		UnitPrice:  req.UnitPrice,
		SupplierID: req.SupplierID,
	}
	if err := h.store.DB().WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "product code already exists"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// PatchProduct handles PATCH /api/products/:id.
func (h *Handler) PatchProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())
	var product model.Product
	if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	product.Code = req.Code
	product.Name = req.Name
	product.Unit = req.Unit
	product.UnitPrice = req.UnitPrice
	product.SupplierID = req.SupplierID
	if err := db.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetSuppliers handles GET /api/suppliers.
func (h *Handler) GetSuppliers(c *gin.Context) {
	var suppliers []model.Supplier
	if err := h.store.DB().WithContext(c.Request.Context()).
		Order("name ASC").Find(&suppliers).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve suppliers"})
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

type supplierRequest struct {
	Name  string `json:"name" binding:"required"`
	TaxID string `json:"tax_id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PostSupplier handles POST /api/suppliers.
func (h *Handler) PostSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	supplier := model.Supplier{
		ID:    uuid.NewString(),
		Name:  req.Name,
		TaxID: req.TaxID,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := h.store.DB().WithContext(c.Request.Context()).Create(&supplier).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "supplier name already exists"})
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// PatchSupplier handles PATCH /api/suppliers/:id.
func (h *Handler) PatchSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())
	var supplier model.Supplier
	if err := db.First(&supplier, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "supplier not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	supplier.Name = req.Name
	supplier.TaxID = req.TaxID
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	if err := db.Save(&supplier).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, supplier)
}
