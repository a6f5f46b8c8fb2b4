package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"clinic-logistics-backend/internal/model"
)

// GetResources handles GET /api/resources. Pass ?active=true to hide retired
// resources.
func (h *Handler) GetResources(c *gin.Context) {
	q := h.store.DB().WithContext(c.Request.Context()).Model(&model.ExamResource{})
	if c.Query("active") == "true" {
		q = q.Where("active = ?", true)
	}

	var resources []model.ExamResource
	if err := q.Order("name ASC").Find(&resources).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve resources"})
		return
	}
	c.JSON(http.StatusOK, resources)
}

type createResourceRequest struct {
	Name                     string `json:"name" binding:"required"`
	EstimatedDurationMinutes int    `json:"estimated_duration_minutes" binding:"required,gt=0"`
}

// PostResource handles POST /api/resources.
func (h *Handler) PostResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resource := model.ExamResource{
		ID:                       uuid.NewString(),
		Name:                     req.Name,
		EstimatedDurationMinutes: req.EstimatedDurationMinutes,
		Active:                   true,
	}
	if err := h.store.DB().WithContext(c.Request.Context()).Create(&resource).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "resource name already exists"})
		return
	}
	c.JSON(http.StatusCreated, resource)
}

type updateResourceRequest struct {
	Name                     *string `json:"name"`
	EstimatedDurationMinutes *int    `json:"estimated_duration_minutes"`
	Active                   *bool   `json:"active"`
}

// PatchResource handles PATCH /api/resources/:id.
func (h *Handler) PatchResource(c *gin.Context) {
	var req updateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())
	var resource model.ExamResource
	if err := db.First(&resource, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if req.Name != nil {
		resource.Name = *req.Name
	}
	if req.EstimatedDurationMinutes != nil {
		if *req.EstimatedDurationMinutes <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "estimated_duration_minutes must be positive"})
			return
		}
		resource.EstimatedDurationMinutes = *req.EstimatedDurationMinutes
	}
	if req.Active != nil {
		resource.Active = *req.Active
	}

	if err := db.Save(&resource).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resource)
}

// DeleteResource handles DELETE /api/resources/:id as a soft deactivate;
// existing appointments keep their reference.
func (h *Handler) DeleteResource(c *gin.Context) {
	db := h.store.DB().WithContext(c.Request.Context())
	res := db.Model(&model.ExamResource{}).
		Where("id = ?", c.Param("id")).
		Update("active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
