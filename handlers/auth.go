package handlers

import (
	"net/http"
	"time"

	staffRepo "barberflow/database/repository/staff"
	"barberflow/middleware"
	"barberflow/models"
	"barberflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// staffTokenTTL is how long a staff login stays valid.
const staffTokenTTL = 24 * time.Hour

// AuthHandler serves staff login and account management for the admin
// API.
type AuthHandler struct {
	Staff staffRepo.StaffRepository
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(staff staffRepo.StaffRepository) *AuthHandler {
	return &AuthHandler{Staff: staff}
}

// Login exchanges staff credentials for a JWT. Unknown emails, wrong
// passwords and disabled accounts all answer the same 401 so the
// endpoint does not leak which accounts exist.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	staff, err := h.Staff.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		utils.GetLogger().Error("staff login lookup failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "login failed")
		return
	}
	if staff == nil || !staff.Active ||
		bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)) != nil {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		return
	}

	token, err := utils.GenerateStaffToken(utils.StaffClaims{
		StaffID: staff.ID,
		Email:   staff.Email,
		ShopID:  staff.ShopID,
		Role:    string(staff.Role),
	}, staffTokenTTL)
	if err != nil {
		utils.GetLogger().Error("staff token generation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"staff": staff,
	})
}

// CreateStaff registers a new staff account for the caller's shop.
// Owner only; platform admins (empty shop id) may create accounts for
// any shop.
func (h *AuthHandler) CreateStaff(c *gin.Context) {
	claims, ok := middleware.StaffClaims(c)
	if !ok || !models.StaffRole(claims.Role).CanManageStaff() {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "owner role required")
		return
	}

	var req struct {
		Email    string           `json:"email" binding:"required,email"`
		Name     string           `json:"name" binding:"required"`
		Password string           `json:"password" binding:"required,min=8"`
		Role     models.StaffRole `json:"role" binding:"required"`
		ShopID   string           `json:"shop_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if !req.Role.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "unknown role")
		return
	}

	shopID := claims.ShopID
	if shopID == "" {
		shopID = req.ShopID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to hash password")
		return
	}

	staff := &models.StaffUser{
		ID:           uuid.New().String(),
		ShopID:       shopID,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := h.Staff.Create(c.Request.Context(), staff); err != nil {
		utils.JSONError(c, http.StatusConflict, "Conflict", err.Error())
		return
	}

	c.JSON(http.StatusCreated, staff)
}

// ListStaff returns the staff accounts of the caller's shop.
func (h *AuthHandler) ListStaff(c *gin.Context) {
	claims, ok := middleware.StaffClaims(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "missing claims")
		return
	}

	shopID := claims.ShopID
	if shopID == "" {
		shopID = c.Query("shop_id")
	}

	staff, err := h.Staff.ListByShop(c.Request.Context(), shopID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to list staff")
		return
	}
	c.JSON(http.StatusOK, staff)
}

// UpdateStaff enables/disables an account or changes its role. Owner
// only.
func (h *AuthHandler) UpdateStaff(c *gin.Context) {
	claims, ok := middleware.StaffClaims(c)
	if !ok || !models.StaffRole(claims.Role).CanManageStaff() {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "owner role required")
		return
	}

	staff, err := h.Staff.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to fetch staff")
		return
	}
	if staff == nil || (claims.ShopID != "" && staff.ShopID != claims.ShopID) {
		utils.JSONError(c, http.StatusNotFound, "Not Found", "staff account not found")
		return
	}

	var req struct {
		Active *bool             `json:"active"`
		Role   *models.StaffRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if req.Active != nil {
		staff.Active = *req.Active
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request", "unknown role")
			return
		}
		staff.Role = *req.Role
	}

	if err := h.Staff.Update(c.Request.Context(), staff); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to update staff")
		return
	}
	c.JSON(http.StatusOK, staff)
}
