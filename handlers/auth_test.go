package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"barberflow/config"
	staffRepo "barberflow/database/repository/staff"
	"barberflow/middleware"
	"barberflow/models"
	"barberflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeStaffRepo struct {
	byEmail map[string]*models.StaffUser
	byID    map[string]*models.StaffUser
}

var _ staffRepo.StaffRepository = (*fakeStaffRepo)(nil)

func (f *fakeStaffRepo) GetByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	return f.byEmail[email], nil
}

func (f *fakeStaffRepo) GetByID(ctx context.Context, id string) (*models.StaffUser, error) {
	return f.byID[id], nil
}

func (f *fakeStaffRepo) ListByShop(ctx context.Context, shopID string) ([]models.StaffUser, error) {
	var out []models.StaffUser
	for _, s := range f.byID {
		if s.ShopID == shopID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStaffRepo) Create(ctx context.Context, user *models.StaffUser) error {
	if f.byID == nil {
		f.byID = map[string]*models.StaffUser{}
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeStaffRepo) Update(ctx context.Context, user *models.StaffUser) error { return nil }
func (f *fakeStaffRepo) EnsureIndexes(ctx context.Context) error                  { return nil }

func activeStaff(t *testing.T, password string) *models.StaffUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.StaffUser{
		ID:           "staff-1",
		ShopID:       "shop-1",
		Email:        "owner@fadefactory.test",
		Name:         "Owner",
		PasswordHash: string(hash),
		Role:         models.RoleOwner,
		Active:       true,
	}
}

func loginRequest(t *testing.T, email, password string) *http.Request {
	t.Helper()
	body, err := json.Marshal(gin.H{"email": email, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginIssuesScopedToken(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	gin.SetMode(gin.TestMode)

	staff := activeStaff(t, "hunter22hunter22")
	h := NewAuthHandler(&fakeStaffRepo{byEmail: map[string]*models.StaffUser{staff.Email: staff}})
	r := gin.New()
	r.POST("/api/auth/login", h.Login)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, loginRequest(t, staff.Email, "hunter22hunter22"))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	claims, err := utils.ExtractStaffClaims(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.StaffID)
	assert.Equal(t, "shop-1", claims.ShopID)
	assert.Equal(t, string(models.RoleOwner), claims.Role)
}

func TestLoginAnswersUniform401(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	gin.SetMode(gin.TestMode)

	staff := activeStaff(t, "hunter22hunter22")
	disabled := activeStaff(t, "hunter22hunter22")
	disabled.Email = "gone@fadefactory.test"
	disabled.Active = false

	h := NewAuthHandler(&fakeStaffRepo{byEmail: map[string]*models.StaffUser{
		staff.Email:    staff,
		disabled.Email: disabled,
	}})
	r := gin.New()
	r.POST("/api/auth/login", h.Login)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@fadefactory.test", "hunter22hunter22"},
		{"wrong password", staff.Email, "not-the-password"},
		{"disabled account", disabled.Email, "hunter22hunter22"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, loginRequest(t, tc.email, tc.password))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestStaffAuthMiddlewareScopesRequests(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	gin.SetMode(gin.TestMode)

	staff := activeStaff(t, "hunter22hunter22")
	repo := &fakeStaffRepo{byID: map[string]*models.StaffUser{staff.ID: staff}}

	token, err := utils.GenerateStaffToken(utils.StaffClaims{
		StaffID: staff.ID,
		Email:   staff.Email,
		ShopID:  staff.ShopID,
		Role:    string(staff.Role),
	}, staffTokenTTL)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/whoami", middleware.StaffAuthMiddleware(repo), func(c *gin.Context) {
		claims, ok := middleware.StaffClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"shop_id": claims.ShopID})
	})

	t.Run("valid token passes with claims", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"shop_id":"shop-1"}`, w.Body.String())
	})

	t.Run("missing token rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("disabled account rejected", func(t *testing.T) {
		staff.Active = false
		defer func() { staff.Active = true }()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
