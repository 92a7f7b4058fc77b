package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shoplite/shoplite/internal/models"
	"github.com/shoplite/shoplite/internal/repo"
	"github.com/shoplite/shoplite/internal/service"
)

type testEnv struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}))

	secret := []byte("test-secret")
	gormRepo := &repo.GormRepo{DB: db}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler: &AuthHTTP{
			Svc: &service.AuthService{
				Repo:      gormRepo,
				JWTSecret: secret,
				TokenTTL:  30 * time.Minute,
			},
		},
		CatalogHandler: &CatalogHTTP{
			Svc: &service.CatalogService{Repo: gormRepo},
		},
		JWTSecret: secret,
	})

	return &testEnv{t: t, e: e, db: db}
}

func (env *testEnv) do(method, target string, body any, token string) *httptest.ResponseRecorder {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T, username string) string {
	t.Helper()

	payload := map[string]string{"username": username, "password": "password123"}
	rec := env.do(http.MethodPost, "/auth/register", payload, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", payload, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func (env *testEnv) seedProduct(t *testing.T, prod models.Product) models.Product {
	t.Helper()
	require.NoError(t, env.db.Create(&prod).Error)
	return prod
}
