package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret"

func signed(t *testing.T, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": "storefront-ui",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func guarded(secret string) *echo.Echo {
	e := echo.New()
	e.POST("/cart", func(c echo.Context) error {
		sub, _ := c.Get(middleware.CtxSubjectKey).(string)
		return c.String(http.StatusOK, sub)
	}, middleware.WriteGuard(secret))
	return e
}

func doPost(e *echo.Echo, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/cart", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWriteGuard_DisabledWithoutSecret(t *testing.T) {
	rec := doPost(guarded(""), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteGuard_MissingHeader(t *testing.T) {
	rec := doPost(guarded(testSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestWriteGuard_NotBearer(t *testing.T) {
	rec := doPost(guarded(testSecret), "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWriteGuard_WrongSecret(t *testing.T) {
	rec := doPost(guarded(testSecret), "Bearer "+signed(t, jwt.SigningMethodHS256, []byte("other")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWriteGuard_WrongMethod(t *testing.T) {
	rec := doPost(guarded(testSecret), "Bearer "+signed(t, jwt.SigningMethodHS512, []byte(testSecret)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWriteGuard_Valid(t *testing.T) {
	rec := doPost(guarded(testSecret), "Bearer "+signed(t, jwt.SigningMethodHS256, []byte(testSecret)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "storefront-ui", rec.Body.String())
}

func TestRequestLog_SetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.Out = &buf

	e := echo.New()
	e.Use(middleware.RequestLog(log))
	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
	assert.Contains(t, buf.String(), "path=/healthz")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(echo.HeaderXRequestID))
}
