package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func protectedRouter(handlerRan *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/any", RequireAuth(), func(c *gin.Context) {
		*handlerRan = true
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/admin-only", RequireAuthWithRole("admin"), func(c *gin.Context) {
		*handlerRan = true
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthAcceptsIssuedToken(t *testing.T) {
	var handlerRan bool
	r := protectedRouter(&handlerRan)

	token, err := GenerateToken(1, "dispatcher")
	if err != nil {
		t.Fatal(err)
	}
	rec := serve(r, http.MethodGet, "/any", token)
	if rec.Code != http.StatusOK || !handlerRan {
		t.Errorf("valid token: code %d, handlerRan %v", rec.Code, handlerRan)
	}
}

func TestRequireAuthRejectsUnsignedToken(t *testing.T) {
	var handlerRan bool
	r := protectedRouter(&handlerRan)

	// alg "none" must be refused even though the payload looks fine.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": 1, "role": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	rec := serve(r, http.MethodGet, "/any", token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unsigned token: code %d, want 401", rec.Code)
	}
	if handlerRan {
		t.Error("handler ran for an unsigned token")
	}
}

func TestRequireAuthWithRoleStopsChainBeforeHandler(t *testing.T) {
	var handlerRan bool
	r := protectedRouter(&handlerRan)

	token, err := GenerateToken(2, "dispatcher")
	if err != nil {
		t.Fatal(err)
	}
	rec := serve(r, http.MethodPost, "/admin-only", token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong role: code %d, want 403", rec.Code)
	}
	// The whole point of the gate: the route handler must never have run.
	if handlerRan {
		t.Error("admin-only handler ran for a dispatcher token")
	}

	rec = serve(r, http.MethodPost, "/admin-only", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: code %d, want 401", rec.Code)
	}
	if handlerRan {
		t.Error("admin-only handler ran without a token")
	}
}
