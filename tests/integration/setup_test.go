package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rigforge/internal/allocator"
	"rigforge/internal/catalog"
	"rigforge/internal/handlers"
	"rigforge/internal/middleware"
	"rigforge/internal/services"
	"rigforge/internal/testutil"
	"rigforge/internal/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Register()
	os.Exit(m.Run())
}

// testApp is a full application instance over an in-memory database
// and an in-process Redis.
type testApp struct {
	router *gin.Engine
	db     *gorm.DB
}

// newTestApp wires the whole stack the way cmd/api does, minus the
// listener.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	blacklist, _ := testutil.SetupTestBlacklist(t)

	// A catalog with candidates for every lowest-tier slot at budget 750.
	testutil.SeedCatalogForBudget(t, db, 750, allocator.DefaultTiers()[0].Ratios)
	catalogStore := catalog.NewStore(db)
	testutil.AssertNoError(t, catalogStore.Refresh(context.Background()))

	alloc, err := allocator.New(allocator.DefaultTiers(), 15, 2500, rand.New(rand.NewSource(99)))
	testutil.AssertNoError(t, err)

	userService := services.NewUserService(db)
	buildService := services.NewBuildService(db)
	adminService := services.NewAdminService(db)

	authHandler := handlers.NewAuthHandler(userService, buildService, blacklist)
	buildHandler := handlers.NewBuildHandler(buildService, alloc, catalogStore)
	partHandler := handlers.NewPartHandler(catalogStore)
	adminHandler := handlers.NewAdminHandler(adminService)

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(blacklist))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.DELETE("/users/me", authHandler.DeleteAccount)

	builds := protected.Group("/builds")
	builds.POST("", buildHandler.CreateBuild)
	builds.GET("", buildHandler.GetBuilds)
	builds.GET("/:id", buildHandler.GetBuild)
	builds.PUT("/:id", buildHandler.ReplaceBuild)
	builds.PUT("/:id/component", buildHandler.EditComponent)
	builds.DELETE("/:id", buildHandler.DeleteBuild)

	protected.GET("/parts", partHandler.GetParts)

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/stats", adminHandler.GetStats)
	admin.GET("/users", adminHandler.GetUsers)

	return &testApp{router: router, db: db}
}

// request performs one HTTP request against the app. A non-empty token
// is sent as a bearer credential.
func (app *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		testutil.AssertNoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

// registerUser registers a fresh account and returns its token.
func (app *testApp) registerUser(t *testing.T, username string) string {
	t.Helper()

	w := app.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"first_name": "Test",
		"surname":    "User",
		"username":   username,
		"email":      username + "@test.com",
		"password":   "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed: status %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	testutil.AssertNoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if resp.Token == "" {
		t.Fatal("register returned no token")
	}
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
}
