package handlers

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

	"rigforge/internal/allocator"
	"rigforge/internal/catalog"
	apperrors "rigforge/internal/errors"
	"rigforge/internal/models"
	"rigforge/internal/testutil"
	"rigforge/internal/uuid"
	"rigforge/internal/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Register()
	os.Exit(m.Run())
}

// mockBuildService is a function-field mock of services.BuildServicer.
type mockBuildService struct {
	createBuildFn          func(ctx context.Context, build *models.Build, userID string) (*models.Build, error)
	getUserBuildsFn        func(ctx context.Context, userID string) ([]models.Build, error)
	getBuildByIDFn         func(ctx context.Context, buildID string) (*models.Build, error)
	editComponentFn        func(ctx context.Context, buildID string, slot models.Slot, newName string, newPrice float64) (*models.Build, error)
	replaceBuildFn         func(ctx context.Context, buildID, userID string, components models.ComponentMap) (*models.Build, error)
	deleteBuildFn          func(ctx context.Context, buildID, userID string) error
	cascadeDeleteAccountFn func(ctx context.Context, userID string) error
}

func (m *mockBuildService) CreateBuild(ctx context.Context, build *models.Build, userID string) (*models.Build, error) {
	return m.createBuildFn(ctx, build, userID)
}

func (m *mockBuildService) GetUserBuilds(ctx context.Context, userID string) ([]models.Build, error) {
	return m.getUserBuildsFn(ctx, userID)
}

func (m *mockBuildService) GetBuildByID(ctx context.Context, buildID string) (*models.Build, error) {
	return m.getBuildByIDFn(ctx, buildID)
}

func (m *mockBuildService) EditComponent(ctx context.Context, buildID string, slot models.Slot, newName string, newPrice float64) (*models.Build, error) {
	return m.editComponentFn(ctx, buildID, slot, newName, newPrice)
}

func (m *mockBuildService) ReplaceBuild(ctx context.Context, buildID, userID string, components models.ComponentMap) (*models.Build, error) {
	return m.replaceBuildFn(ctx, buildID, userID, components)
}

func (m *mockBuildService) DeleteBuild(ctx context.Context, buildID, userID string) error {
	return m.deleteBuildFn(ctx, buildID, userID)
}

func (m *mockBuildService) CascadeDeleteAccount(ctx context.Context, userID string) error {
	return m.cascadeDeleteAccountFn(ctx, userID)
}

const testUserID = "00000000-0000-7000-8000-000000000001"

// newBuildRouter wires a BuildHandler behind a stub auth middleware
// that injects testUserID.
func newBuildRouter(t *testing.T, svc *mockBuildService) *gin.Engine {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	testutil.SeedCatalogForBudget(t, db, 750, allocator.DefaultTiers()[0].Ratios)

	store := catalog.NewStore(db)
	testutil.AssertNoError(t, store.Refresh(context.Background()))

	alloc, err := allocator.New(allocator.DefaultTiers(), 15, 2500, rand.New(rand.NewSource(1)))
	testutil.AssertNoError(t, err)

	handler := NewBuildHandler(svc, alloc, store)

	router := gin.New()
	authed := router.Group("/", func(c *gin.Context) { c.Set("userID", testUserID) })
	authed.POST("/builds", handler.CreateBuild)
	authed.GET("/builds", handler.GetBuilds)
	authed.GET("/builds/:id", handler.GetBuild)
	authed.PUT("/builds/:id", handler.ReplaceBuild)
	authed.PUT("/builds/:id/component", handler.EditComponent)
	authed.DELETE("/builds/:id", handler.DeleteBuild)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		testutil.AssertNoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error response %q: %v", w.Body.String(), err)
	}
	return body.Error.Code
}

func TestCreateBuildEndpoint(t *testing.T) {
	svc := &mockBuildService{
		createBuildFn: func(ctx context.Context, build *models.Build, userID string) (*models.Build, error) {
			if userID != testUserID {
				t.Errorf("service called with user %s", userID)
			}
			build.UserID = userID
			return build, nil
		},
	}
	router := newBuildRouter(t, svc)

	w := doJSON(t, router, http.MethodPost, "/builds", gin.H{"budget": 750})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if _, ok := body["build"]; !ok {
		t.Error("response missing build")
	}
	if _, ok := body["warning"]; ok {
		t.Error("clean create should carry no warning")
	}
}

func TestCreateBuildEndpointIndexWarning(t *testing.T) {
	svc := &mockBuildService{
		createBuildFn: func(ctx context.Context, build *models.Build, userID string) (*models.Build, error) {
			build.UserID = userID
			return build, apperrors.ErrBuildIndexInconsistent
		},
	}
	router := newBuildRouter(t, svc)

	w := doJSON(t, router, http.MethodPost, "/builds", gin.H{"budget": 750})
	if w.Code != http.StatusCreated {
		t.Fatalf("warning is still success: status %d, body %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if _, ok := body["build"]; !ok {
		t.Error("warned create must still return the build")
	}
	if _, ok := body["warning"]; !ok {
		t.Error("response missing warning field")
	}
}

func TestCreateBuildEndpointBudgetOutOfRange(t *testing.T) {
	router := newBuildRouter(t, &mockBuildService{})

	w := doJSON(t, router, http.MethodPost, "/builds", gin.H{"budget": 99999})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "BUDGET_OUT_OF_RANGE" {
		t.Errorf("error code %s", code)
	}
}

func TestCreateBuildEndpointNoValidPart(t *testing.T) {
	svc := &mockBuildService{}
	router := newBuildRouter(t, svc)

	// Catalog is seeded for the lowest tier only; a middle-tier budget
	// finds nothing in band for any slot.
	w := doJSON(t, router, http.MethodPost, "/builds", gin.H{"budget": 1400})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "NO_VALID_PART" {
		t.Errorf("error code %s", code)
	}
}

func TestCreateBuildEndpointRejectsBadPayload(t *testing.T) {
	router := newBuildRouter(t, &mockBuildService{})

	for _, payload := range []gin.H{{}, {"budget": -5}, {"budget": "lots"}} {
		w := doJSON(t, router, http.MethodPost, "/builds", payload)
		if w.Code != http.StatusBadRequest {
			t.Errorf("payload %v: status %d, want 400", payload, w.Code)
		}
	}
}

func TestGetBuildsEndpoint(t *testing.T) {
	build := &models.Build{BuildID: uuid.New(), UserID: testUserID}
	build.SetComponents(testutil.TestComponentMap())

	svc := &mockBuildService{
		getUserBuildsFn: func(ctx context.Context, userID string) ([]models.Build, error) {
			return []models.Build{*build}, nil
		},
	}
	router := newBuildRouter(t, svc)

	w := doJSON(t, router, http.MethodGet, "/builds", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Builds []models.Build `json:"builds"`
	}
	testutil.AssertNoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	if len(body.Builds) != 1 || body.Builds[0].BuildID != build.BuildID {
		t.Errorf("unexpected builds payload: %+v", body.Builds)
	}
}

func TestGetBuildEndpointForbiddenForNonOwner(t *testing.T) {
	foreign := &models.Build{BuildID: uuid.New(), UserID: uuid.New()}
	foreign.SetComponents(testutil.TestComponentMap())

	svc := &mockBuildService{
		getBuildByIDFn: func(ctx context.Context, buildID string) (*models.Build, error) {
			return foreign, nil
		},
	}
	router := newBuildRouter(t, svc)

	w := doJSON(t, router, http.MethodGet, "/builds/"+foreign.BuildID, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "FORBIDDEN" {
		t.Errorf("error code %s", code)
	}
}

func TestGetBuildEndpointInvalidID(t *testing.T) {
	router := newBuildRouter(t, &mockBuildService{})

	w := doJSON(t, router, http.MethodGet, "/builds/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "INVALID_INPUT" {
		t.Errorf("error code %s", code)
	}
}

func TestEditComponentEndpointRejectsUnknownSlot(t *testing.T) {
	router := newBuildRouter(t, &mockBuildService{})

	w := doJSON(t, router, http.MethodPut, "/builds/"+uuid.New()+"/component",
		gin.H{"slot": "Toaster", "name": "Whatever", "price": 50})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown slot should fail binding: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestEditComponentEndpoint(t *testing.T) {
	owned := &models.Build{BuildID: uuid.New(), UserID: testUserID}
	owned.SetComponents(testutil.TestComponentMap())

	svc := &mockBuildService{
		getBuildByIDFn: func(ctx context.Context, buildID string) (*models.Build, error) {
			return owned, nil
		},
		editComponentFn: func(ctx context.Context, buildID string, slot models.Slot, newName string, newPrice float64) (*models.Build, error) {
			if slot != models.SlotGPU || newName != "RTX 4070" || newPrice != 520 {
				t.Errorf("service called with %s %s %v", slot, newName, newPrice)
			}
			return owned, nil
		},
	}
	router := newBuildRouter(t, svc)

	w := doJSON(t, router, http.MethodPut, "/builds/"+owned.BuildID+"/component",
		gin.H{"slot": "GPU", "name": "RTX 4070", "price": 520})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
}

func TestReplaceBuildEndpointAllowsInsertPath(t *testing.T) {
	buildID := uuid.New()
	svc := &mockBuildService{
		getBuildByIDFn: func(ctx context.Context, id string) (*models.Build, error) {
			return nil, apperrors.ErrBuildNotFound
		},
		replaceBuildFn: func(ctx context.Context, id, userID string, components models.ComponentMap) (*models.Build, error) {
			build := &models.Build{BuildID: id, UserID: userID}
			build.SetComponents(components)
			return build, nil
		},
	}
	router := newBuildRouter(t, svc)

	w := doJSON(t, router, http.MethodPut, "/builds/"+buildID,
		gin.H{"components": testutil.TestComponentMap()})
	if w.Code != http.StatusOK {
		t.Fatalf("insert path should succeed: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestDeleteBuildEndpointIndexWarning(t *testing.T) {
	owned := &models.Build{BuildID: uuid.New(), UserID: testUserID}
	owned.SetComponents(testutil.TestComponentMap())

	svc := &mockBuildService{
		getBuildByIDFn: func(ctx context.Context, buildID string) (*models.Build, error) {
			return owned, nil
		},
		deleteBuildFn: func(ctx context.Context, buildID, userID string) error {
			return apperrors.ErrBuildIndexInconsistent
		},
	}
	router := newBuildRouter(t, svc)

	w := doJSON(t, router, http.MethodDelete, "/builds/"+owned.BuildID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("warning is still success: status %d, body %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if _, ok := body["warning"]; !ok {
		t.Error("response missing warning field")
	}
}

func TestBuildEndpointsRequireAuth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	store := catalog.NewStore(db)
	alloc, err := allocator.New(allocator.DefaultTiers(), 15, 2500, rand.New(rand.NewSource(1)))
	testutil.AssertNoError(t, err)
	handler := NewBuildHandler(&mockBuildService{}, alloc, store)

	// No auth middleware: the context carries no userID.
	router := gin.New()
	router.GET("/builds", handler.GetBuilds)

	w := doJSON(t, router, http.MethodGet, "/builds", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "UNAUTHORIZED" {
		t.Errorf("error code %s", code)
	}
}
