package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/render"
	"sellusgenie-backend/internal/service"
	"sellusgenie-backend/internal/theme"
	"sellusgenie-backend/internal/widgets"
	"sellusgenie-backend/pkg/validator"
)

type stubStorefront struct {
	tree     *render.Tree
	err      error
	selector models.PageSelector
}

func (s *stubStorefront) RenderPage(ctx context.Context, storeID string, selector models.PageSelector) (*render.Tree, error) {
	s.selector = selector
	return s.tree, s.err
}

func (s *stubStorefront) PreviewPage(ctx context.Context, pageID string) (*render.Tree, error) {
	return s.tree, s.err
}

type stubPages struct {
	page *models.PageDocument
	err  error
	req  models.CreatePageRequest
}

func (s *stubPages) Create(ctx context.Context, storeID string, req models.CreatePageRequest) (*models.PageDocument, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	page := &models.PageDocument{ID: "p1", StoreID: storeID, Name: req.Name}
	return page, nil
}

func (s *stubPages) Update(ctx context.Context, id string, req models.UpdatePageRequest) (*models.PageDocument, error) {
	return s.page, s.err
}

func (s *stubPages) Get(ctx context.Context, id string) (*models.PageDocument, error) {
	return s.page, s.err
}

func (s *stubPages) ListByStore(ctx context.Context, storeID string) ([]models.PageDocument, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.PageDocument{*s.page}, nil
}

func (s *stubPages) Publish(ctx context.Context, id string) (*models.PageDocument, error) {
	return s.page, s.err
}

func (s *stubPages) Unpublish(ctx context.Context, id string) (*models.PageDocument, error) {
	return s.page, s.err
}

func (s *stubPages) Duplicate(ctx context.Context, id string) (*models.PageDocument, error) {
	return s.page, s.err
}

func (s *stubPages) Delete(ctx context.Context, id string) error {
	return s.err
}

type stubStores struct {
	err error
}

func (s *stubStores) Provision(ctx context.Context, req models.CreateStoreRequest) (*models.StoreProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.StoreProfile{ID: "s1", Name: req.Name, ThemePreset: req.ThemePreset}, nil
}

func (s *stubStores) Get(ctx context.Context, id string) (*models.StoreProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.StoreProfile{ID: id, Name: "Testingmy"}, nil
}

func (s *stubStores) UpdateProfile(ctx context.Context, id string, req models.UpdateStoreRequest) (*models.StoreProfile, error) {
	return s.Get(ctx, id)
}

func perform(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&payload).Encode(body)
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", recorder.Body.String(), err)
	}
	return body
}

func storefrontRouter(stub *stubStorefront) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewStorefrontHandler(stub)
	router.GET("/storefront/:storeID/pages/:slug", handler.PageBySlug)
	router.GET("/storefront/:storeID/system/:role", handler.SystemPage)
	return router
}

func TestStorefrontHandlerRendersTree(t *testing.T) {
	stub := &stubStorefront{tree: &render.Tree{PageID: "p1", Mode: render.ModePublic}}
	router := storefrontRouter(stub)

	recorder := perform(router, http.MethodGet, "/storefront/s1/system/footer", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if stub.selector.SystemPageType != models.SystemPageFooter {
		t.Fatalf("expected footer selector, got %+v", stub.selector)
	}
	page := decode(t, recorder)["page"].(map[string]interface{})
	if page["page_id"] != "p1" {
		t.Fatalf("unexpected body %v", page)
	}
}

func TestStorefrontHandlerMapsRenderFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"page missing", &service.RenderFailure{Kind: service.FailurePageNotFound}, http.StatusNotFound},
		{"store missing", &service.RenderFailure{Kind: service.FailureStoreNotFound}, http.StatusNotFound},
		{"bad selector", &service.RenderFailure{Kind: service.FailureBadSelector}, http.StatusBadRequest},
		{"fetch failed", &service.RenderFailure{Kind: service.FailureFetch, Err: errors.New("timeout")}, http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("outer: %w", &service.RenderFailure{Kind: service.FailurePageNotFound}), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := storefrontRouter(&stubStorefront{err: tc.err})
			recorder := perform(router, http.MethodGet, "/storefront/s1/pages/about", nil)
			if recorder.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, recorder.Code)
			}
			if decode(t, recorder)["fallback"] != true {
				t.Fatalf("expected fallback marker in body")
			}
		})
	}
}

func TestPageHandlerMapsServiceErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"not found", service.ErrPageNotFound, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: bad widget", service.ErrValidation), http.StatusBadRequest},
		{"transition", models.ErrInvalidStatusTransition, http.StatusConflict},
		{"system delete", service.ErrSystemPageDelete, http.StatusConflict},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubPages{page: &models.PageDocument{ID: "p1", Name: "About"}, err: tc.err}
			router := gin.New()
			handler := NewPageHandler(stub, &stubStorefront{})
			router.POST("/pages/:id/publish", handler.Publish)

			recorder := perform(router, http.MethodPost, "/pages/p1/publish", nil)
			if recorder.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, recorder.Code)
			}
		})
	}
}

func TestPageHandlerCreateBindsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator.Init()
	stub := &stubPages{}
	router := gin.New()
	handler := NewPageHandler(stub, &stubStorefront{})
	router.POST("/stores/:storeID/pages", handler.Create)

	recorder := perform(router, http.MethodPost, "/stores/s1/pages", gin.H{"slug": "about"})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d", recorder.Code)
	}

	recorder = perform(router, http.MethodPost, "/stores/s1/pages", gin.H{
		"name": "About",
		"sections": []gin.H{{"id": "s", "rows": []gin.H{{"id": "r", "widgets": []gin.H{{
			"id": "w", "type": "heading", "props": gin.H{"text": "Hi"},
		}}}}}},
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if len(stub.req.Sections) != 1 || stub.req.Sections[0].Rows[0].Widgets[0].Type != "heading" {
		t.Fatalf("expected sections bound, got %+v", stub.req.Sections)
	}
}

func TestStoreHandlerValidatesPresetSlug(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator.Init()
	router := gin.New()
	handler := NewStoreHandler(&stubStores{})
	router.POST("/stores", handler.Create)
	router.GET("/stores/:storeID", handler.Get)

	recorder := perform(router, http.MethodPost, "/stores", gin.H{"name": "Testingmy", "theme_preset": "Not A Slug"})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid preset slug, got %d", recorder.Code)
	}

	recorder = perform(router, http.MethodPost, "/stores", gin.H{"name": "Testingmy", "theme_preset": "modern"})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	missing := gin.New()
	missingHandler := NewStoreHandler(&stubStores{err: service.ErrStoreNotFound})
	missing.GET("/stores/:storeID", missingHandler.Get)
	if recorder := perform(missing, http.MethodGet, "/stores/s9", nil); recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}

func TestWidgetHandlerCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewWidgetHandler(widgets.DefaultRegistry())
	router.GET("/widgets", handler.List)
	router.GET("/widgets/:type", handler.Get)

	recorder := perform(router, http.MethodGet, "/widgets", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	catalog := decode(t, recorder)["widgets"].([]interface{})
	if len(catalog) != len(widgets.Builtins()) {
		t.Fatalf("expected %d widgets, got %d", len(widgets.Builtins()), len(catalog))
	}

	recorder = perform(router, http.MethodGet, "/widgets/store_logo", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	widget := decode(t, recorder)["widget"].(map[string]interface{})
	if widget["has_logo_slot"] != true {
		t.Fatalf("expected logo slot flag, got %v", widget)
	}

	if recorder := perform(router, http.MethodGet, "/widgets/carousel", nil); recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown widget, got %d", recorder.Code)
	}
}

type stubRenderInvalidator struct {
	calls int
	err   error
}

func (s *stubRenderInvalidator) InvalidateAllRenders(ctx context.Context) error {
	s.calls++
	return s.err
}

func TestThemeHandlerReloadInvalidatesRenders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager, err := theme.NewManager(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	renders := &stubRenderInvalidator{}
	router := gin.New()
	router.POST("/themes/reload", NewThemeHandler(manager, renders).Reload)

	recorder := perform(router, http.MethodPost, "/themes/reload", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if renders.calls != 1 {
		t.Fatalf("expected cached renders dropped once, got %d", renders.calls)
	}

	renders.err = errors.New("redis down")
	if recorder := perform(router, http.MethodPost, "/themes/reload", nil); recorder.Code != http.StatusOK {
		t.Fatalf("expected reload to succeed when invalidation fails, got %d", recorder.Code)
	}
	if renders.calls != 2 {
		t.Fatalf("expected second invalidation attempt, got %d", renders.calls)
	}
}
