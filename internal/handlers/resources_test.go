package handlers

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crucial707/mineops/internal/models"
	"github.com/crucial707/mineops/internal/repo"
	"github.com/crucial707/mineops/internal/resources"
)

type inventoryBody struct {
	Items         []models.Resource `json:"items"`
	Page          int               `json:"page"`
	TotalPages    int               `json:"total_pages"`
	TotalItems    int               `json:"total_items"`
	TotalQuantity int               `json:"total_quantity"`
	LowStock      []int             `json:"low_stock"`
	Sort          string            `json:"sort"`
	Order         string            `json:"order"`
}

func coalAndWater() *resources.Store {
	return resources.NewStore([]models.Resource{
		{ID: 1, Name: "Coal", Used: 10, Available: 40},
		{ID: 2, Name: "Water", Used: 5, Available: 9},
	})
}

func TestResourceHandler_Inventory_Scenario(t *testing.T) {
	h := &ResourceHandler{Store: coalAndWater()}

	rr := httptest.NewRecorder()
	h.Inventory(rr, httptest.NewRequest("GET", "/v1/inventory?q=o", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var out inventoryBody
	decodeBody(t, rr, &out)
	if len(out.Items) != 1 || out.Items[0].Name != "Coal" {
		t.Errorf("search o: got %+v, want only Coal", out.Items)
	}
	if out.TotalQuantity != 40 {
		t.Errorf("total over matches: got %d, want 40", out.TotalQuantity)
	}

	rr = httptest.NewRecorder()
	h.Inventory(rr, httptest.NewRequest("GET", "/v1/inventory?sort=available:asc", nil))
	out = inventoryBody{}
	decodeBody(t, rr, &out)
	if len(out.Items) != 2 || out.Items[0].Name != "Water" || out.Items[1].Name != "Coal" {
		t.Errorf("sort asc: got %+v", out.Items)
	}
	if out.TotalQuantity != 49 {
		t.Errorf("total: got %d, want 49", out.TotalQuantity)
	}
	if len(out.LowStock) != 1 || out.LowStock[0] != 2 {
		t.Errorf("low stock: got %v, want [2]", out.LowStock)
	}
	if out.Sort != "available" || out.Order != "asc" {
		t.Errorf("effective sort: got %s:%s", out.Sort, out.Order)
	}
}

func TestResourceHandler_Inventory_PageClamped(t *testing.T) {
	h := &ResourceHandler{Store: resources.NewStore(resources.Seed())}

	rr := httptest.NewRecorder()
	h.Inventory(rr, httptest.NewRequest("GET", "/v1/inventory?page=99&size=3", nil))
	var out inventoryBody
	decodeBody(t, rr, &out)
	if out.Page != 2 || out.TotalPages != 2 || len(out.Items) != 1 {
		t.Errorf("got page %d/%d with %d items, want 2/2 with 1", out.Page, out.TotalPages, len(out.Items))
	}
}

func TestResourceHandler_Inventory_BadSort(t *testing.T) {
	h := &ResourceHandler{Store: coalAndWater()}

	rr := httptest.NewRecorder()
	h.Inventory(rr, httptest.NewRequest("GET", "/v1/inventory?sort=colour", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	var out validationBody
	decodeBody(t, rr, &out)
	if out.Fields["sort"] == "" {
		t.Errorf("expected sort field error, got %+v", out)
	}
}

func TestResourceHandler_CreateUpdateDelete(t *testing.T) {
	audit := repo.NewMemoryAuditRepo(nil)
	store := coalAndWater()
	h := &ResourceHandler{Store: store, Audit: audit}

	rr := httptest.NewRecorder()
	h.CreateResource(rr, httptest.NewRequest("POST", "/v1/resources",
		bytes.NewReader(jsonBody(t, models.ResourceInput{Name: "Diesel", Used: 1, Available: 20}))))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	var created models.Resource
	decodeBody(t, rr, &created)
	if created.ID != 3 {
		t.Errorf("created id: got %d, want 3", created.ID)
	}

	rr = httptest.NewRecorder()
	req := requestWithChiURLParams("PUT", "/v1/resources/3",
		jsonBody(t, models.ResourceInput{Name: "Diesel", Used: 6, Available: 15}), map[string]string{"id": "3"})
	h.UpdateResource(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.DeleteResource(rr, requestWithChiURLParams("DELETE", "/v1/resources/3", nil, map[string]string{"id": "3"}))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status: got %d", rr.Code)
	}
	if len(store.List()) != 2 {
		t.Errorf("store should be back to 2 resources, got %d", len(store.List()))
	}

	entries, _ := audit.List(context.Background())
	if len(entries) != 3 || entries[0].Action != "Create Resource" || entries[0].User != "anonymous" {
		t.Errorf("unexpected audit trail: %+v", entries)
	}
}

func TestResourceHandler_CreateResource_Validation(t *testing.T) {
	h := &ResourceHandler{Store: coalAndWater()}

	rr := httptest.NewRecorder()
	h.CreateResource(rr, httptest.NewRequest("POST", "/v1/resources",
		bytes.NewReader([]byte(`{"name":"","used":-1,"available":3}`))))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	var out validationBody
	decodeBody(t, rr, &out)
	if out.Fields["name"] != "required" || out.Fields["used"] == "" {
		t.Errorf("unexpected fields: %+v", out.Fields)
	}
}

func TestResourceHandler_DeleteResource_NotFound(t *testing.T) {
	h := &ResourceHandler{Store: coalAndWater()}

	rr := httptest.NewRecorder()
	h.DeleteResource(rr, requestWithChiURLParams("DELETE", "/v1/resources/99", nil, map[string]string{"id": "99"}))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestResourceHandler_ClearResources(t *testing.T) {
	store := resources.NewStore([]models.Resource{
		{ID: 1, Name: "Coal", Available: 40},
		{ID: 2, Name: "Water", Available: 0},
	})
	h := &ResourceHandler{Store: store}

	rr := httptest.NewRecorder()
	h.ClearResources(rr, httptest.NewRequest("DELETE", "/v1/resources?scope=used", nil))
	if rr.Code != http.StatusOK || len(store.List()) != 1 {
		t.Fatalf("clear used: status %d, %d left", rr.Code, len(store.List()))
	}

	rr = httptest.NewRecorder()
	h.ClearResources(rr, httptest.NewRequest("DELETE", "/v1/resources", nil))
	if len(store.List()) != 0 {
		t.Errorf("clear all left %d", len(store.List()))
	}

	rr = httptest.NewRecorder()
	h.ClearResources(rr, httptest.NewRequest("DELETE", "/v1/resources?scope=some", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad scope: got %d, want 400", rr.Code)
	}
}

func TestResourceHandler_ListResources_View(t *testing.T) {
	store := resources.NewStore([]models.Resource{
		{ID: 1, Name: "Coal", Available: 40},
		{ID: 2, Name: "Water", Available: 0},
	})
	h := &ResourceHandler{Store: store}

	rr := httptest.NewRecorder()
	h.ListResources(rr, httptest.NewRequest("GET", "/v1/resources?view=used", nil))
	var out inventoryBody
	decodeBody(t, rr, &out)
	if len(out.Items) != 1 || out.Items[0].Name != "Water" {
		t.Errorf("used view: got %+v", out.Items)
	}
}

func TestResourceHandler_ExportInventory(t *testing.T) {
	h := &ResourceHandler{Store: coalAndWater()}

	rr := httptest.NewRecorder()
	h.ExportInventory(rr, httptest.NewRequest("GET", "/v1/inventory/export.png", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type: %q", ct)
	}
	if _, err := png.Decode(rr.Body); err != nil {
		t.Errorf("body is not a PNG: %v", err)
	}
}

func TestResourceHandler_ExportInventory_Empty(t *testing.T) {
	h := &ResourceHandler{Store: resources.NewStore(nil)}

	rr := httptest.NewRecorder()
	h.ExportInventory(rr, httptest.NewRequest("GET", "/v1/inventory/export.png", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("empty inventory should still export, got %d", rr.Code)
	}
}
