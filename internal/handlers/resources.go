package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crucial707/mineops/internal/export"
	"github.com/crucial707/mineops/internal/listview"
	"github.com/crucial707/mineops/internal/metrics"
	"github.com/crucial707/mineops/internal/models"
	"github.com/crucial707/mineops/internal/repo"
	"github.com/crucial707/mineops/internal/resources"
	"github.com/go-chi/chi/v5"
)

// ResourceHandler serves both views over the shared resource store: the
// editable resources list and the read-only inventory table.
type ResourceHandler struct {
	Store *resources.Store
	Audit repo.AuditSource
}

// Resource views: in stock, used up, or everything.
const (
	viewAll     = "all"
	viewCurrent = "current"
	viewUsed    = "used"
)

func resourceView(v string) (func(models.Resource) bool, error) {
	switch v {
	case "", viewAll:
		return nil, nil
	case viewCurrent:
		return resources.InStock, nil
	case viewUsed:
		return resources.UsedUp, nil
	}
	return nil, fmt.Errorf("view must be one of: %s, %s, %s", viewAll, viewCurrent, viewUsed)
}

// ==========================
// List Resources
// ==========================
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	schema := resources.Schema()
	q, ok := parseList(w, r, schema)
	if !ok {
		return
	}
	match, err := resourceView(r.URL.Query().Get("view"))
	if err != nil {
		JSONValidationError(w, "invalid list query", map[string]string{"view": err.Error()}, http.StatusBadRequest)
		return
	}

	page, err := schema.Run(h.Store.List(), q, match)
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(page, q, schema))
}

// ==========================
// Create Resource
// ==========================
func (h *ResourceHandler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var input models.ResourceInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	res, err := h.Store.Add(input)
	if err != nil {
		JSONValidationError(w, "validation failed", map[string]string{"name": "required"}, http.StatusBadRequest)
		return
	}

	record(r.Context(), h.Audit, "Create Resource", res.Name)
	writeJSON(w, http.StatusCreated, res)
}

// ==========================
// Update Resource
// ==========================
func (h *ResourceHandler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid resource id", http.StatusBadRequest)
		return
	}

	var input models.ResourceInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	res, err := h.Store.Update(id, input)
	switch {
	case errors.Is(err, resources.ErrNotFound):
		JSONError(w, "resource not found", http.StatusNotFound)
		return
	case err != nil:
		JSONValidationError(w, "validation failed", map[string]string{"name": "required"}, http.StatusBadRequest)
		return
	}

	record(r.Context(), h.Audit, "Update Resource", fmt.Sprintf("%s: used %d, available %d", res.Name, res.Used, res.Available))
	writeJSON(w, http.StatusOK, res)
}

// ==========================
// Delete Resource
// ==========================
func (h *ResourceHandler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid resource id", http.StatusBadRequest)
		return
	}

	res, err := h.Store.Get(id)
	if err == nil {
		err = h.Store.Delete(id)
	}
	if errors.Is(err, resources.ErrNotFound) {
		JSONError(w, "resource not found", http.StatusNotFound)
		return
	}

	record(r.Context(), h.Audit, "Delete Resource", res.Name)
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// Clear Resources
// ==========================

// ClearResources answers DELETE /v1/resources. scope=used drops only
// resources with nothing available; otherwise the store is emptied.
func (h *ResourceHandler) ClearResources(w http.ResponseWriter, r *http.Request) {
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", viewAll:
		n := len(h.Store.List())
		h.Store.Clear()
		record(r.Context(), h.Audit, "Clear Resources", fmt.Sprintf("%d removed", n))
		writeJSON(w, http.StatusOK, map[string]int{"removed": n})
	case viewUsed:
		n := h.Store.ClearUsed()
		record(r.Context(), h.Audit, "Clear Used Resources", fmt.Sprintf("%d removed", n))
		writeJSON(w, http.StatusOK, map[string]int{"removed": n})
	default:
		JSONValidationError(w, "invalid scope", map[string]string{"scope": "must be all or used"}, http.StatusBadRequest)
	}
}

// ==========================
// Inventory
// ==========================

type inventoryResponse struct {
	listResponse[models.Resource]
	TotalQuantity int   `json:"total_quantity"`
	LowStock      []int `json:"low_stock"`
}

// Inventory answers GET /v1/inventory. TotalQuantity sums Available over
// every matching resource, not just the current page.
func (h *ResourceHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	schema := resources.Schema()
	q, ok := parseList(w, r, schema)
	if !ok {
		return
	}
	resp, err := h.inventory(q, schema)
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ResourceHandler) inventory(q listview.Query, schema listview.Schema[models.Resource]) (inventoryResponse, error) {
	items := h.Store.List()
	page, err := schema.Run(items, q, nil)
	if err != nil {
		return inventoryResponse{}, err
	}

	low := []int{}
	for _, res := range page.Items {
		if res.Available < models.LowStockThreshold {
			low = append(low, res.ID)
		}
	}
	return inventoryResponse{
		listResponse:  newListResponse(page, q, schema),
		TotalQuantity: resources.Total(listview.Filter(items, q.Search, schema.Search...)),
		LowStock:      low,
	}, nil
}

// ExportInventory renders the requested inventory page as inventory.png.
func (h *ResourceHandler) ExportInventory(w http.ResponseWriter, r *http.Request) {
	schema := resources.Schema()
	q, ok := parseList(w, r, schema)
	if !ok {
		return
	}
	inv, err := h.inventory(q, schema)
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows := make([][]string, len(inv.Items))
	for i, res := range inv.Items {
		rows[i] = []string{res.Name, strconv.Itoa(res.Used), strconv.Itoa(res.Available)}
	}
	title := fmt.Sprintf("Inventory  page %d/%d  total quantity %d", inv.Page.Page, inv.TotalPages, inv.TotalQuantity)

	var buf bytes.Buffer
	img, err := export.RenderTable(title, []string{"Name", "Used", "Available"}, rows)
	if err == nil {
		err = export.WritePNG(&buf, img)
	}
	metrics.RecordExport("png", err)
	if err != nil {
		slog.Error("inventory: export failed", "err", err)
		JSONError(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.png"`)
	w.Write(buf.Bytes())
}
