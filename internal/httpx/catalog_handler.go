package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/markov84/MarkLight-Ltd/internal/catalog"
)

type CatalogHandler struct {
	Repo *catalog.Repo
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/featured/list", h.featured)
	r.Get("/products/categories/all", h.categories)
	r.Get("/products/subcategories/{categoryID}", h.subcategories)
	r.Get("/products/{id}", h.getProduct)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Search:      q.Get("search"),
		Sort:        q.Get("sort"),
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	if v := q.Get("minPrice"); v != "" {
		if cents, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MinPrice = &cents
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if cents, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MaxPrice = &cents
		}
	}
	if v := q.Get("inStock"); v != "" {
		b := v == "true"
		f.InStock = &b
	}
	if v := q.Get("featured"); v != "" {
		b := v == "true"
		f.Featured = &b
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	page, err := h.Repo.ListProducts(ctx, f)
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "error fetching products")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.GetProduct(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeMsg(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "error fetching product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) featured(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Repo.ListFeatured(ctx, limit)
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "error fetching featured products")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CatalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Repo.ListCategories(ctx)
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "error fetching categories")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CatalogHandler) subcategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Repo.ListSubcategories(ctx, chi.URLParam(r, "categoryID"))
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "error fetching subcategories")
		return
	}
	writeJSON(w, http.StatusOK, list)
}
