package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// The product catalog has no backing logic yet; each route answers with a
// description of what it will do.

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// RegisterProductRoutes mounts the catalog stubs on r.
func RegisterProductRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "list all products")
	})
	r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "search products by id")
	})
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "check product status")
	})
	r.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "upload product image")
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "create a product")
	})
	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "get product "+chi.URLParam(r, "id"))
	})
	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "update product "+chi.URLParam(r, "id"))
	})
	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "delete product "+chi.URLParam(r, "id"))
	})
}
