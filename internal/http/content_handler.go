package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/MotownC/TheRackHack/internal/content"
)

type ContentHandler struct {
	repo    content.Repository
	timeout time.Duration
}

func NewContentHandler(repo content.Repository, timeout time.Duration) *ContentHandler {
	return &ContentHandler{
		repo:    repo,
		timeout: timeout,
	}
}

func (h *ContentHandler) GetAbout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, err := h.repo.GetAbout(ctx)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "about page not found")
			return
		}
		log.Printf("content error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *ContentHandler) UpdateAbout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var page content.AboutPage
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if page.Title == "" && page.Body == "" {
		respondError(w, http.StatusBadRequest, "invalid_content", "title or body is required")
		return
	}

	if err := h.repo.UpdateAbout(ctx, &page); err != nil {
		log.Printf("content error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, page)
}
