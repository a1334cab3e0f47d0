package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/akovalyov/url-shortener/internal/database"
	"github.com/akovalyov/url-shortener/internal/service"
	"github.com/akovalyov/url-shortener/pkg/response"
)

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// shortenRequest represents the request payload for shortening a URL.
type shortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,url"`
}

// shortenResponse represents the response payload for a shortened URL.
type shortenResponse struct {
	ShortURL string `json:"shortUrl"`
}

// statsResponse represents the response payload for click statistics.
type statsResponse struct {
	ShortURL   string `json:"shortUrl"`
	ClickCount int64  `json:"clickCount"`
}

// normalizeURL ensures the URL carries a scheme, prepending "https://" when
// none is present.
func normalizeURL(url string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "https://" + url
	}
	return url
}

// handleShortenURL handles POST requests to shorten a URL.
//
// The request must contain a valid URL. The handler validates the input,
// calls the shortening service, and returns the short token.
func handleShortenURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenURL"

	return func(w http.ResponseWriter, r *http.Request) {
		var req shortenRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		req.OriginalURL = normalizeURL(req.OriginalURL)

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		shortURL, err := svc.ShortenURL(r.Context(), req.OriginalURL)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, shortenResponse{ShortURL: shortURL})
	}
}

// handleRedirect handles GET requests that resolve a short code and redirect
// to the original URL. Each successful redirect records a click.
func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		originalURL, err := svc.ResolveShortCode(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}
			if errors.Is(err, service.ErrURLExpired) {
				render.Status(r, http.StatusGone)
				render.JSON(w, r, response.URLExpiredResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, originalURL, http.StatusFound)
	}
}

// handleGetStats handles GET requests for the click statistics of a short
// code. The count reflects flushed clicks only, not pending ones.
func handleGetStats(svc URLService) http.HandlerFunc {
	const op = "api.http.handleGetStats"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		clickCount, err := svc.GetClickCount(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, statsResponse{ShortURL: shortCode, ClickCount: clickCount})
	}
}
