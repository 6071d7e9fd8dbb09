// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"visit_polzela/internal/app"
	"visit_polzela/internal/catalog"
	"visit_polzela/internal/domain"
)

const (
	defaultNearby = 5
	maxNearby     = 50
)

type Handlers struct {
	Svc   *app.CatalogService
	Langs catalog.Languages
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/pois", h.listPOIs)
	s.mux.Get("/v1/pois/{id}", h.getPOI)
	s.mux.Get("/v1/pois/{id}/description", h.getDescription)
	s.mux.Get("/v1/pois/{id}/nearby", h.nearby)
	s.mux.Get("/v1/labels/{key}", h.getLabel)
	s.mux.Post("/v1/admin/titles/invalidate", h.invalidateTitles)
}

func (h *Handlers) lang(r *http.Request) string {
	return h.Langs.Pick(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON sends v with an ETag, answering 304 when the client has it.
func writeJSON(w http.ResponseWriter, r *http.Request, v any, lang string) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "response could not be encoded")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	if lang != "" {
		w.Header().Set("Content-Language", lang)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func (h *Handlers) listPOIs(w http.ResponseWriter, r *http.Request) {
	res := h.Svc.GetCatalog(r.Context(), h.lang(r))
	w.Header().Set("X-Catalog-Source", string(res.Source))
	writeJSON(w, r, res, res.Language)
}

func (h *Handlers) getPOI(w http.ResponseWriter, r *http.Request) {
	p, res, err := h.Svc.GetPOI(r.Context(), chi.URLParam(r, "id"), h.lang(r))
	w.Header().Set("X-Catalog-Source", string(res.Source))
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "poi not found")
		return
	}
	writeJSON(w, r, p, res.Language)
}

func (h *Handlers) getDescription(w http.ResponseWriter, r *http.Request) {
	d, err := h.Svc.Description(r.Context(), chi.URLParam(r, "id"), h.lang(r))
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "description not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("id", chi.URLParam(r, "id")).Msg("read description failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "description could not be read")
		return
	}
	writeJSON(w, r, d, d.Language)
}

func (h *Handlers) nearby(w http.ResponseWriter, r *http.Request) {
	limit := defaultNearby
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > maxNearby {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 50")
			return
		}
		limit = l
	}

	lang := h.lang(r)
	ns, err := h.Svc.Nearby(r.Context(), chi.URLParam(r, "id"), lang, limit)
	if err != nil {
		writeNearbyError(w, r, err)
		return
	}
	writeJSON(w, r, struct {
		Items []domain.Neighbor `json:"items"`
	}{ns}, lang)
}

// writeNearbyError maps a Nearby failure to a problem response. Unexpected
// errors are logged; the client only gets a generic detail.
func writeNearbyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "poi not found")
	case errors.Is(err, catalog.ErrBadMapURL):
		writeProblem(w, http.StatusUnprocessableEntity, "No Coordinates", "poi has no usable map location")
	default:
		log.Error().Err(err).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("nearby lookup failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "nearby lookup failed")
	}
}

func (h *Handlers) getLabel(w http.ResponseWriter, r *http.Request) {
	l := h.Svc.Label(chi.URLParam(r, "key"), h.lang(r))
	writeJSON(w, r, l, l.Language)
}

// invalidateTitles drops cached localization tables; ?lang= limits it to one.
func (h *Handlers) invalidateTitles(w http.ResponseWriter, r *http.Request) {
	lang := catalog.NormalizeLang(r.URL.Query().Get("lang"))
	h.Svc.InvalidateTitles(lang)
	log.Info().Str("lang", lang).Msg("title cache invalidated")
	w.WriteHeader(http.StatusNoContent)
}
