package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"luxe_brochure/internal/app"
	"luxe_brochure/internal/domain"
	"luxe_brochure/internal/schema"
)

type Handlers struct {
	Gen     *app.GenerateService
	Edit    *app.EditService
	Q       *app.QueryService
	OutRoot string // served under /files/
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/brochures", h.createBrochure)
	s.mux.Post("/v1/brochures/{id}/edit", h.editBrochure)
	s.mux.Get("/v1/brochures", h.listBrochures)
	s.mux.Get("/v1/brochures/{id}", h.getBrochure)
	if h.OutRoot != "" {
		fs := http.StripPrefix("/files/", http.FileServer(http.Dir(h.OutRoot)))
		s.mux.Get("/files/*", fs.ServeHTTP)
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
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

type brochureView struct {
	ID          int64           `json:"id"`
	HotelName   string          `json:"hotel_name"`
	Location    string          `json:"location"`
	Headline    string          `json:"headline,omitempty"`
	Description string          `json:"description,omitempty"`
	Amenities   []string        `json:"amenities,omitempty"`
	Document    json.RawMessage `json:"document,omitempty"`
	PNGURL      string          `json:"png_url,omitempty"`
	PDFURL      string          `json:"pdf_url,omitempty"`
	Version     int             `json:"version"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

func toView(b *domain.Brochure, includeDoc bool) brochureView {
	v := brochureView{
		ID:          b.ID,
		HotelName:   b.HotelName,
		Location:    b.Location,
		Headline:    b.Headline,
		Description: b.Description,
		Amenities:   b.Amenities,
		Version:     b.Version,
	}
	if includeDoc && len(b.SchemaJSON) > 0 {
		v.Document = json.RawMessage(b.SchemaJSON)
	}
	if b.PNGPath != "" {
		v.PNGURL = "/files/" + b.PNGPath
	}
	if b.PDFPath != "" {
		v.PDFURL = "/files/" + b.PDFPath
	}
	if !b.CreatedAt.IsZero() {
		v.CreatedAt = b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return v
}

type createRequest struct {
	Prompt   string `json:"prompt"`
	HeroURL  string `json:"hero_url,omitempty"`
	HeroPath string `json:"hero_path,omitempty"`
}

func (h *Handlers) createBrochure(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected a JSON object")
		return
	}

	b, _, err := h.Gen.Generate(r.Context(), app.GenerateRequest{
		Prompt:   req.Prompt,
		HeroURL:  req.HeroURL,
		HeroPath: req.HeroPath,
	})
	if err != nil {
		if errors.Is(err, app.ErrPromptTooShort) {
			writeProblem(w, http.StatusBadRequest, "Invalid prompt", "prompt must be at least 5 characters")
			return
		}
		log.Error().Err(err).Msg("generate brochure failed")
		writeProblem(w, http.StatusInternalServerError, "Generation failed", "could not produce the brochure")
		return
	}
	writeJSON(w, http.StatusCreated, toView(b, true))
}

type editRequest struct {
	Instruction string `json:"instruction"`
}

type editRejection struct {
	Error   schema.Kind `json:"error"`
	Message string      `json:"message"`
}

type editResponse struct {
	Status   string       `json:"status"`
	Brochure brochureView `json:"brochure"`
}

// editBrochure maps the engine's verdicts onto the wire: a merged edit
// is 200 with the updated brochure, a no-op is 200 with the unchanged
// one, and a clarification request is 422 carrying the structured error.
func (h *Handlers) editBrochure(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected a JSON object")
		return
	}

	res, err := h.Edit.Edit(r.Context(), id, req.Instruction)
	if err != nil {
		var verdict *schema.Error
		switch {
		case errors.As(err, &verdict) && verdict.Kind == schema.KindNoChanges:
			b, getErr := h.Q.GetBrochure(r.Context(), id)
			if getErr != nil {
				writeProblem(w, http.StatusNotFound, "Not Found", "brochure not found")
				return
			}
			writeJSON(w, http.StatusOK, editResponse{Status: "no_changes", Brochure: toView(b, true)})
		case errors.As(err, &verdict):
			writeJSON(w, http.StatusUnprocessableEntity, editRejection{Error: verdict.Kind, Message: verdict.Message})
		case errors.Is(err, domain.ErrNotFound):
			writeProblem(w, http.StatusNotFound, "Not Found", "brochure not found")
		case errors.Is(err, domain.ErrConflict):
			writeProblem(w, http.StatusConflict, "Conflict", "brochure was modified concurrently; retry the edit")
		default:
			log.Error().Err(err).Int64("brochure_id", id).Msg("edit brochure failed")
			writeProblem(w, http.StatusInternalServerError, "Edit failed", "could not apply the edit")
		}
		return
	}

	writeJSON(w, http.StatusOK, editResponse{Status: "updated", Brochure: toView(res.Brochure, true)})
}

func (h *Handlers) getBrochure(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	b, err := h.Q.GetBrochure(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "brochure not found")
		return
	}

	etag, body := calcETagAndBody(toView(b, true))
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getBrochure body")
	}
}

func (h *Handlers) listBrochures(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 100 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 100")
			return
		}
		limit = l
	}

	items, err := h.Q.ListBrochures(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list brochures failed")
		writeProblem(w, http.StatusInternalServerError, "List failed", "could not list brochures")
		return
	}

	views := make([]brochureView, 0, len(items))
	for i := range items {
		views = append(views, toView(&items[i], false))
	}

	etag, body := calcETagAndBody(map[string]any{"items": views})
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listBrochures body")
	}
}
