package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/jfbetancur/consorcio-manager/internal/api/middleware"
	"github.com/jfbetancur/consorcio-manager/internal/domain"
	"github.com/jfbetancur/consorcio-manager/internal/export"
	"github.com/jfbetancur/consorcio-manager/internal/jobs"
	"github.com/jfbetancur/consorcio-manager/internal/query"
	"github.com/jfbetancur/consorcio-manager/internal/session"
)

// maxResumenBytes caps the PDF size accepted by the summary endpoint.
const maxResumenBytes = 20 << 20

// LoginService authenticates a user and returns a session token.
type LoginService interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// RollupStore reads and mutates the per-pensioner rollup collection.
type RollupStore interface {
	ListRollups(ctx context.Context) ([]*domain.UsuarioSentencia, error)
	GetRollup(ctx context.Context, pensionadoID string) (*domain.UsuarioSentencia, error)
	SetAnalyzed(ctx context.Context, pensionadoID string, analizado bool, fecha *time.Time) error
}

// PensionerStore reads pensioner master records.
type PensionerStore interface {
	Get(ctx context.Context, documento string) (*domain.Pensionado, error)
}

// PaymentStore reads source payments for the detail view.
type PaymentStore interface {
	GetMany(ctx context.Context, documento string, pagoIDs []string) ([]*domain.Pago, error)
}

// WorkbookUploader stores an export workbook and returns its URI.
type WorkbookUploader interface {
	Upload(ctx context.Context, f *excelize.File) (string, error)
}

// DocumentSummarizer produces a plain-text summary of a PDF.
type DocumentSummarizer interface {
	SummarizePDF(ctx context.Context, pdfBytes []byte) (string, error)
}

// AuthHandler handles the login endpoint.
type AuthHandler struct {
	service LoginService
	log     zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service LoginService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{service: service, log: log}
}

// Login handles POST /api/v1/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		middleware.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.log.Warn().Str("username", req.Username).Msg("Login rejected")
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// SentenciasHandler handles the sentence browsing and triage endpoints.
type SentenciasHandler struct {
	rollups    RollupStore
	pensioners PensionerStore
	payments   PaymentStore
	cache      *session.Cache
	publisher  jobs.Publisher
	jobStore   jobs.JobStore
	uploader   WorkbookUploader
	log        zerolog.Logger
}

// NewSentenciasHandler creates a new sentencias handler.
func NewSentenciasHandler(
	rollups RollupStore,
	pensioners PensionerStore,
	payments PaymentStore,
	cache *session.Cache,
	publisher jobs.Publisher,
	jobStore jobs.JobStore,
	uploader WorkbookUploader,
	log zerolog.Logger,
) *SentenciasHandler {
	return &SentenciasHandler{
		rollups:    rollups,
		pensioners: pensioners,
		payments:   payments,
		cache:      cache,
		publisher:  publisher,
		jobStore:   jobStore,
		uploader:   uploader,
		log:        log,
	}
}

// parseFilters maps the request's query parameters to in-memory filters.
func parseFilters(r *http.Request) query.Filters {
	q := r.URL.Query()
	f := query.Filters{
		Texto:       q.Get("texto"),
		Dependencia: q.Get("dependencia"),
		Categoria:   q.Get("categoria"),
	}
	if v := q.Get("analizado"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Analizado = &b
		}
	}
	if v := q.Get("ano"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			f.Ano = year
		}
	}
	return f
}

// List handles GET /api/v1/sentencias
func (h *SentenciasHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rollups, err := h.rollups.ListRollups(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list rollups")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list sentences")
		return
	}

	result := query.Apply(rollups, parseFilters(r), query.ParseSortKey(r.URL.Query().Get("ordenar")))
	if result == nil {
		result = []*domain.UsuarioSentencia{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sentencias": result,
		"count":      len(result),
	})
}

// Suggest handles GET /api/v1/sentencias/sugerencias
func (h *SentenciasHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	term := r.URL.Query().Get("termino")
	max := 10
	if v := r.URL.Query().Get("max"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			max = n
		}
	}

	rollups, err := h.rollups.ListRollups(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list rollups for suggestions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build suggestions")
		return
	}

	suggestions := query.Suggest(rollups, term, max)
	if suggestions == nil {
		suggestions = []query.Suggestion{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sugerencias": suggestions,
		"count":       len(suggestions),
	})
}

// EnqueueRescan handles POST /api/v1/sentencias/rescan
func (h *SentenciasHandler) EnqueueRescan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	job := &jobs.FullScanJob{}
	if claims, ok := middleware.ClaimsFromContext(ctx); ok {
		job.RequestedBy = claims.Username
	}

	if err := h.publisher.PublishFullScan(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue re-scan job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue re-scan")
		return
	}

	// A re-scan invalidates every cached working set.
	if h.cache != nil {
		h.cache.ClearAll()
	}

	h.log.Info().Str("job_id", job.JobID).Str("requested_by", job.RequestedBy).Msg("Re-scan job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetRescan handles GET /api/v1/sentencias/rescan/{id}
func (h *SentenciasHandler) GetRescan(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// MarkAnalyzed handles POST /api/v1/sentencias/{id}/analizado
func (h *SentenciasHandler) MarkAnalyzed(w http.ResponseWriter, r *http.Request, pensionadoID string) {
	ctx := r.Context()

	var req struct {
		Analizado bool `json:"analizado"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.rollups.GetRollup(ctx, pensionadoID); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Sentence rollup not found")
		return
	}

	var fecha *time.Time
	if req.Analizado {
		now := time.Now()
		fecha = &now
	}

	if err := h.rollups.SetAnalyzed(ctx, pensionadoID, req.Analizado, fecha); err != nil {
		h.log.Error().Err(err).Str("pensioner_id", pensionadoID).Msg("Failed to update triage flag")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update triage flag")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pensionadoId":  pensionadoID,
		"analizado":     req.Analizado,
		"fechaAnalisis": fecha,
	})
}

// ListPagos handles GET /api/v1/sentencias/{id}/pagos
// It serves the detail view from the session cache, loading the pensioner
// and the source payments referenced by the rollup on a miss.
func (h *SentenciasHandler) ListPagos(w http.ResponseWriter, r *http.Request, pensionadoID string) {
	ctx := r.Context()

	ws, ok := h.cache.Get(pensionadoID)
	if !ok {
		rollup, err := h.rollups.GetRollup(ctx, pensionadoID)
		if err != nil {
			middleware.WriteError(w, http.StatusNotFound, "Sentence rollup not found")
			return
		}

		pensioner, err := h.pensioners.Get(ctx, pensionadoID)
		if err != nil {
			h.log.Error().Err(err).Str("pensioner_id", pensionadoID).Msg("Failed to load pensioner")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to load pensioner")
			return
		}

		seen := make(map[string]bool)
		var pagoIDs []string
		for _, d := range rollup.Detalles {
			if d.PagoID != "" && !seen[d.PagoID] {
				seen[d.PagoID] = true
				pagoIDs = append(pagoIDs, d.PagoID)
			}
		}

		pagos, err := h.payments.GetMany(ctx, pensionadoID, pagoIDs)
		if err != nil {
			h.log.Error().Err(err).Str("pensioner_id", pensionadoID).Msg("Failed to load payments")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to load payments")
			return
		}

		ws = session.WorkingSet{Pensionado: pensioner, Pagos: pagos}
		h.cache.Put(pensionadoID, ws)
	}

	pagos := ws.Pagos
	if pagos == nil {
		pagos = []*domain.Pago{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pensionado": ws.Pensionado,
		"pagos":      pagos,
		"count":      len(pagos),
	})
}

// Export handles GET /api/v1/sentencias/export
// The current filter and sort parameters apply, so the workbook mirrors
// what the caller sees on screen.
func (h *SentenciasHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rollups, err := h.rollups.ListRollups(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list rollups for export")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to export sentences")
		return
	}

	result := query.Apply(rollups, parseFilters(r), query.ParseSortKey(r.URL.Query().Get("ordenar")))

	workbook, err := export.BuildWorkbook(result)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build export workbook")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to export sentences")
		return
	}
	defer workbook.Close()

	// Without a configured bucket the workbook streams straight back.
	if h.uploader == nil {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="sentencias.xlsx"`)
		if err := workbook.Write(w); err != nil {
			h.log.Error().Err(err).Msg("Failed to stream export workbook")
		}
		return
	}

	uri, err := h.uploader.Upload(ctx, workbook)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to upload export workbook")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store export")
		return
	}

	h.log.Info().Str("uri", uri).Int("rows", len(result)).Msg("Export workbook stored")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"uri":  uri,
		"rows": len(result),
	})
}

// ResumenHandler handles document summary requests.
type ResumenHandler struct {
	summarizer DocumentSummarizer
	log        zerolog.Logger
}

// NewResumenHandler creates a new resumen handler.
func NewResumenHandler(summarizer DocumentSummarizer, log zerolog.Logger) *ResumenHandler {
	return &ResumenHandler{summarizer: summarizer, log: log}
}

// Summarize handles POST /api/v1/documentos/resumen
// The request body is the raw PDF.
func (h *ResumenHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pdfBytes, err := io.ReadAll(io.LimitReader(r.Body, maxResumenBytes+1))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(pdfBytes) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Document body is required")
		return
	}
	if len(pdfBytes) > maxResumenBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Document exceeds the 20MB limit")
		return
	}

	resumen, err := h.summarizer.SummarizePDF(ctx, pdfBytes)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to summarize document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to summarize document")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"resumen": resumen})
}
