package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/hazyhaar/datadose/pkg/kit"
	"github.com/hazyhaar/datadose/pkg/pipeline"
)

// NewRouter returns an http.Handler with all DataDose API routes.
func NewRouter(eng *pipeline.Engine, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	h := &handler{ep: NewEndpoints(eng, logger), eng: eng, logger: logger}

	mux.HandleFunc("GET /v1/normalize/batch", methodNotAllowed) // prevent GET on batch
	mux.HandleFunc("POST /v1/normalize/batch", h.handleBatch)
	mux.HandleFunc("POST /v1/normalize", h.handleNormalize)
	mux.HandleFunc("GET /v1/terms/{term}", h.handleTerm)
	mux.HandleFunc("GET /v1/tables", h.handleTables)
	mux.HandleFunc("GET /v1/selftest", h.handleSelfTest)
	mux.HandleFunc("POST /v1/reload", h.handleReload)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
	return requestID(c.Handler(mux))
}

type handler struct {
	ep     Endpoints
	eng    *pipeline.Engine
	logger *slog.Logger
}

// --- normalize single label ---

type httpNormalizeRequest struct {
	Ingredient string `json:"ingredient"`
	Trace      bool   `json:"trace,omitempty"`
}

func (h *handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 16*1024)
	var req httpNormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if r.URL.Query().Get("trace") == "true" {
		req.Trace = true
	}

	resp, err := h.ep.Normalize(r.Context(), &normalizeReq{Ingredient: req.Ingredient, Trace: req.Trace})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- normalize batch ---

type httpBatchRequest struct {
	Ingredients []string `json:"ingredients"`
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB max
	var req httpBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.ep.Batch(r.Context(), &batchReq{Ingredients: req.Ingredients})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- explain term ---

func (h *handler) handleTerm(w http.ResponseWriter, r *http.Request) {
	term := r.PathValue("term")
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing term")
		return
	}
	resp, err := h.ep.Term(r.Context(), term)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- tables ---

func (h *handler) handleTables(w http.ResponseWriter, r *http.Request) {
	resp, err := h.ep.Tables(r.Context(), nil)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- self-test ---

func (h *handler) handleSelfTest(w http.ResponseWriter, r *http.Request) {
	resp, err := h.ep.SelfTest(r.Context(), nil)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	code := http.StatusOK
	if st, ok := resp.(selfTestResponse); ok && !st.OK {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// --- reload ---

func (h *handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.eng.Reload(); err != nil {
		h.logger.Warn("reload rejected", "error", err, "request_id", kit.GetRequestID(r.Context()))
		code := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrSelfTestFailed) {
			code = http.StatusUnprocessableEntity
		}
		writeError(w, code, err.Error())
		return
	}
	h.handleTables(w, r)
}

// --- health ---

type healthResponse struct {
	Status         string `json:"status"`
	Lexicon        string `json:"lexicon,omitempty"`
	LexiconVersion string `json:"lexicon_version,omitempty"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	st, ok := h.eng.Registry().Stats()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "loading"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		Lexicon:        st.ID,
		LexiconVersion: st.Version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeEndpointError(w http.ResponseWriter, err error) {
	var br badRequest
	switch {
	case errors.As(err, &br):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pipeline.ErrNotLoaded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requestID propagates X-Request-ID, minting one when the client sent none.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = pipeline.NewID()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := kit.WithTransport(kit.WithRequestID(r.Context(), id), "http")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
