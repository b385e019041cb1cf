package questions

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/quizdeck/backend/internal/generator"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/session"
	"github.com/quizdeck/backend/internal/source"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

const maxQuizBody = 4 << 20

type Handler struct {
	service *Service
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewHandler limits /generate to requestsPerMinute calls, with a burst of
// one. A non-positive value disables the limit.
func NewHandler(service *Service, requestsPerMinute int, log *zap.Logger) *Handler {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), 1)
	}
	return &Handler{service: service, limiter: limiter, log: log}
}

// RegisterRoutes registers the quiz, bank and generation endpoints.
func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/parse", h.Parse).Methods("POST")

	api.HandleFunc("/quiz", h.LoadQuiz).Methods("POST")
	api.HandleFunc("/quiz", h.GetQuiz).Methods("GET")
	api.HandleFunc("/quiz", h.ResetQuiz).Methods("DELETE")
	api.HandleFunc("/quiz/finish", h.Finish).Methods("POST")
	api.HandleFunc("/quiz/export", h.Export).Methods("GET")
	api.HandleFunc("/quiz/questions/{index:[0-9]+}/submit", h.Submit).Methods("POST")
	api.HandleFunc("/quiz/questions/{index:[0-9]+}/shuffle", h.Reshuffle).Methods("POST")
	api.HandleFunc("/quiz/questions/{index:[0-9]+}/read", h.ReadAloud).Methods("GET")
	api.HandleFunc("/quiz/questions/{index:[0-9]+}/voice", h.Voice).Methods("POST")

	api.HandleFunc("/bank/files", h.ListQuizFiles).Methods("GET")
	api.HandleFunc("/bank/files", h.SaveQuizFile).Methods("POST")
	api.HandleFunc("/bank/files/{id:[0-9]+}", h.GetQuizFile).Methods("GET")

	api.HandleFunc("/generate", h.Generate).Methods("POST")
}

func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQuizBody)

	var req models.ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	writeJSON(w, http.StatusOK, h.service.Parse(req))
}

// ── Session ──────────────────────────────────────────────

func (h *Handler) LoadQuiz(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQuizBody)

	var req models.LoadQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	view, err := h.service.LoadQuiz(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Quiz()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ResetQuiz(w http.ResponseWriter, r *http.Request) {
	h.service.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	outcome, err := h.service.Submit(index, req.Selected)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if outcome.Status == session.StatusNoSelection {
		writeJSON(w, http.StatusUnprocessableEntity, outcome)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) Reshuffle(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	view, err := h.service.Reshuffle(index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ReadAloud(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	resp, err := h.service.ReadAloud(index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Voice(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	var req models.VoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Voice(index, req.Spoken)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Finish()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	envelope, err := h.service.Export()
	if err != nil {
		h.writeError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, envelope)
	case "yaml":
		out, err := yaml.Marshal(envelope)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Export failed: " + err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		w.Write(out)
	default:
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "format must be 'json' or 'yaml'"})
	}
}

// ── Bank ─────────────────────────────────────────────────

func (h *Handler) ListQuizFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := intQueryParam(query, "limit", 20)
	offset := intQueryParam(query, "offset", 0)

	files, err := h.service.ListQuizFiles(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if files == nil {
		files = []models.QuizFile{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *Handler) SaveQuizFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQuizBody)

	var req models.SaveQuizFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.SaveQuizFile(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetQuizFile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid file ID"})
		return
	}

	file, err := h.service.GetQuizFile(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// ── Generation ───────────────────────────────────────────

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, models.ErrorResponse{Error: "Generation rate limit exceeded"})
		return
	}

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Topic == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "topic is required"})
		return
	}

	// Default count
	if req.Count <= 0 {
		req.Count = 5
	}

	resp, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ── Helpers ──────────────────────────────────────────────

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve *generator.ValidationError
	switch {
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrQuizFileNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrIndexOutOfRange):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrBankDisabled):
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNoSource), errors.Is(err, ErrNoQuestions):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, source.ErrForbidden):
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, source.ErrTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, source.ErrUnavailable):
		// The wrapped cause can name server paths; log it, don't return it.
		h.log.Info("quiz source unavailable", zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: source.ErrUnavailable.Error()})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Generation failed: " + err.Error()})
	default:
		h.log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid question index"})
		return 0, false
	}
	return index, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
