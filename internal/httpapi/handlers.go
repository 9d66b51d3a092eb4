package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Spok95/school-healthcheck/internal/campaign"
	"github.com/Spok95/school-healthcheck/internal/metrics"
	"github.com/Spok95/school-healthcheck/internal/models"
	"github.com/Spok95/school-healthcheck/internal/observability"
)

type handlers struct {
	svc     *campaign.Service
	classes ClassLister
	log     *zap.SugaredLogger
}

func (h *handlers) createCampaign(w http.ResponseWriter, r *http.Request) {
	var c models.Campaign
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "некорректный JSON", http.StatusBadRequest)
		return
	}
	if err := h.svc.Create(r.Context(), &c); err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *handlers) listCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	out, total, err := h.svc.List(r.Context(), page, pageSize, q.Get("status"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"campaigns": out, "total": total})
}

func (h *handlers) getCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	c, stats, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"campaign": c, "stats": stats})
}

func (h *handlers) approve(w http.ResponseWriter, r *http.Request)  { h.transition(w, r, h.svc.Approve) }
func (h *handlers) reject(w http.ResponseWriter, r *http.Request)   { h.transition(w, r, h.svc.Reject) }
func (h *handlers) cancel(w http.ResponseWriter, r *http.Request)   { h.transition(w, r, h.svc.Cancel) }
func (h *handlers) start(w http.ResponseWriter, r *http.Request)    { h.transition(w, r, h.svc.Start) }
func (h *handlers) complete(w http.ResponseWriter, r *http.Request) { h.transition(w, r, h.svc.Complete) }

func (h *handlers) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, id int64) (*models.Campaign, error)) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	c, err := fn(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) schedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var in campaign.ScheduleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "некорректный JSON", http.StatusBadRequest)
		return
	}
	c, err := h.svc.Schedule(r.Context(), id, in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) dispatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var in struct {
		Message string `json:"message"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "некорректный JSON", http.StatusBadRequest)
			return
		}
	}
	res, err := h.svc.Dispatch(r.Context(), id, in.Message)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) eligible(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var (
		out []models.EligibleStudent
		err error
	)
	if r.URL.Query().Get("with_status") == "1" {
		out, err = h.svc.EligibleStudentsWithStatus(r.Context(), id)
	} else {
		out, err = h.svc.EligibleStudents(r.Context(), id)
	}
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"students": out, "total": len(out)})
}

func (h *handlers) recordResult(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var in campaign.RecordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "некорректный JSON", http.StatusBadRequest)
		return
	}
	rec, err := h.svc.RecordResult(r.Context(), id, in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *handlers) listResults(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.GetResults(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out, "total": len(out)})
}

func (h *handlers) respondToForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var in struct {
		Status models.ConsentStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "некорректный JSON", http.StatusBadRequest)
		return
	}
	if err := h.svc.RespondToForm(r.Context(), id, in.Status); err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"form_id": id, "status": in.Status})
}

func (h *handlers) listClasses(w http.ResponseWriter, r *http.Request) {
	out, err := h.classes.ListClassNames(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"classes": out})
}

func (h *handlers) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "некорректный id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeErr переводит доменные ошибки в HTTP-статусы. Пятисотки и 503
// уходят в Sentry, ожидаемые отказы — нет.
func (h *handlers) writeErr(w http.ResponseWriter, err error) {
	var pre *campaign.PreconditionError
	if errors.As(err, &pre) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   pre.Error(),
			"missing": pre.Missing,
		})
		return
	}
	var tr *campaign.InvalidTransitionError
	if errors.As(err, &tr) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": tr.Error(),
			"from":  tr.From,
			"to":    tr.To,
		})
		return
	}

	switch {
	case errors.Is(err, campaign.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, campaign.ErrDuplicateResult),
		errors.Is(err, campaign.ErrCancelUnsupported):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, campaign.ErrEmptySubmission):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, campaign.ErrInvalidCampaign),
		errors.Is(err, campaign.ErrEligibilityCriteriaMissing):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		metrics.HandlerErrors.Inc()
		observability.CaptureErr(err)
		h.log.Errorw("ошибка обработчика", "err", err)
		var collab *campaign.CollaboratorError
		if errors.As(err, &collab) {
			http.Error(w, "сервис временно недоступен", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "внутренняя ошибка", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
