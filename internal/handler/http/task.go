package http

import (
	"encoding/json"
	"net/http"

	"github.com/manas-swain-001/cms/internal/domain/task"
	"github.com/manas-swain-001/cms/internal/handler/http/middleware"
	"github.com/manas-swain-001/cms/internal/handler/http/response"
)

type TaskHandler interface {
	SubmitUpdate(w http.ResponseWriter, r *http.Request)
	GetMyLedger(w http.ResponseWriter, r *http.Request)
	ListLedgers(w http.ResponseWriter, r *http.Request)
	GetSlots(w http.ResponseWriter, r *http.Request)
}

type taskHandlerImpl struct {
	taskService task.Service
}

func NewTaskHandler(taskService task.Service) TaskHandler {
	return &taskHandlerImpl{
		taskService: taskService,
	}
}

// SubmitUpdate implements TaskHandler.
func (h *taskHandlerImpl) SubmitUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.Identity(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req task.SubmitUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.taskService.SubmitUpdate(r.Context(), userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checkpoint update submitted", result)
}

// GetMyLedger implements TaskHandler. An empty date means today; the
// service resolves it through its clock.
func (h *taskHandlerImpl) GetMyLedger(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.Identity(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.taskService.GetMyLedger(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListLedgers implements TaskHandler. Manager compliance view.
func (h *taskHandlerImpl) ListLedgers(w http.ResponseWriter, r *http.Request) {
	filter := task.LedgerFilter{
		Date: r.URL.Query().Get("date"),
	}
	if v := r.URL.Query().Get("slot"); v != "" {
		filter.Slot = &v
	}

	result, err := h.taskService.ListLedgers(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSlots implements TaskHandler. Exposes the canonical slot windows
// so clients can render the day's checkpoint schedule.
func (h *taskHandlerImpl) GetSlots(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.taskService.Table().Windows())
}
