package handlers

import (
	"net/http"

	"famlink/internal/models"
	"famlink/internal/service"
)

// ChildHandler handles child profiles and their activity logs
type ChildHandler struct {
	childService    *service.ChildService
	activityService *service.ActivityService
}

// NewChildHandler creates a new child handler
func NewChildHandler(childService *service.ChildService, activityService *service.ActivityService) *ChildHandler {
	return &ChildHandler{
		childService:    childService,
		activityService: activityService,
	}
}

type createChildRequest struct {
	Name       string       `json:"name"`
	BirthDate  *models.Date `json:"birth_date"`
	Gender     string       `json:"gender"`
	AccountIDs []int64      `json:"account_ids"`
}

// ListChildren returns the children visible to the caller
func (h *ChildHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	children, err := h.childService.ListVisibleChildren(r.Context(), account.ID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, children)
}

// CreateChild creates a child owned by the caller
func (h *ChildHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	var req createChildRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	child, err := h.childService.CreateChild(r.Context(), account.ID, service.ChildInput{
		Name:      req.Name,
		BirthDate: req.BirthDate,
		Gender:    req.Gender,
	}, req.AccountIDs)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, child)
}

// GetChild returns a child the caller is a member of
func (h *ChildHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	child, err := h.childService.GetChild(r.Context(), account.ID, childID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, child)
}

// UpdateChild applies a partial update
func (h *ChildHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var patch models.ChildPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	child, err := h.childService.UpdateChild(r.Context(), account.ID, childID, patch)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, child)
}

// DeleteChild removes a child
func (h *ChildHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.childService.DeleteChild(r.Context(), account.ID, childID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type recordActivityRequest struct {
	Kind      models.ActivityKind `json:"kind"`
	Day       models.Date         `json:"day"`
	Detail    string              `json:"detail"`
	Completed *bool               `json:"completed"`
}

// ListActivities returns a child's log, filtered by the optional from/to days
func (h *ChildHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	from, ok := queryDate(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryDate(w, r, "to")
	if !ok {
		return
	}

	activities, err := h.activityService.List(r.Context(), account.ID, childID, from, to)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, activities)
}

// RecordActivity adds or replaces an entry in a child's log
func (h *ChildHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req recordActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	activity, err := h.activityService.Record(r.Context(), account.ID, childID, service.ActivityInput{
		Kind:      req.Kind,
		Day:       req.Day,
		Detail:    req.Detail,
		Completed: req.Completed,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, activity)
}

// DeleteActivity removes an entry from a child's log
func (h *ChildHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	activityID, ok := pathID(w, r, "activityId")
	if !ok {
		return
	}

	if err := h.activityService.Delete(r.Context(), account.ID, childID, activityID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryDate(w http.ResponseWriter, r *http.Request, name string) (*models.Date, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, true
	}
	d, err := models.ParseDate(value)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return nil, false
	}
	return &d, true
}
