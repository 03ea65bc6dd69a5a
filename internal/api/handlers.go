// Package api exposes HTTP handlers for the effort service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"example.com/effort/internal/auth"
	"example.com/effort/internal/dish"
	"example.com/effort/internal/effort"
	"example.com/effort/internal/persistence"
	"example.com/effort/internal/units"
)

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	catalog   effort.Catalog
	dishes    dish.Repository
	converter *units.Converter
}

// NewHandler builds a Handler.
func NewHandler(catalog effort.Catalog, dishes dish.Repository, converter *units.Converter) *Handler {
	if converter == nil {
		converter = units.NewConverter()
	}
	return &Handler{catalog: catalog, dishes: dishes, converter: converter}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/effort", h.effort)
	mux.HandleFunc("/v1/servings/normalize", h.normalizeServing)
	mux.HandleFunc("/v1/activities", h.listActivities)
	mux.HandleFunc("/v1/dishes", h.listDishes)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Recommendation modes accepted by POST /v1/effort.
const (
	ModeStandard    = ""
	ModeQuick       = "quick"
	ModeEndurance   = "endurance"
	ModeComparative = "comparative"
	ModePolicies    = "policies"
)

// EffortRequest is the payload for POST /v1/effort. Either dish_id or an
// explicit calorie amount must be supplied.
type EffortRequest struct {
	DishID              string   `json:"dish_id,omitempty"`
	DishName            string   `json:"dish_name,omitempty"`
	Calories            float64  `json:"calories,omitempty"`
	Portion             string   `json:"portion,omitempty"`
	WeightKg            float64  `json:"weight_kg"`
	PreferredActivities []string `json:"preferred_activities,omitempty"`
	Experience          string   `json:"experience,omitempty"`
	Mode                string   `json:"mode,omitempty"`
}

// Validate ensures request correctness.
func (r EffortRequest) Validate() error {
	if strings.TrimSpace(r.DishID) == "" && r.Calories <= 0 {
		return errors.New("dish_id or a positive calories value is required")
	}
	if r.WeightKg <= 0 {
		return errors.New("weight_kg must be > 0")
	}
	switch r.Mode {
	case ModeStandard, ModeQuick, ModeEndurance, ModeComparative, ModePolicies:
	default:
		return errors.New("mode must be one of quick, endurance, comparative, policies")
	}
	return nil
}

// ItemView exposes one computed effort option.
type ItemView struct {
	ActivityKey   string  `json:"activity_key"`
	ActivityLabel string  `json:"activity_label"`
	Minutes       int     `json:"minutes"`
	Met           float64 `json:"met"`
	Effort        string  `json:"effort"`
	Duration      string  `json:"duration"`
}

// SummaryView condenses a breakdown for list displays.
type SummaryView struct {
	TotalOptions         int    `json:"total_options"`
	QuickestTime         int    `json:"quickest_time_min"`
	LongestTime          int    `json:"longest_time_min"`
	AverageTime          int    `json:"average_time_min"`
	PrimaryActivityLabel string `json:"primary_activity_label"`
}

// BreakdownView is the full recommendation payload.
type BreakdownView struct {
	Primary         ItemView    `json:"primary"`
	Alternatives    []ItemView  `json:"alternatives"`
	Summary         SummaryView `json:"summary"`
	HasQuickOptions bool        `json:"has_quick_options"`
}

// PolicyComparisonView pairs the same calculation under two policies.
type PolicyComparisonView struct {
	Baseline     ItemView `json:"baseline"`
	Conservative ItemView `json:"conservative"`
}

// EffortResponse is the response body for POST /v1/effort. Available is
// false when a degenerate mode found no qualifying activity; that is not an
// error condition.
type EffortResponse struct {
	DishName    string                `json:"dish_name"`
	Calories    float64               `json:"calories"`
	HighCalorie bool                  `json:"high_calorie"`
	Mode        string                `json:"mode,omitempty"`
	Available   bool                  `json:"available"`
	Breakdown   *BreakdownView        `json:"breakdown,omitempty"`
	Comparative []ItemView            `json:"comparative,omitempty"`
	Policies    *PolicyComparisonView `json:"policies,omitempty"`
}

func (h *Handler) effort(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeEffortRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope effort:read required")
		return
	}

	var req EffortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	dishView, status, errCode, errDetail := h.resolveDish(r, req)
	if errCode != "" {
		writeError(w, status, errCode, errDetail)
		return
	}

	domainReq, err := effort.NewRequest(dishView, effort.UserProfile{
		Weight:              effort.Kilograms(req.WeightKg),
		PreferredActivities: req.PreferredActivities,
		Experience:          effort.Experience(req.Experience),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	calculator := effort.NewCalculator(h.catalog, effort.PolicyForExperience(domainReq.Experience()))
	resp := EffortResponse{
		DishName:    dishView.Name,
		Calories:    float64(dishView.Calories),
		HighCalorie: domainReq.IsHighCalorie(),
		Mode:        req.Mode,
	}

	switch req.Mode {
	case ModeQuick, ModeEndurance:
		var breakdown *effort.Breakdown
		if req.Mode == ModeQuick {
			breakdown, err = calculator.QuickRecommendations(r.Context(), domainReq)
		} else {
			breakdown, err = calculator.EnduranceRecommendations(r.Context(), domainReq)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		if breakdown != nil {
			resp.Available = true
			view := toBreakdownView(*breakdown)
			resp.Breakdown = &view
		}
	case ModeComparative:
		items, err := calculator.ComparativeBreakdown(r.Context(), domainReq)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		resp.Available = len(items) > 0
		resp.Comparative = toItemViews(items)
	case ModePolicies:
		comparison, err := calculator.ComparePolicies(r.Context(), domainReq, effort.NewConservativePolicy())
		if err != nil {
			writeEffortError(w, err)
			return
		}
		resp.Available = true
		resp.Policies = &PolicyComparisonView{
			Baseline:     toItemView(comparison.Baseline),
			Conservative: toItemView(comparison.Alternative),
		}
	default:
		breakdown, err := calculator.Calculate(r.Context(), domainReq)
		if err != nil {
			writeEffortError(w, err)
			return
		}
		resp.Available = true
		view := toBreakdownView(breakdown)
		resp.Breakdown = &view
	}

	writeJSON(w, http.StatusOK, resp)
}

// resolveDish turns the request into the calculator's dish view, applying
// the portion ratio when a portion override is supplied.
func (h *Handler) resolveDish(r *http.Request, req EffortRequest) (effort.Dish, int, string, string) {
	if strings.TrimSpace(req.DishID) == "" {
		name := req.DishName
		if strings.TrimSpace(name) == "" {
			name = "Custom dish"
		}
		return effort.Dish{Name: name, Calories: effort.Calories(req.Calories)}, 0, "", ""
	}

	found, err := h.dishes.GetByID(r.Context(), req.DishID)
	if err != nil {
		return effort.Dish{}, http.StatusInternalServerError, "server_error", err.Error()
	}
	if found == nil {
		return effort.Dish{}, http.StatusNotFound, "not_found", "dish not found"
	}

	calories := found.Calories
	if strings.TrimSpace(req.Portion) != "" {
		base := h.converter.NormalizeServingText(found.ServingText)
		requested := h.converter.NormalizeServingText(req.Portion)
		ratio := h.converter.PortionRatio(base, requested.ToGrams())
		calories = effort.Calories(float64(calories) * ratio)
	}
	return effort.Dish{ID: found.ID, Name: found.Name, Calories: calories}, 0, "", ""
}

func writeEffortError(w http.ResponseWriter, err error) {
	if errors.Is(err, effort.ErrNoSuitableActivity) {
		writeError(w, http.StatusUnprocessableEntity, "no_suitable_activity", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "server_error", err.Error())
}

// NormalizeServingRequest is the payload for POST /v1/servings/normalize.
type NormalizeServingRequest struct {
	Text        string  `json:"text"`
	TargetGrams float64 `json:"target_grams,omitempty"`
}

// ServingView exposes a normalized serving.
type ServingView struct {
	Amount  float64 `json:"amount"`
	Unit    string  `json:"unit"`
	Grams   float64 `json:"grams"`
	Display string  `json:"display"`
}

// DisplayContextView mirrors units.DisplayContext on the wire.
type DisplayContextView struct {
	QuantityText       string `json:"quantity_text"`
	IsPerProduct       bool   `json:"is_per_product"`
	ServingDescription string `json:"serving_description"`
}

// NormalizeServingResponse packages normalization results.
type NormalizeServingResponse struct {
	Serving        ServingView        `json:"serving"`
	Valid          bool               `json:"valid"`
	DisplayContext DisplayContextView `json:"display_context"`
	Suggestions    []ServingView      `json:"suggestions"`
}

func (h *Handler) normalizeServing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeEffortRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope effort:read required")
		return
	}

	var req NormalizeServingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "text is required")
		return
	}

	serving := h.converter.NormalizeServingText(req.Text)
	target := units.Grams(req.TargetGrams)
	if target <= 0 {
		target = serving.ToGrams()
	}
	displayCtx := h.converter.DisplayContextFor(serving, target)

	suggestions := h.converter.SuggestedServings(serving)
	suggestionViews := make([]ServingView, 0, len(suggestions))
	for _, s := range suggestions {
		suggestionViews = append(suggestionViews, toServingView(s))
	}

	writeJSON(w, http.StatusOK, NormalizeServingResponse{
		Serving: toServingView(serving),
		Valid:   serving.IsValid(),
		DisplayContext: DisplayContextView{
			QuantityText:       displayCtx.QuantityText,
			IsPerProduct:       displayCtx.IsPerProduct,
			ServingDescription: displayCtx.ServingDescription,
		},
		Suggestions: suggestionViews,
	})
}

// ActivityView exposes one catalog entry.
type ActivityView struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Met       float64 `json:"met"`
	Intensity string  `json:"intensity"`
}

// ListActivitiesResponse packages catalog listings.
type ListActivitiesResponse struct {
	Items []ActivityView `json:"items"`
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeCatalogRead) && !claims.HasScope(auth.ScopeEffortRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope catalog:read required")
		return
	}

	var activities []effort.Activity
	var err error
	switch {
	case r.URL.Query().Get("intensity") != "":
		activities, err = h.catalog.GetByIntensity(r.Context(), effort.Intensity(r.URL.Query().Get("intensity")))
	case r.URL.Query().Get("q") != "":
		activities, err = h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	default:
		activities, err = h.catalog.GetAll(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, ActivityView{
			Key:       activity.Key,
			Label:     activity.Label,
			Met:       activity.Met.Value(),
			Intensity: string(activity.Met.Intensity()),
		})
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{Items: items})
}

// DishView exposes one dish record.
type DishView struct {
	DishID      string  `json:"dish_id"`
	Name        string  `json:"name"`
	Calories    float64 `json:"calories"`
	ServingText string  `json:"serving_text,omitempty"`
}

// ListDishesResponse packages dish listings.
type ListDishesResponse struct {
	Items      []DishView `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func (h *Handler) listDishes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeCatalogRead) && !claims.HasScope(auth.ScopeEffortRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope catalog:read required")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	dishes, next, err := h.dishes.List(r.Context(), cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]DishView, 0, len(dishes))
	for _, d := range dishes {
		items = append(items, DishView{
			DishID:      d.ID,
			Name:        d.Name,
			Calories:    float64(d.Calories),
			ServingText: d.ServingText,
		})
	}
	writeJSON(w, http.StatusOK, ListDishesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func toItemView(item effort.Item) ItemView {
	return ItemView{
		ActivityKey:   item.ActivityKey,
		ActivityLabel: item.ActivityLabel,
		Minutes:       int(item.Minutes),
		Met:           item.MetValue,
		Effort:        item.EffortDescription(),
		Duration:      item.FormattedDuration(),
	}
}

func toItemViews(items []effort.Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, item := range items {
		out = append(out, toItemView(item))
	}
	return out
}

func toBreakdownView(b effort.Breakdown) BreakdownView {
	summary := b.Summarize()
	return BreakdownView{
		Primary:      toItemView(b.Primary()),
		Alternatives: toItemViews(b.Alternatives()),
		Summary: SummaryView{
			TotalOptions:         summary.TotalOptions,
			QuickestTime:         int(summary.QuickestTime),
			LongestTime:          int(summary.LongestTime),
			AverageTime:          int(summary.AverageTime),
			PrimaryActivityLabel: summary.PrimaryActivityLabel,
		},
		HasQuickOptions: b.HasQuickOptions(),
	}
}

func toServingView(s units.ServingSize) ServingView {
	return ServingView{
		Amount:  s.Amount(),
		Unit:    s.Unit().String(),
		Grams:   float64(s.ToGrams()),
		Display: s.ToDisplayString(),
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
