package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/effort/internal/auth"
	"example.com/effort/internal/catalog"
	"example.com/effort/internal/dish"
	"example.com/effort/internal/units"
)

func newTestHandler() *Handler {
	return NewHandler(catalog.NewInMemoryCatalog(), dish.NewInMemoryRepository(), units.NewConverter())
}

func authedRequest(method, target, body string, scopes ...string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))

	scopeSet := make(map[string]struct{}, len(scopes))
	for _, scope := range scopes {
		scopeSet[scope] = struct{}{}
	}
	claims := &auth.Claims{
		Subject:   "tester",
		TenantID:  "tenant-1",
		Scopes:    scopeSet,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func findDish(t *testing.T, repo dish.Repository, name string) dish.Dish {
	t.Helper()
	page, _, err := repo.List(context.Background(), nil, 50)
	if err != nil {
		t.Fatalf("list dishes: %v", err)
	}
	for _, d := range page {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("dish %q not seeded", name)
	return dish.Dish{}
}

func TestEffortWithExplicitCalories(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodPost, "/v1/effort",
		`{"calories":270,"weight_kg":70}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp EffortResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.DishName != "Custom dish" {
		t.Fatalf("expected default dish name, got %q", resp.DishName)
	}
	if !resp.Available || resp.Breakdown == nil {
		t.Fatalf("expected an available breakdown: %+v", resp)
	}
	if resp.HighCalorie {
		t.Fatalf("270 kcal must not be flagged high-calorie")
	}
	if resp.Breakdown.Primary.ActivityKey != "walking" {
		t.Fatalf("expected walking primary, got %q", resp.Breakdown.Primary.ActivityKey)
	}
	if resp.Breakdown.Primary.Minutes != 63 {
		t.Fatalf("expected 63 minutes, got %d", resp.Breakdown.Primary.Minutes)
	}
	if len(resp.Breakdown.Alternatives) == 0 || len(resp.Breakdown.Alternatives) > 5 {
		t.Fatalf("unexpected alternative count %d", len(resp.Breakdown.Alternatives))
	}
	if resp.Breakdown.Summary.TotalOptions != 1+len(resp.Breakdown.Alternatives) {
		t.Fatalf("summary option count mismatch: %+v", resp.Breakdown.Summary)
	}
}

func TestEffortFlagsHighCalorieDishes(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodPost, "/v1/effort",
		`{"calories":540,"weight_kg":70,"dish_name":"Cheeseburger"}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp EffortResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.HighCalorie {
		t.Fatalf("540 kcal must be flagged high-calorie")
	}
	if resp.DishName != "Cheeseburger" {
		t.Fatalf("expected dish name passthrough, got %q", resp.DishName)
	}
}

func TestEffortResolvesDishWithPortionOverride(t *testing.T) {
	repo := dish.NewInMemoryRepository()
	handler := NewHandler(catalog.NewInMemoryCatalog(), repo, units.NewConverter())

	pizza := findDish(t, repo, "Margherita Pizza")

	req := authedRequest(http.MethodPost, "/v1/effort",
		`{"dish_id":"`+pizza.ID+`","portion":"2 slices","weight_kg":70}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp EffortResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	// The seeded base serving is one slice; two slices double the calories.
	if resp.Calories != 540 {
		t.Fatalf("expected portion-adjusted 540 kcal, got %v", resp.Calories)
	}
	if !resp.HighCalorie {
		t.Fatalf("doubled pizza must be flagged high-calorie")
	}
}

func TestEffortPortionFallbackKeepsCaloriesSane(t *testing.T) {
	repo := dish.NewInMemoryRepository()
	handler := NewHandler(catalog.NewInMemoryCatalog(), repo, units.NewConverter())

	pizza := findDish(t, repo, "Margherita Pizza")

	req := authedRequest(http.MethodPost, "/v1/effort",
		`{"dish_id":"`+pizza.ID+`","portion":"a generous helping","weight_kg":70}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp EffortResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	// The unparseable portion normalizes to the 100 g default against the
	// 30 g base slice, scaling 270 kcal up to 900, never down to ~1/100.
	if resp.Calories != 900 {
		t.Fatalf("expected fallback-scaled 900 kcal, got %v", resp.Calories)
	}
}

func TestEffortDishNotFound(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodPost, "/v1/effort",
		`{"dish_id":"missing","weight_kg":70}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestEffortValidation(t *testing.T) {
	handler := newTestHandler()

	cases := []string{
		`{"weight_kg":70}`,
		`{"calories":270}`,
		`{"calories":270,"weight_kg":70,"mode":"sprint"}`,
		`not json`,
	}
	for _, body := range cases {
		req := authedRequest(http.MethodPost, "/v1/effort", body, auth.ScopeEffortRead)
		rr := httptest.NewRecorder()
		handler.effort(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 got %d", body, rr.Code)
		}
	}
}

func TestEffortAuth(t *testing.T) {
	handler := newTestHandler()

	anonymous := httptest.NewRequest(http.MethodPost, "/v1/effort",
		strings.NewReader(`{"calories":270,"weight_kg":70}`))
	rr := httptest.NewRecorder()
	handler.effort(rr, anonymous)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}

	wrongScope := authedRequest(http.MethodPost, "/v1/effort",
		`{"calories":270,"weight_kg":70}`, auth.ScopeCatalogRead)
	rr = httptest.NewRecorder()
	handler.effort(rr, wrongScope)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

func TestEffortMethodNotAllowed(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodGet, "/v1/effort", "", auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}

func TestEffortEmptyCatalog(t *testing.T) {
	handler := NewHandler(catalog.NewEmptyCatalog(), dish.NewInMemoryRepository(), units.NewConverter())

	req := authedRequest(http.MethodPost, "/v1/effort",
		`{"calories":270,"weight_kg":70}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d: %s", rr.Code, rr.Body.String())
	}

	var envelope map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal error envelope: %v", err)
	}
	if envelope["type"] != "no_suitable_activity" {
		t.Fatalf("expected no_suitable_activity, got %q", envelope["type"])
	}
}

func TestEffortQuickMode(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodPost, "/v1/effort",
		`{"calories":270,"weight_kg":70,"mode":"quick"}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp EffortResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Available || resp.Breakdown == nil {
		t.Fatalf("expected quick options for a pizza slice: %+v", resp)
	}
	for _, item := range append([]ItemView{resp.Breakdown.Primary}, resp.Breakdown.Alternatives...) {
		if item.Minutes > 30 {
			t.Fatalf("quick option %q exceeds 30 minutes: %d", item.ActivityKey, item.Minutes)
		}
		if item.Met < 6 {
			t.Fatalf("quick option %q is not vigorous: %v", item.ActivityKey, item.Met)
		}
	}
}

func TestEffortQuickModeUnavailable(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodPost, "/v1/effort",
		`{"calories":2000,"weight_kg":70,"mode":"quick"}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("degenerate quick mode is not an error, got %d", rr.Code)
	}

	var resp EffortResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Available || resp.Breakdown != nil {
		t.Fatalf("expected no quick options for 2000 kcal: %+v", resp)
	}
}

func TestEffortEnduranceMode(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodPost, "/v1/effort",
		`{"calories":540,"weight_kg":70,"mode":"endurance"}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp EffortResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Available || resp.Breakdown == nil {
		t.Fatalf("expected endurance options for 540 kcal: %+v", resp)
	}
	for _, item := range append([]ItemView{resp.Breakdown.Primary}, resp.Breakdown.Alternatives...) {
		if item.Minutes < 45 {
			t.Fatalf("endurance option %q under 45 minutes: %d", item.ActivityKey, item.Minutes)
		}
	}
}

func TestEffortComparativeMode(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodPost, "/v1/effort",
		`{"calories":270,"weight_kg":70,"mode":"comparative"}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp EffortResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Comparative) != 3 {
		t.Fatalf("expected one option per intensity, got %d", len(resp.Comparative))
	}
	// Light activities take longer than vigorous ones.
	if resp.Comparative[0].Minutes <= resp.Comparative[2].Minutes {
		t.Fatalf("comparative ordering broken: %+v", resp.Comparative)
	}
}

func TestEffortPoliciesMode(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodPost, "/v1/effort",
		`{"calories":270,"weight_kg":70,"mode":"policies"}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.effort(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp EffortResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Policies == nil {
		t.Fatalf("expected a policy comparison: %+v", resp)
	}
	if resp.Policies.Baseline.Minutes != 63 {
		t.Fatalf("expected 63 baseline minutes, got %d", resp.Policies.Baseline.Minutes)
	}
	if resp.Policies.Conservative.Minutes != 69 {
		t.Fatalf("expected 69 conservative minutes, got %d", resp.Policies.Conservative.Minutes)
	}
}

func TestNormalizeServing(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodPost, "/v1/servings/normalize",
		`{"text":"1 slice","target_grams":90}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.normalizeServing(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp NormalizeServingResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Serving.Grams != 30 || resp.Serving.Unit != "slice" {
		t.Fatalf("unexpected serving: %+v", resp.Serving)
	}
	if !resp.Valid {
		t.Fatalf("one slice must be valid")
	}
	if resp.DisplayContext.QuantityText != "for 3 slices" || !resp.DisplayContext.IsPerProduct {
		t.Fatalf("unexpected display context: %+v", resp.DisplayContext)
	}
	if len(resp.Suggestions) == 0 {
		t.Fatalf("expected serving suggestions")
	}
}

func TestNormalizeServingFallsBack(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodPost, "/v1/servings/normalize",
		`{"text":"a mystery amount"}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.normalizeServing(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp NormalizeServingResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Serving.Grams != 100 || resp.Serving.Unit != "g" {
		t.Fatalf("expected the 100 g fallback, got %+v", resp.Serving)
	}
}

func TestNormalizeServingRequiresText(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodPost, "/v1/servings/normalize",
		`{"text":"  "}`, auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.normalizeServing(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestListActivities(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodGet, "/v1/activities", "", auth.ScopeCatalogRead)
	rr := httptest.NewRecorder()
	handler.listActivities(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ListActivitiesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Items) == 0 {
		t.Fatalf("expected the seeded catalog")
	}
}

func TestListActivitiesFilters(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodGet, "/v1/activities?intensity=vigorous", "", auth.ScopeEffortRead)
	rr := httptest.NewRecorder()
	handler.listActivities(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	var resp ListActivitiesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	for _, item := range resp.Items {
		if item.Met < 6 {
			t.Fatalf("non-vigorous item %q in filtered list", item.Key)
		}
	}

	req = authedRequest(http.MethodGet, "/v1/activities?q=jog", "", auth.ScopeEffortRead)
	rr = httptest.NewRecorder()
	handler.listActivities(rr, req)

	var search ListActivitiesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &search); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(search.Items) != 1 || search.Items[0].Key != "jogging" {
		t.Fatalf("unexpected search result: %+v", search.Items)
	}
}

func TestListDishesPaginates(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodGet, "/v1/dishes?limit=2", "", auth.ScopeCatalogRead)
	rr := httptest.NewRecorder()
	handler.listDishes(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var first ListDishesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(first.Items) != 2 {
		t.Fatalf("expected 2 dishes, got %d", len(first.Items))
	}
	if first.NextCursor == "" {
		t.Fatalf("expected a continuation cursor")
	}

	req = authedRequest(http.MethodGet, "/v1/dishes?limit=2&cursor="+first.NextCursor, "", auth.ScopeCatalogRead)
	rr = httptest.NewRecorder()
	handler.listDishes(rr, req)

	var second ListDishesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &second); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(second.Items) != 2 {
		t.Fatalf("expected 2 more dishes, got %d", len(second.Items))
	}
	if second.Items[0].DishID == first.Items[0].DishID {
		t.Fatalf("pagination did not advance")
	}
}

func TestListDishesRejectsBadCursor(t *testing.T) {
	handler := newTestHandler()

	req := authedRequest(http.MethodGet, "/v1/dishes?cursor=%25zz", "", auth.ScopeCatalogRead)
	rr := httptest.NewRecorder()
	handler.listDishes(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}
