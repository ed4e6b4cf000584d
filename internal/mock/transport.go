package mock

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/jarcoal/httpmock"

	"feastfox/internal/models"
)

var (
	decisionPath = regexp.MustCompile(`/api/dinner/decision$`)
	mealsPath    = regexp.MustCompile(`/api/meals$`)
	mealPath     = regexp.MustCompile(`/api/meals/([^/]+)$`)
)

type errorBody struct {
	Error string `json:"error"`
}

// NewTransport intercepts requests for the meal API paths and answers them
// from a Provider, so an HTTP client pointed at any base URL works unchanged.
func NewTransport(p *Provider) *httpmock.MockTransport {
	mt := httpmock.NewMockTransport()
	r := routes{provider: p}

	mt.RegisterRegexpResponder(http.MethodGet, decisionPath, r.decision)
	mt.RegisterRegexpResponder(http.MethodGet, mealsPath, r.list)
	mt.RegisterRegexpResponder(http.MethodPost, mealsPath, r.create)
	mt.RegisterRegexpResponder(http.MethodGet, mealPath, r.get)
	mt.RegisterRegexpResponder(http.MethodPut, mealPath, r.update)
	mt.RegisterRegexpResponder(http.MethodDelete, mealPath, r.remove)
	mt.RegisterNoResponder(notRouted)

	return mt
}

// NewHTTPClient returns an *http.Client whose requests never leave the
// process.
func NewHTTPClient(p *Provider) *http.Client {
	return &http.Client{Transport: NewTransport(p)}
}

type routes struct {
	provider *Provider
}

func (r routes) decision(req *http.Request) (*http.Response, error) {
	d, err := r.provider.FetchDecision(req.Context())
	if errors.Is(err, models.ErrNoMeals) {
		return httpmock.NewJsonResponse(http.StatusNotFound, errorBody{Error: "No meals available"})
	}
	if err != nil {
		return nil, err
	}
	return httpmock.NewJsonResponse(http.StatusOK, d)
}

func (r routes) list(req *http.Request) (*http.Response, error) {
	meals, err := r.provider.ListMeals(req.Context())
	if err != nil {
		return nil, err
	}
	return httpmock.NewJsonResponse(http.StatusOK, meals)
}

func (r routes) create(req *http.Request) (*http.Response, error) {
	in, err := decodeMeal(req)
	if err != nil {
		return httpmock.NewJsonResponse(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	meal, err := r.provider.CreateMeal(req.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpmock.NewJsonResponse(http.StatusCreated, meal)
}

func (r routes) get(req *http.Request) (*http.Response, error) {
	meal, err := r.provider.GetMeal(req.Context(), httpmock.MustGetSubmatch(req, 1))
	if err != nil {
		return mealError(err)
	}
	return httpmock.NewJsonResponse(http.StatusOK, meal)
}

func (r routes) update(req *http.Request) (*http.Response, error) {
	in, err := decodeMeal(req)
	if err != nil {
		return httpmock.NewJsonResponse(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	meal, err := r.provider.UpdateMeal(req.Context(), httpmock.MustGetSubmatch(req, 1), in)
	if err != nil {
		return mealError(err)
	}
	return httpmock.NewJsonResponse(http.StatusOK, meal)
}

func (r routes) remove(req *http.Request) (*http.Response, error) {
	if err := r.provider.DeleteMeal(req.Context(), httpmock.MustGetSubmatch(req, 1)); err != nil {
		return mealError(err)
	}
	return httpmock.NewStringResponse(http.StatusNoContent, ""), nil
}

func mealError(err error) (*http.Response, error) {
	if errors.Is(err, models.ErrMealNotFound) {
		return httpmock.NewJsonResponse(http.StatusNotFound, errorBody{Error: "Meal not found"})
	}
	return nil, err
}

// notRouted answers 405 for a known path with the wrong method and 404 for
// everything else.
func notRouted(req *http.Request) (*http.Response, error) {
	path := req.URL.Path
	if decisionPath.MatchString(path) || mealsPath.MatchString(path) || mealPath.MatchString(path) {
		return httpmock.NewJsonResponse(http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	}
	return httpmock.NewJsonResponse(http.StatusNotFound, errorBody{Error: "Not found"})
}

func decodeMeal(req *http.Request) (models.MealCreate, error) {
	var in models.MealCreate
	if req.Body == nil || req.Body == http.NoBody {
		return in, errors.New("request body is required")
	}
	defer req.Body.Close()
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		return in, fmt.Errorf("invalid JSON: %w", err)
	}
	return in, nil
}
