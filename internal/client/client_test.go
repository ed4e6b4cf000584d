package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feastfox/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_FetchDecision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/dinner/decision", r.URL.Path)
		writeJSON(w, http.StatusOK, models.DinnerDecision{Meal: "Pad Thai", Cuisine: "Thai", Reason: "tangy"})
	}))
	defer srv.Close()

	d, err := New(srv.URL).FetchDecision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DinnerDecision{Meal: "Pad Thai", Cuisine: "Thai", Reason: "tangy"}, d)
}

func TestClient_MealCRUD(t *testing.T) {
	var lastBody models.MealCreate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			if len(data) > 0 {
				assert.NoError(t, json.Unmarshal(data, &lastBody))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			}
		}

		switch r.Method + " " + r.URL.Path {
		case "GET /api/meals":
			writeJSON(w, http.StatusOK, []models.Meal{{ID: "1", Meal: "Pho"}})
		case "GET /api/meals/1":
			writeJSON(w, http.StatusOK, models.Meal{ID: "1", Meal: "Pho"})
		case "POST /api/meals":
			writeJSON(w, http.StatusCreated, lastBody.WithID("new"))
		case "PUT /api/meals/1":
			writeJSON(w, http.StatusOK, lastBody.WithID("1"))
		case "DELETE /api/meals/1":
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Meal not found"})
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL + "/")
	assert.Equal(t, srv.URL, c.BaseURL())

	meals, err := c.ListMeals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Meal{{ID: "1", Meal: "Pho"}}, meals)

	got, err := c.GetMeal(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Pho", got.Meal)

	in := models.MealCreate{Meal: "Sushi", Cuisine: "Japanese", Reason: "fresh"}
	created, err := c.CreateMeal(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, in.WithID("new"), created)

	updated, err := c.UpdateMeal(ctx, "1", in)
	require.NoError(t, err)
	assert.Equal(t, in.WithID("1"), updated)
	assert.Equal(t, in, lastBody)

	require.NoError(t, c.DeleteMeal(ctx, "1"))

	_, err = c.UpdateMeal(ctx, "999", in)
	require.ErrorIs(t, err, models.ErrMealNotFound)
	assert.NotErrorIs(t, err, models.ErrNoMeals)
}

func TestClient_RequestFailed(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantErr  string
		notFound bool
		noMeals  bool
	}{
		{
			name:    "no meals",
			status:  http.StatusNotFound,
			body:    `{"error":"No meals available"}`,
			wantMsg: "No meals available",
			wantErr: "API Error: 404 Not Found",
			noMeals: true,
		},
		{
			name:     "meal not found",
			status:   http.StatusNotFound,
			body:     `{"error":"Meal not found"}`,
			wantMsg:  "Meal not found",
			wantErr:  "API Error: 404 Not Found",
			notFound: true,
		},
		{
			name:    "detail body",
			status:  http.StatusUnprocessableEntity,
			body:    `{"detail":"meal is required"}`,
			wantMsg: "meal is required",
			wantErr: "API Error: 422 Unprocessable Entity",
		},
		{
			name:    "non json body",
			status:  http.StatusInternalServerError,
			body:    `boom`,
			wantErr: "API Error: 500 Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL).FetchDecision(context.Background())
			require.Error(t, err)

			var rf *RequestFailedError
			require.True(t, errors.As(err, &rf))
			assert.Equal(t, tt.status, rf.StatusCode)
			assert.Equal(t, tt.wantMsg, rf.Message)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.Equal(t, tt.notFound, errors.Is(err, models.ErrMealNotFound))
			assert.Equal(t, tt.noMeals, errors.Is(err, models.ErrNoMeals))
		})
	}
}

func TestClient_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteMeal(context.Background(), "1")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL).ListMeals(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListMeals(context.Background())
	require.Error(t, err)
	var rf *RequestFailedError
	assert.False(t, errors.As(err, &rf), "transport errors are not HTTP failures")
}

func TestClient_PathEscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).DeleteMeal(context.Background(), "a/b c"))
	assert.Equal(t, "/api/meals/a%2Fb%20c", gotPath)
}

func TestClient_CuisinesAndHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dinner/cuisines":
			writeJSON(w, http.StatusOK, models.CuisineList{Cuisines: []string{"Thai"}, Count: 1})
		case "/health":
			writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL)

	list, err := c.ListCuisines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Thai"}, list.Cuisines)

	status, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", status)
}

func TestNew_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
}
