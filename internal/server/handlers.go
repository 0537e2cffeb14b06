package server

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/services"
	"github.com/desertthunder/moviweb/internal/shared"
	"github.com/desertthunder/moviweb/internal/tasks"
)

type userRequest struct {
	Name string `json:"name" validate:"notblank,max=120"`
}

type movieRequest struct {
	Title string `json:"title" validate:"notblank,max=300"`
}

type importRequest struct {
	Titles []string `json:"titles" validate:"required,min=1,max=100"`
}

type reviewRequest struct {
	Review string `json:"review" validate:"notblank,max=5000"`
}

// HealthResponse reports the active backend and lookup state.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Lookup  string `json:"lookup"`
	Breaker string `json:"breaker,omitempty"`
}

// ImportResponse summarizes a bulk import.
type ImportResponse struct {
	Total   int                 `json:"total"`
	Added   int                 `json:"added"`
	Missed  int                 `json:"missed"`
	Failed  int                 `json:"failed"`
	Results []ImportTitleResult `json:"results"`
}

// ImportTitleResult is the outcome for one title.
type ImportTitleResult struct {
	Title  string        `json:"title"`
	Status string        `json:"status"`
	Movie  *models.Movie `json:"movie,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// API serves the JSON endpoints over a [models.DataManager].
type API struct {
	store  models.DataManager
	lookup services.MetadataLookup
	engine *tasks.Engine
	logger *log.Logger
}

// NewAPI creates the handler set. lookup may be nil, in which case adding movies by title answers 502.
func NewAPI(store models.DataManager, lookup services.MetadataLookup, logger *log.Logger) *API {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &API{
		store:  store,
		lookup: lookup,
		engine: tasks.NewEngine(store, lookup, logger),
		logger: shared.WithLogger(logger, "component", "api"),
	}
}

// Register adds every API route to r.
func (a *API) Register(r Router) {
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(a.health))

	r.Handle(http.MethodGet, "/users", http.HandlerFunc(a.listUsers))
	r.Handle(http.MethodPost, "/users", http.HandlerFunc(a.createUser))
	r.Handle(http.MethodGet, "/users/{id}", http.HandlerFunc(a.getUser))
	r.Handle(http.MethodPut, "/users/{id}", http.HandlerFunc(a.updateUser))
	r.Handle(http.MethodDelete, "/users/{id}", http.HandlerFunc(a.deleteUser))

	r.Handle(http.MethodGet, "/users/{id}/movies", http.HandlerFunc(a.listMovies))
	r.Handle(http.MethodPost, "/users/{id}/movies", http.HandlerFunc(a.addMovie))
	r.Handle(http.MethodPost, "/users/{id}/movies/import", http.HandlerFunc(a.importMovies))
	r.Handle(http.MethodGet, "/users/{id}/movies/{movieID}", http.HandlerFunc(a.getMovie))
	r.Handle(http.MethodPut, "/users/{id}/movies/{movieID}", http.HandlerFunc(a.updateMovie))
	r.Handle(http.MethodDelete, "/users/{id}/movies/{movieID}", http.HandlerFunc(a.deleteMovie))

	r.Handle(http.MethodGet, "/users/{id}/movies/{movieID}/reviews", http.HandlerFunc(a.listReviews))
	r.Handle(http.MethodPost, "/users/{id}/movies/{movieID}/reviews", http.HandlerFunc(a.addReview))
	r.Handle(http.MethodDelete, "/users/{id}/movies/{movieID}/reviews/{reviewID}", http.HandlerFunc(a.deleteReview))
}

// NewRouter builds a [BasicRouter] with request ID, logging and recovery middleware and every API route.
func NewRouter(api *API, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(RequestID(), Logging(logger), Recover(logger))
	api.Register(r)
	return r
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Backend: a.store.Name(), Lookup: "disabled"}
	if a.lookup != nil {
		resp.Lookup = "enabled"
	}
	if b, ok := a.lookup.(interface{ BreakerState() string }); ok {
		resp.Breaker = b.BreakerState()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.store.GetAllUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.store.AddUser(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/users/%d", user.ID))
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.store.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.store.UpdateUser(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.store.DeleteUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) listMovies(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	movies, err := a.store.GetUserMovies(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// addMovie resolves the posted title and stores the match. Nothing is stored on a miss or lookup failure.
func (a *API) addMovie(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req movieRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := a.store.GetUser(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	if a.lookup == nil {
		writeError(w, r, fmt.Errorf("%w: metadata lookup not configured", shared.ErrServiceUnavailable))
		return
	}

	meta, err := a.lookup.Lookup(r.Context(), req.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}

	movie, err := a.store.AddMovie(r.Context(), userID, *meta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/users/%d/movies/%d", userID, movie.ID))
	writeJSON(w, http.StatusCreated, movie)
}

func (a *API) importMovies(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req importRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := a.engine.Import(r.Context(), nil, userID, req.Titles, tasks.ImportOpts{})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ImportResponse{
		Total:   result.Total,
		Added:   result.Added,
		Missed:  result.Missed,
		Failed:  result.Failed,
		Results: make([]ImportTitleResult, 0, len(result.Results)),
	}
	for _, res := range result.Results {
		item := ImportTitleResult{Title: res.Title, Status: res.Status.String(), Movie: res.Movie}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		resp.Results = append(resp.Results, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) getMovie(w http.ResponseWriter, r *http.Request) {
	userID, movieID, err := movieParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	movie, err := a.store.GetMovie(r.Context(), userID, movieID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (a *API) updateMovie(w http.ResponseWriter, r *http.Request) {
	userID, movieID, err := movieParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var update models.MovieUpdate
	if err := decodeBody(r, &update); err != nil {
		writeError(w, r, err)
		return
	}

	movie, err := a.store.UpdateMovie(r.Context(), userID, movieID, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (a *API) deleteMovie(w http.ResponseWriter, r *http.Request) {
	userID, movieID, err := movieParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	movie, err := a.store.DeleteMovie(r.Context(), userID, movieID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (a *API) listReviews(w http.ResponseWriter, r *http.Request) {
	rs, ok := a.reviews(w, r)
	if !ok {
		return
	}
	userID, movieID, err := movieParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	reviews, err := rs.GetReviews(r.Context(), userID, movieID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (a *API) addReview(w http.ResponseWriter, r *http.Request) {
	rs, ok := a.reviews(w, r)
	if !ok {
		return
	}
	userID, movieID, err := movieParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req reviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	review, err := rs.AddReview(r.Context(), userID, movieID, req.Review)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (a *API) deleteReview(w http.ResponseWriter, r *http.Request) {
	rs, ok := a.reviews(w, r)
	if !ok {
		return
	}
	userID, movieID, err := movieParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviewID, err := pathInt(r, "reviewID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := rs.DeleteReview(r.Context(), userID, movieID, reviewID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reviews writes 501 and reports false when the backend has no review support.
func (a *API) reviews(w http.ResponseWriter, r *http.Request) (models.ReviewStore, bool) {
	rs, ok := models.Reviews(a.store)
	if !ok {
		writeError(w, r, fmt.Errorf("%w: %s backend has no reviews", shared.ErrNotSupported, a.store.Name()))
	}
	return rs, ok
}

func movieParams(r *http.Request) (int, int, error) {
	userID, err := pathInt(r, "id")
	if err != nil {
		return 0, 0, err
	}
	movieID, err := pathInt(r, "movieID")
	if err != nil {
		return 0, 0, err
	}
	return userID, movieID, nil
}
