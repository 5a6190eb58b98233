package handler

import (
	"net/http"

	"github.com/Rrens/article-hub/internal/api/middleware"
	"github.com/Rrens/article-hub/internal/api/response"
	"github.com/Rrens/article-hub/internal/domain"
	"github.com/Rrens/article-hub/internal/service"
	"github.com/go-chi/chi/v5"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	articles *service.ArticleService
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articles *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// analysisStarted is the body of a 202 from Analyze
type analysisStarted struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// Create creates an article authored by the caller
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	var input domain.ArticleCreate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	article, err := h.articles.Create(r.Context(), caller, input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Created(w, article)
}

// List lists articles, optionally filtered by ?search= and ?tags=a,b
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	articles, err := h.articles.List(r.Context(), caller, q.Get("search"), q.Get("tags"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, articles)
}

// Get returns a single article
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	article, err := h.articles.Get(r.Context(), caller, chi.URLParam(r, "articleID"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, article)
}

// Update changes the title and/or content of the caller's article
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	var input domain.ArticleUpdate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	article, err := h.articles.Update(r.Context(), caller, chi.URLParam(r, "articleID"), input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, article)
}

// Delete removes the caller's article
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	if err := h.articles.Delete(r.Context(), caller, chi.URLParam(r, "articleID")); err != nil {
		response.FromError(w, r, err)
		return
	}

	response.NoContent(w)
}

// Analyze queues the analysis job and briefly waits for it. It answers 200
// with the analyzed article when the job finishes in time, 202 otherwise.
func (h *ArticleHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "articleID")

	jobID, err := h.articles.TriggerAnalysis(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	article, err := h.articles.AwaitAnalysis(r.Context(), jobID, id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	if article == nil {
		response.Accepted(w, analysisStarted{Status: "Analysis started", JobID: jobID})
		return
	}

	response.OK(w, article)
}

func callerOrReject(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, domain.ErrUnauthenticated)
		return nil, false
	}
	return caller, true
}
