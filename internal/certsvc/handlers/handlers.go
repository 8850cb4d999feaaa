package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/luxcert/cert-services/internal/certsvc/models"
	"github.com/luxcert/cert-services/internal/certsvc/service"

	"github.com/go-chi/jwtauth"
)

type contextKey string

const sessionKey contextKey = "session"

type Handler struct {
	tokenAuth       *jwtauth.JWTAuth
	sessionService  *service.SessionService
	issueService    *service.IssueService
	registryService *service.RegistryService
}

func NewHandler(tokenAuth *jwtauth.JWTAuth, sessionService *service.SessionService,
	issueService *service.IssueService, registryService *service.RegistryService) *Handler {
	return &Handler{
		tokenAuth:       tokenAuth,
		sessionService:  sessionService,
		issueService:    issueService,
		registryService: registryService,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (rs *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

// errorResponse maps the error taxonomy onto a status code. Auth
// errors carry a message safe to surface to the user verbatim.
func (rs *Handler) errorResponse(w http.ResponseWriter, err error) {
	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		rs.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: authErr.Message})
		return
	}

	var readErr *service.StoreReadError
	var writeErr *service.StoreWriteError
	if errors.As(err, &readErr) || errors.As(err, &writeErr) {
		rs.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: err.Error()})
		return
	}

	rs.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: err.Error()})
}

// SessionContext resolves the verified JWT claims into an explicit
// session object for downstream handlers.
func (h *Handler) SessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid session token"})
			return
		}

		sess, err := h.sessionService.Authenticate(r.Context(), claims)
		if err != nil {
			h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: err.Error()})
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *models.Session {
	sess, _ := r.Context().Value(sessionKey).(*models.Session)
	return sess
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "cert service is running at port " + os.Getenv("CERT_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	json.NewEncoder(w).Encode(rsp)
}
