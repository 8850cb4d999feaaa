package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/luxcert/cert-services/internal/certsvc/models"

	log "github.com/sirupsen/logrus"
)

// RouteIndex is where the client lands after logout.
const RouteIndex = "index.html"

type signUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Wallet    string `json:"wallet"`
	Certifier bool   `json:"certifier"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string `json:"token"`
	Route     string `json:"route"`
	Wallet    string `json:"wallet"`
	Certifier bool   `json:"certifier"`
}

func (h *Handler) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "malformed request body"})
		return
	}

	result, err := h.sessionService.SignUp(r.Context(), req.Email, req.Password, req.Wallet, req.Certifier)
	if err != nil {
		log.Errorf("Error [SessionService.SignUp] %s", err)
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Code: http.StatusOK,
		Data: sessionResponse{
			Token:     result.Session.Token,
			Route:     result.Route,
			Wallet:    result.Session.Wallet,
			Certifier: result.Session.Certifier,
		},
	})
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "malformed request body"})
		return
	}

	result, err := h.sessionService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Errorf("Error [SessionService.Login] %s", err)
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Code: http.StatusOK,
		Data: sessionResponse{
			Token:     result.Session.Token,
			Route:     result.Route,
			Wallet:    result.Session.Wallet,
			Certifier: result.Session.Certifier,
		},
	})
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess == nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "no session"})
		return
	}

	if err := h.sessionService.Logout(r.Context(), sess); err != nil {
		// sign-out unconfirmed: the client keeps its local state
		log.Errorf("Error [SessionService.Logout] %s", err)
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Code: http.StatusOK,
		Data: sessionResponse{
			Route:  RouteIndex,
			Wallet: models.WalletSentinel,
		},
	})
}
