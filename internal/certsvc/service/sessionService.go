package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/luxcert/cert-services/internal/certsvc/models"
	"github.com/luxcert/cert-services/internal/certsvc/store"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Routes the web client navigates to after each outcome.
const (
	RouteLanding   = "home.html"
	RouteUser      = "user.html"
	RouteCertifier = "certifier.html"
)

const sessionTTL = 7 * 24 * time.Hour

type IdentityStore interface {
	CreateIdentity(ctx context.Context, email, passwordHash string) (int64, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	CreateSession(ctx context.Context, tokenID string, userID int64) error
	DeleteSession(ctx context.Context, tokenID string) error
	SessionExists(ctx context.Context, tokenID string) (bool, error)
}

type ProfileStore interface {
	CreateProfile(ctx context.Context, p models.Profile) error
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
}

// SessionService orchestrates sign-up, login and logout against the
// identity and profile stores.
type SessionService struct {
	identities IdentityStore
	profiles   ProfileStore
	tokenAuth  *jwtauth.JWTAuth
}

func NewSessionService(identities IdentityStore, profiles ProfileStore, tokenAuth *jwtauth.JWTAuth) *SessionService {
	return &SessionService{
		identities: identities,
		profiles:   profiles,
		tokenAuth:  tokenAuth,
	}
}

// SessionResult pairs the established session with the view the
// client should navigate to.
type SessionResult struct {
	Session *models.Session `json:"session"`
	Route   string          `json:"route"`
}

// SignUp creates an identity, writes its profile and opens a session.
// On any failure no session is returned and the caller stays on the
// sign-up view.
func (s *SessionService) SignUp(ctx context.Context, email, password, wallet string, certifier bool) (*SessionResult, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewAuthError("auth/invalid-email", "The email address is badly formatted.")
	}
	if len(password) < 6 {
		return nil, NewAuthError("auth/weak-password", "Password should be at least 6 characters.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id, err := s.identities.CreateIdentity(ctx, email, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, NewAuthError("auth/email-already-in-use", "The email address is already in use by another account.")
		}
		return nil, &StoreWriteError{Key: "identities", Err: err}
	}

	profile := models.Profile{
		UserID:    id,
		Email:     email,
		Wallet:    wallet,
		Certifier: certifier,
	}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		return nil, &StoreWriteError{Key: fmt.Sprintf("users/%d", id), Err: err}
	}

	sess := models.NewSession(id, email)
	sess.Wallet = wallet
	sess.Certifier = certifier
	if err := s.issueToken(ctx, sess); err != nil {
		return nil, err
	}

	log.Infof("Sign-up complete for user %d", id)

	return &SessionResult{Session: sess, Route: routeFor(sess)}, nil
}

// Login authenticates and resolves the matching profile. A missing
// profile is tolerated: the session opens with the sentinel wallet and
// the client is routed to the landing view.
func (s *SessionService) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	ident, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrIdentityNotFound) {
			return nil, NewAuthError("auth/invalid-credential", "The supplied credentials are incorrect.")
		}
		return nil, &StoreReadError{Key: "identities", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(password)); err != nil {
		return nil, NewAuthError("auth/invalid-credential", "The supplied credentials are incorrect.")
	}

	sess := models.NewSession(ident.ID, ident.Email)
	route := RouteLanding

	profile, err := s.profiles.GetByUserID(ctx, ident.ID)
	switch {
	case errors.Is(err, store.ErrProfileNotFound):
		// orphaned identity: authenticated, wallet stays unset
		log.Infof("User %d has no profile record", ident.ID)
	case err != nil:
		return nil, &StoreReadError{Key: fmt.Sprintf("users/%d", ident.ID), Err: err}
	default:
		sess.Wallet = profile.Wallet
		sess.Certifier = profile.Certifier
		route = routeFor(sess)
	}

	if err := s.issueToken(ctx, sess); err != nil {
		return nil, err
	}

	return &SessionResult{Session: sess, Route: route}, nil
}

// Logout revokes the server-side session. If revocation fails the
// session is left untouched so the caller does not drop local state
// while the backend still considers it signed in.
func (s *SessionService) Logout(ctx context.Context, sess *models.Session) error {
	if err := s.identities.DeleteSession(ctx, sess.TokenID); err != nil {
		return &StoreWriteError{Key: "sessions/" + sess.TokenID, Err: err}
	}

	sess.Wallet = models.WalletSentinel
	sess.Certifier = false
	sess.TokenID = ""
	sess.Token = ""

	return nil
}

// Authenticate rebuilds a session from verified JWT claims, checking
// the token was not revoked by a logout.
func (s *SessionService) Authenticate(ctx context.Context, claims map[string]interface{}) (*models.Session, error) {
	tokenID, _ := claims["jti"].(string)
	if tokenID == "" {
		return nil, NewAuthError("auth/invalid-token", "The session token is malformed.")
	}

	ok, err := s.identities.SessionExists(ctx, tokenID)
	if err != nil {
		return nil, &StoreReadError{Key: "sessions/" + tokenID, Err: err}
	}
	if !ok {
		return nil, NewAuthError("auth/session-revoked", "The session is no longer valid.")
	}

	userID, _ := claims["user_id"].(float64)
	email, _ := claims["email"].(string)
	wallet, _ := claims["wallet"].(string)
	certifier, _ := claims["certifier"].(bool)

	sess := models.NewSession(int64(userID), email)
	if wallet != "" {
		sess.Wallet = wallet
	}
	sess.Certifier = certifier
	sess.TokenID = tokenID

	return sess, nil
}

func (s *SessionService) issueToken(ctx context.Context, sess *models.Session) error {
	tokenID := uuid.New().String()

	_, tokenString, err := s.tokenAuth.Encode(map[string]interface{}{
		"user_id":   sess.UserID,
		"email":     sess.Email,
		"wallet":    sess.Wallet,
		"certifier": sess.Certifier,
		"jti":       tokenID,
		"exp":       time.Now().Add(sessionTTL).Unix(),
	})
	if err != nil {
		return err
	}

	if err := s.identities.CreateSession(ctx, tokenID, sess.UserID); err != nil {
		return &StoreWriteError{Key: "sessions/" + tokenID, Err: err}
	}

	sess.TokenID = tokenID
	sess.Token = tokenString

	return nil
}

func routeFor(sess *models.Session) string {
	if sess.Certifier {
		return RouteCertifier
	}
	return RouteUser
}
