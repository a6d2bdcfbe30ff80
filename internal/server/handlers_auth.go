package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/liftlog/liftlog/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Name is required."
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "Email is required."
	}
	if len(req.Password) < 8 {
		fields["password"] = "Password must be at least 8 characters."
	} else if req.Password != req.PasswordConfirmation {
		fields["password"] = "Password confirmation does not match."
	}
	if len(fields) > 0 {
		respondError(w, http.StatusUnprocessableEntity, "Validation failed.", fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.respondFailure(w, err)
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Name, strings.ToLower(req.Email), string(hash))
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			respondError(w, http.StatusUnprocessableEntity, "Validation failed.",
				map[string]string{"email": "Email is already registered."})
			return
		}
		s.respondFailure(w, err)
		return
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		s.respondFailure(w, err)
		return
	}

	respondCreated(w, "Registered successfully.", map[string]any{
		"token": token,
		"user":  user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials.", nil)
			return
		}
		s.respondFailure(w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials.", nil)
		return
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		s.respondFailure(w, err)
		return
	}

	respondOK(w, "Logged in successfully.", map[string]any{
		"token": token,
		"user":  user,
	})
}

// handleLogout is a formality: tokens are stateless, so the client discards
// the token and the server just confirms.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	respondOK(w, "Logged out.", nil)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "OK", user)
}

func (s *Server) signToken(userID int64) (string, error) {
	now := time.Now()
	claims := &authClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.auth.TokenTTL())),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.auth.JWTSecret))
}
