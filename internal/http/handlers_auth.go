package http

import (
	"errors"
	"net/http"

	applog "khata/internal/log"
	"khata/internal/users"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	username := parser.Get("username")
	password := parser.Get("password")
	email := parser.Get("email")

	if username == "" || password == "" {
		BadRequestError("Username and password are required").Write(w)
		return
	}

	if err := s.directory.Create(r.Context(), username, password, email); err != nil {
		if errors.Is(err, users.ErrDuplicateUser) {
			ConflictError("Username already exists").Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "User registration failed",
			applog.FieldUsername, username, applog.FieldError, err)
		InternalServerError("Registration failed").Write(w)
		return
	}

	// Provision the ledger now so the first entry append never races
	// workbook creation.
	if err := s.ledger.Ensure(r.Context(), username); err != nil {
		s.logger.ErrorContext(r.Context(), "Ledger provisioning failed",
			applog.FieldUsername, username, applog.FieldError, err)
		InternalServerError("Registration failed").Write(w)
		return
	}

	s.logger.InfoContext(r.Context(), "User registered",
		applog.FieldUsername, username, applog.FieldOperation, applog.OpRegister)
	CreatedResponse("User registered successfully").Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	username := parser.Get("username")
	password := parser.Get("password")
	if username == "" || password == "" {
		BadRequestError("Username and password are required").Write(w)
		return
	}

	if !s.directory.Verify(r.Context(), username, password) {
		s.logger.WarnContext(r.Context(), "Login rejected", applog.FieldUsername, username)
		UnauthorizedError("Invalid username or password").Write(w)
		return
	}

	s.sessions.Create(w, username)
	s.logger.InfoContext(r.Context(), "User logged in",
		applog.FieldUsername, username, applog.FieldOperation, applog.OpLogin)
	OKResponse("Login successful").Field("username", username).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Destroy(w, r)
	OKResponse("Logged out").Write(w)
}
