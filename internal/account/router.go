package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/pkg/password"
)

// Router exposes the auth endpoints. authMiddleware guards the routes that
// need a verified caller; register and login stay public.
func Router(svc *Service, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", registerHandler(svc))
	r.Post("/login", loginHandler(svc))
	r.With(authMiddleware).Get("/account", accountHandler(svc))

	return r
}

type registerRequest struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User User `json:"user"`
}

func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := apiutil.Decode(r, &req); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		user, err := svc.Register(r.Context(), req.Nickname, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, ErrEmailAlreadyExists):
				err = errors.Join(apiutil.ErrConflict, err)
			case errors.Is(err, password.ErrTooShort), errors.Is(err, password.ErrTooLong):
				err = errors.Join(apiutil.ErrUnprocessableEntity, err)
			}
			apiutil.Error(w, r, err)
			return
		}
		apiutil.JSON(w, http.StatusCreated, userResponse{User: user})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := apiutil.Decode(r, &req); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		token, user, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				err = errors.Join(apiutil.ErrUnauthorized, err)
			}
			apiutil.Error(w, r, err)
			return
		}
		apiutil.JSON(w, http.StatusOK, loginResponse{Token: token, User: user})
	}
}

type accountResponse struct {
	User        User     `json:"user"`
	Permissions []string `json:"permissions"`
}

func accountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := apiutil.CallerID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		user, grants, err := svc.Account(r.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				err = errors.Join(apiutil.ErrNotFound, err)
			}
			apiutil.Error(w, r, err)
			return
		}
		apiutil.JSON(w, http.StatusOK, accountResponse{User: user, Permissions: grants})
	}
}
