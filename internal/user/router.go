package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/pkg/permissions"
)

// adminPermission guards the permission management endpoints.
const adminPermission = "admin.user"

// Router exposes the user endpoints. Lookup is public; permission
// management requires the admin.user grant.
func Router(svc *Service, authMiddleware func(http.Handler) http.Handler, guard *permissions.Guard) chi.Router {
	r := chi.NewRouter()

	r.Get("/", listHandler(svc))
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", getHandler(svc))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, guard.RequireAny(adminPermission))
			r.Get("/permissions", listPermissionsHandler(svc))
			r.Post("/permissions", grantHandler(svc))
			r.Delete("/permissions/{permission}", revokeHandler(svc))
		})
	})

	return r
}

func pathUserID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		return uuid.Nil, errors.Join(apiutil.ErrBadRequest, errors.New("user: malformed user id"))
	}
	return id, nil
}

type listResponse struct {
	Users []User `json:"users"`
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context(), apiutil.ParsePagination(r))
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}
		if users == nil {
			users = []User{}
		}
		apiutil.JSON(w, http.StatusOK, listResponse{Users: users})
	}
}

type userResponse struct {
	User User `json:"user"`
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		u, err := svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				err = errors.Join(apiutil.ErrNotFound, err)
			}
			apiutil.Error(w, r, err)
			return
		}
		apiutil.JSON(w, http.StatusOK, userResponse{User: u})
	}
}

type permissionsResponse struct {
	Permissions []PermissionGrant `json:"permissions"`
}

func listPermissionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		grants, err := svc.ListPermissions(r.Context(), id)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}
		apiutil.JSON(w, http.StatusOK, permissionsResponse{Permissions: grants})
	}
}

type grantRequest struct {
	Permission string `json:"permission"`
}

type grantResponse struct {
	Permission PermissionGrant `json:"permission"`
}

func grantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		var req grantRequest
		if err := apiutil.Decode(r, &req); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		grant, err := svc.GrantPermission(r.Context(), id, req.Permission)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidPermission):
				err = errors.Join(apiutil.ErrUnprocessableEntity, err)
			case errors.Is(err, ErrUserNotFound):
				err = errors.Join(apiutil.ErrNotFound, err)
			case errors.Is(err, ErrGrantAlreadyExists):
				err = errors.Join(apiutil.ErrConflict, err)
			}
			apiutil.Error(w, r, err)
			return
		}
		apiutil.JSON(w, http.StatusCreated, grantResponse{Permission: grant})
	}
}

func revokeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		if err := svc.RevokePermission(r.Context(), id, chi.URLParam(r, "permission")); err != nil {
			if errors.Is(err, ErrGrantNotFound) {
				err = errors.Join(apiutil.ErrNotFound, err)
			}
			apiutil.Error(w, r, err)
			return
		}
		apiutil.JSON(w, http.StatusNoContent, nil)
	}
}
