package community

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/internal/user"
	"github.com/slotlist/slotlist-backend-sub000/pkg/permissions"
)

// Router exposes the community endpoints. Reading is public; mutation is
// guarded by community-scoped permissions resolved from the URL slug.
// Deleting a community requires the founder role specifically, leaders are
// not enough.
func Router(svc *Service, authMiddleware func(http.Handler) http.Handler, guard *permissions.Guard) chi.Router {
	r := chi.NewRouter()

	r.Get("/", listHandler(svc))
	r.With(authMiddleware).Post("/", createHandler(svc))

	r.Route("/{communitySlug}", func(r chi.Router) {
		leaderOrFounder := guard.RequireAny(
			"community.{{communitySlug}}.founder",
			"community.{{communitySlug}}.leader",
		)
		founderOnly := guard.RequireAll("community.{{communitySlug}}.founder")

		r.Get("/", getHandler(svc))
		r.With(authMiddleware, leaderOrFounder).Put("/", updateHandler(svc))
		r.With(authMiddleware, founderOnly).Delete("/", deleteHandler(svc))

		r.With(authMiddleware).Post("/applications", applyHandler(svc))
		r.With(authMiddleware, leaderOrFounder).Get("/applications", listApplicationsHandler(svc))
		r.With(authMiddleware, leaderOrFounder).Put("/applications/{applicationID}", decideHandler(svc))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, founderOnly)
			r.Get("/permissions", listPermissionsHandler(svc))
			r.Post("/permissions", grantHandler(svc))
			r.Delete("/permissions", revokeHandler(svc))
		})
	})

	return r
}

func pathSlug(r *http.Request) string {
	return chi.URLParam(r, "communitySlug")
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrCommunityNotFound), errors.Is(err, ErrApplicationNotFound):
		return errors.Join(apiutil.ErrNotFound, err)
	case errors.Is(err, ErrSlugTaken), errors.Is(err, ErrAlreadyApplied),
		errors.Is(err, ErrApplicationDecided), errors.Is(err, user.ErrGrantAlreadyExists):
		return errors.Join(apiutil.ErrConflict, err)
	case errors.Is(err, ErrPermissionOutOfScope), errors.Is(err, user.ErrInvalidPermission):
		return errors.Join(apiutil.ErrUnprocessableEntity, err)
	case errors.Is(err, user.ErrGrantNotFound):
		return errors.Join(apiutil.ErrNotFound, err)
	}
	return err
}

type listResponse struct {
	Communities []Community `json:"communities"`
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communities, err := svc.List(r.Context(), apiutil.ParsePagination(r))
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}
		if communities == nil {
			communities = []Community{}
		}
		apiutil.JSON(w, http.StatusOK, listResponse{Communities: communities})
	}
}

type communityResponse struct {
	Community Community `json:"community"`
}

func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, err := apiutil.CallerID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		var in CreateInput
		if err := apiutil.Decode(r, &in); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		c, err := svc.Create(r.Context(), callerID, in)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusCreated, communityResponse{Community: c})
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Get(r.Context(), pathSlug(r))
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusOK, communityResponse{Community: c})
	}
}

func updateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in UpdateInput
		if err := apiutil.Decode(r, &in); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		c, err := svc.Update(r.Context(), pathSlug(r), in)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusOK, communityResponse{Community: c})
	}
}

func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), pathSlug(r)); err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusNoContent, nil)
	}
}

type applicationResponse struct {
	Application Application `json:"application"`
}

func applyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, err := apiutil.CallerID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		a, err := svc.Apply(r.Context(), pathSlug(r), callerID)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusCreated, applicationResponse{Application: a})
	}
}

type applicationsResponse struct {
	Applications []Application `json:"applications"`
}

func listApplicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apps, err := svc.ListApplications(r.Context(), pathSlug(r), r.URL.Query().Get("status"), apiutil.ParsePagination(r))
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		if apps == nil {
			apps = []Application{}
		}
		apiutil.JSON(w, http.StatusOK, applicationsResponse{Applications: apps})
	}
}

type decideRequest struct {
	Accept bool `json:"accept"`
}

func decideHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applicationID, err := uuid.Parse(chi.URLParam(r, "applicationID"))
		if err != nil {
			apiutil.Error(w, r, errors.Join(apiutil.ErrBadRequest, errors.New("community: malformed application id")))
			return
		}

		var req decideRequest
		if err := apiutil.Decode(r, &req); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		a, err := svc.DecideApplication(r.Context(), pathSlug(r), applicationID, req.Accept)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusOK, applicationResponse{Application: a})
	}
}

type permissionsResponse struct {
	Permissions []user.PermissionGrant `json:"permissions"`
}

func listPermissionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grants, err := svc.ListPermissions(r.Context(), pathSlug(r))
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusOK, permissionsResponse{Permissions: grants})
	}
}

type grantRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	Permission string    `json:"permission"`
}

type grantResponse struct {
	Permission user.PermissionGrant `json:"permission"`
}

func grantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req grantRequest
		if err := apiutil.Decode(r, &req); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		grant, err := svc.GrantPermission(r.Context(), pathSlug(r), req.UserID, req.Permission)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusCreated, grantResponse{Permission: grant})
	}
}

func revokeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req grantRequest
		if err := apiutil.Decode(r, &req); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		if err := svc.RevokePermission(r.Context(), pathSlug(r), req.UserID, req.Permission); err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusNoContent, nil)
	}
}
