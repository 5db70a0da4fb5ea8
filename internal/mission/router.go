package mission

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/internal/user"
	"github.com/slotlist/slotlist-backend-sub000/pkg/permissions"
)

// Router exposes the mission endpoints. Reading is public. Structural
// changes require the creator or editor role for the mission named in the
// URL; deleting and permission management require the creator role alone.
func Router(svc *Service, authMiddleware func(http.Handler) http.Handler, guard *permissions.Guard) chi.Router {
	r := chi.NewRouter()

	r.Get("/", listHandler(svc))
	r.With(authMiddleware).Post("/", createHandler(svc))

	r.Route("/{missionSlug}", func(r chi.Router) {
		creatorOrEditor := guard.RequireAny(
			"mission.{{missionSlug}}.creator",
			"mission.{{missionSlug}}.editor",
		)
		creatorOnly := guard.RequireAll("mission.{{missionSlug}}.creator")

		r.Get("/", getHandler(svc))
		r.With(authMiddleware, creatorOrEditor).Put("/", updateHandler(svc))
		r.With(authMiddleware, creatorOnly).Delete("/", deleteHandler(svc))

		r.Get("/slots", slotListHandler(svc))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, creatorOrEditor)
			r.Post("/slot-groups", createSlotGroupHandler(svc))
			r.Put("/slot-groups/{slotGroupID}", updateSlotGroupHandler(svc))
			r.Delete("/slot-groups/{slotGroupID}", deleteSlotGroupHandler(svc))
			r.Post("/slot-groups/{slotGroupID}/slots", createSlotHandler(svc))
			r.Put("/slots/{slotID}", updateSlotHandler(svc))
			r.Delete("/slots/{slotID}", deleteSlotHandler(svc))
			r.Post("/slots/{slotID}/assignee", assignHandler(svc))
			r.Delete("/slots/{slotID}/assignee", unassignHandler(svc))
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/slots/{slotID}/registrations", registerHandler(svc))
			r.Delete("/slots/{slotID}/registrations", unregisterHandler(svc))
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, creatorOnly)
			r.Get("/permissions", listPermissionsHandler(svc))
			r.Post("/permissions", grantHandler(svc))
			r.Delete("/permissions", revokeHandler(svc))
		})
	})

	return r
}

func pathSlug(r *http.Request) string {
	return chi.URLParam(r, "missionSlug")
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errors.Join(apiutil.ErrBadRequest, errors.New("mission: malformed "+name))
	}
	return id, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrMissionNotFound), errors.Is(err, ErrSlotGroupNotFound),
		errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrRegistrationNotFound),
		errors.Is(err, user.ErrGrantNotFound):
		return errors.Join(apiutil.ErrNotFound, err)
	case errors.Is(err, ErrSlugTaken), errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, user.ErrGrantAlreadyExists):
		return errors.Join(apiutil.ErrConflict, err)
	case errors.Is(err, ErrPermissionOutOfScope), errors.Is(err, user.ErrInvalidPermission):
		return errors.Join(apiutil.ErrUnprocessableEntity, err)
	}
	return err
}

type listResponse struct {
	Missions []Mission `json:"missions"`
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		missions, err := svc.List(r.Context(), apiutil.ParsePagination(r))
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}
		if missions == nil {
			missions = []Mission{}
		}
		apiutil.JSON(w, http.StatusOK, listResponse{Missions: missions})
	}
}

type missionResponse struct {
	Mission Mission `json:"mission"`
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

		m, err := svc.Create(r.Context(), callerID, in)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusCreated, missionResponse{Mission: m})
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.Get(r.Context(), pathSlug(r))
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusOK, missionResponse{Mission: m})
	}
}

func updateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in UpdateInput
		if err := apiutil.Decode(r, &in); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		m, err := svc.Update(r.Context(), pathSlug(r), in)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusOK, missionResponse{Mission: m})
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

type slotListResponse struct {
	SlotGroups []SlotGroupDetail `json:"slot_groups"`
}

func slotListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := svc.SlotList(r.Context(), pathSlug(r))
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusOK, slotListResponse{SlotGroups: groups})
	}
}

type slotGroupResponse struct {
	SlotGroup SlotGroup `json:"slot_group"`
}

func createSlotGroupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in SlotGroupInput
		if err := apiutil.Decode(r, &in); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		g, err := svc.CreateSlotGroup(r.Context(), pathSlug(r), in)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusCreated, slotGroupResponse{SlotGroup: g})
	}
}

func updateSlotGroupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathUUID(r, "slotGroupID")
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		var in SlotGroupInput
		if err := apiutil.Decode(r, &in); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		g, err := svc.UpdateSlotGroup(r.Context(), pathSlug(r), groupID, in)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusOK, slotGroupResponse{SlotGroup: g})
	}
}

func deleteSlotGroupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathUUID(r, "slotGroupID")
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		if err := svc.DeleteSlotGroup(r.Context(), pathSlug(r), groupID); err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusNoContent, nil)
	}
}

type slotResponse struct {
	Slot Slot `json:"slot"`
}

func createSlotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathUUID(r, "slotGroupID")
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		var in SlotInput
		if err := apiutil.Decode(r, &in); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		slot, err := svc.CreateSlot(r.Context(), pathSlug(r), groupID, in)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusCreated, slotResponse{Slot: slot})
	}
}

func updateSlotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, err := pathUUID(r, "slotID")
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		var in SlotInput
		if err := apiutil.Decode(r, &in); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		slot, err := svc.UpdateSlot(r.Context(), pathSlug(r), slotID, in)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusOK, slotResponse{Slot: slot})
	}
}

func deleteSlotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, err := pathUUID(r, "slotID")
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		if err := svc.DeleteSlot(r.Context(), pathSlug(r), slotID); err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusNoContent, nil)
	}
}

type registerRequest struct {
	Comment string `json:"comment"`
}

type registrationResponse struct {
	Registration Registration `json:"registration"`
}

func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, err := apiutil.CallerID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		slotID, err := pathUUID(r, "slotID")
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		var req registerRequest
		if err := apiutil.Decode(r, &req); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		reg, err := svc.Register(r.Context(), pathSlug(r), slotID, callerID, req.Comment)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusCreated, registrationResponse{Registration: reg})
	}
}

func unregisterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, err := apiutil.CallerID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		slotID, err := pathUUID(r, "slotID")
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		if err := svc.Unregister(r.Context(), pathSlug(r), slotID, callerID); err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusNoContent, nil)
	}
}

type assignRequest struct {
	RegistrationID uuid.UUID `json:"registration_id"`
}

func assignHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, err := pathUUID(r, "slotID")
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		var req assignRequest
		if err := apiutil.Decode(r, &req); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		slot, err := svc.Assign(r.Context(), pathSlug(r), slotID, req.RegistrationID)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusOK, slotResponse{Slot: slot})
	}
}

func unassignHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, err := pathUUID(r, "slotID")
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		slot, err := svc.Unassign(r.Context(), pathSlug(r), slotID)
		if err != nil {
			apiutil.Error(w, r, mapErr(err))
			return
		}
		apiutil.JSON(w, http.StatusOK, slotResponse{Slot: slot})
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
