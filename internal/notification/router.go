package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
)

// Router exposes the notification endpoints. All routes require an
// authenticated caller; notifications are always scoped to the caller.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()

	r.Get("/", listHandler(svc))
	r.Get("/unread", unreadHandler(svc))
	r.Post("/read", markReadHandler(svc))

	return r
}

type listResponse struct {
	Notifications []Notification `json:"notifications"`
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := apiutil.CallerID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		notifs, err := svc.List(r.Context(), userID, apiutil.ParsePagination(r))
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}
		if notifs == nil {
			notifs = []Notification{}
		}
		apiutil.JSON(w, http.StatusOK, listResponse{Notifications: notifs})
	}
}

type unreadResponse struct {
	Unread int `json:"unread"`
}

func unreadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := apiutil.CallerID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		count, err := svc.CountUnread(r.Context(), userID)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}
		apiutil.JSON(w, http.StatusOK, unreadResponse{Unread: count})
	}
}

type markReadRequest struct {
	IDs []uuid.UUID `json:"ids"`
	All bool        `json:"all"`
}

func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := apiutil.CallerID(r)
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}

		var req markReadRequest
		if err := apiutil.Decode(r, &req); err != nil {
			apiutil.Error(w, r, err)
			return
		}

		if req.All {
			err = svc.MarkAllRead(r.Context(), userID)
		} else {
			err = svc.MarkRead(r.Context(), userID, req.IDs...)
		}
		if err != nil {
			apiutil.Error(w, r, err)
			return
		}
		apiutil.JSON(w, http.StatusNoContent, nil)
	}
}
