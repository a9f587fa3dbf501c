package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires the handler set exposed by NewRouter.
type RouterConfig struct {
	Meetings     *MeetingHandler
	Rooms        *RoomHandler
	Participants *ParticipantHandler
	Middleware   []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP surface described in spec §6: meeting
// scheduling and verification endpoints under /api/meetings, plus plain
// CRUD for /api/rooms and /api/participants.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Meetings != nil {
		registerMeetingRoutes(mux, cfg.Meetings)
	}
	if cfg.Rooms != nil {
		registerRoomRoutes(mux, cfg.Rooms)
	}
	if cfg.Participants != nil {
		registerParticipantRoutes(mux, cfg.Participants)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func registerMeetingRoutes(mux *http.ServeMux, h *MeetingHandler) {
	mux.HandleFunc("/api/meetings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Create(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})

	mux.HandleFunc("/api/meetings/range", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.ListByRange(w, r)
	})

	mux.HandleFunc("/api/meetings/status/", func(w http.ResponseWriter, r *http.Request) {
		status := strings.TrimPrefix(r.URL.Path, "/api/meetings/status/")
		if status == "" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.ListByStatus(w, r, status)
	})

	mux.HandleFunc("/api/meetings/room/", func(w http.ResponseWriter, r *http.Request) {
		roomID := strings.TrimPrefix(r.URL.Path, "/api/meetings/room/")
		if roomID == "" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.ListByRoom(w, r, roomID)
	})

	mux.HandleFunc("/api/meetings/verification/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.Stats(w, r)
	})

	mux.HandleFunc("/api/meetings/verification/violations", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.Violations(w, r)
	})

	mux.HandleFunc("/api/meetings/verification/check-pending", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h.CheckPending(w, r)
	})

	mux.HandleFunc("/api/meetings/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/meetings/")
		if rest == "" {
			http.NotFound(w, r)
			return
		}

		// Sub-resource actions: /api/meetings/{id}/{confirm|reject|cancel}.
		if id, action, ok := strings.Cut(rest, "/"); ok {
			ctx := ContextWithMeetingID(r.Context(), id)
			r = r.WithContext(ctx)
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			switch action {
			case "confirm":
				h.Confirm(w, r)
			case "reject":
				h.Reject(w, r)
			case "cancel":
				h.Cancel(w, r)
			default:
				http.NotFound(w, r)
			}
			return
		}

		ctx := ContextWithMeetingID(r.Context(), rest)
		r = r.WithContext(ctx)
		switch r.Method {
		case http.MethodGet:
			h.Get(w, r)
		case http.MethodPut:
			h.Update(w, r)
		case http.MethodDelete:
			h.Delete(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	})
}

func registerRoomRoutes(mux *http.ServeMux, h *RoomHandler) {
	mux.HandleFunc("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Create(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})
	mux.HandleFunc("/api/rooms/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/rooms/")
		if id == "" {
			http.NotFound(w, r)
			return
		}
		ctx := ContextWithRoomID(r.Context(), id)
		r = r.WithContext(ctx)
		switch r.Method {
		case http.MethodPut:
			h.Update(w, r)
		case http.MethodDelete:
			h.Delete(w, r)
		default:
			methodNotAllowed(w, http.MethodPut, http.MethodDelete)
		}
	})
}

func registerParticipantRoutes(mux *http.ServeMux, h *ParticipantHandler) {
	mux.HandleFunc("/api/participants", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Create(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})
	mux.HandleFunc("/api/participants/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/participants/")
		if id == "" {
			http.NotFound(w, r)
			return
		}
		ctx := ContextWithParticipantID(r.Context(), id)
		r = r.WithContext(ctx)
		switch r.Method {
		case http.MethodPut:
			h.Update(w, r)
		case http.MethodDelete:
			h.Delete(w, r)
		default:
			methodNotAllowed(w, http.MethodPut, http.MethodDelete)
		}
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
