package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/feed"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/jwt"
)

// UpdateHandler serves the per-user update feed.
type UpdateHandler interface {
	List(w http.ResponseWriter, r *http.Request)

	// SSE
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type updateHandlerImpl struct {
	feedService feed.Service
	jwtService  jwt.Service
}

func NewUpdateHandler(feedService feed.Service, jwtService jwt.Service) UpdateHandler {
	return &updateHandlerImpl{
		feedService: feedService,
		jwtService:  jwtService,
	}
}

// SSETokenResponse carries a short-lived stream token.
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// getInt64QueryParam gets an int64 query parameter with a default value
func getInt64QueryParam(r *http.Request, key string, defaultVal int64) int64 {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// List handles GET /updates
func (h *updateHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	uid, err := middleware.UIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	since := getInt64QueryParam(r, "since", 0)
	limit := int(getInt64QueryParam(r, "limit", feed.DefaultListLimit))

	records, err := h.feedService.ListSince(r.Context(), uid, since, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// GetSSEToken generates a short-lived token for SSE connections
func (h *updateHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	uid, err := middleware.UIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(uid)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, SSETokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Stream handles GET /updates/stream
func (h *updateHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token rides in the query.
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	uid, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.feedService.Subscribe(r.Context(), uid)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"uid\":%q}\n\n", uid)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
