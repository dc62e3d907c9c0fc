package assistant

import (
	"encoding/json"
	"net/http"
	"strings"

	"biovault/internal/middleware"
	"biovault/internal/ports/assistant"
	"biovault/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, client assistant.Client, caps capabilities.CapabilitiesResolver) {
	r.Post("/assistant/chat", chatHandler(client, caps))
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func chatHandler(client assistant.Client, caps capabilities.CapabilitiesResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// El chat es feature de tier, no parte del plan base.
		if caps != nil {
			allowed, err := caps.HasFeature(r.Context(), capabilities.CapabilityCheck{
				UserID:  claims.UserID,
				Feature: capabilities.FeatureAssistantChat,
			})
			if err != nil || !allowed {
				http.Error(w, "assistant not available on your plan", http.StatusForbidden)
				return
			}
		}

		if client == nil {
			http.Error(w, "assistant not configured", http.StatusServiceUnavailable)
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if len(req.Messages) == 0 {
			http.Error(w, "messages required", http.StatusBadRequest)
			return
		}

		msgs := make([]assistant.Message, 0, len(req.Messages))
		for _, m := range req.Messages {
			msgs = append(msgs, assistant.Message{Role: m.Role, Content: m.Content})
		}

		reply, err := client.Chat(r.Context(), msgs)
		if err != nil {
			http.Error(w, "assistant upstream error", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
