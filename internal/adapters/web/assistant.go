package web

import "net/http"

// apiAskAssistant handles POST /api/assistant — a single question/answer
// round trip through the read-only AI tool loop.
func (h *Handler) apiAskAssistant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.AskAssistant(r.Context(), req.Question)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
