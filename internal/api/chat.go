package api

import (
	"encoding/json"
	"net/http"

	"github.com/firescout/firescout/internal/log"
)

// chatHandler serves both transport bindings of the generate
// operation. The bindings differ only in how the prompt arrives;
// the response shape is identical.
type chatHandler struct {
	generator Generator
	logger    log.Logger
}

// promptRequest is the POST body shape.
type promptRequest struct {
	Prompt string `json:"prompt"`
}

// chatResponse is the single response shape for both bindings.
type chatResponse struct {
	Response string `json:"response"`
}

// post handles POST /chat with a JSON body.
func (h *chatHandler) post(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON with a prompt field", h.logger)
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt_required", "prompt field is required", h.logger)
		return
	}
	h.generate(w, r, req.Prompt)
}

// get handles GET /chat with a prompt query parameter.
func (h *chatHandler) get(w http.ResponseWriter, r *http.Request) {
	prompt := r.URL.Query().Get("prompt")
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt_required", "prompt query parameter is required", h.logger)
		return
	}
	h.generate(w, r, prompt)
}

func (h *chatHandler) generate(w http.ResponseWriter, r *http.Request, prompt string) {
	text, err := h.generator.Generate(r.Context(), prompt)
	if err != nil {
		h.logger.Error("generating completion", "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "chat completion failed", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: text})
}
