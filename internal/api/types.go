package api

import (
	"encoding/json"
	"net/http"

	"github.com/lexdraft/lexdraft/internal/common"
)

type matchRequest struct {
	Query            string `json:"query"`
	IncludeWebSearch *bool  `json:"include_web_search"`
}

type createInstanceRequest struct {
	TemplateID string `json:"template_id"`
	Query      string `json:"query"`
}

type updateAnswersRequest struct {
	InstanceID string            `json:"instance_id"`
	Answers    map[string]string `json:"answers"`
}

type generateRequest struct {
	InstanceID string `json:"instance_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		common.Logger().Error("api: failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
