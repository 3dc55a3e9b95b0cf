package http

import (
	"net/http"

	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/m-mizutani/pullhook/pkg/domain/types"
)

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	status := &model.HealthStatus{
		Status:  "healthy",
		Service: types.ServiceName,
		Version: types.Version,
	}

	writeJSON(r.Context(), w, http.StatusOK, status)
}
