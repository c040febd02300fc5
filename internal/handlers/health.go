package handlers

import (
	"net/http"

	"confer/internal/utils"
)

// HealthCheck is a plain function so it mounts on chi directly.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
