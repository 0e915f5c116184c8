package handlers

import (
	"net/http"
)

// Version is stamped at build time via -ldflags
var Version = "dev"

// VersionResponse reports the running build
type VersionResponse struct {
	Version string `json:"version"`
	Service string `json:"service"`
}

// VersionHandler handles the /version endpoint
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, VersionResponse{
		Version: Version,
		Service: "weekend-planner-api",
	})
}
