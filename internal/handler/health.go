package handler

import (
	"net/http"
)

// HandleHealthz responds with a 200 OK and a JSON body indicating the server is healthy.
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleHome answers the bare root path.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	writeText(w, "account service")
}
