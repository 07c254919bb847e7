package rpcServer

import (
	"encoding/json"
	"net/http"
	"net/url"
)

type messageResponse struct {
	Message string     `json:"message"`
	Errors  url.Values `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeServerError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, &messageResponse{Message: "Server Error"})
}

func writeValidationError(w http.ResponseWriter, errs url.Values) {
	writeJSON(w, http.StatusUnprocessableEntity, &messageResponse{Message: "Validation Error", Errors: errs})
}

func (rpc *RpcServer) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, &messageResponse{Message: "Not Found"})
}
