package rpcServer

import (
	"net/http"

	"github.com/nearblocks/txns-action/internal/version"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func (rpc *RpcServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &healthResponse{
		Status:  "ok",
		Version: version.GetVersion(),
		Commit:  version.GetCommit(),
	})
}
