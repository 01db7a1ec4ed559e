package server

import (
	"net/http"

	"github.com/Kotlang/summitGo/logger"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

var marshaler = &runtime.JSONBuiltin{}

type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	payload, err := marshaler.Marshal(body)
	if err != nil {
		logger.Error("Failed encoding response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", marshaler.ContentType(body))
	w.WriteHeader(code)
	if _, err := w.Write(payload); err != nil {
		logger.Debug("Failed writing response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{"success": false, "error": message})
}

func readJSON(r *http.Request, v interface{}) error {
	return marshaler.NewDecoder(r.Body).Decode(v)
}
