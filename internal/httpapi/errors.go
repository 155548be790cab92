package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/iotaledger/stardust-indexer-go/internal/apierr"
)

// errorBody is the JSON shape of every unsuccessful HTTP response:
// {error_code, error_message}.
type errorBody struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func writeError(w http.ResponseWriter, err error) {
	apiErr, ok := apierr.As(err)
	if !ok {
		apiErr = apierr.Wrap(apierr.Internal, "internal server error", err)
	}

	status := apiErr.HTTPStatus()
	body := errorBody{
		ErrorCode:    fmt.Sprintf("%d", status),
		ErrorMessage: apiErr.Message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
