package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dwikikusuma/storefront/pkg/apperr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// httpStatusFromGRPC maps err to an HTTP status and a generic code. Errors
// without a gRPC status are internal.
func httpStatusFromGRPC(err error) (int, string, string) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	switch st.Code() {
	case codes.InvalidArgument, codes.OutOfRange:
		return http.StatusBadRequest, "INVALID_ARGUMENT", st.Message()
	case codes.NotFound:
		return http.StatusNotFound, "NOT_FOUND", st.Message()
	case codes.AlreadyExists, codes.FailedPrecondition, codes.Aborted:
		return http.StatusConflict, "CONFLICT", st.Message()
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "UNAUTHENTICATED", st.Message()
	case codes.PermissionDenied:
		return http.StatusForbidden, "FORBIDDEN", st.Message()
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "UNAVAILABLE", st.Message()
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

// errorResponse picks the status for err and the body the client sees. An
// *apperr.Error contributes its own code and message; its cause never leaks.
func errorResponse(err error) (int, errorBody) {
	httpStatus, code, msg := httpStatusFromGRPC(err)

	var e *apperr.Error
	if errors.As(err, &e) {
		code, msg = e.Code, e.Message
	}
	return httpStatus, errorBody{Error: errorDetail{Code: code, Message: msg}}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
