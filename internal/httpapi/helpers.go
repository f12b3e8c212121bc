package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dshills/orderdesk/internal/report"
	"github.com/dshills/orderdesk/internal/service"
	"github.com/dshills/orderdesk/pkg/types"
)

// maxBodySize caps JSON request bodies
const maxBodySize = 1 << 20

var errBadRequest = errors.New("bad request")

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// ToHTTPStatus maps an error kind onto a status code
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDraftBusy), errors.Is(err, types.ErrAlreadyCommitted):
		return http.StatusConflict
	}
	switch types.KindOf(err) {
	case types.KindValidation:
		return http.StatusBadRequest
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as {"error", "kind"} with the mapped status
func WriteError(w http.ResponseWriter, err error) {
	kind := types.KindOf(err).String()
	if errors.Is(err, errBadRequest) {
		kind = types.KindValidation.String()
	}
	WriteSuccess(w, ToHTTPStatus(err), ErrorResponse{Error: err.Error(), Kind: kind})
}

// WriteSuccess writes data as JSON with status
func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errBadRequest, name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return v, nil
}

func filterFromQuery(r *http.Request) (report.Filter, error) {
	q := r.URL.Query()
	f := report.Filter{From: q.Get("from"), To: q.Get("to")}
	customerID, err := queryInt(r, "customer_id", 0)
	if err != nil {
		return f, err
	}
	f.CustomerID = int64(customerID)
	if f.Limit, err = queryInt(r, "limit", 0); err != nil {
		return f, err
	}
	return f, nil
}
