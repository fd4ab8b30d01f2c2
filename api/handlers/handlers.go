// Package handlers provides HTTP handlers for the clustering API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/grailbio/base/log"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func httpError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error.Printf("encoding response: %v", err)
	}
}

// page reads limit and offset query parameters. A missing limit means no
// limit.
func page(r *http.Request, n int) (lo, hi int, err error) {
	q := r.URL.Query()
	offset, limit := 0, n
	if s := q.Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil || offset < 0 {
			return 0, 0, errBadQuery("offset", s)
		}
	}
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil || limit < 0 {
			return 0, 0, errBadQuery("limit", s)
		}
	}
	if offset > n {
		offset = n
	}
	hi = offset + limit
	if hi > n || hi < offset {
		hi = n
	}
	return offset, hi, nil
}

// QueryError reports an unusable query parameter.
type QueryError struct {
	Param string
	Value string
}

func (e *QueryError) Error() string {
	return "invalid " + e.Param + " " + strconv.Quote(e.Value)
}

func errBadQuery(param, value string) error {
	return &QueryError{Param: param, Value: value}
}
