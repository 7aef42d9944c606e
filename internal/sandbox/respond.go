package sandbox

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"
)

// The sandbox answers in the backend's conventional envelope so the client
// exercises the same decode path it uses against production.
type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type errEnvelope struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dataEnvelope{Success: true, Data: data})
}

func writeErr(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errEnvelope{Success: false, Detail: detail})
}

// decodeInto reads a JSON request body into v. Bodies past 1 MiB are cut
// off; only uploads go through multipart, everything else is small.
func decodeInto(r *http.Request, v any) error {
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return io.EOF
	}
	return json.Unmarshal(b, v)
}

// pageParams reads page/per_page with the backend defaults.
func pageParams(r *http.Request) (page, perPage int) {
	page = intParam(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage = intParam(r, "per_page", 20)
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

func intParam(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func timeParam(r *http.Request, key string) *time.Time {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

// paginate slices [start,end) for a page over n items.
func paginate(n, page, perPage int) (start, end int) {
	start = (page - 1) * perPage
	if start >= n {
		return n, n
	}
	end = start + perPage
	if end > n {
		end = n
	}
	return start, end
}
