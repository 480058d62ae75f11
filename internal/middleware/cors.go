package middleware

import "net/http"

// AllowedHeaders are the request headers browsers may send cross-origin
const AllowedHeaders = "authorization, x-client-info, apikey, content-type"

// CORS adds permissive cross-origin headers and answers preflight
// requests with an empty 200.
func CORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", AllowedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}
