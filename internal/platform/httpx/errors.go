package httpx

import "net/http"

// MethodNotAllowed is mounted on routers serving the query endpoints so that
// non-GET calls answer 405 with the same error body shape.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	Fail(w, http.StatusMethodNotAllowed, "method not allowed")
}
