package health

import (
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// RegisterRoutes — liveness only (no database configured).
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)
}

// RegisterRoutesWithDB — liveness plus a readiness probe that pings
// the database.
func RegisterRoutesWithDB(r *mux.Router, db *gorm.DB) {
	r.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		writeOK(w)
	}).Methods(http.MethodGet)
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeOK(w)
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
