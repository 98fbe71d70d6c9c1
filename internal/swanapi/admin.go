package swanapi

import (
	"encoding/json"
	"net/http"
	"time"

	"swanctl/internal/models"
	"swanctl/internal/wire"

	"github.com/gorilla/mux"
)

// Administrative surface: inspect devices, sessions and archived
// messages; queue or drop a pending configuration change.
func (c *Controller) registerAdminRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/devices", c.listDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices/{imei}", c.getDevice).Methods(http.MethodGet)
	api.HandleFunc("/devices/{imei}", c.addDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{imei}", c.deleteDevice).Methods(http.MethodDelete)

	api.HandleFunc("/devices/{imei}/pending", c.queuePending).Methods(http.MethodPost)
	api.HandleFunc("/devices/{imei}/pending", c.getPending).Methods(http.MethodGet)
	api.HandleFunc("/devices/{imei}/pending", c.deletePending).Methods(http.MethodDelete)

	api.HandleFunc("/sessions", c.listSessions).Methods(http.MethodGet)
	api.HandleFunc("/messages", c.listMessages).Methods(http.MethodGet)
}

func (c *Controller) listDevices(w http.ResponseWriter, _ *http.Request) {
	devices, err := c.devices.List()
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Store failure", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (c *Controller) getDevice(w http.ResponseWriter, r *http.Request) {
	imei := mux.Vars(r)["imei"]
	d, ok, err := c.devices.Find(imei)
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Store failure", err.Error(), nil)
		return
	}
	if !ok {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "device not found", map[string]string{"imei": imei})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"device_details": d})
}

// addDevice seeds a device with the vendor factory defaults.
func (c *Controller) addDevice(w http.ResponseWriter, r *http.Request) {
	imei := mux.Vars(r)["imei"]
	if err := c.devices.SaveConfig(imei, wire.FactoryDefaults(imei)); err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Store failure", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Swan device added successfully!"})
}

func (c *Controller) deleteDevice(w http.ResponseWriter, r *http.Request) {
	imei := mux.Vars(r)["imei"]
	ok, err := c.devices.Delete(imei)
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Store failure", err.Error(), nil)
		return
	}
	if !ok {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "device not found", map[string]string{"imei": imei})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Swan device deleted successfully!"})
}

// queuePending stores a configuration delta for delivery on the
// device's next handshake; a repeat replaces the previous delta.
func (c *Controller) queuePending(w http.ResponseWriter, r *http.Request) {
	imei := mux.Vars(r)["imei"]
	var cfg wire.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad JSON", err.Error(), nil)
		return
	}
	if cfg.Len() == 0 {
		models.WriteProblem(w, http.StatusBadRequest, "Bad JSON", "empty configuration change", nil)
		return
	}
	created, err := c.pending.Put(imei, &cfg)
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Store failure", err.Error(), nil)
		return
	}
	if created {
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Swan command created successfully!"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Swan command updated successfully!"})
}

func (c *Controller) getPending(w http.ResponseWriter, r *http.Request) {
	imei := mux.Vars(r)["imei"]
	p, ok, err := c.pending.Peek(imei)
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Store failure", err.Error(), nil)
		return
	}
	if !ok {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "no pending change", map[string]string{"imei": imei})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (c *Controller) deletePending(w http.ResponseWriter, r *http.Request) {
	imei := mux.Vars(r)["imei"]
	ok, err := c.pending.Delete(imei)
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Store failure", err.Error(), nil)
		return
	}
	if !ok {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "no pending change", map[string]string{"imei": imei})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Swan command deleted successfully!"})
}

func (c *Controller) listSessions(w http.ResponseWriter, _ *http.Request) {
	recs, err := c.sessions.List()
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Store failure", err.Error(), nil)
		return
	}
	type sessionView struct {
		SID       string `json:"sid"`
		IMEI      string `json:"imei"`
		Status    string `json:"status"`
		UpdatedAt string `json:"updated_at"`
	}
	out := make([]sessionView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, sessionView{
			SID:       rec.SID,
			IMEI:      rec.IMEI,
			Status:    string(rec.Status),
			UpdatedAt: rec.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
