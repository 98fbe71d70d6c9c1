package swanapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"swanctl/internal/dispatch"
	"swanctl/internal/logs"
	"swanctl/internal/session"
	"swanctl/internal/wire"

	"github.com/gorilla/mux"
)

/*
SWAN device protocol endpoint:

GET  /swan   — archived messages (audit view)
POST /swan   — device check-in, content negotiated by header:
    Wep-Imei absent             -> generic ingestion, archive only
    Content-Type: text/csv      -> raw telemetry upload, starts a session
    Content-Type: application/json
        {"cmd_res": {...}}      -> report for an issued command
        anything else           -> untyped check-in, starts a session
*/

// Controller serves the device-facing protocol endpoint.
type Controller struct {
	disp     *dispatch.Dispatcher
	sessions *session.Manager
	devices  dispatch.DeviceStore
	pending  dispatch.PendingStore
	messages dispatch.MessageStore
}

func NewController(d *dispatch.Dispatcher, sm *session.Manager, devices dispatch.DeviceStore, pending dispatch.PendingStore, messages dispatch.MessageStore) *Controller {
	return &Controller{disp: d, sessions: sm, devices: devices, pending: pending, messages: messages}
}

func (c *Controller) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/swan", c.handleSwan).Methods(http.MethodGet, http.MethodPost)
	c.registerAdminRoutes(r)
}

func (c *Controller) handleSwan(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		c.listMessages(w, r)
		return
	}
	c.handleCheckin(w, r)
}

func (c *Controller) listMessages(w http.ResponseWriter, _ *http.Request) {
	msgs, err := c.messages.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// handleCheckin is the single protocol entry point for device traffic.
func (c *Controller) handleCheckin(w http.ResponseWriter, r *http.Request) {
	imei := r.Header.Get("Wep-Imei")
	ct := strings.ToLower(r.Header.Get("Content-Type"))

	switch {
	case strings.HasPrefix(ct, "text/csv"):
		c.handleCSV(w, r, imei)
	case strings.HasPrefix(ct, "application/json"):
		c.handleJSON(w, r, imei)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unsupported Content-Type"})
	}
}

// handleCSV archives the raw upload verbatim; for device traffic it
// also opens a handshake.
func (c *Controller) handleCSV(w http.ResponseWriter, r *http.Request, imei string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unreadable body"})
		return
	}
	c.archive("csv", imei, "", string(body))

	if imei == "" {
		writeJSON(w, http.StatusCreated, map[string]string{"message": "CSV Data added successfully!"})
		return
	}
	cmd, err := c.disp.HandleCheckin(imei)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cmd": cmd})
}

func (c *Controller) handleJSON(w http.ResponseWriter, r *http.Request, imei string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unreadable body"})
		return
	}
	c.archive("json", imei, "", string(body))

	if imei == "" {
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "JSON Data added successfully!"})
		return
	}

	var report struct {
		CmdRes *dispatch.CmdRes `json:"cmd_res"`
	}
	if err := json.Unmarshal(body, &report); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	if report.CmdRes == nil {
		// Untyped report: the device's first contact after a raw
		// upload; open a handshake.
		cmd, err := c.disp.HandleCheckin(imei)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Store unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cmd": cmd})
		return
	}

	res, err := c.disp.HandleReport(imei, *report.CmdRes)
	if err != nil {
		c.writeDispatchError(w, imei, err)
		return
	}
	if res.Completed {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Session already completed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cmd": res.Cmd})
}

func (c *Controller) writeDispatchError(w http.ResponseWriter, imei string, err error) {
	switch {
	case errors.Is(err, dispatch.ErrDeviceFailure):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Error setting configuration"})
	case errors.Is(err, dispatch.ErrUnknownSession):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Unknown session"})
	case errors.Is(err, dispatch.ErrBadReport), errors.Is(err, wire.ErrDecode):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Malformed report"})
	case errors.Is(err, session.ErrIllegalTransition), errors.Is(err, session.ErrStale):
		// protocol anomaly (out-of-order or concurrent report), not a
		// store outage
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Conflicting session state"})
	default:
		logs.Logger.WithField("imei", imei).Errorf("dispatch: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Store unavailable"})
	}
}

// archive stores an audit entry for inbound traffic. Best effort.
func (c *Controller) archive(kind, imei, sid, body string) {
	err := c.messages.Append(dispatch.MessageFields{
		Kind:      kind,
		IMEI:      imei,
		SessionID: sid,
		Body:      body,
		CreatedAt: time.Now(),
	})
	if err != nil {
		logs.Logger.Warnf("archive %s message: %v", kind, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
