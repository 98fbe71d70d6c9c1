package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"swanctl/internal/logs"
	"swanctl/internal/session"
	"swanctl/internal/wire"
)

// Command types of the SWAN polling protocol.
const (
	CmdGetCfg = "get_cfg"
	CmdSetCfg = "set_cfg"
)

// Command — outbound instruction for a device.
type Command struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Content string `json:"content,omitempty"`
}

// CmdRes — the device's report acknowledging a previously issued
// command. Content, when present, is base64-encoded JSON.
type CmdRes struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	ResCode int    `json:"res_code"`
	Content string `json:"content,omitempty"`
}

var (
	// ErrUnknownSession — the device referenced a session id with no
	// record; stale or forged.
	ErrUnknownSession = errors.New("dispatch: unknown session")

	// ErrDeviceFailure — the device reported res_code 1.
	ErrDeviceFailure = errors.New("dispatch: device reported failure")

	// ErrBadReport — res_code outside {0,1} or an unknown cmd_res
	// type. Rejected without touching session state: the report is
	// malformed, not a confirmed device-side failure.
	ErrBadReport = errors.New("dispatch: malformed report")
)

// Result of a dispatch decision. Cmd is nil when the session is
// already completed and only the neutral acknowledgment goes out.
type Result struct {
	Cmd       *Command
	Completed bool
}

// Dispatcher decides, per device check-in, whether to request the
// device's configuration, push a queued change, or release the device
// back to its baseline reporting behavior.
type Dispatcher struct {
	sessions     *session.Manager
	devices      DeviceStore
	pending      PendingStore
	messages     MessageStore
	uploadServer string
}

func New(sm *session.Manager, devices DeviceStore, pending PendingStore, messages MessageStore, uploadServer string) *Dispatcher {
	return &Dispatcher{
		sessions:     sm,
		devices:      devices,
		pending:      pending,
		messages:     messages,
		uploadServer: uploadServer,
	}
}

// HandleCheckin starts a handshake for a device's initial (untyped)
// check-in and returns the get_cfg command to issue.
func (d *Dispatcher) HandleCheckin(imei string) (Command, error) {
	rec, err := d.sessions.Create(imei)
	if err != nil {
		return Command{}, err
	}
	logs.Logger.WithFields(logrus.Fields{"imei": imei, "sid": rec.SID}).Info("session created")
	return Command{Type: CmdGetCfg, ID: rec.SID}, nil
}

// HandleReport handles a cmd_res report for an existing session.
func (d *Dispatcher) HandleReport(imei string, res CmdRes) (Result, error) {
	rec, ok, err := d.sessions.Find(res.ID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		logs.Logger.WithFields(logrus.Fields{"imei": imei, "sid": res.ID}).Warn("report for unknown session")
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownSession, res.ID)
	}

	switch res.ResCode {
	case 0:
	case 1:
		// Terminal: device could not apply the command. A completed
		// session has no error edge; losing that transition is fine.
		if err := d.sessions.MarkError(res.ID); err != nil && !errors.Is(err, session.ErrIllegalTransition) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: session %s", ErrDeviceFailure, res.ID)
	default:
		return Result{}, fmt.Errorf("%w: res_code %d", ErrBadReport, res.ResCode)
	}

	switch res.Type {
	case CmdGetCfg:
		return d.finishGetCfg(imei, rec, res)
	case CmdSetCfg:
		if rec.Completed() {
			return Result{Completed: true}, nil
		}
		// Close the loop: re-confirm the device's configuration after
		// a pushed change.
		if err := d.sessions.Advance(rec.SID, session.StatusAwaitingGetCfg); err != nil {
			return Result{}, err
		}
		return Result{Cmd: &Command{Type: CmdGetCfg, ID: rec.SID}}, nil
	default:
		return Result{}, fmt.Errorf("%w: type %q", ErrBadReport, res.Type)
	}
}

// finishGetCfg persists the reported configuration and either pushes a
// queued change or releases the device to its baseline upload server.
func (d *Dispatcher) finishGetCfg(imei string, rec session.Record, res CmdRes) (Result, error) {
	cfg, err := wire.DecodeContent(res.Content)
	if err != nil {
		return Result{}, err
	}
	if err := d.devices.SaveConfig(imei, cfg); err != nil {
		return Result{}, err
	}

	if rec.Completed() {
		// Duplicate final acknowledgment; never re-issue commands.
		return Result{Completed: true}, nil
	}

	change, claimed, err := d.pending.Take(imei)
	if err != nil {
		return Result{}, err
	}

	var cmd Command
	if claimed {
		content, err := change.Encode()
		if err != nil {
			return Result{}, err
		}
		if err := d.sessions.Advance(rec.SID, session.StatusPushingSetCfg); err != nil {
			return Result{}, err
		}
		cmd = Command{Type: CmdSetCfg, ID: rec.SID, Content: content}
	} else {
		baseline := wire.NewConfig()
		baseline.SetString("upload_server", d.uploadServer)
		content, err := baseline.Encode()
		if err != nil {
			return Result{}, err
		}
		if err := d.sessions.Advance(rec.SID, session.StatusCompleted); err != nil {
			return Result{}, err
		}
		cmd = Command{Type: CmdSetCfg, ID: rec.SID, Content: content}
	}

	d.archive(imei, rec.SID, cmd)
	return Result{Cmd: &cmd}, nil
}

// archive keeps a message-log entry for the dispatched command, keyed
// by session id and timestamp. Best effort.
func (d *Dispatcher) archive(imei, sid string, cmd Command) {
	entry := MessageFields{
		Kind:      "dispatch",
		IMEI:      imei,
		SessionID: sid,
		Body:      fmt.Sprintf(`{"type":%q,"id":%q,"content":%q}`, cmd.Type, cmd.ID, cmd.Content),
		CreatedAt: time.Now(),
	}
	if err := d.messages.Append(entry); err != nil {
		logs.Logger.WithFields(logrus.Fields{"sid": sid, "imei": imei}).Warnf("archive dispatch: %v", err)
	}
}
