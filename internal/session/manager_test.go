package session

import (
	"errors"
	"strings"
	"testing"
)

func TestCreate(t *testing.T) {
	m := NewManager(NewMemStore())

	rec, err := m.Create("123111111113")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !strings.HasPrefix(rec.SID, "session_123111111113_") {
		t.Errorf("SID = %s, want session_123111111113_ prefix", rec.SID)
	}
	if rec.Status != StatusAwaitingGetCfg {
		t.Errorf("Status = %s, want %s", rec.Status, StatusAwaitingGetCfg)
	}

	stored, ok, err := m.Find(rec.SID)
	if err != nil || !ok {
		t.Fatalf("Find() = %v, %v", ok, err)
	}
	if stored.Status != StatusAwaitingGetCfg {
		t.Errorf("stored Status = %s, want %s", stored.Status, StatusAwaitingGetCfg)
	}
}

func TestCreateUniqueSIDs(t *testing.T) {
	m := NewManager(NewMemStore())
	a, _ := m.Create("111")
	b, _ := m.Create("111")
	if a.SID == b.SID {
		t.Errorf("two sessions share id %s", a.SID)
	}
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name    string
		path    []Status
		wantErr error
	}{
		{"push then complete", []Status{StatusPushingSetCfg, StatusCompleted}, nil},
		{"complete directly", []Status{StatusCompleted}, nil},
		{"error from awaiting", []Status{StatusError}, nil},
		{"push, reconfirm, complete", []Status{StatusPushingSetCfg, StatusAwaitingGetCfg, StatusCompleted}, nil},
		{"backward to created", []Status{StatusCreated}, ErrIllegalTransition},
		{"leave completed", []Status{StatusCompleted, StatusPushingSetCfg}, ErrIllegalTransition},
		{"leave error", []Status{StatusError, StatusAwaitingGetCfg}, ErrIllegalTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(NewMemStore())
			rec, err := m.Create("123111111113")
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			var last error
			for _, s := range tt.path {
				if last = m.Advance(rec.SID, s); last != nil {
					break
				}
			}
			if tt.wantErr == nil && last != nil {
				t.Fatalf("Advance path error = %v", last)
			}
			if tt.wantErr != nil && !errors.Is(last, tt.wantErr) {
				t.Fatalf("Advance path error = %v, want %v", last, tt.wantErr)
			}
		})
	}
}

func TestAdvanceUnknownSession(t *testing.T) {
	m := NewManager(NewMemStore())
	if err := m.Advance("session_x_1", StatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Errorf("Advance() err = %v, want ErrNotFound", err)
	}
}

func TestMarkError(t *testing.T) {
	m := NewManager(NewMemStore())
	rec, _ := m.Create("123111111113")
	if err := m.MarkError(rec.SID); err != nil {
		t.Fatalf("MarkError() error = %v", err)
	}
	got, _, _ := m.Find(rec.SID)
	if got.Status != StatusError {
		t.Errorf("Status = %s, want %s", got.Status, StatusError)
	}
	// terminal: nothing leaves error
	if err := m.MarkError(rec.SID); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("second MarkError() err = %v, want ErrIllegalTransition", err)
	}
}

func TestCompleted(t *testing.T) {
	if (Record{Status: StatusCompleted}).Completed() != true {
		t.Error("completed record not detected")
	}
	if (Record{Status: StatusPushingSetCfg}).Completed() {
		t.Error("pushing record reported completed")
	}
}

func TestMemStoreStaleUpdate(t *testing.T) {
	s := NewMemStore()
	rec := Record{SID: "session_1_a", IMEI: "1", Status: StatusCreated}
	if err := s.Create(rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.UpdateStatus(rec.SID, StatusCreated, StatusAwaitingGetCfg); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	// a second writer assuming the old status must lose
	if err := s.UpdateStatus(rec.SID, StatusCreated, StatusAwaitingGetCfg); !errors.Is(err, ErrStale) {
		t.Errorf("UpdateStatus() err = %v, want ErrStale", err)
	}
}
