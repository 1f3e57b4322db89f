package control

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Status is the host state reported by GetState.
type Status struct {
	Version      string
	PID          int
	Mode         string
	ShuttingDown bool
	Quitting     bool
	Minimizing   bool
	Pending      []string
	Update       UpdateStatus
}

// UpdateStatus is the update controller part of Status.
type UpdateStatus struct {
	State       string
	FeedURL     string
	Latest      string
	LastChecked time.Time
	LastError   string
}

func (s Status) toStruct() (*structpb.Struct, error) {
	pending := make([]any, 0, len(s.Pending))
	for _, p := range s.Pending {
		pending = append(pending, p)
	}
	lastChecked := ""
	if !s.Update.LastChecked.IsZero() {
		lastChecked = s.Update.LastChecked.UTC().Format(time.RFC3339)
	}
	return structpb.NewStruct(map[string]any{
		"version":       s.Version,
		"pid":           s.PID,
		"mode":          s.Mode,
		"shutting_down": s.ShuttingDown,
		"quitting":      s.Quitting,
		"minimizing":    s.Minimizing,
		"pending":       pending,
		"update": map[string]any{
			"state":        s.Update.State,
			"feed_url":     s.Update.FeedURL,
			"latest":       s.Update.Latest,
			"last_checked": lastChecked,
			"last_error":   s.Update.LastError,
		},
	})
}

func statusFromStruct(st *structpb.Struct) (Status, error) {
	if st == nil {
		return Status{}, fmt.Errorf("empty state")
	}
	f := st.GetFields()

	s := Status{
		Version:      f["version"].GetStringValue(),
		PID:          int(f["pid"].GetNumberValue()),
		Mode:         f["mode"].GetStringValue(),
		ShuttingDown: f["shutting_down"].GetBoolValue(),
		Quitting:     f["quitting"].GetBoolValue(),
		Minimizing:   f["minimizing"].GetBoolValue(),
	}
	for _, v := range f["pending"].GetListValue().GetValues() {
		s.Pending = append(s.Pending, v.GetStringValue())
	}

	u := f["update"].GetStructValue().GetFields()
	s.Update = UpdateStatus{
		State:     u["state"].GetStringValue(),
		FeedURL:   u["feed_url"].GetStringValue(),
		Latest:    u["latest"].GetStringValue(),
		LastError: u["last_error"].GetStringValue(),
	}
	if ts := u["last_checked"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return Status{}, fmt.Errorf("parse last_checked: %w", err)
		}
		s.Update.LastChecked = t
	}
	return s, nil
}
