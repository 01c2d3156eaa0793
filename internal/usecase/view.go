package usecase

import (
	"time"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/history"
)

// VersionView is the JSON shape of a version shown to users.
type VersionView struct {
	Path          string   `json:"path"`
	Version       string   `json:"version"`
	Name          string   `json:"name"`
	Named         bool     `json:"named"`
	Derivation    string   `json:"derivation"`
	SQL           string   `json:"sql"`
	Context       []string `json:"context,omitempty"`
	Previous      string   `json:"previous,omitempty"`
	Parents       []string `json:"parents,omitempty"`
	Columns       []string `json:"columns,omitempty"`
	Owner         string   `json:"owner,omitempty"`
	CreatedAt     string   `json:"createdAt"`
	LastTransform string   `json:"lastTransform"`
}

func NewVersionView(r *dataset.Record) VersionView {
	v := VersionView{
		Path:          r.Path.String(),
		Version:       r.Version.String(),
		Name:          r.Name,
		Named:         r.Named,
		Derivation:    string(r.Derivation),
		SQL:           r.SQL,
		Context:       r.Context,
		Columns:       columnNames(r.FieldOrigins),
		Owner:         r.Owner,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		LastTransform: r.LastTransform.Describe(),
	}
	if r.Previous != nil {
		v.Previous = r.Previous.String()
	}
	for _, p := range r.Parents {
		v.Parents = append(v.Parents, p.Path.String())
	}
	return v
}

type HistoryItemView struct {
	Path        string `json:"path"`
	Version     string `json:"version"`
	State       string `json:"state"`
	Description string `json:"description"`
	User        string `json:"user,omitempty"`
	CreatedAt   string `json:"createdAt"`
	Selected    bool   `json:"selected,omitempty"`
}

// HistoryView is the JSON shape of a history, oldest item first.
type HistoryView struct {
	Items          []HistoryItemView `json:"items"`
	Selected       string            `json:"selected"`
	CurrentVersion string            `json:"currentVersion"`
	Edited         bool              `json:"edited"`
}

func NewHistoryView(h *history.History) HistoryView {
	items := make([]HistoryItemView, len(h.Items))
	for i, item := range h.Items {
		items[i] = HistoryItemView{
			Path:        item.Ref.Path.String(),
			Version:     item.Ref.Version.String(),
			State:       string(item.State),
			Description: item.Description,
			User:        item.User,
			CreatedAt:   item.CreatedAt.Format(time.RFC3339),
			Selected:    item.Selected,
		}
	}
	return HistoryView{
		Items:          items,
		Selected:       h.Selected.String(),
		CurrentVersion: h.CurrentVersion.String(),
		Edited:         h.Edited,
	}
}
