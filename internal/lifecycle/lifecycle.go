// Package lifecycle holds the report status machine. Transitions are data:
// the table decides which target statuses an admin may pick from a given
// status, and callers only ever go through Transition.
package lifecycle

import (
	"errors"
	"fmt"

	"campusreport/backend/internal/models"
)

var (
	ErrNoChange             = errors.New("status unchanged")
	ErrUnknownStatus        = errors.New("unknown status")
	ErrTransitionNotAllowed = errors.New("transition not allowed")
)

// Table maps a status to the statuses reachable from it.
type Table map[models.ReportStatus][]models.ReportStatus

// PermissiveTable lets every status reach every other status.
func PermissiveTable() Table {
	t := make(Table, len(models.Statuses))
	for _, from := range models.Statuses {
		for _, to := range models.Statuses {
			if from != to {
				t[from] = append(t[from], to)
			}
		}
	}
	return t
}

// Machine validates status changes against a Table.
type Machine struct {
	allowed map[models.ReportStatus]map[models.ReportStatus]bool
	targets Table
}

// New builds a machine from t. Unknown statuses in t are rejected.
func New(t Table) (*Machine, error) {
	m := &Machine{
		allowed: make(map[models.ReportStatus]map[models.ReportStatus]bool, len(t)),
		targets: make(Table, len(t)),
	}
	for from, tos := range t {
		if !from.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, from)
		}
		set := make(map[models.ReportStatus]bool, len(tos))
		for _, to := range tos {
			if !to.Valid() {
				return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
			}
			set[to] = true
		}
		m.allowed[from] = set
		m.targets[from] = append([]models.ReportStatus(nil), tos...)
	}
	return m, nil
}

// NewPermissive returns the machine currently used by the portal.
func NewPermissive() *Machine {
	m, err := New(PermissiveTable())
	if err != nil {
		panic(err)
	}
	return m
}

// Transition checks that from -> to is a real, permitted change.
func (m *Machine) Transition(from, to models.ReportStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if from == to {
		return ErrNoChange
	}
	if !m.allowed[from][to] {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	return nil
}

// Targets lists the statuses reachable from from.
func (m *Machine) Targets(from models.ReportStatus) []models.ReportStatus {
	return append([]models.ReportStatus(nil), m.targets[from]...)
}

// IsTerminal reports whether s closes a report's workflow.
func IsTerminal(s models.ReportStatus) bool {
	return s == models.StatusResolved || s == models.StatusRejected
}
