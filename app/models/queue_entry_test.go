package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueEntry_IsTerminal(t *testing.T) {
	tests := []struct {
		status   string
		terminal bool
	}{
		{EntryStatusPending, false},
		{EntryStatusInFlight, false},
		{EntryStatusFailed, false},
		{EntryStatusSucceeded, true},
		{EntryStatusAbandoned, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			e := &QueueEntry{Status: tt.status}
			assert.Equal(t, tt.terminal, e.IsTerminal())
		})
	}
}

func TestQueueEntry_CanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"Claim", EntryStatusPending, EntryStatusInFlight, true},
		{"Cancel pending", EntryStatusPending, EntryStatusAbandoned, true},
		{"Pending cannot succeed directly", EntryStatusPending, EntryStatusSucceeded, false},
		{"Publish success", EntryStatusInFlight, EntryStatusSucceeded, true},
		{"Retry reset", EntryStatusInFlight, EntryStatusPending, true},
		{"Connection failure", EntryStatusInFlight, EntryStatusFailed, true},
		{"Give up", EntryStatusInFlight, EntryStatusAbandoned, true},
		{"Succeeded is terminal", EntryStatusSucceeded, EntryStatusPending, false},
		{"Abandoned is terminal", EntryStatusAbandoned, EntryStatusInFlight, false},
		{"Failed holds", EntryStatusFailed, EntryStatusInFlight, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &QueueEntry{Status: tt.from}
			assert.Equal(t, tt.allowed, e.CanTransition(tt.to))
		})
	}
}
