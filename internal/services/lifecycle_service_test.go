package services

import (
	"testing"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
)

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to models.ProjectStatus
		want     bool
	}{
		{models.ProjectStatusPending, models.ProjectStatusProcessing, true},
		{models.ProjectStatusProcessing, models.ProjectStatusCompleted, true},
		{models.ProjectStatusProcessing, models.ProjectStatusError, true},

		{models.ProjectStatusPending, models.ProjectStatusCompleted, false},
		{models.ProjectStatusPending, models.ProjectStatusError, false},
		{models.ProjectStatusProcessing, models.ProjectStatusPending, false},
		{models.ProjectStatusCompleted, models.ProjectStatusProcessing, false},
		{models.ProjectStatusCompleted, models.ProjectStatusError, false},
		{models.ProjectStatusError, models.ProjectStatusProcessing, false},
		{models.ProjectStatusError, models.ProjectStatusCompleted, false},
		{models.ProjectStatusPending, models.ProjectStatusPending, false},
	}

	for _, tt := range tests {
		if got := ValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if models.ProjectStatusPending.Terminal() {
		t.Error("pending should not be terminal")
	}
	if models.ProjectStatusProcessing.Terminal() {
		t.Error("processing should not be terminal")
	}
	if !models.ProjectStatusCompleted.Terminal() {
		t.Error("completed should be terminal")
	}
	if !models.ProjectStatusError.Terminal() {
		t.Error("error should be terminal")
	}
}
