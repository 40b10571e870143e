package statemachine

import (
	"strings"
	"testing"

	"burger-ordering-api/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		actor    string
		ok       bool
	}{
		{models.StatusPending, models.StatusAccepted, ActorStaff, true},
		{models.StatusPending, models.StatusAccepted, ActorCustomer, false},
		{models.StatusPending, models.StatusCancelled, ActorCustomer, true},
		{models.StatusAccepted, models.StatusCancelled, ActorCustomer, false},
		{models.StatusAccepted, models.StatusCancelled, ActorAdmin, true},
		{models.StatusAccepted, models.StatusCompleted, ActorStaff, true},
		{models.StatusPending, models.StatusCompleted, ActorAdmin, false},
		{models.StatusCompleted, models.StatusCancelled, ActorAdmin, false},
		{models.StatusCancelled, models.StatusPending, ActorAdmin, false},
	}
	for _, tt := range tests {
		err := CanTransition(tt.from, tt.to, tt.actor)
		if (err == nil) != tt.ok {
			t.Errorf("CanTransition(%s, %s, %s) = %v, want ok=%v", tt.from, tt.to, tt.actor, err, tt.ok)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []models.OrderStatus{models.StatusCompleted, models.StatusCancelled} {
		if !IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	if IsTerminal(models.StatusPending) {
		t.Error("pending should not be terminal")
	}

	err := CanTransition(models.StatusCompleted, models.StatusAccepted, ActorAdmin)
	if err == nil || !strings.Contains(err.Error(), "terminal") {
		t.Errorf("error = %v, want mention of terminal state", err)
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	got := ValidTransitionsFrom(models.StatusPending)
	if len(got) != 2 || got[0] != models.StatusAccepted || got[1] != models.StatusCancelled {
		t.Errorf("ValidTransitionsFrom(pending) = %v", got)
	}
}
