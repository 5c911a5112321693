package vm

import (
	"errors"
	"testing"

	"intcode/internal/limits"
)

func TestVMStepLimit(t *testing.T) {
	// jnz 1 -> 0 forever
	m := New(mustParse(t, "1105,1,0"))
	m.SetMaxSteps(1000)
	_, err := m.Run()
	var stepErr limits.MaxStepsError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected MaxStepsError, got %v", err)
	}
	if stepErr.Limit != 1000 || m.Steps() != 1000 {
		t.Fatalf("unexpected step accounting: limit=%d steps=%d", stepErr.Limit, m.Steps())
	}
}

func TestVMStepLimitNotHitByShortProgram(t *testing.T) {
	m := New(mustParse(t, "104,1,99"))
	m.SetMaxSteps(2)
	if _, err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVMMemoryLimit(t *testing.T) {
	// write to [1000]
	m := New(mustParse(t, "1101,1,1,1000,99"))
	m.SetMaxMemory(100)
	_, err := m.Run()
	var memErr limits.MaxMemoryError
	if !errors.As(err, &memErr) {
		t.Fatalf("expected MaxMemoryError, got %v", err)
	}

	unlimited := New(mustParse(t, "1101,1,1,1000,99"))
	if _, err := unlimited.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unlimited.At(1000) != 2 {
		t.Fatalf("expected memory[1000]=2, got %d", unlimited.At(1000))
	}
}
