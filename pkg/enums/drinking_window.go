package enums

import "fmt"

// DrinkingWindowStatus classifies wines against their drinking window. Every
// status implies quantity > 0; empty bottles never raise drinking alerts.
type DrinkingWindowStatus string

const (
	DrinkingWindowReadyToDrink        DrinkingWindowStatus = "ready_to_drink"
	DrinkingWindowApproachingDeadline DrinkingWindowStatus = "approaching_deadline"
	DrinkingWindowNotReady            DrinkingWindowStatus = "not_ready"
)

var validDrinkingWindowStatuses = []DrinkingWindowStatus{
	DrinkingWindowReadyToDrink,
	DrinkingWindowApproachingDeadline,
	DrinkingWindowNotReady,
}

// String implements fmt.Stringer.
func (s DrinkingWindowStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DrinkingWindowStatus.
func (s DrinkingWindowStatus) IsValid() bool {
	for _, candidate := range validDrinkingWindowStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDrinkingWindowStatus converts raw input into a DrinkingWindowStatus.
func ParseDrinkingWindowStatus(value string) (DrinkingWindowStatus, error) {
	for _, candidate := range validDrinkingWindowStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid drinking window status %q", value)
}
