package roles

import (
	"encoding/hex"

	"m4aledger/core/events"
)

const (
	// EventTypeRegistryInitialized is emitted when the role registry is created.
	EventTypeRegistryInitialized = "roles.registry.initialized"
	// EventTypeRolePassed is emitted when a role is handed to a successor.
	EventTypeRolePassed = "roles.role.passed"
)

func initializedEvent(registry *Registry) *events.Event {
	return &events.Event{
		Type: EventTypeRegistryInitialized,
		Attributes: map[string]string{
			"ceo":       hex.EncodeToString(registry.CEO[:]),
			"treasurer": hex.EncodeToString(registry.Treasurer[:]),
		},
	}
}

func rolePassedEvent(role string, from, to [20]byte) *events.Event {
	return &events.Event{
		Type: EventTypeRolePassed,
		Attributes: map[string]string{
			"role": role,
			"from": hex.EncodeToString(from[:]),
			"to":   hex.EncodeToString(to[:]),
		},
	}
}
