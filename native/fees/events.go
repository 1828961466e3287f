package fees

import (
	"strconv"

	"m4aledger/core/events"
)

const (
	// EventTypeTokenAdded is emitted when a fee payment token is registered.
	EventTypeTokenAdded = "fees.token.added"
	// EventTypeTokenRemoved is emitted when a fee payment token is dropped.
	EventTypeTokenRemoved = "fees.token.removed"
)

func tokenEntryEvent(eventType string, entry *TokenEntry) *events.Event {
	return &events.Event{
		Type: eventType,
		Attributes: map[string]string{
			"token":    entry.Token,
			"decimals": strconv.FormatUint(uint64(entry.Decimals), 10),
		},
	}
}
