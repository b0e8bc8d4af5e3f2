package model

import (
	"fmt"
	"strings"
)

// OptionType selects the call or put side of a chain.
type OptionType string

const (
	OptionTypeCall OptionType = "Call"
	OptionTypePut  OptionType = "Put"
)

// ParseOptionType accepts "call"/"put" in any case. Empty input defaults to Call.
func ParseOptionType(input string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "call":
		return OptionTypeCall, nil
	case "put":
		return OptionTypePut, nil
	default:
		return "", fmt.Errorf("invalid option type: %s", input)
	}
}
