package canonical

import "strings"

// LocTerm is the resolved location/terminal pair for one row of a
// fill-down pass.
type LocTerm struct {
	Location string
	Terminal string
}

// fillDownState carries the most recently seen primary location and
// terminal between rows. The scan is strictly sequential: every row's
// outcome depends on the state left by the previous row.
type fillDownState struct {
	location string
	terminal string
}

// CascadeFillDown resolves a two-level hierarchical location encoding
// where a report enumerates a primary location once and lists its
// terminals beneath it. isPrimary classifies a non-blank cell as a
// primary location; any other non-blank cell becomes the current
// terminal. Blank cells inherit both carried values. A new primary
// location resets the carried terminal.
func CascadeFillDown(values []string, isPrimary func(string) bool) []LocTerm {
	out := make([]LocTerm, len(values))
	state := fillDownState{}

	for i, raw := range values {
		value := strings.TrimSpace(raw)
		switch {
		case value == "":
			out[i] = LocTerm{Location: state.location, Terminal: state.terminal}
		case isPrimary(value):
			state.location = value
			state.terminal = ""
			out[i] = LocTerm{Location: value}
		default:
			state.terminal = value
			out[i] = LocTerm{Location: state.location, Terminal: value}
		}
	}

	return out
}
