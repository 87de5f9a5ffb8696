package flows

import (
	"fmt"
	"strconv"
)

var connectionStates = []string{"ESTABLISHED", "LISTEN", "CLOSE_WAIT", "TIME_WAIT"}

// ProcessListingForm configures the ListProcesses flow.
type ProcessListingForm struct{}

func (ProcessListingForm) Name() string { return "ListProcesses" }

func (ProcessListingForm) MakeControls() *ControlSet {
	return NewControlSet().
		Add(Control{
			Name:  "pids",
			Label: "Process IDs",
			Kind:  "multiline",
			Hint:  "One PID per line; empty matches all processes",
		}, IntLines()).
		Add(Control{
			Name:  "name_regex",
			Label: "Process name pattern",
			Kind:  "text",
		}, ValidRegexp()).
		Add(Control{
			Name:  "connection_states",
			Label: "Connection states",
			Kind:  "multiline",
			Hint:  "Only report processes with connections in these states",
		}, EachLineOneOf(connectionStates...)).
		Add(Control{
			Name:  "fetch_binaries",
			Label: "Fetch process binaries",
			Kind:  "bool",
		})
}

func (ProcessListingForm) ArgsToState(args Args) (State, error) {
	pids := make([]string, 0)
	for _, pid := range intSlice(args["pids"]) {
		pids = append(pids, strconv.FormatInt(pid, 10))
	}
	return State{
		"pids":              joinLines(pids),
		"name_regex":        stringOr(args["name_regex"], ""),
		"connection_states": joinLines(stringSlice(args["connection_states"])),
		"fetch_binaries":    boolOr(args["fetch_binaries"], false),
	}, nil
}

func (ProcessListingForm) StateToArgs(state State) (Args, error) {
	raw, _ := state["pids"].(string)
	pids := make([]int64, 0)
	for _, line := range splitLines(raw) {
		pid, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("pids: %q is not a number", line)
		}
		pids = append(pids, pid)
	}
	states, _ := state["connection_states"].(string)
	return Args{
		"pids":              pids,
		"name_regex":        stringOr(state["name_regex"], ""),
		"connection_states": splitLines(states),
		"fetch_binaries":    boolOr(state["fetch_binaries"], false),
	}, nil
}
