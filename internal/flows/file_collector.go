package flows

import (
	"encoding/base64"
	"fmt"

	"github.com/flowdeck/flowdeck/internal/semantic"
)

var fileActions = []string{"stat", "hash", "download"}

// FileCollectorForm configures the CollectFiles flow. Paths are entered one
// per line and normalized (trimmed, blanks dropped) on conversion; the
// optional literal match pattern is an opaque byte field carried as base64
// in the flow arguments.
type FileCollectorForm struct{}

func (FileCollectorForm) Name() string { return "CollectFiles" }

func (FileCollectorForm) MakeControls() *ControlSet {
	return NewControlSet().
		Add(Control{
			Name:  "paths",
			Label: "Paths",
			Kind:  "multiline",
			Hint:  "One path per line; glob expressions allowed",
		}, Required(), AtLeastOneLine()).
		Add(Control{
			Name:    "action",
			Label:   "Collection action",
			Kind:    "select",
			Options: fileActions,
		}, OneOf(fileActions...)).
		Add(Control{
			Name:  "max_file_size",
			Label: "Maximum file size (bytes)",
			Kind:  "int",
			HintFunc: func(value any) string {
				n, ok, err := parseInt(value)
				if err != nil || !ok {
					return ""
				}
				return "About " + semantic.ApproxBytes(n)
			},
		}, IntMin(0)).
		Add(Control{
			Name:  "match_literal",
			Label: "Literal match",
			Kind:  "bytes",
			Hint:  "Only collect files containing these bytes",
		})
}

func (FileCollectorForm) ArgsToState(args Args) (State, error) {
	state := State{
		"paths":         joinLines(stringSlice(args["paths"])),
		"action":        stringOr(args["action"], "stat"),
		"max_file_size": intOr(args["max_file_size"], 0),
	}
	// The wire carries the literal as base64; the form edits raw bytes.
	if encoded, _ := args["match_literal"].(string); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("match_literal: %w", err)
		}
		state["match_literal"] = string(decoded)
	} else {
		state["match_literal"] = ""
	}
	return state, nil
}

func (FileCollectorForm) StateToArgs(state State) (Args, error) {
	paths, _ := state["paths"].(string)
	size, _, err := parseInt(state["max_file_size"])
	if err != nil {
		return nil, fmt.Errorf("max_file_size: %w", err)
	}
	args := Args{
		"paths":         splitLines(paths),
		"action":        stringOr(state["action"], "stat"),
		"max_file_size": size,
	}
	if literal, _ := state["match_literal"].(string); literal != "" {
		args["match_literal"] = base64.StdEncoding.EncodeToString([]byte(literal))
	}
	return args, nil
}
