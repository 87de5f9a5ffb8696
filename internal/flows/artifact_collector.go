package flows

// osFilters are the operating systems an artifact collection can target.
var osFilters = []string{"any", "windows", "linux", "darwin"}

// ArtifactCollectorForm configures the CollectArtifacts flow.
type ArtifactCollectorForm struct{}

func (ArtifactCollectorForm) Name() string { return "CollectArtifacts" }

func (ArtifactCollectorForm) MakeControls() *ControlSet {
	return NewControlSet().
		Add(Control{
			Name:  "artifacts",
			Label: "Artifact names",
			Kind:  "multiline",
			Hint:  "One artifact name per line",
		}, Required(), AtLeastOneLine()).
		Add(Control{
			Name:    "os_filter",
			Label:   "Operating system",
			Kind:    "select",
			Options: osFilters,
		}, OneOf(osFilters...)).
		Add(Control{
			Name:  "apply_parsers",
			Label: "Apply parsers to results",
			Kind:  "bool",
		})
}

func (ArtifactCollectorForm) ArgsToState(args Args) (State, error) {
	return State{
		"artifacts":     joinLines(stringSlice(args["artifact_list"])),
		"os_filter":     stringOr(args["os_filter"], "any"),
		"apply_parsers": boolOr(args["apply_parsers"], true),
	}, nil
}

func (ArtifactCollectorForm) StateToArgs(state State) (Args, error) {
	names, _ := state["artifacts"].(string)
	return Args{
		"artifact_list": splitLines(names),
		"os_filter":     stringOr(state["os_filter"], "any"),
		"apply_parsers": boolOr(state["apply_parsers"], true),
	}, nil
}
