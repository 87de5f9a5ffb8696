package flows

import "fmt"

// Form is one flow's argument form: a control schema plus the two
// converters between form state and wire-level flow arguments.
type Form interface {
	// Name is the flow name the form configures.
	Name() string
	// MakeControls builds a fresh control set with validators attached.
	MakeControls() *ControlSet
	// ArgsToState converts flow arguments into form state, applying
	// display normalization (newline joining, base64 decoding).
	ArgsToState(args Args) (State, error)
	// StateToArgs converts form state into flow arguments, applying
	// input normalization (trimming, newline splitting, base64 encoding,
	// numeric parsing).
	StateToArgs(state State) (Args, error)
}

// Binding pairs a form with a live control set and derives the flow-args
// stream: every successful change notifies subscribers with the converted
// arguments.
type Binding struct {
	form     Form
	controls *ControlSet
	subs     []func(Args)
}

// Bind instantiates a form's controls.
func Bind(f Form) *Binding {
	return &Binding{form: f, controls: f.MakeControls()}
}

// Controls exposes the bound control set.
func (b *Binding) Controls() *ControlSet { return b.controls }

// Subscribe registers a callback invoked with the converted flow arguments
// after every change that leaves the form convertible.
func (b *Binding) Subscribe(fn func(Args)) {
	b.subs = append(b.subs, fn)
}

// Set updates one control and, when the whole form converts cleanly,
// notifies subscribers with the fresh arguments. A per-field validation
// failure is recorded on the control and simply skips the notification.
func (b *Binding) Set(name string, value any) error {
	if err := b.controls.Set(name, value); err != nil {
		return err
	}
	if !b.controls.Valid() {
		return nil
	}
	args, err := b.form.StateToArgs(b.controls.State())
	if err != nil {
		return nil
	}
	for _, fn := range b.subs {
		fn(args)
	}
	return nil
}

// Args converts the current state into flow arguments. Validation errors on
// any control make the form unconvertible.
func (b *Binding) Args() (Args, error) {
	if !b.controls.Valid() {
		return nil, fmt.Errorf("form %s has invalid fields", b.form.Name())
	}
	return b.form.StateToArgs(b.controls.State())
}

// Reset clears and repopulates the controls from the given arguments and
// marks the form pristine.
func (b *Binding) Reset(args Args) error {
	state, err := b.form.ArgsToState(args)
	if err != nil {
		return fmt.Errorf("resetting %s: %w", b.form.Name(), err)
	}
	b.controls.Populate(state)
	b.controls.markPristine()
	return nil
}

// Pristine reports whether the form changed since the last reset.
func (b *Binding) Pristine() bool { return b.controls.Pristine() }
