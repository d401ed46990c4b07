package hotkey

import "github.com/cleankeys/cleankeys/pkg/input"

// Conflict names a well-known system shortcut that collides with a
// candidate trigger.
type Conflict struct {
	Name      string
	Key       string
	Modifiers input.Modifiers
}

// systemShortcuts is the fixed table a candidate trigger is checked
// against at configuration time.
var systemShortcuts = []Conflict{
	{Name: "Select All", Key: "a", Modifiers: input.ModCommand},
	{Name: "Copy", Key: "c", Modifiers: input.ModCommand},
	{Name: "Paste", Key: "v", Modifiers: input.ModCommand},
	{Name: "Cut", Key: "x", Modifiers: input.ModCommand},
	{Name: "Undo", Key: "z", Modifiers: input.ModCommand},
	{Name: "Close Window", Key: "w", Modifiers: input.ModCommand},
	{Name: "Quit", Key: "q", Modifiers: input.ModCommand},
	{Name: "Spotlight", Key: "space", Modifiers: input.ModCommand},
	{Name: "Application Switcher", Key: "tab", Modifiers: input.ModCommand},
}

// Conflicts returns every well-known shortcut whose key identifier and
// modifier set both exactly equal the trigger's. Checking happens at
// configuration time only; whether a conflicting trigger may still be
// saved is the caller's decision.
func (t Trigger) Conflicts() []Conflict {
	var out []Conflict
	for _, s := range systemShortcuts {
		if s.Key == t.key && s.Modifiers == t.mods {
			out = append(out, s)
		}
	}
	return out
}
