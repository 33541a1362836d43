// Package actions maps gestures to named actions and runs their bodies.
//
// The action set is fixed and closed. The Registry owns the mutable
// gesture→action mapping; the Runner binds action names to the
// collaborators that execute them (translation, speech, display).
package actions

// ActionName is a label from the fixed set of supported actions.
type ActionName string

// The fixed action set. ActionNone fires nothing but still arms the
// dispatcher cooldown when mapped.
const (
	ActionTranslate        ActionName = "translate"
	ActionRepeat           ActionName = "repeat"
	ActionStop             ActionName = "stop"
	ActionCycleLanguage    ActionName = "cycle_language"
	ActionSendMessage      ActionName = "send_message"
	ActionShowText         ActionName = "show_text"
	ActionSpeakCustom      ActionName = "speak_custom"
	ActionChangeSourceLang ActionName = "change_source_language"
	ActionReset            ActionName = "reset"
	ActionNone             ActionName = "none"
)

// available lists every action a gesture may be mapped to, in stable order.
var available = []ActionName{
	ActionTranslate,
	ActionRepeat,
	ActionStop,
	ActionCycleLanguage,
	ActionSendMessage,
	ActionShowText,
	ActionSpeakCustom,
	ActionChangeSourceLang,
	ActionReset,
	ActionNone,
}

// Available returns the fixed action set in stable order.
func Available() []ActionName {
	out := make([]ActionName, len(available))
	copy(out, available)
	return out
}

// Valid reports whether a belongs to the fixed action set.
func (a ActionName) Valid() bool {
	for _, v := range available {
		if a == v {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (a ActionName) String() string {
	return string(a)
}
