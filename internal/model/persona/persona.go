package persona

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPersona is returned when a client names a persona that does not exist.
var ErrUnknownPersona = errors.New("unknown persona")

// Persona selects the response style applied to the next outgoing prompt.
type Persona int

const (
	Normal Persona = iota
	Teacher
	Friend
	Expert
	Comedian
	CodeDebugger
)

// Info is the JSON view of a persona exposed to the frontend.
type Info struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Prefix string `json:"prefix"`
}

// All returns every persona in selector order, Normal first.
func All() []Persona {
	return []Persona{Normal, Teacher, Friend, Expert, Comedian, CodeDebugger}
}

// Prefix returns the text prepended to the user's message. It panics on a
// value outside the enumeration.
func (p Persona) Prefix() string {
	switch p {
	case Normal:
		return ""
	case Teacher:
		return "Explain concepts like a teacher to a student: "
	case Friend:
		return "Respond as a friendly and casual chatbot: "
	case Expert:
		return "Provide detailed expert-level information: "
	case Comedian:
		return "Make responses humorous and engaging: "
	case CodeDebugger:
		return "Analyze and debug the following code: "
	}
	panic(fmt.Sprintf("persona: no prefix for %d", int(p)))
}

// ID returns the wire tag used by the HTTP API.
func (p Persona) ID() string {
	switch p {
	case Normal:
		return "normal"
	case Teacher:
		return "teacher"
	case Friend:
		return "friend"
	case Expert:
		return "expert"
	case Comedian:
		return "comedian"
	case CodeDebugger:
		return "code-debugger"
	}
	panic(fmt.Sprintf("persona: no id for %d", int(p)))
}

// Label returns the display name shown in the selector.
func (p Persona) Label() string {
	switch p {
	case Normal:
		return "Normal Mode 🤖"
	case Teacher:
		return "Teacher 👨‍🏫"
	case Friend:
		return "Friend 😊"
	case Expert:
		return "Expert 🎓"
	case Comedian:
		return "Comedian 🤣"
	case CodeDebugger:
		return "Code Debugger 🧑‍💻"
	}
	panic(fmt.Sprintf("persona: no label for %d", int(p)))
}

func (p Persona) String() string {
	return p.ID()
}

// Info returns the JSON view of p.
func (p Persona) Info() Info {
	return Info{ID: p.ID(), Label: p.Label(), Prefix: p.Prefix()}
}

// Parse resolves a wire tag. An empty tag selects Normal.
func Parse(raw string) (Persona, error) {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" {
		return Normal, nil
	}
	for _, p := range All() {
		if p.ID() == tag {
			return p, nil
		}
	}
	return Normal, fmt.Errorf("%w: %q", ErrUnknownPersona, raw)
}

// List returns the JSON view of every persona.
func List() []Info {
	personas := All()
	items := make([]Info, 0, len(personas))
	for _, p := range personas {
		items = append(items, p.Info())
	}
	return items
}
