// Package session models the client's belief about whether the user is logged in to the playlist provider.
//
// [State] is an immutable value. Transitions are pure: [State.Apply] takes an [Event] and returns the next
// state plus whether the transition is allowed. Renderers call [State.Control] instead of toggling the
// login control themselves.
//
//	Unknown   --StatusReported(true)--> LoggedIn
//	Unknown   --StatusReported(false)-> LoggedOut
//	Unknown   --StatusCheckFailed-----> LoggedOut
//	LoggedOut --RefreshSucceeded------> LoggedIn
//	LoggedIn  --RefreshFailed---------> LoggedOut
//	Unknown   --RefreshFailed---------> LoggedOut
package session

// Status enumerates the session states.
type Status int

const (
	Unknown Status = iota
	LoggedOut
	LoggedIn
)

func (s Status) String() string {
	switch s {
	case LoggedOut:
		return "logged-out"
	case LoggedIn:
		return "logged-in"
	default:
		return "unknown"
	}
}

// EventKind enumerates the inputs that can move the session.
type EventKind int

const (
	StatusReported EventKind = iota
	StatusCheckFailed
	RefreshSucceeded
	RefreshFailed
)

// Event is a single input to the state machine. LoggedIn is only read for [StatusReported].
type Event struct {
	Kind     EventKind
	LoggedIn bool
}

// Reported builds the event for a successful /spotify/auth/status response.
func Reported(loggedIn bool) Event {
	return Event{Kind: StatusReported, LoggedIn: loggedIn}
}

// State is the session value object.
type State struct {
	status Status
}

// New returns the initial [Unknown] state.
func New() State {
	return State{status: Unknown}
}

// Of returns a state with the given status.
func Of(s Status) State {
	return State{status: s}
}

func (s State) Status() Status { return s.status }
func (s State) LoggedIn() bool { return s.status == LoggedIn }
func (s State) String() string { return s.status.String() }

// Apply returns the state after ev. Disallowed transitions return s unchanged and ok=false.
//
// A refresh outcome that matches the current state (a successful refresh while logged in, a failed one
// while logged out) is allowed and leaves the state as is. A failed refresh always ends logged out, even
// before the status check has answered.
func (s State) Apply(ev Event) (next State, ok bool) {
	switch ev.Kind {
	case StatusReported:
		if s.status != Unknown {
			return s, false
		}
		if ev.LoggedIn {
			return Of(LoggedIn), true
		}
		return Of(LoggedOut), true
	case StatusCheckFailed:
		if s.status != Unknown {
			return s, false
		}
		return Of(LoggedOut), true
	case RefreshSucceeded:
		if s.status == Unknown {
			return s, false
		}
		return Of(LoggedIn), true
	case RefreshFailed:
		return Of(LoggedOut), true
	}
	return s, false
}

// Control labels used for the login control.
const (
	LabelChecking   = "Checking Spotify login..."
	LabelLogin      = "Login with Spotify"
	LabelSuccessful = "Spotify Login Successful"
)

// Control is the rendered state of the login control.
type Control struct {
	Label    string
	Disabled bool
}

// Control derives the login control from the session.
func (s State) Control() Control {
	switch s.status {
	case LoggedIn:
		return Control{Label: LabelSuccessful, Disabled: true}
	case LoggedOut:
		return Control{Label: LabelLogin, Disabled: false}
	default:
		return Control{Label: LabelChecking, Disabled: true}
	}
}
