package store

// Action is a named update to the tree.
type Action interface {
	Type() string
}

const (
	TypeLoading              = "@@framework/loading"
	TypeNavigationPrevention = "@@framework/navigationPrevention"
	TypePush                 = "@@router/CALL_HISTORY_METHOD"
)

// SetStateAction replaces one module's slice. Description doubles as the
// action type, e.g. "@@home/setState[count]".
type SetStateAction struct {
	Module      string
	State       any
	Description string
}

func (a SetStateAction) Type() string { return a.Description }

// LoadingAction increments (Show) or decrements the counter of Identifier.
type LoadingAction struct {
	Identifier string
	Show       bool
}

func (LoadingAction) Type() string { return TypeLoading }

// NavigationPreventionAction toggles whether leaving the current location
// should be blocked.
type NavigationPreventionAction struct {
	Prevented bool
}

func (NavigationPreventionAction) Type() string { return TypeNavigationPrevention }

// PushAction requests a new history entry. With PreserveState the new entry
// keeps the current entry's state and State is ignored.
type PushAction struct {
	URL           string
	State         any
	PreserveState bool
}

func (PushAction) Type() string { return TypePush }

func reduce(s State, a Action) State {
	next := s.clone()
	switch act := a.(type) {
	case SetStateAction:
		next.App[act.Module] = act.State
	case LoadingAction:
		if act.Show {
			next.Loading[act.Identifier]++
		} else if next.Loading[act.Identifier] > 0 {
			next.Loading[act.Identifier]--
		}
		if next.Loading[act.Identifier] == 0 {
			delete(next.Loading, act.Identifier)
		}
	case NavigationPreventionAction:
		next.NavigationPrevented = act.Prevented
	case PushAction:
		loc := ParseLocation(act.URL)
		if act.PreserveState {
			loc.State = s.Location.State
		} else {
			loc.State = act.State
		}
		next.Location = loc
	}
	return next
}
