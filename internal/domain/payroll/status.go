package payroll

import "fmt"

// Status is the payroll lifecycle state.
//
//	pending ──> processing ──> paid
//	   └──────────────────────────^
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusPaid},
	StatusProcessing: {StatusPaid},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusPaid:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusPaid
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo returns next if the move is legal, or an error wrapping ErrIllegalTransition.
func (s Status) TransitionTo(next Status) (Status, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s, next)
	}
	return next, nil
}
