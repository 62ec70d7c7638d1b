package tournament

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid tournament configuration")
	ErrInvalidStage         = errors.New("invalid stage")
	ErrMatchNotFound        = errors.New("match not found")
	ErrInvalidScore         = errors.New("invalid score")
	ErrTeamsNotAssigned     = errors.New("match teams are not assigned")
	ErrUndecidedKnockout    = errors.New("knockout match needs a winner")
	ErrDownstreamPlayed     = errors.New("downstream match already played")
	ErrInvalidMatchday      = errors.New("invalid matchday value")
)
