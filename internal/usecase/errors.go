package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/prediction-pool/internal/domain/pool"
	"github.com/riskibarqy/prediction-pool/internal/domain/prediction"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
	"github.com/riskibarqy/prediction-pool/internal/platform/resilience"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConfiguration         = errors.New("invalid configuration")
	ErrAlreadyPlayed         = errors.New("match already played")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrConflict              = errors.New("conflicting update")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

var domainErrorClasses = []struct {
	class   error
	members []error
}{
	{class: ErrConfiguration, members: []error{tournament.ErrInvalidConfiguration}},
	{class: ErrNotFound, members: []error{tournament.ErrMatchNotFound, pool.ErrGroupNotFound}},
	{class: ErrAlreadyPlayed, members: []error{prediction.ErrAlreadyPlayed}},
	{class: ErrConflict, members: []error{pool.ErrVersionConflict}},
	{class: ErrDependencyUnavailable, members: []error{resilience.ErrCircuitOpen}},
	{class: ErrInvalidInput, members: []error{
		tournament.ErrInvalidScore,
		tournament.ErrInvalidStage,
		tournament.ErrTeamsNotAssigned,
		tournament.ErrUndecidedKnockout,
		tournament.ErrDownstreamPlayed,
		tournament.ErrInvalidMatchday,
		prediction.ErrInvalidPick,
		pool.ErrInvalidGroup,
		pool.ErrInvalidAmount,
		pool.ErrBelowMinimum,
		pool.ErrMemberExists,
		pool.ErrNotMember,
		pool.ErrInviteExists,
		pool.ErrInvalidInvite,
		pool.ErrMemberPaid,
		pool.ErrOwnerRemoval,
	}},
}

// classify attaches the usecase error class to a domain error so callers can
// match either with errors.Is. Unknown errors are wrapped with op only.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, c := range domainErrorClasses {
		if errors.Is(err, c.class) {
			return fmt.Errorf("%s: %w", op, err)
		}
		for _, member := range c.members {
			if errors.Is(err, member) {
				return fmt.Errorf("%w: %s: %w", c.class, op, err)
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
