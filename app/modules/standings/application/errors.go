package standingsservice

import (
	"errors"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
)

var (
	ErrEventNotFound          = errors.New("event not found")
	ErrInvalidBallot          = standingsdomain.ErrInvalidBallot
	ErrInvalidTiebreakerOrder = errors.New("invalid tiebreaker order")
	ErrInvalidEventSetup      = errors.New("invalid event setup")
	ErrArchiveDisabled        = errors.New("snapshot archive is not configured")
	ErrRegistrationNotFound   = errors.New("registration not found")
)
