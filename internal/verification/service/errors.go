package service

import (
	"errors"
	"fmt"

	ballotservice "voteauth/internal/ballot/service"
	"voteauth/internal/notify"
)

// Kind is the stable machine-readable error kind surfaced to clients.
type Kind string

const (
	KindNotFound              Kind = "NOT_FOUND"
	KindNotEligible           Kind = "NOT_ELIGIBLE"
	KindAlreadyVoted          Kind = "ALREADY_VOTED"
	KindRateLimited           Kind = "RATE_LIMITED"
	KindMissingContactChannel Kind = "MISSING_CONTACT_CHANNEL"
	KindNoActiveCode          Kind = "NO_ACTIVE_CODE"
	KindInvalidCode           Kind = "INVALID_CODE"
	KindBallotAlreadyIssued   Kind = "BALLOT_ALREADY_ISSUED"
	KindInvalidArgument       Kind = "INVALID_ARGUMENT"
	KindInternal              Kind = "INTERNAL"
)

var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrNotFound              = errors.New("registration number not found")
	ErrNotEligible           = errors.New("voter is not eligible")
	ErrAlreadyVoted          = errors.New("you have already voted, ballot already used")
	ErrRateLimited           = errors.New("please wait before requesting another code")
	ErrMissingContactChannel = errors.New("voter contact details not found")
	ErrNoActiveCode          = errors.New("no valid code found")
	ErrInvalidCode           = errors.New("invalid code")
	// ErrBallotAlreadyIssued is shared with the issuer so errors.Is matches either.
	ErrBallotAlreadyIssued = ballotservice.ErrBallotAlreadyIssued
)

// RateLimitedError is returned by RequestCode inside the cooldown window.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s (retry after %ds)", ErrRateLimited, e.RetryAfterSeconds)
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// MissingContactChannelError names the channel whose address is absent from the voter record.
type MissingContactChannelError struct {
	Channel notify.Channel
}

func (e *MissingContactChannelError) Error() string {
	return fmt.Sprintf("voter %s not found", contactName(e.Channel))
}

func (e *MissingContactChannelError) Is(target error) bool { return target == ErrMissingContactChannel }

func contactName(ch notify.Channel) string {
	if ch == notify.ChannelSMS {
		return "phone number"
	}
	return "email"
}

// KindOf returns the error kind of err. Unrecognized errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotEligible):
		return KindNotEligible
	case errors.Is(err, ErrAlreadyVoted):
		return KindAlreadyVoted
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrMissingContactChannel):
		return KindMissingContactChannel
	case errors.Is(err, ErrNoActiveCode):
		return KindNoActiveCode
	case errors.Is(err, ErrInvalidCode):
		return KindInvalidCode
	case errors.Is(err, ErrBallotAlreadyIssued):
		return KindBallotAlreadyIssued
	}
	return KindInternal
}

// HintOf returns a short human hint for err, or "" when there is none.
func HintOf(err error) string {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		unit := "seconds"
		if rl.RetryAfterSeconds == 1 {
			unit = "second"
		}
		return fmt.Sprintf("You can request a new code in %d %s", rl.RetryAfterSeconds, unit)
	}
	var mc *MissingContactChannelError
	if errors.As(err, &mc) {
		return fmt.Sprintf("Contact the administrator to update your %s on the voter roster", contactName(mc.Channel))
	}
	switch KindOf(err) {
	case KindNotFound:
		return "Check your registration number and try again"
	case KindNotEligible:
		return "Contact the election administrator if you believe this is a mistake"
	case KindAlreadyVoted:
		return "Each voter can only vote once"
	case KindMissingContactChannel:
		return "Contact the administrator to update your contact details on the voter roster"
	case KindNoActiveCode:
		return "Request a new code"
	case KindInvalidCode:
		return "Check the code and try again"
	case KindBallotAlreadyIssued:
		return "Use the ballot token you were already issued to cast your vote"
	}
	return ""
}

// RetryAfter returns the retry-after seconds carried by err, or 0.
func RetryAfter(err error) int {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.RetryAfterSeconds
	}
	return 0
}
