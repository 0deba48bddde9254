package audit

// Actions emitted by the verification and ballot services.
const (
	ActionOTPRequested            = "OTP_REQUESTED"
	ActionOTPVerificationFailed   = "OTP_VERIFICATION_FAILED"
	ActionOTPVerifiedBallotIssued = "OTP_VERIFIED_BALLOT_ISSUED"
	ActionBallotTokenConsumed     = "BALLOT_TOKEN_CONSUMED"

	// Internal failures while serving a voter's request. The payload holds no code or token.
	ActionOTPRequestFailed = "OTP_REQUEST_FAILED"
	ActionOTPConfirmFailed = "OTP_CONFIRM_FAILED"
)

// Entities referenced by audit events.
const (
	EntityVerification = "verification"
	EntityBallot       = "ballot"
	EntityVoter        = "voter"
)
