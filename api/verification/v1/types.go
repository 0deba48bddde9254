package verificationv1

import "time"

type RequestCodeRequest struct {
	RegNo string `json:"regNo"`
}

func (r *RequestCodeRequest) GetRegNo() string {
	if r == nil {
		return ""
	}
	return r.RegNo
}

type RequestCodeResponse struct {
	Message string `json:"message"`
	// ExpiresIn is the code lifetime in seconds.
	ExpiresIn int      `json:"expiresIn"`
	Hint      string   `json:"hint,omitempty"`
	SentVia   []string `json:"sentVia"`
}

type ConfirmCodeRequest struct {
	RegNo string `json:"regNo"`
	Otp   string `json:"otp"`
}

func (r *ConfirmCodeRequest) GetRegNo() string {
	if r == nil {
		return ""
	}
	return r.RegNo
}

func (r *ConfirmCodeRequest) GetOtp() string {
	if r == nil {
		return ""
	}
	return r.Otp
}

type ConfirmCodeResponse struct {
	Message     string    `json:"message"`
	BallotToken string    `json:"ballotToken"`
	IssuedAt    time.Time `json:"issuedAt"`
	Note        string    `json:"note"`
	// Reissued is set when the voter already held an unused token and that token was returned.
	Reissued bool `json:"reissued,omitempty"`
	// Kind is BALLOT_ALREADY_ISSUED on a reissue and empty on a fresh issuance.
	Kind string `json:"kind,omitempty"`
}

type CheckTokenRequest struct {
	BallotToken string `json:"ballotToken"`
}

func (r *CheckTokenRequest) GetBallotToken() string {
	if r == nil {
		return ""
	}
	return r.BallotToken
}

type CheckTokenResponse struct {
	// Status is ACTIVE or CONSUMED.
	Status     string     `json:"status"`
	IssuedAt   time.Time  `json:"issuedAt"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
}

type GetCodeRequest struct {
	RegNo string `json:"regNo"`
}

func (r *GetCodeRequest) GetRegNo() string {
	if r == nil {
		return ""
	}
	return r.RegNo
}

type GetCodeResponse struct {
	Otp  string `json:"otp"`
	Note string `json:"note"`
}
