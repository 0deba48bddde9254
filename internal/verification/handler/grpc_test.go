package handler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	verificationv1 "voteauth/api/verification/v1"
	ballotservice "voteauth/internal/ballot/service"
	"voteauth/internal/notify"
	"voteauth/internal/otp"
	"voteauth/internal/ratelimit"
	"voteauth/internal/server/rpcerror"
	"voteauth/internal/store"
	"voteauth/internal/verification/service"
	voterdomain "voteauth/internal/voter/domain"
)

type captureDispatcher struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (d *captureDispatcher) DispatchAsync(msg notify.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs = append(d.msgs, msg)
}

func newTestServer(t *testing.T) (*Server, *captureDispatcher) {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return newTestServerWithClock(t, func() time.Time { return now })
}

func newTestServerWithClock(t *testing.T, now func() time.Time) (*Server, *captureDispatcher) {
	t.Helper()
	mem := store.NewMemory()
	_ = mem.Voters().Create(context.Background(), &voterdomain.Voter{
		ID: "v1", RegNo: "REG001", Email: "asha@example.org", Status: voterdomain.VoterStatusEligible,
	})
	sent := &captureDispatcher{}
	svc, err := service.NewService(service.Deps{
		Store:      mem,
		Generator:  otp.NewGenerator(6, otp.NewHasher(4)),
		Limiter:    ratelimit.NewLimiter(ratelimit.DefaultCooldown),
		Issuer:     ballotservice.NewIssuer(ballotservice.DefaultTokenBytes),
		Dispatcher: sent,
		Now:        now,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewServer(svc), sent
}

func TestNilService_Unimplemented(t *testing.T) {
	srv := NewServer(nil)
	ctx := context.Background()
	if _, err := srv.RequestCode(ctx, &verificationv1.RequestCodeRequest{RegNo: "REG001"}); status.Code(err) != codes.Unimplemented {
		t.Errorf("RequestCode code = %v", status.Code(err))
	}
	if _, err := srv.ConfirmCode(ctx, &verificationv1.ConfirmCodeRequest{RegNo: "REG001", Otp: "1"}); status.Code(err) != codes.Unimplemented {
		t.Errorf("ConfirmCode code = %v", status.Code(err))
	}
}

func TestRequestCode_Success(t *testing.T) {
	srv, sent := newTestServer(t)
	resp, err := srv.RequestCode(context.Background(), &verificationv1.RequestCodeRequest{RegNo: "reg001"})
	if err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	if resp.ExpiresIn != 300 {
		t.Errorf("ExpiresIn = %d", resp.ExpiresIn)
	}
	if resp.Message != "OTP is being sent to your email" {
		t.Errorf("Message = %q", resp.Message)
	}
	if len(resp.SentVia) != 1 || resp.SentVia[0] != "EMAIL" {
		t.Errorf("SentVia = %v", resp.SentVia)
	}
	if len(sent.msgs) != 1 {
		t.Errorf("dispatched = %d", len(sent.msgs))
	}
}

func TestRequestCode_StatusMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	_, err := srv.RequestCode(ctx, &verificationv1.RequestCodeRequest{RegNo: "  "})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("empty regNo code = %v", status.Code(err))
	}

	_, err = srv.RequestCode(ctx, &verificationv1.RequestCodeRequest{RegNo: "REG404"})
	if status.Code(err) != codes.NotFound {
		t.Errorf("unknown regNo code = %v", status.Code(err))
	}
	if reason, _, _ := rpcerror.Details(err); reason != "NOT_FOUND" {
		t.Errorf("reason = %q", reason)
	}

	if _, err := srv.RequestCode(ctx, &verificationv1.RequestCodeRequest{RegNo: "REG001"}); err != nil {
		t.Fatal(err)
	}
	_, err = srv.RequestCode(ctx, &verificationv1.RequestCodeRequest{RegNo: "REG001"})
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("second request code = %v", status.Code(err))
	}
	reason, hint, retry := rpcerror.Details(err)
	if reason != "RATE_LIMITED" || retry <= 0 || retry > 60*time.Second || hint == "" {
		t.Errorf("details = %q, %q, %v", reason, hint, retry)
	}
}

func TestConfirmCode_Flow(t *testing.T) {
	srv, sent := newTestServer(t)
	ctx := context.Background()

	_, err := srv.ConfirmCode(ctx, &verificationv1.ConfirmCodeRequest{RegNo: "REG001", Otp: "123456"})
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("no code: %v", err)
	}
	if reason, _, _ := rpcerror.Details(err); reason != "NO_ACTIVE_CODE" {
		t.Errorf("reason = %q", reason)
	}

	if _, err := srv.RequestCode(ctx, &verificationv1.RequestCodeRequest{RegNo: "REG001"}); err != nil {
		t.Fatal(err)
	}
	code := sent.msgs[0].Code
	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}
	_, err = srv.ConfirmCode(ctx, &verificationv1.ConfirmCodeRequest{RegNo: "REG001", Otp: wrong})
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("wrong code: %v", err)
	}

	resp, err := srv.ConfirmCode(ctx, &verificationv1.ConfirmCodeRequest{RegNo: "REG001", Otp: code})
	if err != nil {
		t.Fatalf("ConfirmCode: %v", err)
	}
	if resp.Message != msgVerified || resp.Note != tokenNote || len(resp.BallotToken) != 64 {
		t.Errorf("resp = %+v", resp)
	}

	_, err = srv.ConfirmCode(ctx, &verificationv1.ConfirmCodeRequest{RegNo: "REG001"})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("missing otp: %v", err)
	}
}

func TestConfirmCode_ReissueCarriesKind(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	srv, sent := newTestServerWithClock(t, func() time.Time { return now })
	ctx := context.Background()

	if _, err := srv.RequestCode(ctx, &verificationv1.RequestCodeRequest{RegNo: "REG001"}); err != nil {
		t.Fatal(err)
	}
	first, err := srv.ConfirmCode(ctx, &verificationv1.ConfirmCodeRequest{RegNo: "REG001", Otp: sent.msgs[0].Code})
	if err != nil {
		t.Fatalf("ConfirmCode: %v", err)
	}
	if first.Reissued || first.Kind != "" || first.Message != msgVerified {
		t.Errorf("fresh issuance = %+v", first)
	}

	now = now.Add(2 * time.Minute)
	if _, err := srv.RequestCode(ctx, &verificationv1.RequestCodeRequest{RegNo: "REG001"}); err != nil {
		t.Fatalf("second RequestCode: %v", err)
	}
	second, err := srv.ConfirmCode(ctx, &verificationv1.ConfirmCodeRequest{RegNo: "REG001", Otp: sent.msgs[1].Code})
	if err != nil {
		t.Fatalf("second ConfirmCode: %v", err)
	}
	if second.BallotToken != first.BallotToken {
		t.Error("a new code should return the existing token")
	}
	if !second.Reissued || second.Kind != "BALLOT_ALREADY_ISSUED" || second.Message != msgReissued {
		t.Errorf("reissue = %+v, want kind BALLOT_ALREADY_ISSUED", second)
	}
	wire, err := verificationv1.Codec{}.Marshal(second)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(wire), `"kind":"BALLOT_ALREADY_ISSUED"`) || !strings.Contains(string(wire), `"reissued":true`) {
		t.Errorf("wire = %s", wire)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		in   []notify.Channel
		want string
	}{
		{nil, "email"},
		{[]notify.Channel{notify.ChannelEmail}, "email"},
		{[]notify.Channel{notify.ChannelEmail, notify.ChannelSMS}, "email and phone"},
		{[]notify.Channel{notify.ChannelSMS}, "phone"},
	}
	for _, tc := range tests {
		if got := describe(tc.in); got != tc.want {
			t.Errorf("describe(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToStatus_Internal(t *testing.T) {
	err := toStatus(context.DeadlineExceeded, msgRequestFailed)
	if status.Code(err) != codes.DeadlineExceeded {
		t.Errorf("deadline code = %v", status.Code(err))
	}
	err = toStatus(errUnexpected{}, msgConfirmFailed)
	st, _ := status.FromError(err)
	if st.Code() != codes.Internal || st.Message() != msgConfirmFailed {
		t.Errorf("internal status = %v", st)
	}
}

type errUnexpected struct{}

func (errUnexpected) Error() string { return "disk on fire" }
