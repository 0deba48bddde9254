// Package rpcerror builds gRPC statuses that carry a machine-readable reason, a human hint and,
// when relevant, a retry delay as google.rpc error details.
package rpcerror

import (
	"log"
	"strconv"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/durationpb"
)

// Domain is the ErrorInfo domain for every error this service returns.
const Domain = "voteauth"

// hintLocale is the locale of LocalizedMessage hints.
const hintLocale = "en-US"

// Error describes one client-facing failure.
type Error struct {
	Code    codes.Code
	Reason  string
	Message string
	Hint    string
	// RetryAfterSeconds > 0 attaches RetryInfo.
	RetryAfterSeconds int
}

// Status converts e to a gRPC status error. Details that fail to attach are dropped.
func (e Error) Status() error {
	st := status.New(e.Code, e.Message)
	if e.Reason != "" {
		md := map[string]string{}
		if e.RetryAfterSeconds > 0 {
			md["retryAfterSeconds"] = strconv.Itoa(e.RetryAfterSeconds)
		}
		st = attach(st, &errdetails.ErrorInfo{Reason: e.Reason, Domain: Domain, Metadata: md})
	}
	if e.Hint != "" {
		st = attach(st, &errdetails.LocalizedMessage{Locale: hintLocale, Message: e.Hint})
	}
	if e.RetryAfterSeconds > 0 {
		st = attach(st, &errdetails.RetryInfo{RetryDelay: durationpb.New(time.Duration(e.RetryAfterSeconds) * time.Second)})
	}
	return st.Err()
}

// Internal logs err under component and returns an Internal status with a generic message.
func Internal(component, message string, err error) error {
	log.Printf("%s: %s: %v", component, message, err)
	return Error{Code: codes.Internal, Reason: "INTERNAL", Message: message}.Status()
}

// Details extracts the reason, hint and retry delay from a status error returned by Status.
func Details(err error) (reason, hint string, retryAfter time.Duration) {
	st, ok := status.FromError(err)
	if !ok {
		return "", "", 0
	}
	for _, d := range st.Details() {
		switch v := d.(type) {
		case *errdetails.ErrorInfo:
			reason = v.GetReason()
		case *errdetails.LocalizedMessage:
			hint = v.GetMessage()
		case *errdetails.RetryInfo:
			retryAfter = v.GetRetryDelay().AsDuration()
		}
	}
	return reason, hint, retryAfter
}

func attach(st *status.Status, detail protoadapt.MessageV1) *status.Status {
	withDetail, err := st.WithDetails(detail)
	if err != nil {
		log.Printf("rpcerror: attach detail: %v", err)
		return st
	}
	return withDetail
}
