package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeObjectiveNotStarted, "end before start")
	wrapped := fmt.Errorf("runtime: %w", err)

	if !stderrors.Is(wrapped, New(CodeObjectiveNotStarted, "other message")) {
		t.Fatal("expected match by code")
	}
	if stderrors.Is(wrapped, New(CodeObjectiveAlreadyStarted, "end before start")) {
		t.Fatal("expected mismatch for different code")
	}
}

func TestWrapExposesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "append entry", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if got := err.Error(); got != "append entry: disk full" {
		t.Fatalf("Error() = %q, want %q", got, "append entry: disk full")
	}
}

func TestGetCodeAndMetadata(t *testing.T) {
	err := fmt.Errorf("load: %w", WithMetadata(CodeScenarioUnknownCharacter, "unknown character", map[string]string{"Character": "c9"}))

	if got := GetCode(err); got != CodeScenarioUnknownCharacter {
		t.Fatalf("GetCode = %q, want %q", got, CodeScenarioUnknownCharacter)
	}
	if got := GetMetadata(err)["Character"]; got != "c9" {
		t.Fatalf("metadata Character = %q, want c9", got)
	}
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("GetCode(plain) = %q, want %q", got, CodeUnknown)
	}
	if GetMetadata(stderrors.New("plain")) != nil {
		t.Fatal("expected nil metadata for plain error")
	}
}

func TestCodeGRPCCode(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeObjectiveAssigneeRequired, codes.InvalidArgument},
		{CodeObjectiveAlreadyStarted, codes.FailedPrecondition},
		{CodeObjectiveNotStarted, codes.FailedPrecondition},
		{CodeScenarioInvalid, codes.InvalidArgument},
		{CodeScenarioUnknownGoalKind, codes.InvalidArgument},
		{CodeScenarioUnknownCharacter, codes.NotFound},
		{CodeNotFound, codes.NotFound},
		{CodeUnknown, codes.Internal},
	}
	for _, tc := range tests {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Fatalf("%s.GRPCCode() = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestToGRPCStatusAttachesDetails(t *testing.T) {
	err := WithMetadata(CodeObjectiveAlreadyStarted, "objective already started", map[string]string{"ObjectiveID": "obj-1"})

	st, ok := status.FromError(err.ToGRPCStatus("en-US", "This objective is already underway."))
	if !ok {
		t.Fatal("expected grpc status")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("status code = %v, want FailedPrecondition", st.Code())
	}
	var info *errdetails.ErrorInfo
	var localized *errdetails.LocalizedMessage
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			info = d
		case *errdetails.LocalizedMessage:
			localized = d
		}
	}
	if info == nil || info.GetReason() != string(CodeObjectiveAlreadyStarted) || info.GetDomain() != Domain {
		t.Fatalf("error info = %v, want reason %s", info, CodeObjectiveAlreadyStarted)
	}
	if info.GetMetadata()["ObjectiveID"] != "obj-1" {
		t.Fatalf("metadata = %v, want ObjectiveID", info.GetMetadata())
	}
	if localized == nil || localized.GetMessage() != "This objective is already underway." {
		t.Fatalf("localized = %v", localized)
	}
}
