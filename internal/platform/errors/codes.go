// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Objective lifecycle errors
	CodeObjectiveAssigneeRequired Code = "OBJECTIVE_ASSIGNEE_REQUIRED"
	CodeObjectiveAlreadyStarted   Code = "OBJECTIVE_ALREADY_STARTED"
	CodeObjectiveNotStarted       Code = "OBJECTIVE_NOT_STARTED"

	// Scenario errors
	CodeScenarioInvalid          Code = "SCENARIO_INVALID"
	CodeScenarioUnknownCharacter Code = "SCENARIO_UNKNOWN_CHARACTER"
	CodeScenarioUnknownGoalKind  Code = "SCENARIO_UNKNOWN_GOAL_KIND"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeObjectiveAssigneeRequired,
		CodeScenarioInvalid,
		CodeScenarioUnknownGoalKind:
		return codes.InvalidArgument

	case CodeObjectiveAlreadyStarted,
		CodeObjectiveNotStarted:
		return codes.FailedPrecondition

	case CodeNotFound,
		CodeScenarioUnknownCharacter:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
