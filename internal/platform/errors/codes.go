// Package errors provides structured error handling for ledger operations.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authority errors
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotOwner     Code = "NOT_OWNER"

	// Profile errors
	CodeProfileNotFound      Code = "PROFILE_NOT_FOUND"
	CodeProfileAlreadyExists Code = "PROFILE_ALREADY_EXISTS"
	CodeProfileEmptyUsername Code = "PROFILE_EMPTY_USERNAME"
	CodeProfileInvalidClass  Code = "PROFILE_INVALID_ARCHETYPE"

	// Game errors
	CodeInvalidGameState         Code = "INVALID_GAME_STATE"
	CodeInvalidStatusTransition  Code = "GAME_INVALID_STATUS_TRANSITION"
	CodeCannotSkipLevels         Code = "CANNOT_SKIP_LEVELS"
	CodeMustCompleteCurrentLevel Code = "MUST_COMPLETE_CURRENT_LEVEL_FIRST"
	CodeLevelAlreadyCompleted    Code = "LEVEL_ALREADY_COMPLETED"
	CodeObjectivesIncomplete     Code = "OBJECTIVES_INCOMPLETE"

	// Level catalog errors
	CodeLevelNotActive     Code = "LEVEL_NOT_ACTIVE"
	CodeLevelEmptyName     Code = "LEVEL_EMPTY_NAME"
	CodeLevelInvalidSpec   Code = "LEVEL_INVALID_SPEC"
	CodeArchetypeMismatch  Code = "ARCHETYPE_MISMATCH"
	CodeObjectiveNotFound  Code = "OBJECTIVE_NOT_FOUND"
	CodeObjectiveCompleted Code = "OBJECTIVE_ALREADY_COMPLETED"

	// Progress errors
	CodeSessionNotActive Code = "SESSION_NOT_ACTIVE"
	CodeInventoryFull    Code = "INVENTORY_FULL"

	// Fight errors
	CodeFightNotActive    Code = "FIGHT_NOT_ACTIVE"
	CodeFightInProgress   Code = "FIGHT_ALREADY_IN_PROGRESS"
	CodeWrongTurn         Code = "WRONG_TURN"
	CodeTargetAlreadyDead Code = "TARGET_ALREADY_DEAD"
	CodeBeastNotFound     Code = "BEAST_NOT_FOUND"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodeConcurrentMutation Code = "CONCURRENT_MUTATION"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeProfileEmptyUsername,
		CodeProfileInvalidClass,
		CodeLevelEmptyName,
		CodeLevelInvalidSpec:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeInvalidGameState,
		CodeInvalidStatusTransition,
		CodeCannotSkipLevels,
		CodeMustCompleteCurrentLevel,
		CodeLevelAlreadyCompleted,
		CodeObjectivesIncomplete,
		CodeLevelNotActive,
		CodeArchetypeMismatch,
		CodeObjectiveCompleted,
		CodeSessionNotActive,
		CodeInventoryFull,
		CodeFightNotActive,
		CodeFightInProgress,
		CodeWrongTurn,
		CodeTargetAlreadyDead:
		return codes.FailedPrecondition

	// PermissionDenied - caller lacks authority
	case CodeUnauthorized, CodeNotOwner:
		return codes.PermissionDenied

	// NotFound - referenced entity is missing
	case CodeProfileNotFound,
		CodeObjectiveNotFound,
		CodeBeastNotFound,
		CodeNotFound:
		return codes.NotFound

	// AlreadyExists - uniqueness violations
	case CodeProfileAlreadyExists:
		return codes.AlreadyExists

	// Aborted - concurrent mutation rejected
	case CodeConcurrentMutation:
		return codes.Aborted

	default:
		return codes.Internal
	}
}
