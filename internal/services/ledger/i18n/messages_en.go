package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
)

func init() {
	for code, text := range messagesEN {
		message.SetString(language.AmericanEnglish, string(code), text)
	}
}

var messagesEN = map[apperrors.Code]string{
	apperrors.CodeUnknown:      "Something went wrong. Please try again.",
	apperrors.CodeUnauthorized: "You are not allowed to perform this action.",
	apperrors.CodeNotOwner:     "This game belongs to another player.",

	apperrors.CodeProfileNotFound:      "Create a profile before playing.",
	apperrors.CodeProfileAlreadyExists: "You already have a profile.",
	apperrors.CodeProfileEmptyUsername: "Pick a username for your profile.",
	apperrors.CodeProfileInvalidClass:  "Choose a valid character archetype.",

	apperrors.CodeInvalidGameState:         "This game is not in progress.",
	apperrors.CodeInvalidStatusTransition:  "The game cannot move to that status.",
	apperrors.CodeCannotSkipLevels:         "Levels must be played in order.",
	apperrors.CodeMustCompleteCurrentLevel: "Finish your current level first.",
	apperrors.CodeLevelAlreadyCompleted:    "You already completed this level.",
	apperrors.CodeObjectivesIncomplete:     "Complete every objective before finishing the level.",

	apperrors.CodeLevelNotActive:     "This level is not available right now.",
	apperrors.CodeLevelEmptyName:     "The level needs a name.",
	apperrors.CodeLevelInvalidSpec:   "The level definition is invalid.",
	apperrors.CodeArchetypeMismatch:  "Your character cannot enter this level.",
	apperrors.CodeObjectiveNotFound:  "That objective is not part of this level.",
	apperrors.CodeObjectiveCompleted: "That objective is already complete.",

	apperrors.CodeSessionNotActive: "Start the level before playing it.",
	apperrors.CodeInventoryFull:    "Your inventory is full.",

	apperrors.CodeFightNotActive:    "There is no active fight.",
	apperrors.CodeFightInProgress:   "A fight is already underway.",
	apperrors.CodeWrongTurn:         "It is not your turn.",
	apperrors.CodeTargetAlreadyDead: "That beast is already defeated.",
	apperrors.CodeBeastNotFound:     "That beast is not part of this fight.",

	apperrors.CodeNotFound:           "Not found.",
	apperrors.CodeConcurrentMutation: "Another action on this game is still running. Try again.",
}
