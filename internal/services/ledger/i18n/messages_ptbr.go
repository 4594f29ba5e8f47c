package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
)

func init() {
	for code, text := range messagesPTBR {
		message.SetString(language.BrazilianPortuguese, string(code), text)
	}
}

var messagesPTBR = map[apperrors.Code]string{
	apperrors.CodeUnknown:      "Algo deu errado. Tente novamente.",
	apperrors.CodeUnauthorized: "Você não tem permissão para esta ação.",
	apperrors.CodeNotOwner:     "Este jogo pertence a outro jogador.",

	apperrors.CodeProfileNotFound:      "Crie um perfil antes de jogar.",
	apperrors.CodeProfileAlreadyExists: "Você já tem um perfil.",
	apperrors.CodeProfileEmptyUsername: "Escolha um nome de usuário para o seu perfil.",
	apperrors.CodeProfileInvalidClass:  "Escolha um arquétipo de personagem válido.",

	apperrors.CodeInvalidGameState:         "Este jogo não está em andamento.",
	apperrors.CodeInvalidStatusTransition:  "O jogo não pode mudar para esse estado.",
	apperrors.CodeCannotSkipLevels:         "Os níveis devem ser jogados em ordem.",
	apperrors.CodeMustCompleteCurrentLevel: "Termine o nível atual primeiro.",
	apperrors.CodeLevelAlreadyCompleted:    "Você já completou este nível.",
	apperrors.CodeObjectivesIncomplete:     "Complete todos os objetivos antes de terminar o nível.",

	apperrors.CodeLevelNotActive:     "Este nível não está disponível no momento.",
	apperrors.CodeLevelEmptyName:     "O nível precisa de um nome.",
	apperrors.CodeLevelInvalidSpec:   "A definição do nível é inválida.",
	apperrors.CodeArchetypeMismatch:  "Seu personagem não pode entrar neste nível.",
	apperrors.CodeObjectiveNotFound:  "Esse objetivo não faz parte deste nível.",
	apperrors.CodeObjectiveCompleted: "Esse objetivo já foi concluído.",

	apperrors.CodeSessionNotActive: "Inicie o nível antes de jogá-lo.",
	apperrors.CodeInventoryFull:    "Seu inventário está cheio.",

	apperrors.CodeFightNotActive:    "Não há luta ativa.",
	apperrors.CodeFightInProgress:   "Uma luta já está em andamento.",
	apperrors.CodeWrongTurn:         "Não é a sua vez.",
	apperrors.CodeTargetAlreadyDead: "Essa fera já foi derrotada.",
	apperrors.CodeBeastNotFound:     "Essa fera não faz parte desta luta.",

	apperrors.CodeNotFound:           "Não encontrado.",
	apperrors.CodeConcurrentMutation: "Outra ação neste jogo ainda está em execução. Tente novamente.",
}
