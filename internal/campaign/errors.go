package campaign

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/school-healthcheck/internal/models"
)

// Condition — независимо проверяемое и независимо сообщаемое условие
// операции. Оператор должен видеть, чего именно не хватает.
type Condition string

const (
	CondNotificationsSent  Condition = "notifications_sent"
	CondScheduled          Condition = "scheduled"
	CondStartDateReached   Condition = "start_date_reached"
	CondCampaignApproved   Condition = "campaign_approved"
	CondCampaignInProgress Condition = "campaign_in_progress"
)

// Фазы рассылки.
const (
	PhaseForms         = "forms"
	PhaseNotifications = "notifications"
)

var (
	ErrNotFound                   = errors.New("не найдено")
	ErrInvalidCampaign            = errors.New("некорректные данные кампании")
	ErrEligibilityCriteriaMissing = errors.New("нужен возрастной диапазон или список классов")
	ErrDuplicateResult            = errors.New("результат осмотра уже записан")
	ErrEmptySubmission            = errors.New("в заявке нет ни одного замера")
	// Отмена согласованной кампании — сознательно нереализованная
	// операция: политика очистки разосланных форм не определена.
	ErrCancelUnsupported = errors.New("отмена согласованной кампании не поддерживается")
)

type InvalidTransitionError struct {
	From models.CampaignStatus
	To   models.CampaignStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("переход %s → %s недопустим", e.From, e.To)
}

// PreconditionError перечисляет все несоблюдённые условия разом,
// чтобы оператору не приходилось выяснять их по одному.
type PreconditionError struct {
	Missing []Condition
}

func (e *PreconditionError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, c := range e.Missing {
		parts = append(parts, string(c))
	}
	return "не выполнены условия: " + strings.Join(parts, ", ")
}

type DispatchFailedError struct {
	Phase string
	Err   error
}

func (e *DispatchFailedError) Error() string {
	return fmt.Sprintf("рассылка прервана на фазе %q: %v", e.Phase, e.Err)
}

func (e *DispatchFailedError) Unwrap() error { return e.Err }

// CollaboratorError — транзиентный сбой внешнего сервиса (реестр,
// хранилище, канал уведомлений). Вызывающий может повторить операцию.
type CollaboratorError struct {
	Collaborator string // roster|storage|notify
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s недоступен: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func storageErr(err error) error {
	return &CollaboratorError{Collaborator: "storage", Err: err}
}

func rosterErr(err error) error {
	return &CollaboratorError{Collaborator: "roster", Err: err}
}
