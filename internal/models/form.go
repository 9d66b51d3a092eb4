package models

import "time"

// HealthCheckForm — форма согласия, одна на пару (кампания, ученик).
// Наличие sent_at хотя бы у одной формы кампании — признак
// «уведомления отправлены»; отдельный флаг не храним.
type HealthCheckForm struct {
	ID            int64          `db:"id"`
	CampaignID    int64          `db:"campaign_id"`
	StudentID     int64          `db:"student_id"`
	SentAt        *time.Time     `db:"sent_at"`
	ConsentStatus *ConsentStatus `db:"consent_status"` // nil — ответа ещё нет
	RespondedAt   *time.Time     `db:"responded_at"`
	ReminderSent  bool           `db:"reminder_sent"`
	CreatedAt     time.Time      `db:"created_at"`
}

// Consent — статус согласия с учётом отсутствия ответа.
func (f *HealthCheckForm) Consent() ConsentStatus {
	if f.ConsentStatus == nil {
		return ConsentPending
	}
	return *f.ConsentStatus
}

// FormRecipient — адресат рассылки: форма без sent_at плюс данные
// ученика, нужные для рендера сообщения.
type FormRecipient struct {
	FormID       int64
	StudentID    int64
	StudentName  string
	ParentChatID int64
}

// ReminderForm — подтверждённая форма кампании, стартующей в ближайшие
// сутки; адресат напоминания.
type ReminderForm struct {
	FormID       int64
	StudentName  string
	ParentChatID int64
	CampaignName string
	Location     string
	StartDate    time.Time
	TimeSlot     string
}
