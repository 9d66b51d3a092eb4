package models

import "time"

type Class struct {
	ID     int64
	Number int
	Letter string
	Name   string
}

// Student — запись реестра учеников. Ядро кампаний её только читает.
type Student struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ClassID      int64     `json:"class_id"`
	ClassName    string    `json:"class_name"`
	BirthDate    time.Time `json:"birth_date"`
	ParentChatID int64     `json:"-"` // телеграм-чат родителя; 0 — не привязан
	IsActive     bool      `json:"is_active"`
}

type ConsentStatus string

const (
	ConsentNoForm    ConsentStatus = "no_form"
	ConsentPending   ConsentStatus = "pending"
	ConsentConfirmed ConsentStatus = "confirmed"
	ConsentDeclined  ConsentStatus = "declined"
)

// EligibleStudent — производная запись: реестр + возраст на момент расчёта
// + статус согласия. Нигде не хранится, пересчитывается по запросу.
type EligibleStudent struct {
	Student   Student       `json:"student"`
	Age       int           `json:"age"`
	Consent   ConsentStatus `json:"consent"`
	FormID    *int64        `json:"form_id,omitempty"`
	FormSent  *time.Time    `json:"form_sent,omitempty"`
	Responded *time.Time    `json:"responded,omitempty"`
}
