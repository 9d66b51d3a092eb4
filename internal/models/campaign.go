package models

import "time"

type CampaignStatus string

const (
	CampaignPending    CampaignStatus = "pending"
	CampaignApproved   CampaignStatus = "approved"
	CampaignInProgress CampaignStatus = "in_progress"
	CampaignCompleted  CampaignStatus = "completed"
	CampaignRejected   CampaignStatus = "rejected"
	CampaignCanceled   CampaignStatus = "canceled"
)

// Terminal — из терминального статуса переходов нет.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignCompleted || s == CampaignRejected || s == CampaignCanceled
}

type Campaign struct {
	ID            int64          `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Description   string         `db:"description" json:"description,omitempty"`
	Location      string         `db:"location" json:"location"`
	StartDate     time.Time      `db:"start_date" json:"start_date"`
	EndDate       time.Time      `db:"end_date" json:"end_date"`
	MinAge        *int           `db:"min_age" json:"min_age,omitempty"`
	MaxAge        *int           `db:"max_age" json:"max_age,omitempty"`
	TargetClasses []string       `db:"target_classes" json:"target_classes,omitempty"` // пусто = вся школа
	Categories    []string       `db:"categories" json:"categories"`
	Status        CampaignStatus `db:"status" json:"status"`
	TimeSlot      *string        `db:"time_slot" json:"time_slot,omitempty"`
	TargetCount   *int           `db:"target_count" json:"target_count,omitempty"`
	ScheduleNotes *string        `db:"schedule_notes" json:"schedule_notes,omitempty"`
	CreatedBy     string         `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}

// HasAgeRange — задан ли возрастной критерий (хотя бы одна граница).
func (c *Campaign) HasAgeRange() bool {
	return c.MinAge != nil || c.MaxAge != nil
}

// CampaignStats счётчики по формам и результатам для карточки кампании.
type CampaignStats struct {
	FormsTotal     int `json:"forms_total"`
	FormsSent      int `json:"forms_sent"`
	FormsConfirmed int `json:"forms_confirmed"`
	FormsDeclined  int `json:"forms_declined"`
	ResultsTotal   int `json:"results_total"`
}
