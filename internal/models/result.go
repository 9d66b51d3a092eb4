package models

import "time"

type ResultStatus string

const (
	ResultNormal         ResultStatus = "normal"
	ResultAbnormal       ResultStatus = "abnormal"
	ResultNeedsFollowup  ResultStatus = "needs_followup"
	ResultNeedsTreatment ResultStatus = "needs_treatment"
)

// Медицинские категории осмотра.
const (
	CategoryVision      = "vision"
	CategoryHearing     = "hearing"
	CategoryOral        = "oral"
	CategorySkin        = "skin"
	CategoryRespiratory = "respiratory"
)

// CategoryMeasurement — сырые замеры по одной категории, как их
// прислал кабинет осмотра. Какие поля значимы — зависит от категории.
type CategoryMeasurement struct {
	IsAbnormal     bool    `json:"is_abnormal"`
	Treatment      string  `json:"treatment"`
	Notes          string  `json:"notes"`
	VisionLeft     float64 `json:"vision_left"`
	VisionRight    float64 `json:"vision_right"`
	NeedsLenses    bool    `json:"needs_lenses"`
	HearingLeftDB  float64 `json:"hearing_left_db"`
	HearingRightDB float64 `json:"hearing_right_db"`
}

// Empty — в замере нет ни одного содержательного значения.
func (m CategoryMeasurement) Empty() bool {
	return !m.IsAbnormal && !m.NeedsLenses &&
		m.Treatment == "" && m.Notes == "" &&
		m.VisionLeft == 0 && m.VisionRight == 0 &&
		m.HearingLeftDB == 0 && m.HearingRightDB == 0
}

type CategoryResult struct {
	ID         int64        `db:"id" json:"id"`
	ResultID   int64        `db:"result_id" json:"-"`
	Category   string       `db:"category" json:"category"`
	Status     ResultStatus `db:"status" json:"status"`
	Notes      string       `db:"notes" json:"notes,omitempty"`
	ExaminedAt time.Time    `db:"examined_at" json:"examined_at"`
}

// ResultRecord — итог осмотра одного ученика в рамках кампании.
// Создаётся ровно один раз на пару (кампания, ученик).
type ResultRecord struct {
	ID         int64            `db:"id" json:"id"`
	CampaignID int64            `db:"campaign_id" json:"campaign_id"`
	StudentID  int64            `db:"student_id" json:"student_id"`
	Height     *float64         `db:"height" json:"height,omitempty"`
	Weight     *float64         `db:"weight" json:"weight,omitempty"`
	Examiner   string           `db:"examiner" json:"examiner"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	Items      []CategoryResult `db:"-" json:"items"` // по одной на запрошенную категорию
}
