package notify

import (
	"strings"
	"time"
)

// DefaultConsentTemplate — текст по умолчанию для рассылки форм
// согласия; оператор может передать свой.
const DefaultConsentTemplate = "Здравствуйте! В школе пройдёт «{campaign_name}» ({date}, {location}). " +
	"Просим подтвердить или отклонить согласие на осмотр ученика {student_name}."

// ReminderTemplate — напоминание за сутки до осмотра.
const ReminderTemplate = "Напоминание: завтра, {date}, осмотр «{campaign_name}» ({time_slot}, {location}). " +
	"Ученик: {student_name}."

type MessageData struct {
	StudentName  string
	CampaignName string
	Location     string
	TimeSlot     string
	StartDate    time.Time
}

// Render подставляет плейсхолдеры {student_name}, {campaign_name},
// {date}, {location}, {time_slot}.
func Render(template string, d MessageData) string {
	msg := template
	msg = replace(msg, "{student_name}", d.StudentName)
	msg = replace(msg, "{campaign_name}", d.CampaignName)
	msg = replace(msg, "{date}", d.StartDate.Format("02.01.2006"))
	msg = replace(msg, "{location}", d.Location)
	msg = replace(msg, "{time_slot}", d.TimeSlot)
	return msg
}

func replace(template, placeholder, value string) string {
	if value == "" {
		value = "—"
	}
	return strings.ReplaceAll(template, placeholder, value)
}
