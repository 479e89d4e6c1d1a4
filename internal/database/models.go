package database

import (
	"time"

	"github.com/JustJay7/courtdle-api/internal/models"
	"gorm.io/gorm"
)

// AnswerLog records one /check_answer request.
type AnswerLog struct {
	gorm.Model
	CaseID       string    `json:"case_id" gorm:"index"`
	UserChoice   string    `json:"user_choice"`
	Verdict      string    `json:"verdict"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message"`
	QueryTime    time.Time `json:"query_time"`
	IPAddress    string    `json:"ip_address"`
}

// DailyBatch is the persisted form of a day's case summaries.
type DailyBatch struct {
	gorm.Model
	Date      string               `json:"date" gorm:"uniqueIndex;size:10"`
	CasesInfo []models.CaseSummary `json:"cases_info" gorm:"type:text;serializer:json"`
}

func (AnswerLog) TableName() string {
	return "answer_logs"
}

func (DailyBatch) TableName() string {
	return "daily_batches"
}
