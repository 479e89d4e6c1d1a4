package quiz

import (
	"context"

	"github.com/JustJay7/courtdle-api/internal/models"
)

// CaseRecord is one case's data. Every accessor may fail on its own.
type CaseRecord interface {
	BasicInfo(ctx context.Context) (name string, parties []string, err error)
	Facts(ctx context.Context) (string, error)
	LegalQuestion(ctx context.Context) (string, error)
	Ruling(ctx context.Context) (models.Ruling, error)
	Judges(ctx context.Context) ([]string, error)
	JudgeDecisions(ctx context.Context) ([]models.JudgeDecision, error)
	Conclusion(ctx context.Context) (string, error)
}

// CaseSource hands out records by identifier.
type CaseSource interface {
	Case(id models.CaseID) CaseRecord
}

// SourceFunc adapts a function to CaseSource.
type SourceFunc func(id models.CaseID) CaseRecord

func (f SourceFunc) Case(id models.CaseID) CaseRecord {
	return f(id)
}
