package quiz

import (
	"context"

	"github.com/JustJay7/courtdle-api/pkg/logger"
)

// Attempt runs fetch and returns its value, or fallback when it fails. The
// failure is logged and swallowed.
func Attempt[T any](ctx context.Context, log *logger.Logger, field string, fetch func(context.Context) (T, error), fallback T) T {
	value, err := fetch(ctx)
	if err != nil {
		log.Warn("Case field unavailable", "field", field, "error", err)
		return fallback
	}
	return value
}

type basicInfo struct {
	name    string
	parties []string
}

func fetchBasicInfo(rec CaseRecord) func(context.Context) (basicInfo, error) {
	return func(ctx context.Context) (basicInfo, error) {
		name, parties, err := rec.BasicInfo(ctx)
		if err != nil {
			return basicInfo{}, err
		}
		return basicInfo{name: name, parties: parties}, nil
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
