package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCaseID = errors.New("invalid case id")

	// ErrRulingUnavailable means the case has no decision or the decision
	// does not name a winning party.
	ErrRulingUnavailable = errors.New("ruling unavailable")
)

// CaseID locates one case in the Oyez data set.
type CaseID struct {
	Term   string `json:"term" yaml:"term"`
	Docket string `json:"docket" yaml:"docket"`
}

func (id CaseID) String() string {
	return id.Term + "." + id.Docket
}

// ParseCaseID parses the "{term}.{docket}" form produced by String.
func ParseCaseID(s string) (CaseID, error) {
	term, docket, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || term == "" || docket == "" {
		return CaseID{}, fmt.Errorf("%w: %q", ErrInvalidCaseID, s)
	}
	return CaseID{Term: term, Docket: docket}, nil
}

// CaseSummary is the flattened, UI-ready projection of a case served by
// /cases_info.
type CaseSummary struct {
	CaseID   string   `json:"case_id"`
	Theme    string   `json:"theme"`
	Judges   []string `json:"judges"`
	CaseName string   `json:"case_name"`
	Parties  []string `json:"parties"`
	Question string   `json:"question"`
	Summary  string   `json:"summary"`
}

// Batch is the day's set of summaries as persisted by the daily cache.
type Batch struct {
	Date      string        `json:"date"`
	CasesInfo []CaseSummary `json:"cases_info"`
}

type Ruling struct {
	DecisionType string
	MajorityVote int
	MinorityVote int
	WinningParty string
}

type JudgeDecision struct {
	Judge       string `json:"judge"`
	Vote        string `json:"vote"`
	OpinionType string `json:"opinion_type,omitempty"`
}

type Verdict string

const (
	VerdictCorrect       Verdict = "correct"
	VerdictIncorrect     Verdict = "incorrect"
	VerdictIndeterminate Verdict = "indeterminate"
)

// AnswerResult is the response to a /check_answer request.
type AnswerResult struct {
	Correct    bool            `json:"correct"`
	Verdict    Verdict         `json:"verdict"`
	Decisions  []JudgeDecision `json:"decisions"`
	Conclusion string          `json:"conclusion"`
}
