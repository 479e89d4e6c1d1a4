package oyez

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/JustJay7/courtdle-api/internal/models"
)

// Document is the subset of an Oyez case payload the quiz uses.
type Document struct {
	ID           int        `json:"ID"`
	Name         string     `json:"name"`
	Term         string     `json:"term"`
	DocketNumber string     `json:"docket_number"`
	FirstParty   string     `json:"first_party"`
	SecondParty  string     `json:"second_party"`
	Facts        string     `json:"facts_of_the_case"`
	Question     string     `json:"question"`
	Conclusion   string     `json:"conclusion"`
	HeardBy      []Court    `json:"heard_by"`
	Decisions    []Decision `json:"decisions"`
}

type Court struct {
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

type Member struct {
	Name string `json:"name"`
}

type Decision struct {
	Description  string `json:"description"`
	DecisionType string `json:"decision_type"`
	MajorityVote int    `json:"majority_vote"`
	MinorityVote int    `json:"minority_vote"`
	WinningParty string `json:"winning_party"`
	Votes        []Vote `json:"votes"`
}

type Vote struct {
	Member      *Member `json:"member"`
	Vote        string  `json:"vote"`
	OpinionType string  `json:"opinion_type"`
}

// Case is one case record. Each accessor fails on its own when its field is
// missing, so callers can degrade field by field.
type Case struct {
	client *Client
	id     models.CaseID

	once sync.Once
	doc  *Document
	err  error
}

func (c *Case) load(ctx context.Context) (*Document, error) {
	c.once.Do(func() {
		c.doc, c.err = c.client.Fetch(ctx, c.id)
	})
	return c.doc, c.err
}

// BasicInfo returns the case name and the ordered party names.
func (c *Case) BasicInfo(ctx context.Context) (string, []string, error) {
	doc, err := c.load(ctx)
	if err != nil {
		return "", nil, err
	}
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		return "", nil, fmt.Errorf("%w: name of %s", ErrFieldUnavailable, c.id)
	}

	var parties []string
	for _, p := range []string{doc.FirstParty, doc.SecondParty} {
		if p = strings.TrimSpace(p); p != "" {
			parties = append(parties, p)
		}
	}
	return name, parties, nil
}

func (c *Case) Facts(ctx context.Context) (string, error) {
	doc, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	return c.textField("facts", doc.Facts)
}

func (c *Case) LegalQuestion(ctx context.Context) (string, error) {
	doc, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	return c.textField("question", doc.Question)
}

func (c *Case) Conclusion(ctx context.Context) (string, error) {
	doc, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	return c.textField("conclusion", doc.Conclusion)
}

// Judges lists the members of the first court that heard the case.
func (c *Case) Judges(ctx context.Context) ([]string, error) {
	doc, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(doc.HeardBy) == 0 || len(doc.HeardBy[0].Members) == 0 {
		return nil, fmt.Errorf("%w: judges of %s", ErrFieldUnavailable, c.id)
	}

	judges := make([]string, 0, len(doc.HeardBy[0].Members))
	for _, m := range doc.HeardBy[0].Members {
		if name := strings.TrimSpace(m.Name); name != "" {
			judges = append(judges, name)
		}
	}
	return judges, nil
}

// Ruling returns the first decision. A missing decision or winning party is
// reported as models.ErrRulingUnavailable.
func (c *Case) Ruling(ctx context.Context) (models.Ruling, error) {
	doc, err := c.load(ctx)
	if err != nil {
		return models.Ruling{}, err
	}
	if len(doc.Decisions) == 0 {
		return models.Ruling{}, fmt.Errorf("%w: %s has no decision", models.ErrRulingUnavailable, c.id)
	}

	d := doc.Decisions[0]
	winner := strings.TrimSpace(d.WinningParty)
	if winner == "" {
		return models.Ruling{}, fmt.Errorf("%w: %s has no winning party", models.ErrRulingUnavailable, c.id)
	}

	return models.Ruling{
		DecisionType: d.DecisionType,
		MajorityVote: d.MajorityVote,
		MinorityVote: d.MinorityVote,
		WinningParty: winner,
	}, nil
}

// JudgeDecisions lists each justice's vote in the first decision.
func (c *Case) JudgeDecisions(ctx context.Context) ([]models.JudgeDecision, error) {
	doc, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(doc.Decisions) == 0 || len(doc.Decisions[0].Votes) == 0 {
		return nil, fmt.Errorf("%w: votes of %s", ErrFieldUnavailable, c.id)
	}

	decisions := make([]models.JudgeDecision, 0, len(doc.Decisions[0].Votes))
	for _, v := range doc.Decisions[0].Votes {
		if v.Member == nil {
			continue
		}
		decisions = append(decisions, models.JudgeDecision{
			Judge:       v.Member.Name,
			Vote:        v.Vote,
			OpinionType: v.OpinionType,
		})
	}
	return decisions, nil
}

func (c *Case) textField(field, raw string) (string, error) {
	text := HTMLToText(raw)
	if text == "" {
		return "", fmt.Errorf("%w: %s of %s", ErrFieldUnavailable, field, c.id)
	}
	return text, nil
}
