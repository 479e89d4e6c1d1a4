package quiz

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/JustJay7/courtdle-api/internal/models"
	"gopkg.in/yaml.v3"
)

const DefaultTheme = "Free Speech"

// DefaultCases is the stand-in selection served until theme-based selection
// exists.
var DefaultCases = []models.CaseID{
	{Term: "1900-1940", Docket: "249us47"},
	{Term: "1900-1940", Docket: "274us357"},
	{Term: "1940-1955", Docket: "337us1"},
	{Term: "1940-1955", Docket: "341us494"},
	{Term: "1968", Docket: "492"},
}

// Selection is an ordered list of cases sharing a theme.
type Selection struct {
	Theme string          `yaml:"theme"`
	Cases []models.CaseID `yaml:"cases"`
}

// CaseSelector decides which cases make up the day's quiz.
type CaseSelector interface {
	Select(ctx context.Context) (Selection, error)
}

// FixedSelector always returns the same selection.
type FixedSelector struct {
	Selection Selection
}

// DefaultSelector serves DefaultCases under DefaultTheme.
func DefaultSelector() FixedSelector {
	return FixedSelector{Selection: Selection{Theme: DefaultTheme, Cases: DefaultCases}}
}

func (s FixedSelector) Select(ctx context.Context) (Selection, error) {
	cases := make([]models.CaseID, len(s.Selection.Cases))
	copy(cases, s.Selection.Cases)
	return Selection{Theme: s.Selection.Theme, Cases: cases}, nil
}

// FileSelector reads the selection from a YAML file on every call, so edits
// take effect at the next cache miss without a restart.
//
//	theme: Free Speech
//	cases:
//	  - term: "1900-1940"
//	    docket: 249us47
type FileSelector struct {
	Path string
}

func (s FileSelector) Select(ctx context.Context) (Selection, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Selection{}, fmt.Errorf("read cases file: %w", err)
	}

	var sel Selection
	if err := yaml.Unmarshal(data, &sel); err != nil {
		return Selection{}, fmt.Errorf("parse cases file %s: %w", s.Path, err)
	}
	if sel.Theme == "" {
		sel.Theme = DefaultTheme
	}
	if err := sel.validate(); err != nil {
		return Selection{}, fmt.Errorf("cases file %s: %w", s.Path, err)
	}
	return sel, nil
}

func (s Selection) validate() error {
	if len(s.Cases) == 0 {
		return errors.New("no cases selected")
	}
	for i, id := range s.Cases {
		if id.Term == "" || id.Docket == "" {
			return fmt.Errorf("case %d: %w: term and docket are required", i, models.ErrInvalidCaseID)
		}
	}
	return nil
}
