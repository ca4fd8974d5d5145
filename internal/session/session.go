// Package session keeps server-side scaling sessions: a snapshot of a base
// item or recipe ingredient list plus the working copy being rescaled.
package session

import (
	"errors"
	"time"

	"github.com/flavourheaven/costonomy/internal/scaling"
)

// Kind is what a session was opened on.
type Kind string

const (
	KindBaseItem Kind = "base_item"
	KindRecipe   Kind = "recipe"
)

var (
	// ErrNotFound is returned for an unknown session ID.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidRequest marks input the caller must fix.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrWrongKind is returned when an operation does not apply to the session's kind.
	ErrWrongKind = errors.New("operation not supported for this session")
)

// Session is one scaling workspace.
type Session struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	SubjectID int64     `json:"subjectId"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit,omitempty"`
	// UnitQuantity is the base item's own unit size, the basis of cost per unit.
	UnitQuantity float64 `json:"unitQuantity,omitempty"`

	// BaseReference is the reference quantity Original was captured at;
	// ReferenceQuantity is the one Current is scaled to.
	BaseReference     float64 `json:"baseReference"`
	ReferenceQuantity float64 `json:"referenceQuantity"`
	Multiplier        float64 `json:"multiplier"`

	Original []scaling.IngredientLine `json:"original"`
	Current  []scaling.IngredientLine `json:"current"`

	Guarded          []int64 `json:"guarded,omitempty"`
	ReferenceGuarded bool    `json:"referenceGuarded,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Line returns the current line for itemID.
func (s *Session) Line(itemID int64) (scaling.IngredientLine, bool) {
	for _, l := range s.Current {
		if l.ItemID == itemID {
			return l, true
		}
	}
	return scaling.IngredientLine{}, false
}

func (s *Session) clone() *Session {
	c := *s
	c.Original = scaling.Clone(s.Original)
	c.Current = scaling.Clone(s.Current)
	if s.Guarded != nil {
		c.Guarded = append([]int64(nil), s.Guarded...)
	}
	return &c
}

func (s *Session) apply(res scaling.Result) {
	s.Current = res.Lines
	s.Guarded = res.Guarded
	s.ReferenceGuarded = res.ReferenceGuarded
}
