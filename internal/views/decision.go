package views

import (
	"context"

	"feastfox/internal/client"
	"feastfox/internal/models"
)

type DecisionState struct {
	// Decision is nil until the first fetch succeeds.
	Decision     *models.DinnerDecision
	Loading      bool
	Err          error
	RefreshToken uint64
}

// DecisionView shows one random suggestion and lets the user ask for another.
type DecisionView struct {
	query       *Query[models.DinnerDecision]
	onEditMeals func()
}

func NewDecisionView(p client.Provider, notify func(), onEditMeals func()) *DecisionView {
	if onEditMeals == nil {
		onEditMeals = func() {}
	}
	return &DecisionView{
		query:       NewQuery(p.FetchDecision, notify),
		onEditMeals: onEditMeals,
	}
}

// Mount fetches the first suggestion.
func (v *DecisionView) Mount(ctx context.Context) {
	v.query.Fetch(ctx)
}

// NewSuggestion bumps the refresh token and fetches again. It does nothing
// while a fetch is in flight and reports whether a fetch was started.
func (v *DecisionView) NewSuggestion(ctx context.Context) bool {
	_, started := v.query.FetchIfIdle(ctx)
	return started
}

func (v *DecisionView) EditMeals() {
	v.onEditMeals()
}

func (v *DecisionView) State() DecisionState {
	qs := v.query.State()
	st := DecisionState{
		Loading:      qs.Loading,
		Err:          qs.Err,
		RefreshToken: qs.Generation,
	}
	if qs.Fetched {
		d := qs.Data
		st.Decision = &d
	}
	return st
}

func (v *DecisionView) Wait() {
	v.query.Wait()
}
