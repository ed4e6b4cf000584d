package views

import (
	"context"
	"fmt"
	"sync"

	"feastfox/internal/client"
	"feastfox/internal/models"
)

type Field string

const (
	FieldMeal    Field = "meal"
	FieldCuisine Field = "cuisine"
	FieldReason  Field = "reason"
)

// Row is one line of the meals table, keyed by the meal id.
type Row struct {
	ID      string
	Meal    string
	Cuisine string
	Reason  string
}

type MealsState struct {
	Meals   []models.Meal
	Loading bool
	Stale   bool
	LoadErr error

	FormOpen bool
	// Editing is nil when the form creates a new meal.
	Editing    *models.Meal
	Form       models.MealCreate
	Submitting bool
	// FormError holds the last failed submit; the form stays open with it.
	FormError error
	// ActionError holds the last failed delete.
	ActionError error
}

// MealsView lists the meals and drives the create/edit form.
type MealsView struct {
	provider client.Provider
	list     *Query[[]models.Meal]
	notify   func()
	onBack   func()

	mu         sync.Mutex
	formOpen   bool
	editing    *models.Meal
	form       models.MealCreate
	submitting bool
	formErr    error
	actionErr  error
	inflight   sync.WaitGroup
}

func NewMealsView(p client.Provider, notify func(), onBack func()) *MealsView {
	if notify == nil {
		notify = func() {}
	}
	if onBack == nil {
		onBack = func() {}
	}
	return &MealsView{
		provider: p,
		list:     NewQuery(p.ListMeals, notify),
		notify:   notify,
		onBack:   onBack,
	}
}

// Load fetches the full list.
func (v *MealsView) Load(ctx context.Context) {
	v.list.Fetch(ctx)
}

// Add opens an empty form for a new meal.
func (v *MealsView) Add() {
	v.mu.Lock()
	v.form = models.MealCreate{}
	v.editing = nil
	v.formErr = nil
	v.formOpen = true
	v.mu.Unlock()
	v.notify()
}

// Edit opens the form filled with meal's fields.
func (v *MealsView) Edit(meal models.Meal) {
	v.mu.Lock()
	m := meal
	v.editing = &m
	v.form = meal.Fields()
	v.formErr = nil
	v.formOpen = true
	v.mu.Unlock()
	v.notify()
}

// EditByID looks the meal up in the loaded list and opens it for editing.
func (v *MealsView) EditByID(id string) error {
	for _, m := range v.list.State().Data {
		if m.ID == id {
			v.Edit(m)
			return nil
		}
	}
	return fmt.Errorf("meal %s: %w", id, models.ErrMealNotFound)
}

func (v *MealsView) SetField(f Field, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.formOpen {
		return fmt.Errorf("form is not open")
	}
	switch f {
	case FieldMeal:
		v.form.Meal = value
	case FieldCuisine:
		v.form.Cuisine = value
	case FieldReason:
		v.form.Reason = value
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// Submit updates the meal being edited, or creates a new one. On success the
// form closes and the list is re-fetched; on failure the form stays open and
// the error is kept in FormError. It reports whether a write was started.
func (v *MealsView) Submit(ctx context.Context) bool {
	v.mu.Lock()
	if !v.formOpen || v.submitting {
		v.mu.Unlock()
		return false
	}
	v.submitting = true
	v.formErr = nil
	form := v.form
	var editingID string
	if v.editing != nil {
		editingID = v.editing.ID
	}
	v.inflight.Add(1)
	v.mu.Unlock()
	v.notify()

	go func() {
		defer v.inflight.Done()

		var err error
		if editingID != "" {
			_, err = v.provider.UpdateMeal(ctx, editingID, form)
		} else {
			_, err = v.provider.CreateMeal(ctx, form)
		}

		v.mu.Lock()
		v.submitting = false
		if err != nil {
			v.formErr = err
		} else {
			v.formOpen = false
			v.form = models.MealCreate{}
			v.editing = nil
		}
		v.mu.Unlock()

		if err == nil {
			v.list.Invalidate(ctx)
		}
		v.notify()
	}()
	return true
}

// Delete removes the meal without asking for confirmation.
func (v *MealsView) Delete(ctx context.Context, id string) {
	v.mu.Lock()
	v.actionErr = nil
	v.inflight.Add(1)
	v.mu.Unlock()

	go func() {
		defer v.inflight.Done()

		err := v.provider.DeleteMeal(ctx, id)
		v.mu.Lock()
		v.actionErr = err
		v.mu.Unlock()

		if err == nil {
			v.list.Invalidate(ctx)
		}
		v.notify()
	}()
}

// Cancel closes the form and drops the edits.
func (v *MealsView) Cancel() {
	v.mu.Lock()
	v.formOpen = false
	v.form = models.MealCreate{}
	v.editing = nil
	v.formErr = nil
	v.mu.Unlock()
	v.notify()
}

func (v *MealsView) Back() {
	v.onBack()
}

// Watch re-fetches the list whenever another client reports a change.
func (v *MealsView) Watch(ctx context.Context, events <-chan models.ChangeEvent) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Kind == models.KindMealsChanged {
					v.list.Invalidate(ctx)
				}
			}
		}
	}()
}

func (v *MealsView) Rows() []Row {
	meals := v.list.State().Data
	rows := make([]Row, 0, len(meals))
	for _, m := range meals {
		rows = append(rows, Row{ID: m.ID, Meal: m.Meal, Cuisine: m.Cuisine, Reason: m.Reason})
	}
	return rows
}

func (v *MealsView) State() MealsState {
	qs := v.list.State()

	v.mu.Lock()
	defer v.mu.Unlock()

	st := MealsState{
		Meals:       qs.Data,
		Loading:     qs.Loading,
		Stale:       qs.Stale,
		LoadErr:     qs.Err,
		FormOpen:    v.formOpen,
		Form:        v.form,
		Submitting:  v.submitting,
		FormError:   v.formErr,
		ActionError: v.actionErr,
	}
	if v.editing != nil {
		e := *v.editing
		st.Editing = &e
	}
	return st
}

// Wait blocks until pending writes and the fetches they triggered resolve.
func (v *MealsView) Wait() {
	v.inflight.Wait()
	v.list.Wait()
}
