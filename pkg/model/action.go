package model

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ActionKind is the discriminant carried in the "action" field
type ActionKind string

const (
	ActionKindFood     ActionKind = "food"
	ActionKindMood     ActionKind = "mood"
	ActionKindPurchase ActionKind = "buy"
)

// Validate checks if the kind is one of the known discriminants
func (k ActionKind) Validate() error {
	switch k {
	case ActionKindFood, ActionKindMood, ActionKindPurchase:
		return nil
	default:
		return goerr.New("unknown action kind", goerr.V("kind", k))
	}
}

// Action is a closed sum type over FoodAction, MoodAction and PurchaseAction.
// The unexported method keeps other packages from adding variants.
type Action interface {
	Kind() ActionKind
	RecordedAt() string
	isAction()
}

// FoodAction is a food log entry. Energy is kcal, the rest are grams.
type FoodAction struct {
	Time     string  `json:"time"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Sugar    float64 `json:"sugar"`
	Fats     float64 `json:"fats"`
	Protein  float64 `json:"protein"`
	Fiber    float64 `json:"fiber"`
}

// MoodAction holds mood scores on a nominal 0-10 scale. Scores are not clamped.
type MoodAction struct {
	Time      string  `json:"time"`
	Quote     string  `json:"quote"`
	Happiness float64 `json:"happiness"`
	Sadness   float64 `json:"sadness"`
	Anger     float64 `json:"anger"`
	Stress    float64 `json:"stress"`
}

// PurchaseAction is a purchase record. Price is nil when the model gave none.
type PurchaseAction struct {
	Time  string   `json:"time"`
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

func (FoodAction) Kind() ActionKind     { return ActionKindFood }
func (MoodAction) Kind() ActionKind     { return ActionKindMood }
func (PurchaseAction) Kind() ActionKind { return ActionKindPurchase }

func (a FoodAction) RecordedAt() string     { return a.Time }
func (a MoodAction) RecordedAt() string     { return a.Time }
func (a PurchaseAction) RecordedAt() string { return a.Time }

func (FoodAction) isAction()     {}
func (MoodAction) isAction()     {}
func (PurchaseAction) isAction() {}

// MarshalJSON writes the action with its discriminant
func (a FoodAction) MarshalJSON() ([]byte, error) {
	type alias FoodAction
	return json.Marshal(struct {
		Action ActionKind `json:"action"`
		alias
	}{ActionKindFood, alias(a)})
}

// MarshalJSON writes the action with its discriminant
func (a MoodAction) MarshalJSON() ([]byte, error) {
	type alias MoodAction
	return json.Marshal(struct {
		Action ActionKind `json:"action"`
		alias
	}{ActionKindMood, alias(a)})
}

// MarshalJSON writes the action with its discriminant
func (a PurchaseAction) MarshalJSON() ([]byte, error) {
	type alias PurchaseAction
	return json.Marshal(struct {
		Action ActionKind `json:"action"`
		alias
	}{ActionKindPurchase, alias(a)})
}

// IsFood reports whether v is a food action. v may be an Action or a decoded
// JSON object; objects are classified by their "action" field alone.
func IsFood(v any) bool { return tagOf(v) == ActionKindFood }

// IsMood reports whether v is a mood action
func IsMood(v any) bool { return tagOf(v) == ActionKindMood }

// IsPurchase reports whether v is a purchase ("buy") action
func IsPurchase(v any) bool { return tagOf(v) == ActionKindPurchase }

func tagOf(v any) ActionKind {
	switch x := v.(type) {
	case Action:
		return x.Kind()
	case map[string]any:
		s, ok := x["action"].(string)
		if !ok {
			return ""
		}
		return ActionKind(s)
	default:
		return ""
	}
}

// ParseTime parses the ISO-8601 timestamp of an action. The second return
// value is false when the timestamp is missing or malformed.
func ParseTime(a Action) (time.Time, bool) {
	s := a.RecordedAt()
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsNil reports whether a is nil or a nil pointer to a variant
func IsNil(a Action) bool {
	switch v := a.(type) {
	case nil:
		return true
	case *FoodAction:
		return v == nil
	case *MoodAction:
		return v == nil
	case *PurchaseAction:
		return v == nil
	}
	return false
}

// Match calls the handler for the variant of a. Every call site supplies all
// three handlers, so adding a variant breaks the build until each is updated.
// A nil action yields the zero value of T.
func Match[T any](a Action, food func(FoodAction) T, mood func(MoodAction) T, purchase func(PurchaseAction) T) T {
	if IsNil(a) {
		var zero T
		return zero
	}

	switch v := a.(type) {
	case FoodAction:
		return food(v)
	case *FoodAction:
		return food(*v)
	case MoodAction:
		return mood(v)
	case *MoodAction:
		return mood(*v)
	case PurchaseAction:
		return purchase(v)
	case *PurchaseAction:
		return purchase(*v)
	}
	panic("unreachable: unknown action variant")
}
