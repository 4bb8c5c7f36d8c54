package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// DecodeAction converts one decoded JSON object into an Action. Classification
// is by the "action" field only. An object with a known tag but a missing or
// mistyped required field is rejected as a whole.
func DecodeAction(v map[string]any) (Action, error) {
	kind := tagOf(v)
	if err := kind.Validate(); err != nil {
		return nil, goerr.Wrap(ErrParse, "not an action", goerr.V("action", v["action"]))
	}

	d := &fieldDecoder{src: v}
	// time is optional at decode time; an unparseable value degrades at display
	timestamp := d.optionalString("time")

	var action Action
	switch kind {
	case ActionKindFood:
		action = FoodAction{
			Time:     timestamp,
			Name:     d.requireString("name"),
			Calories: d.requireNumber("calories"),
			Carbs:    d.requireNumber("carbs"),
			Sugar:    d.requireNumber("sugar"),
			Fats:     d.requireNumber("fats"),
			Protein:  d.requireNumber("protein"),
			Fiber:    d.requireNumber("fiber"),
		}
	case ActionKindMood:
		action = MoodAction{
			Time:      timestamp,
			Quote:     d.optionalString("quote"),
			Happiness: d.requireNumber("happiness"),
			Sadness:   d.requireNumber("sadness"),
			Anger:     d.requireNumber("anger"),
			Stress:    d.requireNumber("stress"),
		}
	case ActionKindPurchase:
		action = PurchaseAction{
			Time:  timestamp,
			Name:  d.requireString("name"),
			Price: d.optionalNumber("price"),
		}
	}

	if d.err != nil {
		return nil, d.err
	}
	return action, nil
}

// fieldDecoder records the first field error and returns zero values after it
type fieldDecoder struct {
	src map[string]any
	err error
}

func (d *fieldDecoder) fail(key, reason string) {
	if d.err == nil {
		d.err = goerr.Wrap(ErrParse, reason, goerr.V("field", key), goerr.V("action", d.src["action"]))
	}
}

func (d *fieldDecoder) requireString(key string) string {
	raw, ok := d.src[key]
	if !ok || raw == nil {
		d.fail(key, "required field is missing")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		d.fail(key, "field is not a string")
		return ""
	}
	return s
}

func (d *fieldDecoder) optionalString(key string) string {
	s, _ := d.src[key].(string)
	return s
}

func (d *fieldDecoder) requireNumber(key string) float64 {
	raw, ok := d.src[key]
	if !ok || raw == nil {
		d.fail(key, "required field is missing")
		return 0
	}
	n, ok := raw.(float64)
	if !ok {
		d.fail(key, "field is not a number")
		return 0
	}
	return n
}

func (d *fieldDecoder) optionalNumber(key string) *float64 {
	raw, ok := d.src[key]
	if !ok || raw == nil {
		return nil
	}
	n, ok := raw.(float64)
	if !ok {
		d.fail(key, "field is not a number")
		return nil
	}
	return &n
}
