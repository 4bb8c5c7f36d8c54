package render

import (
	"strconv"
	"time"

	"github.com/m-mizutani/journal/pkg/model"
)

// Color is the identity token of a card or a score bar
type Color string

const (
	ColorSuccess Color = "success"
	ColorInfo    Color = "info"
	ColorWarning Color = "warning"
	ColorError   Color = "error"
	ColorPrimary Color = "primary"
)

// UnknownTime is shown when an action timestamp cannot be parsed
const UnknownTime = "unknown time"

// Field is one labelled value on a card
type Field struct {
	Label string
	Value string
}

// Bar is a mood score prepared for a progress indicator. Percent is always
// within [0, 100]; Value shows the score as given.
type Bar struct {
	Label   string
	Value   string
	Percent float64
	Color   Color
}

// Card is the display descriptor of one action
type Card struct {
	Kind   model.ActionKind
	Label  string
	Color  Color
	Title  string
	Quote  string
	Fields []Field
	Bars   []Bar
	Time   string
}

// Renderer maps actions to cards. It holds formatting preferences only.
type Renderer struct {
	currency string
	location *time.Location
}

// Option is a functional option for Renderer
type Option func(*Renderer)

// WithCurrency sets the symbol appended to purchase prices
func WithCurrency(symbol string) Option {
	return func(r *Renderer) {
		r.currency = symbol
	}
}

// WithLocation sets the time zone timestamps are displayed in
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		r.location = loc
	}
}

// New creates a Renderer
func New(opts ...Option) *Renderer {
	r := &Renderer{
		currency: "₾",
		location: time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render builds the card for one action
func (r *Renderer) Render(a model.Action) Card {
	if model.IsNil(a) {
		return Card{}
	}
	card := model.Match(a, r.food, r.mood, r.purchase)
	card.Kind = a.Kind()
	card.Time = r.formatTime(a)
	return card
}

// RenderAll builds cards in the order of actions
func (r *Renderer) RenderAll(actions []model.Action) []Card {
	cards := make([]Card, 0, len(actions))
	for _, a := range actions {
		if model.IsNil(a) {
			continue
		}
		cards = append(cards, r.Render(a))
	}
	return cards
}

func (r *Renderer) food(a model.FoodAction) Card {
	return Card{
		Label: "Food",
		Color: ColorSuccess,
		Title: a.Name,
		Fields: []Field{
			{Label: "Calories", Value: formatNumber(a.Calories) + " kcal"},
			{Label: "Carbs", Value: formatNumber(a.Carbs) + "g"},
			{Label: "Sugar", Value: formatNumber(a.Sugar) + "g"},
			{Label: "Fats", Value: formatNumber(a.Fats) + "g"},
			{Label: "Protein", Value: formatNumber(a.Protein) + "g"},
			{Label: "Fiber", Value: formatNumber(a.Fiber) + "g"},
		},
	}
}

func (r *Renderer) mood(a model.MoodAction) Card {
	return Card{
		Label: "Mood",
		Color: ColorInfo,
		Title: "Mood Analysis",
		Quote: a.Quote,
		Bars: []Bar{
			scoreBar("Happiness", a.Happiness, ColorSuccess),
			scoreBar("Sadness", a.Sadness, ColorPrimary),
			scoreBar("Anger", a.Anger, ColorError),
			scoreBar("Stress", a.Stress, ColorWarning),
		},
	}
}

func (r *Renderer) purchase(a model.PurchaseAction) Card {
	card := Card{
		Label: "Purchase",
		Color: ColorWarning,
		Title: a.Name,
	}
	if a.Price != nil {
		price := formatNumber(*a.Price)
		if r.currency != "" {
			price += " " + r.currency
		}
		card.Fields = []Field{{Label: "Price", Value: price}}
	}
	return card
}

func (r *Renderer) formatTime(a model.Action) string {
	t, ok := model.ParseTime(a)
	if !ok {
		return UnknownTime
	}
	return t.In(r.location).Format("2006-01-02 15:04:05")
}

func scoreBar(label string, score float64, color Color) Bar {
	return Bar{
		Label:   label,
		Value:   formatNumber(score) + "/10",
		Percent: Percent(score),
		Color:   color,
	}
}

// Percent converts a 0-10 score into a progress value clamped to [0, 100]
func Percent(score float64) float64 {
	p := score * 10
	switch {
	case p != p: // NaN
		return 0
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
