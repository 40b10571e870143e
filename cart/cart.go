// Package cart holds the customer's cart as explicit state changed only through actions.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"burger-ordering-api/extract"
	"burger-ordering-api/models"

	"github.com/shopspring/decimal"
)

type Step string

const (
	StepMenu    Step = "menu"
	StepDetails Step = "details"
	StepSummary Step = "summary"
	StepDone    Step = "done"
)

func (s Step) Valid() bool {
	switch s {
	case StepMenu, StepDetails, StepSummary, StepDone:
		return true
	}
	return false
}

var (
	ErrUnknownAction = errors.New("unknown cart action")
	ErrLineNotFound  = errors.New("cart line not found")
	ErrInvalidValue  = errors.New("invalid cart value")
)

// Line is one product in the cart with its addon selections
type Line struct {
	Key            string              `json:"key"`
	ProductID      uint                `json:"product_id"`
	Name           string              `json:"name"`
	Category       string              `json:"category"`
	UnitPrice      decimal.Decimal     `json:"unit_price"`
	Quantity       int                 `json:"quantity"`
	Addons         []extract.Selection `json:"addons"`
	Attributes     []extract.Attribute `json:"attributes"`
	ExtraMeatCount int                 `json:"extra_meat_count"`
	Note           string              `json:"note"`
}

type Cart struct {
	ID        string                   `json:"id"`
	Lines     []Line                   `json:"lines"`
	Option    models.FulfillmentOption `json:"option"`
	Step      Step                     `json:"step"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func New(id string) Cart {
	return Cart{ID: id, Lines: []Line{}, Option: models.OptionLocal, Step: StepMenu}
}

// Action is one of the cart action types below
type Action interface {
	apply(c *Cart) error
}

type AddLine struct {
	Line Line `json:"line"`
}

type RemoveLine struct {
	Key string `json:"key"`
}

type SetQuantity struct {
	Key      string `json:"key"`
	Quantity int    `json:"quantity"`
}

// ToggleAddon adds the addon with quantity 1, or removes it when already selected
type ToggleAddon struct {
	Key   string `json:"key"`
	Addon string `json:"addon"`
}

type SetExtraMeat struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type SetOption struct {
	Option models.FulfillmentOption `json:"option"`
}

type SetStep struct {
	Step Step `json:"step"`
}

type Reset struct{}

// Reduce returns the cart after applying a. The input cart is never modified.
func Reduce(c Cart, a Action) (Cart, error) {
	next := c.clone()
	if err := a.apply(&next); err != nil {
		return c, err
	}
	return next, nil
}

func (c Cart) clone() Cart {
	out := c
	out.Lines = make([]Line, len(c.Lines))
	for i, l := range c.Lines {
		l.Addons = append([]extract.Selection(nil), l.Addons...)
		l.Attributes = append([]extract.Attribute(nil), l.Attributes...)
		out.Lines[i] = l
	}
	return out
}

func (c *Cart) line(key string) (*Line, error) {
	for i := range c.Lines {
		if c.Lines[i].Key == key {
			return &c.Lines[i], nil
		}
	}
	return nil, ErrLineNotFound
}

func (a AddLine) apply(c *Cart) error {
	l := a.Line
	if l.Key == "" || strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: line needs a key and a name", ErrInvalidValue)
	}
	if _, err := c.line(l.Key); err == nil {
		return fmt.Errorf("%w: duplicate line key %q", ErrInvalidValue, l.Key)
	}
	if l.Quantity < 1 {
		l.Quantity = 1
	}
	if l.ExtraMeatCount < 0 {
		l.ExtraMeatCount = 0
	}
	if l.UnitPrice.IsNegative() {
		l.UnitPrice = decimal.Zero
	}
	l.Addons = extract.Merge(l.Addons)
	if l.Attributes == nil {
		l.Attributes = []extract.Attribute{}
	}
	c.Lines = append(c.Lines, l)
	return nil
}

func (a RemoveLine) apply(c *Cart) error {
	for i := range c.Lines {
		if c.Lines[i].Key == a.Key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// SetQuantity below 1 removes the line
func (a SetQuantity) apply(c *Cart) error {
	if a.Quantity < 1 {
		return RemoveLine{Key: a.Key}.apply(c)
	}
	l, err := c.line(a.Key)
	if err != nil {
		return err
	}
	l.Quantity = a.Quantity
	return nil
}

func (a ToggleAddon) apply(c *Cart) error {
	l, err := c.line(a.Key)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(a.Addon)
	if name == "" || extract.IsBlocked(name) {
		return fmt.Errorf("%w: addon %q", ErrInvalidValue, a.Addon)
	}
	folded := extract.Fold(name)
	for i, s := range l.Addons {
		if extract.Fold(s.Name) == folded {
			l.Addons = append(l.Addons[:i], l.Addons[i+1:]...)
			return nil
		}
	}
	l.Addons = append(l.Addons, extract.Selection{Name: name, Qty: 1})
	return nil
}

func (a SetExtraMeat) apply(c *Cart) error {
	if a.Count < 0 {
		return fmt.Errorf("%w: extra meat count %d", ErrInvalidValue, a.Count)
	}
	l, err := c.line(a.Key)
	if err != nil {
		return err
	}
	if a.Count > 0 && l.Category != string(models.CategoryBurger) {
		return fmt.Errorf("%w: extra meat only applies to burgers", ErrInvalidValue)
	}
	l.ExtraMeatCount = a.Count
	return nil
}

func (a SetOption) apply(c *Cart) error {
	if !a.Option.Valid() {
		return fmt.Errorf("%w: option %q", ErrInvalidValue, a.Option)
	}
	c.Option = a.Option
	return nil
}

func (a SetStep) apply(c *Cart) error {
	if !a.Step.Valid() {
		return fmt.Errorf("%w: step %q", ErrInvalidValue, a.Step)
	}
	c.Step = a.Step
	return nil
}

func (Reset) apply(c *Cart) error {
	*c = New(c.ID)
	return nil
}

// DecodeAction reads {"type": "...", ...fields} into the matching action
func DecodeAction(data []byte) (Action, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var a Action
	switch head.Type {
	case "add_line":
		var v AddLine
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		a = v
	case "remove_line":
		var v RemoveLine
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		a = v
	case "set_quantity":
		var v SetQuantity
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		a = v
	case "toggle_addon":
		var v ToggleAddon
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		a = v
	case "set_extra_meat":
		var v SetExtraMeat
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		a = v
	case "set_option":
		var v SetOption
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		a = v
	case "set_step":
		var v SetStep
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		a = v
	case "reset":
		a = Reset{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, head.Type)
	}
	return a, nil
}
