// Package orderview narrows and arranges orders for dashboard listings.
package orderview

import (
	"fmt"

	"github.com/campuswash/laundry/internal/entity"
)

// Tag is a dashboard filter checkbox.
type Tag string

const (
	TagAll       Tag = "all"
	TagAccepted  Tag = "accepted"
	TagPickedUp  Tag = "pickedUp"
	TagDelivered Tag = "delivered"
	TagPaid      Tag = "paid"
)

// Tags lists every tag in checkbox order.
var Tags = []Tag{TagAll, TagAccepted, TagPickedUp, TagDelivered, TagPaid}

var predicates = map[Tag]func(*entity.Order) bool{
	TagAccepted:  func(o *entity.Order) bool { return o.AcceptedStatus },
	TagPickedUp:  func(o *entity.Order) bool { return o.PickUpStatus },
	TagDelivered: func(o *entity.Order) bool { return o.DeliveredStatus },
	TagPaid:      func(o *entity.Order) bool { return o.Paid },
}

// ParseTag validates a raw tag.
func ParseTag(raw string) (Tag, error) {
	tag := Tag(raw)
	if tag == TagAll {
		return tag, nil
	}
	if _, ok := predicates[tag]; ok {
		return tag, nil
	}
	return "", fmt.Errorf("unknown filter %q", raw)
}

// FilterSet is the active selection. It is never empty: no selection means {all}.
// The zero value behaves as {all}.
type FilterSet struct {
	tags []Tag
}

// NewFilterSet returns {all}.
func NewFilterSet() FilterSet {
	return FilterSet{tags: []Tag{TagAll}}
}

// Toggle returns the selection after clicking tag. Selecting all clears everything
// else; any other tag drops all and flips itself; an empty result resets to {all}.
func (s FilterSet) Toggle(tag Tag) FilterSet {
	if tag == TagAll {
		return NewFilterSet()
	}

	next := make([]Tag, 0, len(s.tags)+1)
	removed := false
	for _, t := range s.tags {
		switch {
		case t == TagAll:
		case t == tag:
			removed = true
		default:
			next = append(next, t)
		}
	}
	if !removed {
		next = append(next, tag)
	}
	if len(next) == 0 {
		return NewFilterSet()
	}
	return FilterSet{tags: next}
}

// Tags returns the active tags in selection order.
func (s FilterSet) Tags() []Tag {
	if len(s.tags) == 0 {
		return []Tag{TagAll}
	}
	out := make([]Tag, len(s.tags))
	copy(out, s.tags)
	return out
}

// Has reports whether tag is active.
func (s FilterSet) Has(tag Tag) bool {
	for _, t := range s.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// IsAll reports whether the selection is exactly {all}.
func (s FilterSet) IsAll() bool {
	return s.Has(TagAll)
}

// Match reports whether o satisfies every selected predicate.
func (s FilterSet) Match(o *entity.Order) bool {
	if s.IsAll() {
		return true
	}
	for _, tag := range s.tags {
		if pred, ok := predicates[tag]; ok && !pred(o) {
			return false
		}
	}
	return true
}

// Apply returns the visible orders, preserving input order.
func (s FilterSet) Apply(orders []*entity.Order) []*entity.Order {
	visible := make([]*entity.Order, 0, len(orders))
	for _, o := range orders {
		if o != nil && s.Match(o) {
			visible = append(visible, o)
		}
	}
	return visible
}

// FromClicks starts at {all} and toggles each raw tag in order.
func FromClicks(raw []string) (FilterSet, error) {
	set := NewFilterSet()
	for _, r := range raw {
		tag, err := ParseTag(r)
		if err != nil {
			return FilterSet{}, err
		}
		set = set.Toggle(tag)
	}
	return set, nil
}
