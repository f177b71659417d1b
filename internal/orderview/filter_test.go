package orderview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswash/laundry/internal/entity"
)

func TestFilterSet_Toggle(t *testing.T) {
	tests := []struct {
		name   string
		clicks []Tag
		want   []Tag
	}{
		{name: "initial", want: []Tag{TagAll}},
		{name: "select one", clicks: []Tag{TagAccepted}, want: []Tag{TagAccepted}},
		{name: "deselect last resets to all", clicks: []Tag{TagAccepted, TagAccepted}, want: []Tag{TagAll}},
		{name: "select two", clicks: []Tag{TagAccepted, TagPaid}, want: []Tag{TagAccepted, TagPaid}},
		{name: "deselect one of two", clicks: []Tag{TagAccepted, TagPaid, TagAccepted}, want: []Tag{TagPaid}},
		{name: "all is exclusive", clicks: []Tag{TagAccepted, TagPaid, TagAll}, want: []Tag{TagAll}},
		{name: "all twice stays all", clicks: []Tag{TagAll, TagAll}, want: []Tag{TagAll}},
		{name: "selecting after all drops all", clicks: []Tag{TagAll, TagDelivered}, want: []Tag{TagDelivered}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewFilterSet()
			for _, c := range tt.clicks {
				set = set.Toggle(c)
			}
			assert.Equal(t, tt.want, set.Tags())
		})
	}
}

func TestFilterSet_ToggleRoundTrip(t *testing.T) {
	start := NewFilterSet().Toggle(TagPickedUp).Toggle(TagDelivered)
	for _, tag := range []Tag{TagAccepted, TagPickedUp, TagDelivered, TagPaid} {
		got := start.Toggle(tag).Toggle(tag)
		assert.ElementsMatch(t, start.Tags(), got.Tags(), string(tag))
	}
}

func TestFilterSet_ToggleAllAlwaysYieldsAll(t *testing.T) {
	starts := []FilterSet{
		{},
		NewFilterSet(),
		NewFilterSet().Toggle(TagPaid),
		NewFilterSet().Toggle(TagAccepted).Toggle(TagPickedUp).Toggle(TagDelivered).Toggle(TagPaid),
	}
	for _, s := range starts {
		assert.Equal(t, []Tag{TagAll}, s.Toggle(TagAll).Tags())
	}
}

func TestFilterSet_ZeroValueIsAll(t *testing.T) {
	var s FilterSet
	assert.True(t, s.IsAll())
	assert.True(t, s.Match(&entity.Order{}))
	assert.Equal(t, []Tag{TagPaid}, s.Toggle(TagPaid).Tags())
}

func TestFilterSet_Apply(t *testing.T) {
	acceptedUnpaid := &entity.Order{AcceptedStatus: true}
	acceptedPaid := &entity.Order{AcceptedStatus: true, Paid: true}
	fresh := &entity.Order{}
	delivered := &entity.Order{AcceptedStatus: true, PickUpStatus: true, DeliveredStatus: true, Paid: true}
	orders := []*entity.Order{acceptedUnpaid, acceptedPaid, fresh, delivered, nil}

	tests := []struct {
		name string
		set  FilterSet
		want []*entity.Order
	}{
		{name: "all", set: NewFilterSet(), want: []*entity.Order{acceptedUnpaid, acceptedPaid, fresh, delivered}},
		{name: "accepted", set: NewFilterSet().Toggle(TagAccepted), want: []*entity.Order{acceptedUnpaid, acceptedPaid, delivered}},
		{name: "accepted and paid is a conjunction", set: NewFilterSet().Toggle(TagAccepted).Toggle(TagPaid), want: []*entity.Order{acceptedPaid, delivered}},
		{name: "picked up", set: NewFilterSet().Toggle(TagPickedUp), want: []*entity.Order{delivered}},
		{name: "delivered and paid", set: NewFilterSet().Toggle(TagDelivered).Toggle(TagPaid), want: []*entity.Order{delivered}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.Apply(orders))
		})
	}
}

func TestFilterSet_ApplyAcceptedAndPaid(t *testing.T) {
	first := &entity.Order{AcceptedStatus: true, Paid: false}
	second := &entity.Order{AcceptedStatus: true, Paid: true}

	set, err := FromClicks([]string{"accepted", "paid"})
	require.NoError(t, err)

	assert.Equal(t, []*entity.Order{second}, set.Apply([]*entity.Order{first, second}))
}

func TestFromClicks(t *testing.T) {
	set, err := FromClicks(nil)
	require.NoError(t, err)
	assert.True(t, set.IsAll())

	set, err = FromClicks([]string{"paid", "delivered", "all", "pickedUp"})
	require.NoError(t, err)
	assert.Equal(t, []Tag{TagPickedUp}, set.Tags())

	_, err = FromClicks([]string{"accepted", "cancelled"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown filter "cancelled"`)
}
