package orderview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswash/laundry/internal/entity"
)

func TestGroupItems(t *testing.T) {
	shirt := &entity.OrderItem{Name: "shirt", WashType: entity.WashSimple, Quantity: 2}
	coat := &entity.OrderItem{Name: "coat", WashType: entity.WashDry, Quantity: 1}
	towel := &entity.OrderItem{Name: "towel", WashType: entity.WashSimple, Quantity: 4}

	groups := GroupItems([]*entity.OrderItem{shirt, coat, towel})

	require.Len(t, groups, 2)
	assert.Equal(t, entity.WashSimple, groups[0].WashType)
	assert.Equal(t, []*entity.OrderItem{shirt, towel}, groups[0].Items)
	assert.Equal(t, entity.WashDry, groups[1].WashType)
	assert.Equal(t, []*entity.OrderItem{coat}, groups[1].Items)
}

func TestGroupItems_FixedBucketOrder(t *testing.T) {
	items := []*entity.OrderItem{
		{Name: "a", WashType: entity.WashDry},
		{Name: "b", WashType: entity.WashPower},
		{Name: "c", WashType: entity.WashSimple},
	}

	groups := GroupItems(items)

	require.Len(t, groups, 3)
	assert.Equal(t, entity.WashSimple, groups[0].WashType)
	assert.Equal(t, entity.WashPower, groups[1].WashType)
	assert.Equal(t, entity.WashDry, groups[2].WashType)
}

func TestGroupItems_Empty(t *testing.T) {
	assert.Empty(t, GroupItems(nil))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Simple Wash", Label(entity.WashSimple))
	assert.Equal(t, "Power Clean", Label(entity.WashPower))
	assert.Equal(t, "Dry Clean", Label(entity.WashDry))
	assert.Equal(t, "steam", Label("steam"))
}
