package orderview

import (
	"github.com/campuswash/laundry/internal/entity"
)

// ItemGroup holds the items of one wash type.
type ItemGroup struct {
	WashType entity.WashType
	Items    []*entity.OrderItem
}

// GroupItems buckets items by wash type in the fixed order of entity.WashTypes.
// Empty buckets are left out; items keep their relative order.
func GroupItems(items []*entity.OrderItem) []ItemGroup {
	groups := make([]ItemGroup, 0, len(entity.WashTypes))
	for _, wash := range entity.WashTypes {
		var bucket []*entity.OrderItem
		for _, item := range items {
			if item != nil && item.WashType == wash {
				bucket = append(bucket, item)
			}
		}
		if len(bucket) == 0 {
			continue
		}
		groups = append(groups, ItemGroup{WashType: wash, Items: bucket})
	}
	return groups
}

// Label is the human-readable wash type name.
func Label(w entity.WashType) string {
	switch w {
	case entity.WashSimple:
		return "Simple Wash"
	case entity.WashPower:
		return "Power Clean"
	case entity.WashDry:
		return "Dry Clean"
	default:
		return string(w)
	}
}
