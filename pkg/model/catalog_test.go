package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	//** Arrange
	catalog, err := NewCatalog(DefaultWeek)
	require.NoError(t, err)

	//** Act
	slots := catalog.Slots()

	//** Assert
	assert.Equal(t, 23, catalog.Len())
	assert.Equal(t, []string{"Sun", "Mon", "Tue", "Wed", "Thu"}, catalog.Days())
	assert.Equal(t, "Sun_1", slots[0].String())
	assert.Equal(t, "Mon_1", slots[5].String())
	assert.Equal(t, "Tue_3", slots[12].String())
	assert.Equal(t, "Thu_5", slots[22].String())

	t.Run("Slots lie within their day", func(t *testing.T) {
		for _, slot := range slots {
			assert.True(t, catalog.HasDay(slot.Day))
			assert.GreaterOrEqual(t, slot.Position, 1)
			assert.LessOrEqual(t, slot.Position, catalog.Capacity(slot.Day))
		}
	})

	t.Run("Slots are ordered", func(t *testing.T) {
		for i := 1; i < len(slots); i++ {
			assert.Negative(t, slots[i-1].Compare(slots[i]))
		}
	})

	t.Run("Index is the inverse of Slot", func(t *testing.T) {
		for i := range catalog.Len() {
			index, ok := catalog.Index(catalog.Slot(i))
			assert.True(t, ok)
			assert.Equal(t, i, index)
		}

		_, ok := catalog.Index(Slot{Day: "Tue", DayIndex: 2, Position: 4})
		assert.False(t, ok)
		_, ok = catalog.Index(Slot{Day: "Fri", DayIndex: 5, Position: 1})
		assert.False(t, ok)
		_, ok = catalog.Index(Slot{Day: "Mon", DayIndex: 0, Position: 1})
		assert.False(t, ok)
	})
}

func TestCatalogQueries(t *testing.T) {
	catalog, err := NewCatalog([]DayCapacity{{Day: "Mon", Slots: 2}, {Day: "Wed", Slots: 3}, {Day: "Fri", Slots: 1}})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 5}, catalog.IndicesOf([]string{"Fri", "Mon"}))
	assert.Equal(t, []int{2, 3, 4}, catalog.IndicesOf([]string{"Wed"}))
	assert.Empty(t, catalog.IndicesOf([]string{"Sun"}))
	assert.Equal(t, 3, catalog.Capacity("Wed"))
	assert.Zero(t, catalog.Capacity("Sun"))
	assert.False(t, catalog.HasDay("Sun"))
}

func TestCatalogErrors(t *testing.T) {
	for name, week := range map[string][]DayCapacity{
		"Empty week":         {},
		"Unnamed day":        {{Day: "", Slots: 2}},
		"Duplicate day":      {{Day: "Mon", Slots: 2}, {Day: "Mon", Slots: 3}},
		"Non-positive slots": {{Day: "Mon", Slots: 0}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewCatalog(week)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
