package model

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// DayCapacity states how many slots a teaching day holds
type DayCapacity struct {
	Day   string `mapstructure:"day" validate:"required"`
	Slots int    `mapstructure:"slots" validate:"gt=0"`
}

// DefaultWeek is the five-day week used when a request does not provide its own
var DefaultWeek = []DayCapacity{
	{Day: "Sun", Slots: 5},
	{Day: "Mon", Slots: 5},
	{Day: "Tue", Slots: 3},
	{Day: "Wed", Slots: 5},
	{Day: "Thu", Slots: 5},
}

// Slot is a (day, position) pair, positions start at 1
type Slot struct {
	Day      string
	DayIndex int // Position of the day within the week
	Position int
}

func (slot Slot) String() string {
	return fmt.Sprintf("%v_%v", slot.Day, slot.Position)
}

// Compare orders slots by day and then by position
func (slot Slot) Compare(other Slot) int {
	return cmp.Or(cmp.Compare(slot.DayIndex, other.DayIndex), cmp.Compare(slot.Position, other.Position))
}

// Catalog enumerates the slots of a week, day-major and position-minor.
// The index of a slot within the catalog is the value the solvers assign to sessions.
type Catalog struct {
	week  []DayCapacity
	slots []Slot
	days  map[string]int
}

func NewCatalog(week []DayCapacity) (*Catalog, error) {
	if len(week) == 0 {
		return nil, fmt.Errorf("%w: the week has no days", ErrInvalidInput)
	}

	catalog := &Catalog{
		week:  slices.Clone(week),
		slots: make([]Slot, 0),
		days:  make(map[string]int),
	}
	for dayIndex, capacity := range week {
		if capacity.Day == "" {
			return nil, fmt.Errorf("%w: day %d has no name", ErrInvalidInput, dayIndex)
		}
		if _, ok := catalog.days[capacity.Day]; ok {
			return nil, fmt.Errorf("%w: day \"%v\" is listed more than once", ErrInvalidInput, capacity.Day)
		}
		if capacity.Slots <= 0 {
			return nil, fmt.Errorf("%w: day \"%v\" must hold at least one slot", ErrInvalidInput, capacity.Day)
		}

		catalog.days[capacity.Day] = dayIndex
		for position := 1; position <= capacity.Slots; position++ {
			catalog.slots = append(catalog.slots, Slot{Day: capacity.Day, DayIndex: dayIndex, Position: position})
		}
	}
	return catalog, nil
}

func (catalog *Catalog) Len() int {
	return len(catalog.slots)
}

func (catalog *Catalog) Slot(index int) Slot {
	return catalog.slots[index]
}

func (catalog *Catalog) Slots() []Slot {
	return slices.Clone(catalog.slots)
}

// Days returns the day names in week order
func (catalog *Catalog) Days() []string {
	return lo.Map(catalog.week, func(capacity DayCapacity, _ int) string { return capacity.Day })
}

func (catalog *Catalog) Week() []DayCapacity {
	return slices.Clone(catalog.week)
}

func (catalog *Catalog) HasDay(day string) bool {
	_, ok := catalog.days[day]
	return ok
}

// Capacity returns the number of slots of day, zero for unknown days
func (catalog *Catalog) Capacity(day string) int {
	dayIndex, ok := catalog.days[day]
	if !ok {
		return 0
	}
	return catalog.week[dayIndex].Slots
}

// Index returns the catalog index of slot
func (catalog *Catalog) Index(slot Slot) (int, bool) {
	dayIndex, ok := catalog.days[slot.Day]
	if !ok || dayIndex != slot.DayIndex || slot.Position < 1 || slot.Position > catalog.week[dayIndex].Slots {
		return -1, false
	}

	index := slot.Position - 1
	for _, capacity := range catalog.week[:dayIndex] {
		index += capacity.Slots
	}
	return index, true
}

// IndicesOf returns, in catalog order, the indices of the slots whose day belongs to days
func (catalog *Catalog) IndicesOf(days []string) []int {
	indices := make([]int, 0)
	for index, slot := range catalog.slots {
		if slices.Contains(days, slot.Day) {
			indices = append(indices, index)
		}
	}
	return indices
}
