package model

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/sessiontable/pkg/csp"
	"github.com/limaJavier/sessiontable/pkg/sat"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	satisfiableTestDirectory   = "testdata/satisfiable/"
	unsatisfiableTestDirectory = "testdata/unsatisfiable/"
)

func timetablers() map[string]Timetabler {
	return map[string]Timetabler{
		"Backtracking":                NewBacktrackingTimetabler(),
		"Backtracking with dom/deg":   NewBacktrackingTimetabler(WithSolverOptions(csp.WithOrdering(csp.DegreeOrdering))),
		"Backtracking with matchings": NewBacktrackingTimetabler(WithBuildOptions(BuildOptions{GlobalDistinct: true}), WithSolverOptions(csp.WithForwardChecking(true))),
		"Gini":                        NewSatTimetabler(sat.NewGiniSolver()),
	}
}

func TestTimetablers(t *testing.T) {
	for name, timetabler := range timetablers() {
		t.Run(name, func(t *testing.T) {
			t.Run("Satisfiable instances", func(t *testing.T) {
				satisfiableExecution(t, timetabler)
			})

			t.Run("Unsatisfiable instances", func(t *testing.T) {
				unsatisfiableExecution(t, timetabler)
			})

			t.Run("Scenarios", func(t *testing.T) {
				scenarios(t, timetabler)
			})
		})
	}
}

func satisfiableExecution(t *testing.T, timetabler Timetabler) {
	for _, filename := range testFiles(t, satisfiableTestDirectory) {
		//** Arrange
		input, err := InputFromFile(filename)
		require.NoError(t, err, filename)

		//** Act
		timetable, err := timetabler.Build(context.Background(), input)

		//** Assert
		require.NoError(t, err, filename)
		require.Equal(t, csp.Solved, timetable.Status, filename)
		assert.NotEmpty(t, timetable.RunID)
		assert.Zero(t, timetable.Violations)
		assert.True(t, timetabler.Verify(timetable, input), filename)
		assertRules(t, timetable, input)
	}
}

func unsatisfiableExecution(t *testing.T, timetabler Timetabler) {
	for _, filename := range testFiles(t, unsatisfiableTestDirectory) {
		input, err := InputFromFile(filename)
		require.NoError(t, err, filename)

		timetable, err := timetabler.Build(context.Background(), input)

		require.NoError(t, err, filename)
		assert.Equal(t, csp.NoSolution, timetable.Status, filename)
		assert.Empty(t, timetable.Entries)
		assert.False(t, timetabler.Verify(timetable, input))
	}
}

func scenarios(t *testing.T, timetabler Timetabler) {
	t.Run("Single course on a single day", func(t *testing.T) {
		input := modelInput(t, DefaultWeek, Course{Name: "Securite", Teachers: []string{"Dr. Alkama"}, Days: []string{"Wed"}})

		timetable, err := timetabler.Build(context.Background(), input)

		require.NoError(t, err)
		require.Equal(t, csp.Solved, timetable.Status)
		require.Len(t, timetable.Entries, 2)
		first, second := timetable.Entries[0].Slot, timetable.Entries[1].Slot
		assert.Equal(t, "Wed", first.Day)
		assert.Equal(t, "Wed", second.Day)
		assert.NotEqual(t, first.Position, second.Position)
		assert.LessOrEqual(t, second.Position-first.Position, 1)
	})

	t.Run("Two sessions on a single slot", func(t *testing.T) {
		input := modelInput(t, []DayCapacity{{Day: "Mon", Slots: 1}, {Day: "Tue", Slots: 3}},
			Course{Name: "Securite", Teachers: []string{"Dr. Alkama"}, Days: []string{"Mon"}},
		)

		timetable, err := timetabler.Build(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, csp.NoSolution, timetable.Status)
	})

	t.Run("Unknown day", func(t *testing.T) {
		input := modelInput(t, DefaultWeek, Course{Name: "Securite", Teachers: []string{"Dr. Alkama"}, Days: []string{"Fri"}})

		_, err := timetabler.Build(context.Background(), input)

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("Disjoint days", func(t *testing.T) {
		input := modelInput(t, DefaultWeek,
			Course{Name: "Securite", Teachers: []string{"Dr. Alkama"}, Days: []string{"Sun"}},
			Course{Name: "Entrepreneuriat", Teachers: []string{"Dr. Zenadji"}, Days: []string{"Thu"}},
		)

		timetable, err := timetabler.Build(context.Background(), input)

		require.NoError(t, err)
		require.Equal(t, csp.Solved, timetable.Status)
		assert.Len(t, timetable.Entries, 4)
		assert.True(t, timetabler.Verify(timetable, input))
		assertRules(t, timetable, input)
	})

	t.Run("No courses", func(t *testing.T) {
		input := modelInput(t, DefaultWeek)

		timetable, err := timetabler.Build(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, csp.Solved, timetable.Status)
		assert.Empty(t, timetable.Entries)
	})
}

func TestBacktrackingIsIdempotent(t *testing.T) {
	//** Arrange
	input, err := InputFromFile(satisfiableTestDirectory + "semester.json")
	require.NoError(t, err)
	timetabler := NewBacktrackingTimetabler()

	//** Act
	first, err := timetabler.Build(context.Background(), input)
	require.NoError(t, err)
	second, err := timetabler.Build(context.Background(), input)
	require.NoError(t, err)

	//** Assert
	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.Stats.Nodes, second.Stats.Nodes)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestDegreeOrderingWithPractical(t *testing.T) {
	//** Arrange
	allDays := []string{"Sun", "Mon", "Tue", "Wed", "Thu"}
	courses := lo.Map([]string{
		"Securite",
		"MethodesFormelles",
		"NumericalAnalysis",
		"Entrepreneuriat",
		"RechercheOperationnelle2",
		"DistributedArchitecture",
		"Reseaux2",
		"ArtificialIntelligence",
	}, func(name string, _ int) Course {
		return Course{Name: name, Teachers: []string{"Dr. " + name}, Days: allDays}
	})
	courses[6].Teachers = []string{"Dr. Djennadi", PracticalMarker}
	courses[6].HasPractical = true
	input := modelInput(t, DefaultWeek, courses...)

	timetabler := NewBacktrackingTimetabler(WithSolverOptions(
		csp.WithOrdering(csp.DegreeOrdering),
		csp.WithNodeLimit(100_000),
	))

	//** Act
	timetable, err := timetabler.Build(context.Background(), input)

	//** Assert
	require.NoError(t, err)
	require.Equal(t, csp.Solved, timetable.Status)
	assert.Len(t, timetable.Entries, 17)
	assert.True(t, timetabler.Verify(timetable, input))
	assertRules(t, timetable, input)
}

func TestInconclusive(t *testing.T) {
	input, err := InputFromFile(unsatisfiableTestDirectory + "crowded.json")
	require.NoError(t, err)

	t.Run("Node limit", func(t *testing.T) {
		timetabler := NewBacktrackingTimetabler(WithSolverOptions(csp.WithNodeLimit(5)))

		timetable, err := timetabler.Build(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, csp.Inconclusive, timetable.Status)
		assert.Equal(t, uint64(5), timetable.Stats.Nodes)
		assert.False(t, timetabler.Verify(timetable, input))
	})

	t.Run("Cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		for name, timetabler := range timetablers() {
			timetable, err := timetabler.Build(ctx, input)

			require.NoError(t, err, name)
			assert.Equal(t, csp.Inconclusive, timetable.Status, name)
		}
	})
}

func TestSoftDaySpread(t *testing.T) {
	// Every course holds three sessions and only one slot per day, so each must spread over three days
	input := modelInput(t, []DayCapacity{{Day: "Sun", Slots: 1}, {Day: "Mon", Slots: 1}, {Day: "Tue", Slots: 1}},
		Course{Name: "Reseaux2", Teachers: []string{"TP Dr. Djerbi"}, Days: []string{"Sun", "Mon", "Tue"}, HasPractical: true},
	)

	t.Run("Hard", func(t *testing.T) {
		timetable, err := NewBacktrackingTimetabler().Build(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, csp.NoSolution, timetable.Status)
	})

	t.Run("Soft", func(t *testing.T) {
		timetabler := NewBacktrackingTimetabler(WithBuildOptions(BuildOptions{SoftDaySpread: true, DaySpreadWeight: 4}))

		timetable, err := timetabler.Build(context.Background(), input)

		require.NoError(t, err)
		require.Equal(t, csp.Solved, timetable.Status)
		assert.Equal(t, 4, timetable.Violations)
		assert.True(t, timetabler.Verify(timetable, input))
		assert.False(t, NewBacktrackingTimetabler().Verify(timetable, input))
	})

	t.Run("Soft rules are not encoded as clauses", func(t *testing.T) {
		timetabler := NewSatTimetabler(sat.NewGiniSolver(), WithBuildOptions(BuildOptions{SoftDaySpread: true}))

		timetable, err := timetabler.Build(context.Background(), input)

		require.NoError(t, err)
		require.Equal(t, csp.Solved, timetable.Status)
		assert.Equal(t, 1, timetable.Violations)
	})
}

func TestVerify(t *testing.T) {
	//** Arrange
	input := threeCourses(t)
	timetabler := NewBacktrackingTimetabler()
	timetable, err := timetabler.Build(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, csp.Solved, timetable.Status)
	require.True(t, timetabler.Verify(timetable, input))

	tamper := func(change func(entries []Entry) []Entry) Timetable {
		tampered := timetable
		tampered.Entries = change(append([]Entry{}, timetable.Entries...))
		return tampered
	}
	indexOf := func(entries []Entry, course string, kind SessionKind) int {
		_, index, _ := lo.FindIndexOf(entries, func(entry Entry) bool { return entry.Course == course && entry.Kind == kind })
		return index
	}

	//** Act & Assert
	t.Run("Missing session", func(t *testing.T) {
		assert.False(t, timetabler.Verify(tamper(func(entries []Entry) []Entry { return entries[1:] }), input))
	})

	t.Run("Duplicate session", func(t *testing.T) {
		assert.False(t, timetabler.Verify(tamper(func(entries []Entry) []Entry { return append(entries, entries[0]) }), input))
	})

	t.Run("Unknown session", func(t *testing.T) {
		assert.False(t, timetabler.Verify(tamper(func(entries []Entry) []Entry {
			entries[indexOf(entries, "Securite", Tutorial)].Kind = Practical
			return entries
		}), input))
	})

	t.Run("Forbidden day", func(t *testing.T) {
		assert.False(t, timetabler.Verify(tamper(func(entries []Entry) []Entry {
			entries[indexOf(entries, "Securite", Lecture)].Slot = Slot{Day: "Thu", DayIndex: 4, Position: 1}
			return entries
		}), input))
	})

	t.Run("Slot outside the catalog", func(t *testing.T) {
		assert.False(t, timetabler.Verify(tamper(func(entries []Entry) []Entry {
			entries[indexOf(entries, "Securite", Lecture)].Slot = Slot{Day: "Sun", DayIndex: 0, Position: 9}
			return entries
		}), input))
	})

	t.Run("Shared slot", func(t *testing.T) {
		assert.False(t, timetabler.Verify(tamper(func(entries []Entry) []Entry {
			lecture := indexOf(entries, "Securite", Lecture)
			entries[indexOf(entries, "Securite", Tutorial)].Slot = entries[lecture].Slot
			return entries
		}), input))
	})

	t.Run("Not solved", func(t *testing.T) {
		unsolved := timetable
		unsolved.Status = csp.Inconclusive
		assert.False(t, timetabler.Verify(unsolved, input))
	})
}

func TestBuildAll(t *testing.T) {
	//** Arrange
	files := append(testFiles(t, satisfiableTestDirectory), testFiles(t, unsatisfiableTestDirectory)...)
	inputs := lo.Map(files, func(filename string, _ int) ModelInput {
		input, err := InputFromFile(filename)
		require.NoError(t, err)
		return input
	})
	inputs = append(inputs, modelInput(t, DefaultWeek, Course{Name: "Securite", Days: []string{"Fri"}}))
	timetabler := NewSatTimetabler(sat.NewGiniSolver())

	//** Act
	timetables, errs := BuildAll(context.Background(), timetabler, inputs, 2)

	//** Assert
	require.Len(t, timetables, len(inputs))
	require.Len(t, errs, len(inputs))
	for i, filename := range files {
		require.NoError(t, errs[i], filename)
		expected := csp.Solved
		if filepath.Dir(filename) == filepath.Clean(unsatisfiableTestDirectory) {
			expected = csp.NoSolution
		}
		assert.Equal(t, expected, timetables[i].Status, filename)
	}
	assert.ErrorIs(t, errs[len(inputs)-1], ErrInvalidInput)
}

func testFiles(t *testing.T, directory string) []string {
	entries, err := os.ReadDir(directory)
	require.NoError(t, err)
	return lo.Map(entries, func(entry os.DirEntry, _ int) string { return filepath.Join(directory, entry.Name()) })
}

// assertRules checks the scheduling rules directly on the entries
func assertRules(t *testing.T, timetable Timetable, input ModelInput) {
	perCourse := lo.GroupBy(timetable.Entries, func(entry Entry) string { return entry.Course })
	for _, course := range input.Courses {
		entries := perCourse[course.Name]
		assert.Len(t, entries, len(course.Kinds()), course.Name)

		slots := lo.Map(entries, func(entry Entry, _ int) Slot { return entry.Slot })
		assert.Len(t, lo.Uniq(slots), len(slots), course.Name)
		assert.LessOrEqual(t, len(lo.Uniq(lo.Map(slots, func(slot Slot, _ int) string { return slot.Day }))), MaxTeachingDays, course.Name)
		for _, slot := range slots {
			assert.Contains(t, course.Days, slot.Day)
			assert.GreaterOrEqual(t, slot.Position, 1)
			assert.LessOrEqual(t, slot.Position, input.Catalog.Capacity(slot.Day))
		}
	}

	perKind := lo.GroupBy(timetable.Entries, func(entry Entry) SessionKind { return entry.Kind })
	for kind, entries := range perKind {
		slots := lo.Map(entries, func(entry Entry, _ int) Slot { return entry.Slot })
		assert.Len(t, lo.Uniq(slots), len(slots), kind.String())
	}
}
