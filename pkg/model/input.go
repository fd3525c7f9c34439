package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ErrInvalidInput is wrapped by every error caused by a malformed request
var ErrInvalidInput = errors.New("invalid input")

// PracticalMarker flags a roster entry as the teacher of a practical session
const PracticalMarker = "TP"

var validate = validator.New()

type RawModelInput struct {
	Courses       []string            `mapstructure:"courses" validate:"required,min=1,unique,dive,required"`
	TeacherRoster map[string][]string `mapstructure:"teacherRoster" validate:"dive,keys,required,endkeys,required,min=1,dive,required"`
	AllowedDays   map[string][]string `mapstructure:"allowedDays" validate:"dive,keys,required,endkeys,required,min=1,dive,required"`
	Practicals    map[string]bool     `mapstructure:"practicals"`
	Week          []DayCapacity       `mapstructure:"week" validate:"omitempty,dive"`
}

type Course struct {
	Name         string
	Teachers     []string
	Days         []string // Allowed days, in the order they were given
	HasPractical bool
}

type ModelInput struct {
	Catalog *Catalog
	Courses []Course
}

// InputFromFile reads a request encoded as json, or as yaml when the extension is .yaml or .yml
func InputFromFile(file string) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, err
	}

	var inputMap map[string]any
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &inputMap)
	default:
		err = json.Unmarshal(bytes, &inputMap)
	}
	if err != nil {
		return ModelInput{}, fmt.Errorf("%w: cannot parse %v: %v", ErrInvalidInput, file, err)
	}

	var rawInput RawModelInput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(integralFloatHook),
		Result:     &rawInput,
	})
	if err != nil {
		return ModelInput{}, err
	}
	if err := decoder.Decode(inputMap); err != nil {
		return ModelInput{}, fmt.Errorf("%w: cannot decode %v: %v", ErrInvalidInput, file, err)
	}
	return ProcessRawInput(rawInput)
}

// integralFloatHook rejects json numbers with a fractional part decoded into integer fields
func integralFloatHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float32 && from.Kind() != reflect.Float64 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	value := reflect.ValueOf(data).Float()
	if value != math.Trunc(value) {
		return nil, fmt.Errorf("%v is not an integer", value)
	}
	return data, nil
}

func ProcessRawInput(rawInput RawModelInput) (ModelInput, error) {
	if err := validate.Struct(rawInput); err != nil {
		return ModelInput{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	//** Build catalog
	week := rawInput.Week
	if len(week) == 0 {
		week = DefaultWeek
	}
	catalog, err := NewCatalog(week)
	if err != nil {
		return ModelInput{}, err
	}

	//** Check references
	for _, references := range []map[string]bool{
		lo.MapValues(rawInput.TeacherRoster, func(_ []string, _ string) bool { return true }),
		lo.MapValues(rawInput.AllowedDays, func(_ []string, _ string) bool { return true }),
		rawInput.Practicals,
	} {
		unknown := lo.Filter(lo.Keys(references), func(course string, _ int) bool {
			return !slices.Contains(rawInput.Courses, course)
		})
		if len(unknown) > 0 {
			slices.Sort(unknown)
			return ModelInput{}, fmt.Errorf("%w: unknown course \"%v\"", ErrInvalidInput, unknown[0])
		}
	}

	//** Build courses
	courses := make([]Course, 0, len(rawInput.Courses))
	for _, name := range rawInput.Courses {
		teachers, ok := rawInput.TeacherRoster[name]
		if !ok {
			return ModelInput{}, fmt.Errorf("%w: course \"%v\" has no teacher roster", ErrInvalidInput, name)
		}
		days, ok := rawInput.AllowedDays[name]
		if !ok {
			return ModelInput{}, fmt.Errorf("%w: course \"%v\" has no allowed days", ErrInvalidInput, name)
		}

		// An explicit flag wins over the roster marker
		hasPractical, ok := rawInput.Practicals[name]
		if !ok {
			hasPractical = lo.SomeBy(teachers, func(teacher string) bool {
				return strings.Contains(teacher, PracticalMarker)
			})
		}

		courses = append(courses, Course{
			Name:         name,
			Teachers:     slices.Clone(teachers),
			Days:         lo.Uniq(days),
			HasPractical: hasPractical,
		})
	}

	input := ModelInput{
		Catalog: catalog,
		Courses: courses,
	}
	if err := input.Validate(); err != nil {
		return ModelInput{}, err
	}
	return input, nil
}

// Validate checks the invariants a model can be built from: unique course names and
// non-empty allowed days known to the catalog
func (input ModelInput) Validate() error {
	if input.Catalog == nil {
		return fmt.Errorf("%w: missing slot catalog", ErrInvalidInput)
	}

	seen := make(map[string]bool)
	for _, course := range input.Courses {
		if course.Name == "" {
			return fmt.Errorf("%w: course without name", ErrInvalidInput)
		}
		if seen[course.Name] {
			return fmt.Errorf("%w: course \"%v\" is listed more than once", ErrInvalidInput, course.Name)
		}
		seen[course.Name] = true

		if len(course.Days) == 0 {
			return fmt.Errorf("%w: course \"%v\" has no allowed days", ErrInvalidInput, course.Name)
		}
		for _, day := range course.Days {
			if !input.Catalog.HasDay(day) {
				return fmt.Errorf("%w: course \"%v\" allows unknown day \"%v\"", ErrInvalidInput, course.Name, day)
			}
		}
	}
	return nil
}

// Course returns the course named name
func (input ModelInput) Course(name string) (Course, bool) {
	return lo.Find(input.Courses, func(course Course) bool { return course.Name == name })
}
