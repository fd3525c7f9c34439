package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/limaJavier/sessiontable/pkg/model"
)

func render(timetable model.Timetable, format string) (string, error) {
	if format == "json" {
		// Marshal output into json
		timetableJson, err := json.MarshalIndent(timetable.Assignments(), "", "  ")
		if err != nil {
			return "", fmt.Errorf("an error occurred while building output json: %w", err)
		}
		return string(timetableJson) + "\n", nil
	}

	var builder strings.Builder
	writer := tabwriter.NewWriter(&builder, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "SLOT\tCOURSE\tSESSION")
	for _, entry := range timetable.Entries {
		fmt.Fprintf(writer, "%v\t%v\t%v\n", entry.Slot, entry.Course, entry.Kind)
	}
	if err := writer.Flush(); err != nil {
		return "", err
	}
	if timetable.Violations > 0 {
		fmt.Fprintf(&builder, "soft violations: %d\n", timetable.Violations)
	}
	return builder.String(), nil
}
