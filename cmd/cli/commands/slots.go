package commands

import (
	"fmt"
	"strings"

	"github.com/limaJavier/sessiontable/pkg/model"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func slotsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List the weekly slots, of the default week or of a request file",
		RunE: func(cmd *cobra.Command, args []string) error {
			week := model.DefaultWeek
			if file != "" {
				input, err := model.InputFromFile(file)
				if err != nil {
					return fmt.Errorf("cannot parse input file: %w", err)
				}
				week = input.Catalog.Week()
			}
			catalog, err := model.NewCatalog(week)
			if err != nil {
				return err
			}

			perDay := lo.GroupBy(catalog.Slots(), func(slot model.Slot) string { return slot.Day })
			for _, day := range catalog.Days() {
				names := lo.Map(perDay[day], func(slot model.Slot, _ int) string { return slot.String() })
				fmt.Fprintf(cmd.OutOrStdout(), "%v: %v\n", day, strings.Join(names, " "))
			}
			logger.Debug("slots listed", zap.Int("slots", catalog.Len()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "request file whose week is listed")
	return cmd
}
