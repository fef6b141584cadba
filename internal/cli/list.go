package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tartampluch/vcard-editor/internal/card"
	"github.com/tartampluch/vcard-editor/internal/config"
	"github.com/tartampluch/vcard-editor/internal/repository"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: ctx.tr.T(config.TKeyListShort),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := ctx.openRepository(cmd)
			if err != nil {
				return err
			}

			all := repo.Contacts()
			shown := all
			if filter != "" {
				shown = repo.FilterContacts(filter)
			}

			out := cmd.OutOrStdout()
			if len(shown) == 0 {
				fmt.Fprintln(out, ctx.tr.T(config.TKeyMsgNoContacts))
				return nil
			}

			indexes := fileIndexes(all, shown)
			rows := make([][]string, 0, len(shown))
			for i, c := range shown {
				rows = append(rows, []string{
					strconv.Itoa(indexes[i]),
					c.Name(),
					c.Card.SlotValue(card.Phones, card.SlotCell),
					c.Card.SlotValue(card.Emails, card.SlotInternet),
				})
			}
			headers := []string{
				ctx.tr.T(config.TKeyColIndex),
				ctx.tr.T(config.TKeyColName),
				ctx.tr.T(config.TKeyColPhone),
				ctx.tr.T(config.TKeyColEmail),
			}
			fmt.Fprintln(out, renderTable(out, headers, rows, []columnAlignment{alignRight}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, config.FlagFilter, config.FlagShortFlt, "", config.FlagDescFilter)
	return cmd
}

// fileIndexes maps each filtered contact to its position in the unfiltered
// list. shown is an ordered subsequence of all, and equal names always share
// the filter outcome, so a forward scan by name is exact.
func fileIndexes(all, shown []repository.Contact) []int {
	out := make([]int, 0, len(shown))
	j := 0
	for _, c := range shown {
		for j < len(all) && all[j].Name() != c.Name() {
			j++
		}
		out = append(out, j)
		j++
	}
	return out
}
