package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tartampluch/vcard-editor/internal/card"
	"github.com/tartampluch/vcard-editor/internal/config"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <index>",
		Short: ctx.tr.T(config.TKeyShowShort),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := ctx.openRepository(cmd)
			if err != nil {
				return err
			}
			idx, err := parseIndex(args[0], repo)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				text, err := repo.GenerateStringFromVCard(idx)
				if err != nil {
					return err
				}
				_, err = io.WriteString(out, text)
				return err
			}

			c, _ := repo.Contact(idx)
			return ctx.printCard(out, c.Card)
		},
	}

	cmd.Flags().BoolVar(&raw, config.FlagRaw, false, config.FlagDescRaw)
	return cmd
}

func (ctx *commandContext) printCard(w io.Writer, c *card.Card) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.Style().Options = table.OptionsNoBordersAndSeparators
	line := func(label, value string) {
		if value != "" {
			tw.AppendRow(table.Row{label + ":", value})
		}
	}

	line(ctx.tr.T(config.TKeyLblFN), c.DisplayName())
	line(ctx.tr.T(config.TKeyLblGiven), c.GivenName())
	line(ctx.tr.T(config.TKeyLblFamily), c.FamilyName())
	line(ctx.tr.T(config.TKeyLblAddl), c.AdditionalNames())
	line(ctx.tr.T(config.TKeyLblTitle), c.Title())

	for _, group := range []struct {
		key string
		cat card.Category
	}{
		{config.TKeyLblPhone, card.Phones},
		{config.TKeyLblEmail, card.Emails},
		{config.TKeyLblURL, card.Websites},
	} {
		for _, slot := range group.cat.Slots {
			line(fmt.Sprintf("%s (%s)", ctx.tr.T(group.key), slot), c.SlotValue(group.cat, slot))
		}
	}

	for _, adr := range c.AddressFields() {
		line(ctx.tr.T(config.TKeyLblAddress), formatAddress(adr.Value))
	}

	photo := ctx.tr.T(config.TKeyPhotoAbsent)
	if len(c.PhotoFields()) > 0 {
		photo = ctx.tr.T(config.TKeyPhotoPresent)
	}
	line(ctx.tr.T(config.TKeyLblPhoto), photo)

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

// formatAddress joins the non-empty ADR components on one line.
func formatAddress(value string) string {
	var parts []string
	for _, p := range strings.Split(value, ";") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
