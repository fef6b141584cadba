package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tartampluch/vcard-editor/internal/card"
	"github.com/tartampluch/vcard-editor/internal/config"
	"github.com/tartampluch/vcard-editor/internal/repository"
)

// editFlags are the form fields a user can change from the command line.
// Only flags actually given override the current values.
type editFlags struct {
	fn, given, family, additional, title string
	phones, emails, urls                 []string
}

func (f *editFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.fn, config.FlagFN, "", config.FlagDescFN)
	fs.StringVar(&f.given, config.FlagGiven, "", config.FlagDescGiven)
	fs.StringVar(&f.family, config.FlagFamily, "", config.FlagDescFamily)
	fs.StringVar(&f.additional, config.FlagAddl, "", config.FlagDescAddl)
	fs.StringVar(&f.title, config.FlagTitle, "", config.FlagDescTitle)
	fs.StringArrayVar(&f.phones, config.FlagPhone, nil, config.FlagDescPhone)
	fs.StringArrayVar(&f.emails, config.FlagEmail, nil, config.FlagDescEmail)
	fs.StringArrayVar(&f.urls, config.FlagURL, nil, config.FlagDescURL)
}

// shadow builds the edited card: a copy of stored with the given flags
// applied on top. An entry typed for several slots stays one entry, so an
// edit through any of its slots is what every other slot reports too.
func (f *editFlags) shadow(cmd *cobra.Command, stored *card.Card) (*card.Card, error) {
	s := stored.Clone()

	fs := cmd.Flags()
	scalars := []struct {
		flag  string
		value string
		set   func(string)
	}{
		{config.FlagFN, f.fn, s.SetFormattedName},
		{config.FlagGiven, f.given, s.SetGivenName},
		{config.FlagFamily, f.family, s.SetFamilyName},
		{config.FlagAddl, f.additional, s.SetAdditionalNames},
		{config.FlagTitle, f.title, s.SetTitle},
	}
	for _, sc := range scalars {
		if fs.Changed(sc.flag) {
			sc.set(sc.value)
		}
	}

	for _, group := range []struct {
		cat    card.Category
		values []string
	}{
		{card.Phones, f.phones},
		{card.Emails, f.emails},
		{card.Websites, f.urls},
	} {
		for _, arg := range group.values {
			slot, value, err := parseSlotAssign(group.cat, arg)
			if err != nil {
				return nil, err
			}
			s.SetSlot(group.cat, slot, value)
		}
	}
	return s, nil
}

// parseSlotAssign splits "slot=value". An empty value clears the slot.
func parseSlotAssign(cat card.Category, arg string) (card.Slot, string, error) {
	name, value, ok := strings.Cut(arg, config.SlotAssignSeparator)
	if !ok {
		return "", "", fmt.Errorf("%s: %q", config.ErrSlotFormat, arg)
	}
	slot := card.Slot(strings.ToLower(strings.TrimSpace(name)))
	if !cat.HasSlot(slot) {
		return "", "", fmt.Errorf("%s: %s %q", config.ErrSlotUnknown, cat.Name, name)
	}
	return slot, strings.TrimSpace(value), nil
}

// applyEdit commits the edit the way a form does: mark dirty, merge, save.
func (f *editFlags) applyEdit(cmd *cobra.Command, repo *repository.Repository, idx int) error {
	current, ok := repo.Contact(idx)
	if !ok {
		return fmt.Errorf("%s: %d", config.ErrIndexRange, idx)
	}
	shadow, err := f.shadow(cmd, current.Card)
	if err != nil {
		return err
	}
	repo.SetDirtyFlag(idx)
	repo.SaveDirtyVCard(idx, shadow)
	return nil
}

func newSetCommand(ctx *commandContext) *cobra.Command {
	var flags editFlags

	cmd := &cobra.Command{
		Use:   "set <index>",
		Short: ctx.tr.T(config.TKeySetShort),
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
			if err := flags.applyEdit(cmd, repo, idx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctx.tr.TData(config.TKeyMsgUpdated, map[string]any{"Index": idx}))
			return ctx.save(cmd, repo)
		},
	}

	flags.register(cmd)
	return cmd
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var flags editFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: ctx.tr.T(config.TKeyAddShort),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := ctx.openRepository(cmd)
			if err != nil {
				return err
			}
			idx := repo.AddEmptyContact()
			if err := flags.applyEdit(cmd, repo, idx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctx.tr.TData(config.TKeyMsgAdded, map[string]any{"Index": idx}))
			return ctx.save(cmd, repo)
		},
	}

	flags.register(cmd)
	return cmd
}
