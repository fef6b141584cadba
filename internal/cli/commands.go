package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tartampluch/vcard-editor/internal/calendar"
	"github.com/tartampluch/vcard-editor/internal/card"
	"github.com/tartampluch/vcard-editor/internal/config"
	"github.com/tartampluch/vcard-editor/internal/feed"
	"github.com/tartampluch/vcard-editor/internal/repository"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>...",
		Short: ctx.tr.T(config.TKeyDeleteShort),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := ctx.openRepository(cmd)
			if err != nil {
				return err
			}

			selected := make(map[int]struct{}, len(args))
			for _, a := range args {
				idx, err := parseIndex(a, repo)
				if err != nil {
					return err
				}
				selected[idx] = struct{}{}
			}
			for idx := range selected {
				repo.Select(idx, true)
			}
			repo.DeleteContact()

			fmt.Fprintln(cmd.OutOrStdout(), ctx.tr.TData(config.TKeyMsgDeleted, map[string]any{"Count": len(selected)}))
			return ctx.save(cmd, repo)
		},
	}
}

func newPhotoCommand(ctx *commandContext) *cobra.Command {
	photoCmd := &cobra.Command{
		Use:   "photo",
		Short: ctx.tr.T(config.TKeyPhotoShort),
	}

	photoCmd.AddCommand(&cobra.Command{
		Use:   "set <index> <image>",
		Short: ctx.tr.T(config.TKeyPhotoSetShort),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := ctx.openRepository(cmd)
			if err != nil {
				return err
			}
			idx, err := parseIndex(args[0], repo)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrReadFile, err)
			}

			repo.ModifyImage(idx, data, ctx.handler.GetExtension(args[1]))
			fmt.Fprintln(cmd.OutOrStdout(), ctx.tr.TData(config.TKeyMsgPhotoSet, map[string]any{"Index": idx}))
			return ctx.save(cmd, repo)
		},
	})

	photoCmd.AddCommand(&cobra.Command{
		Use:   "export <index> <file>",
		Short: ctx.tr.T(config.TKeyPhotoExpShort),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := ctx.openRepository(cmd)
			if err != nil {
				return err
			}
			idx, err := parseIndex(args[0], repo)
			if err != nil {
				return err
			}
			written, err := repo.SaveImageToDisk(idx, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctx.tr.TData(config.TKeyMsgPhotoSaved, map[string]any{"File": written}))
			return nil
		},
	})

	return photoCmd
}

func (ctx *commandContext) generator(reminder string) *calendar.Generator {
	return &calendar.Generator{
		Clock:         calendar.RealClock{},
		Reminder:      strings.TrimSpace(reminder),
		FormatSummary: ctx.tr.FormatSummary,
	}
}

func renderCalendar(c context.Context, gen *calendar.Generator, repo *repository.Repository) ([]byte, []calendar.Entry, error) {
	contacts := repo.Contacts()
	cards := make([]*card.Card, 0, len(contacts))
	for _, ct := range contacts {
		cards = append(cards, ct.Card)
	}
	ics, entries, _, err := gen.Generate(c, cards)
	return ics, entries, err
}

func newCalendarCommand(ctx *commandContext) *cobra.Command {
	var reminder string

	cmd := &cobra.Command{
		Use:   "calendar <out.ics>",
		Short: ctx.tr.T(config.TKeyCalendarShort),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := ctx.openRepository(cmd)
			if err != nil {
				return err
			}

			ics, entries, err := renderCalendar(cmd.Context(), ctx.generator(reminder), repo)
			if err != nil {
				return err
			}

			out := args[0]
			if err := ctx.handler.WriteBytes(out, ics); err != nil {
				return fmt.Errorf("%s: %w", config.ErrWriteFile, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctx.tr.TData(config.TKeyMsgCalendar, map[string]any{
				"Count": len(entries),
				"File":  out,
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&reminder, config.FlagReminder, "", config.FlagDescRemind)
	return cmd
}

// newServeCommand publishes the birthday calendar on localhost. The contact
// file is re-read on every refresh so edits made meanwhile show up.
func newServeCommand(ctx *commandContext) *cobra.Command {
	var (
		reminder string
		port     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: ctx.tr.T(config.TKeyServeShort),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.contactFile()
			if err != nil {
				return err
			}
			gen := ctx.generator(reminder)

			srv := feed.New(strings.TrimSpace(port), interval, func(c context.Context) ([]byte, error) {
				repo := repository.New(ctx.handler)
				if _, err := repo.LoadContacts(path); err != nil {
					return nil, err
				}
				ics, _, err := renderCalendar(c, gen, repo)
				return ics, err
			})

			url := "http://" + config.LocalhostBindAddr + config.AddrSeparator + srv.Port + config.RouteRoot
			fmt.Fprintln(cmd.OutOrStdout(), ctx.tr.TData(config.TKeyMsgServing, map[string]any{"URL": url}))
			return srv.Run(cmd.Context())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&reminder, config.FlagReminder, "", config.FlagDescRemind)
	fs.StringVar(&port, config.FlagPort, config.DefaultFeedPort, config.FlagDescPort)
	fs.DurationVar(&interval, config.FlagInterval, config.DefaultFeedRefresh, config.FlagDescInterv)
	return cmd
}

func newInitConfigCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init-config",
		Short:       ctx.tr.T(config.TKeyInitCfgShort),
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipSettings: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(ctx.configFlag)
			if target == "" {
				p, err := config.DefaultSettingsPath()
				if err != nil {
					return err
				}
				target = p
			}
			target = filepath.Clean(target)

			if err := config.WriteSample(target, force); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctx.tr.TData(config.TKeyMsgConfigDone, map[string]any{"File": target}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, config.FlagForce, false, config.FlagDescForce)
	return cmd
}
