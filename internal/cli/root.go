// Package cli is the command-line front end of the contact editor. Every
// command maps onto repository operations.
package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tartampluch/vcard-editor/internal/config"
	"github.com/tartampluch/vcard-editor/internal/fileio"
)

// Execute runs the command line in args and reports a failure on stderr in
// the selected language.
func Execute(ctx context.Context, args []string, logSetup LogSetup) error {
	cmdCtx := newCommandContext(logSetup, fileio.OS{})
	root := newRootCommand(cmdCtx)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(root.ErrOrStderr(), "%s: %v\n", cmdCtx.tr.T(config.TKeyErrFailed), err)
	}
	return err
}

// NewRootCommand builds the command tree. logSetup may be nil.
func NewRootCommand(logSetup LogSetup) *cobra.Command {
	return newRootCommand(newCommandContext(logSetup, fileio.OS{}))
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           config.BinaryName,
		Short:         ctx.tr.T(config.TKeyRootShort),
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipSettings(cmd) {
				return nil
			}
			_, err := ctx.ensureSettings()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf(config.MsgVersionOutput,
		config.AppName, config.Version, runtime.GOOS, runtime.GOARCH))

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&ctx.fileFlag, config.FlagFile, config.FlagShortF, "", config.FlagDescFile)
	pf.StringVarP(&ctx.configFlag, config.FlagConfig, config.FlagShortC, "", config.FlagDescConfig)
	pf.StringVar(&ctx.langFlag, config.FlagLang, "", config.FlagDescLang)
	pf.BoolVar(&ctx.backupFlag, config.FlagBackup, false, config.FlagDescBackup)
	pf.BoolVar(&ctx.debugFlag, config.FlagDebug, false, config.FlagDescDebug)

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newSetCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newPhotoCommand(ctx))
	rootCmd.AddCommand(newCalendarCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newInitConfigCommand(ctx))

	return rootCmd
}
