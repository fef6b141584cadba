package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/tartampluch/vcard-editor/internal/config"
	"github.com/tartampluch/vcard-editor/internal/fileio"
	"github.com/tartampluch/vcard-editor/internal/repository"
)

// LogSetup is called once settings are known so the caller can install the
// process logger.
type LogSetup func(level slog.Level, debug bool)

type commandContext struct {
	fileFlag   string
	configFlag string
	langFlag   string
	backupFlag bool
	debugFlag  bool

	tr       *Translator
	logSetup LogSetup
	handler  fileio.Handler

	settingsOnce sync.Once
	settings     config.Settings
	settingsErr  error
}

func newCommandContext(logSetup LogSetup, h fileio.Handler) *commandContext {
	return &commandContext{
		tr:       NewTranslator(config.DefaultLanguage),
		logSetup: logSetup,
		handler:  h,
	}
}

// ensureSettings loads the settings file once and applies flag overrides.
func (c *commandContext) ensureSettings() (config.Settings, error) {
	c.settingsOnce.Do(func() {
		s, _, err := config.LoadSettings(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.settingsErr = err
			return
		}
		if c.langFlag != "" {
			s.UI.Language = strings.ToLower(strings.TrimSpace(c.langFlag))
		}
		if c.backupFlag {
			s.Save.Overwrite = false
		}
		if c.debugFlag {
			s.Logging.Level = config.LogLevelDebug
		}
		if err := s.Validate(); err != nil {
			c.settingsErr = err
			return
		}
		c.settings = s
		c.tr.SetLanguage(s.UI.Language)
		if c.logSetup != nil {
			c.logSetup(s.SlogLevel(), c.debugFlag)
		}
	})
	return c.settings, c.settingsErr
}

func (c *commandContext) contactFile() (string, error) {
	if f := strings.TrimSpace(c.fileFlag); f != "" {
		return f, nil
	}
	if f := c.settings.UI.DefaultFile; f != "" {
		return f, nil
	}
	return "", errors.New(c.tr.T(config.TKeyErrNoFile))
}

func (c *commandContext) saveOptions() repository.SaveOptions {
	return repository.SaveOptions{Overwrite: c.settings.Save.Overwrite}
}

// openRepository loads the contact file and prints load issues as warnings.
func (c *commandContext) openRepository(cmd *cobra.Command) (*repository.Repository, error) {
	path, err := c.contactFile()
	if err != nil {
		return nil, err
	}
	repo := repository.New(c.handler)
	if _, err := repo.LoadContacts(path); err != nil {
		return nil, err
	}
	c.printIssues(cmd.ErrOrStderr(), repo)
	return repo, nil
}

func (c *commandContext) printIssues(w io.Writer, repo *repository.Repository) {
	for _, issue := range repo.Issues() {
		fmt.Fprintln(w, c.tr.TData(config.TKeyWarnSkipped, map[string]any{
			"Line":  issue.Line,
			"Error": issue.Err,
		}))
	}
}

// save writes the repository back to the file it was loaded from.
func (c *commandContext) save(cmd *cobra.Command, repo *repository.Repository) error {
	if err := repo.SaveContacts("", c.saveOptions()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), c.tr.TData(config.TKeyMsgSaved, map[string]any{"File": repo.FileName()}))
	return nil
}

// parseIndex reads a working list position and checks it against repo.
func parseIndex(arg string, repo *repository.Repository) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("%s: %q", config.ErrIndexArg, arg)
	}
	if i < 0 || i >= repo.Len() {
		return 0, fmt.Errorf("%s: %d", config.ErrIndexRange, i)
	}
	return i, nil
}

func shouldSkipSettings(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations[annotationSkipSettings] == "true" {
			return true
		}
	}
	return false
}

const annotationSkipSettings = "skipSettingsLoad"
