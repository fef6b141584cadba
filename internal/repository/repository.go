// Package repository holds the contacts loaded from one vCard file and
// orchestrates load, save, filter, delete and pending-edit merges.
package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/tartampluch/vcard-editor/internal/card"
	"github.com/tartampluch/vcard-editor/internal/config"
	"github.com/tartampluch/vcard-editor/internal/fileio"
)

var (
	// ErrIO wraps every failure of the file handler.
	ErrIO = errors.New(config.ErrIO)
	// ErrInvalidOperation is returned when a save has no target file.
	ErrInvalidOperation = errors.New(config.ErrInvalidOp)
)

// SaveOptions controls how SaveContacts treats an existing target file.
type SaveOptions struct {
	// Overwrite replaces the target in place. When false the previous
	// content is kept as <path>.old.
	Overwrite bool
}

// Contact is a card plus the editing flags of the surrounding application.
type Contact struct {
	Card     *card.Card
	Selected bool
	Deleted  bool
	Dirty    bool
}

// Name returns the display name of the contact.
func (c Contact) Name() string {
	if c.Card == nil {
		return ""
	}
	return c.Card.DisplayName()
}

func (c *Contact) snapshot() Contact {
	cp := *c
	cp.Card = c.Card.Clone()
	return cp
}

// Repository is not safe for concurrent use.
type Repository struct {
	io       fileio.Handler
	contacts []*Contact
	pristine []*Contact
	fileName string
	dirty    bool
	issues   []*card.ParseError
}

// New returns an empty repository backed by h.
func New(h fileio.Handler) *Repository {
	return &Repository{io: h}
}

// LoadContacts replaces the repository content with the records of path.
// Malformed records are skipped; see Issues. When path cannot be read the
// repository keeps its current content and file name.
func (r *Repository) LoadContacts(path string) ([]Contact, error) {
	start := time.Now()
	slog.Info(config.MsgLoadStarted,
		config.LogKeyComponent, config.CompRepository,
		config.LogKeyFile, path)

	lines, err := r.io.ReadLines(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, config.ErrReadFile, err)
	}

	res := card.Split(lines)
	r.contacts = make([]*Contact, 0, len(res.Cards))
	for _, c := range res.Cards {
		r.contacts = append(r.contacts, &Contact{Card: c})
	}
	r.pristine = append([]*Contact(nil), r.contacts...)
	r.issues = res.Issues
	r.fileName = path
	r.dirty = false

	slog.Info(config.MsgLoadDone,
		config.LogKeyComponent, config.CompRepository,
		config.LogKeyFile, path,
		config.LogKeyCount, len(r.contacts),
		config.LogKeySkipped, len(r.issues),
		config.LogKeyDuration, time.Since(start).Milliseconds())

	return r.Contacts(), nil
}

// SaveContacts writes every non-deleted contact of the working list.
// An empty path reuses the last loaded or saved file. A failed write is not
// rolled back: with Overwrite disabled the backup has already been moved.
func (r *Repository) SaveContacts(path string, opts SaveOptions) error {
	if path == "" {
		path = r.fileName
	}
	if path == "" {
		return fmt.Errorf("%w: %s", ErrInvalidOperation, config.ErrNoPath)
	}

	slog.Info(config.MsgSaveStarted,
		config.LogKeyComponent, config.CompRepository,
		config.LogKeyFile, path,
		config.LogKeyOverwrite, opts.Overwrite)

	var sb strings.Builder
	for _, c := range r.contacts {
		if c.Deleted {
			continue
		}
		text, err := card.Write(c.Card)
		if err != nil {
			return err
		}
		sb.WriteString(text)
	}

	if !opts.Overwrite && r.io.FileExists(path) {
		backup := path + config.BackupSuffix
		if err := r.io.MoveFile(path, backup); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrIO, config.ErrBackupFile, err)
		}
		slog.Info(config.MsgBackupCreated,
			config.LogKeyComponent, config.CompRepository,
			config.LogKeyBackup, backup)
	}

	if err := r.io.WriteAllText(path, sb.String()); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrIO, config.ErrWriteFile, err)
	}

	r.fileName = path
	r.dirty = false

	slog.Info(config.MsgSaveDone,
		config.LogKeyComponent, config.CompRepository,
		config.LogKeyFile, path,
		config.LogKeySizeBytes, sb.Len())
	return nil
}

// DeleteContact tombstones every selected contact of the working list and
// drops it from that list. The pristine list keeps the entry.
func (r *Repository) DeleteContact() {
	deleted := 0
	for i := len(r.contacts) - 1; i >= 0; i-- {
		c := r.contacts[i]
		if !c.Selected {
			continue
		}
		c.Deleted = true
		c.Selected = false
		c.Dirty = false
		r.contacts = append(r.contacts[:i], r.contacts[i+1:]...)
		deleted++
	}
	if deleted == 0 {
		return
	}
	r.dirty = true

	slog.Info(config.MsgContactsDel,
		config.LogKeyComponent, config.CompRepository,
		config.LogKeyDeleted, deleted,
		config.LogKeyTotal, len(r.contacts))
}

// FilterContacts rebuilds the working list from the pristine list, keeping
// the non-deleted contacts whose display name contains substr under Unicode
// case folding. An empty substr resets the filter.
func (r *Repository) FilterContacts(substr string) []Contact {
	fold := cases.Fold()
	needle := fold.String(substr)

	r.contacts = make([]*Contact, 0, len(r.pristine))
	for _, c := range r.pristine {
		if c.Deleted {
			continue
		}
		if needle == "" || strings.Contains(fold.String(c.Name()), needle) {
			r.contacts = append(r.contacts, c)
		}
	}

	slog.Debug(config.MsgFilterApplied,
		config.LogKeyComponent, config.CompRepository,
		config.LogKeyFilter, substr,
		config.LogKeyCount, len(r.contacts))

	return r.Contacts()
}

// SetDirtyFlag marks the contact at index as having an edit pending.
func (r *Repository) SetDirtyFlag(index int) {
	if c := r.at(index); c != nil {
		c.Dirty = true
	}
}

// SaveDirtyVCard merges shadow into the contact at index if an edit is
// pending for it.
func (r *Repository) SaveDirtyVCard(index int, shadow *card.Card) {
	c := r.at(index)
	if c == nil || !c.Dirty || shadow == nil {
		return
	}

	card.Merge(c.Card, shadow)
	card.MergeAddresses(c.Card, shadow)
	c.Dirty = false
	if !r.anyDirty() {
		r.dirty = false
	}

	slog.Debug(config.MsgMergeApplied,
		config.LogKeyComponent, config.CompRepository,
		config.LogKeyIndex, index,
		config.LogKeyDirty, r.Dirty())
}

// Dirty reports whether the repository has changes not yet saved.
func (r *Repository) Dirty() bool {
	return r.dirty || r.anyDirty()
}

func (r *Repository) anyDirty() bool {
	for _, c := range r.pristine {
		if c.Dirty && !c.Deleted {
			return true
		}
	}
	return false
}

// Contacts returns a copy of the working list.
func (r *Repository) Contacts() []Contact {
	out := make([]Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		out = append(out, c.snapshot())
	}
	return out
}

// Contact returns a copy of the contact at index.
func (r *Repository) Contact(index int) (Contact, bool) {
	c := r.at(index)
	if c == nil {
		return Contact{}, false
	}
	return c.snapshot(), true
}

// Len is the size of the working list.
func (r *Repository) Len() int { return len(r.contacts) }

// FileName is the file last loaded or saved.
func (r *Repository) FileName() string { return r.fileName }

// Issues lists the records skipped by the last load.
func (r *Repository) Issues() []*card.ParseError {
	return append([]*card.ParseError(nil), r.issues...)
}

// Select marks or unmarks the contact at index for deletion.
func (r *Repository) Select(index int, selected bool) {
	if c := r.at(index); c != nil {
		c.Selected = selected
	}
}

// AddEmptyContact appends a new contact with a fresh UID and returns its
// index in the working list.
func (r *Repository) AddEmptyContact() int {
	c := card.New()
	c.SetValue(vcard.FieldFormattedName, "")
	c.SetValue(vcard.FieldUID, config.VCardUIDPrefix+uuid.NewString())

	contact := &Contact{Card: c}
	r.contacts = append(r.contacts, contact)
	r.pristine = append(r.pristine, contact)
	r.dirty = true

	index := len(r.contacts) - 1
	slog.Info(config.MsgContactAdded,
		config.LogKeyComponent, config.CompRepository,
		config.LogKeyIndex, index)
	return index
}

// ModifyImage replaces the photos of the contact at index.
func (r *Repository) ModifyImage(index int, photo []byte, ext string) {
	c := r.at(index)
	if c == nil {
		return
	}
	c.Card.SetPhoto(photo, ext)
	r.dirty = true

	slog.Info(config.MsgPhotoReplaced,
		config.LogKeyComponent, config.CompRepository,
		config.LogKeyIndex, index,
		config.LogKeySizeBytes, len(photo))
}

// SaveImageToDisk writes the first photo of the contact at index to path.
// When path has no extension, the one matching the image format is added.
func (r *Repository) SaveImageToDisk(index int, path string) (string, error) {
	c := r.at(index)
	if c == nil {
		return "", fmt.Errorf("%s: %d", config.ErrIndexRange, index)
	}
	p, err := c.Card.Photo()
	if err != nil {
		return "", err
	}
	if r.io.GetExtension(path) == "" {
		path += p.Ext
	}
	if err := r.io.WriteBytes(path, p.Data); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrIO, config.ErrWriteFile, err)
	}

	slog.Info(config.MsgPhotoSaved,
		config.LogKeyComponent, config.CompRepository,
		config.LogKeyFile, path,
		config.LogKeySizeBytes, len(p.Data))
	return path, nil
}

// GenerateStringFromVCard returns the vCard text of the contact at index.
func (r *Repository) GenerateStringFromVCard(index int) (string, error) {
	c := r.at(index)
	if c == nil {
		return "", fmt.Errorf("%s: %d", config.ErrIndexRange, index)
	}
	return card.Write(c.Card)
}

func (r *Repository) at(index int) *Contact {
	if index < 0 || index >= len(r.contacts) {
		return nil
	}
	return r.contacts[index]
}
