package repository_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emersion/go-vcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/vcard-editor/internal/card"
	"github.com/tartampluch/vcard-editor/internal/fileio"
	"github.com/tartampluch/vcard-editor/internal/repository"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockHandler records file operations so save ordering can be asserted.
type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) ReadLines(path string) ([]string, error) {
	args := m.Called(path)
	if l := args.Get(0); l != nil {
		return l.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHandler) WriteAllText(path, contents string) error {
	return m.Called(path, contents).Error(0)
}

func (m *MockHandler) MoveFile(src, dst string) error {
	return m.Called(src, dst).Error(0)
}

func (m *MockHandler) FileExists(path string) bool {
	return m.Called(path).Bool(0)
}

func (m *MockHandler) GetExtension(path string) string {
	return m.Called(path).String(0)
}

func (m *MockHandler) WriteBytes(path string, data []byte) error {
	return m.Called(path, data).Error(0)
}

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

func vcardLines(names ...string) []string {
	var out []string
	for _, n := range names {
		out = append(out,
			"BEGIN:VCARD",
			"VERSION:3.0",
			"FN:"+n,
			"TEL;TYPE=home:111",
			"TEL;TYPE=cell:222",
			"TEL;TYPE=work:333",
			"END:VCARD",
		)
	}
	return out
}

var fiveNames = []string{"Alice", "Bob", "Natalia", "Carol", "Dave"}

func writeFile(t *testing.T, names ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	content := strings.Join(vcardLines(names...), "\r\n") + "\r\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loaded(t *testing.T, names ...string) (*repository.Repository, string) {
	t.Helper()
	path := writeFile(t, names...)
	repo := repository.New(fileio.OS{})
	_, err := repo.LoadContacts(path)
	require.NoError(t, err)
	return repo, path
}

func names(contacts []repository.Contact) []string {
	out := make([]string, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, c.Name())
	}
	return out
}

// -----------------------------------------------------------------------------
// Load
// -----------------------------------------------------------------------------

func TestLoadContacts_FileOrder(t *testing.T) {
	repo, path := loaded(t, fiveNames...)

	assert.Equal(t, fiveNames, names(repo.Contacts()))
	assert.Equal(t, path, repo.FileName())
	assert.False(t, repo.Dirty())
	assert.Empty(t, repo.Issues())
}

func TestLoadContacts_ReportsIssues(t *testing.T) {
	lines := append(vcardLines("Alice"), "FN:garbage", "END:VCARD")
	lines = append(lines, vcardLines("Bob")...)

	h := new(MockHandler)
	h.On("ReadLines", "in.vcf").Return(lines, nil)

	repo := repository.New(h)
	contacts, err := repo.LoadContacts("in.vcf")
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "Bob"}, names(contacts))
	require.Len(t, repo.Issues(), 1)
	assert.Equal(t, 8, repo.Issues()[0].Line)
}

func TestLoadContacts_Unreadable(t *testing.T) {
	repo := repository.New(fileio.OS{})
	_, err := repo.LoadContacts(filepath.Join(t.TempDir(), "missing.vcf"))

	assert.ErrorIs(t, err, repository.ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadContacts_ClearsPreviousState(t *testing.T) {
	repo, _ := loaded(t, "Alice", "Bob")
	repo.AddEmptyContact()
	require.True(t, repo.Dirty())

	other := writeFile(t, "Zed")
	contacts, err := repo.LoadContacts(other)
	require.NoError(t, err)

	assert.Equal(t, []string{"Zed"}, names(contacts))
	assert.False(t, repo.Dirty())
}

// -----------------------------------------------------------------------------
// Save
// -----------------------------------------------------------------------------

func TestLoadContacts_FailedReloadKeepsContent(t *testing.T) {
	repo, path := loaded(t, "Alice", "Bob")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = repo.LoadContacts(filepath.Join(t.TempDir(), "missing.vcf"))
	require.ErrorIs(t, err, repository.ErrIO)

	assert.Equal(t, []string{"Alice", "Bob"}, names(repo.Contacts()))
	assert.Equal(t, path, repo.FileName())

	require.NoError(t, repo.SaveContacts("", repository.SaveOptions{Overwrite: true}))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestSaveContacts_NoPath(t *testing.T) {
	repo := repository.New(new(MockHandler))
	err := repo.SaveContacts("", repository.SaveOptions{Overwrite: true})
	assert.ErrorIs(t, err, repository.ErrInvalidOperation)
}

func TestSaveContacts_ReusesLoadedPath(t *testing.T) {
	repo, path := loaded(t, "Alice", "Bob")
	repo.AddEmptyContact()

	require.NoError(t, repo.SaveContacts("", repository.SaveOptions{Overwrite: true}))
	assert.False(t, repo.Dirty())

	reread := repository.New(fileio.OS{})
	contacts, err := reread.LoadContacts(path)
	require.NoError(t, err)
	assert.Len(t, contacts, 3)
}

func TestSaveContacts_BackupHoldsPreviousContent(t *testing.T) {
	repo, path := loaded(t, fiveNames...)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// A stale backup from an earlier session is replaced.
	require.NoError(t, os.WriteFile(path+".old", []byte("stale"), 0o644))

	repo.Select(0, true)
	repo.DeleteContact()
	require.NoError(t, repo.SaveContacts(path, repository.SaveOptions{Overwrite: false}))

	backup, err := os.ReadFile(path + ".old")
	require.NoError(t, err)
	assert.Equal(t, before, backup)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(after), "FN:Alice")
}

func TestSaveContacts_BackupMovedBeforeWrite(t *testing.T) {
	h := new(MockHandler)
	h.On("ReadLines", "c.vcf").Return(vcardLines("Alice"), nil)
	h.On("FileExists", "c.vcf").Return(true)

	var order []string
	h.On("MoveFile", "c.vcf", "c.vcf.old").Return(nil).Run(func(mock.Arguments) {
		order = append(order, "move")
	})
	h.On("WriteAllText", "c.vcf", mock.AnythingOfType("string")).Return(nil).Run(func(mock.Arguments) {
		order = append(order, "write")
	})

	repo := repository.New(h)
	_, err := repo.LoadContacts("c.vcf")
	require.NoError(t, err)
	require.NoError(t, repo.SaveContacts("", repository.SaveOptions{}))

	assert.Equal(t, []string{"move", "write"}, order)
	h.AssertExpectations(t)
}

func TestSaveContacts_OverwriteSkipsBackup(t *testing.T) {
	h := new(MockHandler)
	h.On("ReadLines", "c.vcf").Return(vcardLines("Alice"), nil)
	h.On("WriteAllText", "c.vcf", mock.AnythingOfType("string")).Return(nil)

	repo := repository.New(h)
	_, err := repo.LoadContacts("c.vcf")
	require.NoError(t, err)
	require.NoError(t, repo.SaveContacts("", repository.SaveOptions{Overwrite: true}))

	h.AssertNotCalled(t, "MoveFile", mock.Anything, mock.Anything)
	h.AssertNotCalled(t, "FileExists", mock.Anything)
}

func TestSaveContacts_WriteFailureKeepsDirty(t *testing.T) {
	h := new(MockHandler)
	h.On("ReadLines", "c.vcf").Return(vcardLines("Alice", "Bob"), nil)
	h.On("WriteAllText", "c.vcf", mock.Anything).Return(errors.New("disk full"))

	repo := repository.New(h)
	_, err := repo.LoadContacts("c.vcf")
	require.NoError(t, err)
	repo.Select(1, true)
	repo.DeleteContact()

	err = repo.SaveContacts("", repository.SaveOptions{Overwrite: true})
	assert.ErrorIs(t, err, repository.ErrIO)
	assert.True(t, repo.Dirty())
}

// -----------------------------------------------------------------------------
// Delete & Filter
// -----------------------------------------------------------------------------

func TestDeleteContact_TailToHead(t *testing.T) {
	repo, path := loaded(t, fiveNames...)
	for _, i := range []int{0, 1, 4} {
		repo.Select(i, true)
	}

	repo.DeleteContact()

	assert.Equal(t, []string{"Natalia", "Carol"}, names(repo.Contacts()))
	assert.True(t, repo.Dirty())

	// The old index 4 now points past the list.
	repo.Select(4, true)
	repo.SetDirtyFlag(4)
	_, ok := repo.Contact(4)
	assert.False(t, ok)

	require.NoError(t, repo.SaveContacts("", repository.SaveOptions{Overwrite: true}))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, gone := range []string{"Alice", "Bob", "Dave"} {
		assert.NotContains(t, string(out), "FN:"+gone)
	}
}

func TestDeleteContact_NothingSelected(t *testing.T) {
	repo, _ := loaded(t, "Alice")
	repo.DeleteContact()
	assert.False(t, repo.Dirty())
	assert.Equal(t, 1, repo.Len())
}

func TestFilterContacts(t *testing.T) {
	repo, _ := loaded(t, fiveNames...)

	got := repo.FilterContacts("ALI")
	assert.Equal(t, []string{"Alice", "Natalia"}, names(got))

	// Delete Natalia from the filtered view, then check it never comes back.
	repo.Select(1, true)
	repo.DeleteContact()

	assert.Equal(t, []string{"Alice"}, names(repo.FilterContacts("ali")))
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dave"}, names(repo.FilterContacts("")))
}

func TestFilterContacts_UnicodeFolding(t *testing.T) {
	repo, _ := loaded(t, "Élodie", "Ørjan", "Bob")

	assert.Equal(t, []string{"Élodie"}, names(repo.FilterContacts("éLO")))
	assert.Equal(t, []string{"Ørjan"}, names(repo.FilterContacts("ør")))
}

func TestAddEmptyContact_SurvivesFilterReset(t *testing.T) {
	repo, _ := loaded(t, "Alice")
	idx := repo.AddEmptyContact()
	assert.Equal(t, 1, idx)

	c, ok := repo.Contact(idx)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(c.Card.UID(), "urn:uuid:"))
	assert.Equal(t, "", c.Card.FormattedName())

	repo.FilterContacts("alice")
	assert.Equal(t, 1, repo.Len())
	repo.FilterContacts("")
	assert.Equal(t, 2, repo.Len())
}

// -----------------------------------------------------------------------------
// Dirty tracking & merge
// -----------------------------------------------------------------------------

func shadowFor(name string) *card.Card {
	s := card.New()
	s.SetFormattedName(name)
	s.SetSlot(card.Phones, card.SlotCell, "222")
	s.SetSlot(card.Phones, card.SlotWork, "333")
	return s
}

func TestSaveDirtyVCard_ClearsHomeKeepsEntry(t *testing.T) {
	repo, _ := loaded(t, "Alice")

	repo.SetDirtyFlag(0)
	assert.True(t, repo.Dirty())
	repo.SaveDirtyVCard(0, shadowFor("Alice"))

	c, _ := repo.Contact(0)
	home := c.Card.First(card.Phones, card.SlotHome)
	require.NotNil(t, home)
	assert.Equal(t, "", home.Value)
	assert.Equal(t, "222", c.Card.SlotValue(card.Phones, card.SlotCell))
	assert.Equal(t, "333", c.Card.SlotValue(card.Phones, card.SlotWork))
	assert.False(t, repo.Dirty())
}

func TestSaveDirtyVCard_NotDirtyIsNoop(t *testing.T) {
	repo, _ := loaded(t, "Alice")
	repo.SaveDirtyVCard(0, shadowFor("Changed"))
	repo.SaveDirtyVCard(7, shadowFor("Changed"))

	c, _ := repo.Contact(0)
	assert.Equal(t, "Alice", c.Name())
}

func TestSaveDirtyVCard_AggregateStaysDirty(t *testing.T) {
	repo, _ := loaded(t, "Alice", "Bob")
	repo.SetDirtyFlag(0)
	repo.SetDirtyFlag(1)

	repo.SaveDirtyVCard(0, shadowFor("Alice"))
	assert.True(t, repo.Dirty(), "Bob still has a pending edit")

	repo.SaveDirtyVCard(1, shadowFor("Bob"))
	assert.False(t, repo.Dirty())
}

func TestSaveDirtyVCard_AggregateBitFromDeleteSurvives(t *testing.T) {
	repo, _ := loaded(t, "Alice", "Bob")
	repo.Select(1, true)
	repo.DeleteContact()

	repo.SetDirtyFlag(0)
	repo.SaveDirtyVCard(0, shadowFor("Alice"))

	assert.True(t, repo.Dirty(), "The deletion is still unsaved")
}

func TestDeleteContact_DropsPendingEdit(t *testing.T) {
	repo, _ := loaded(t, "Alice", "Bob")
	repo.SetDirtyFlag(0)
	repo.Select(0, true)
	repo.DeleteContact()
	require.True(t, repo.Dirty())

	require.NoError(t, repo.SaveContacts("", repository.SaveOptions{Overwrite: true}))
	assert.False(t, repo.Dirty())

	repo.SetDirtyFlag(0)
	shadow, _ := repo.Contact(0)
	repo.SaveDirtyVCard(0, shadow.Card)
	assert.False(t, repo.Dirty(), "Only the live contact had an edit pending")
}

func TestContacts_AreSnapshots(t *testing.T) {
	repo, _ := loaded(t, "Alice")

	snap := repo.Contacts()
	snap[0].Card.SetFormattedName("Mallory")
	snap[0].Selected = true

	c, _ := repo.Contact(0)
	assert.Equal(t, "Alice", c.Name())
	assert.False(t, c.Selected)
}

// -----------------------------------------------------------------------------
// Photos & text export
// -----------------------------------------------------------------------------

var gifBytes = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")

func TestPhoto_SetThenExport(t *testing.T) {
	repo, _ := loaded(t, "Alice")
	repo.ModifyImage(0, gifBytes, ".gif")
	assert.True(t, repo.Dirty())

	out := filepath.Join(t.TempDir(), "alice")
	written, err := repo.SaveImageToDisk(0, out)
	require.NoError(t, err)
	assert.Equal(t, out+".gif", written)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, gifBytes, data)
}

func TestPhoto_ExportWithoutPhoto(t *testing.T) {
	repo, _ := loaded(t, "Alice")
	_, err := repo.SaveImageToDisk(0, filepath.Join(t.TempDir(), "x.jpg"))
	assert.ErrorIs(t, err, card.ErrNoPhoto)

	_, err = repo.SaveImageToDisk(3, "x.jpg")
	assert.Error(t, err)
}

func TestGenerateStringFromVCard(t *testing.T) {
	repo, _ := loaded(t, "Alice")

	text, err := repo.GenerateStringFromVCard(0)
	require.NoError(t, err)

	c, err := card.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "Alice", c.Value(vcard.FieldFormattedName))

	_, err = repo.GenerateStringFromVCard(1)
	assert.Error(t, err)
}
