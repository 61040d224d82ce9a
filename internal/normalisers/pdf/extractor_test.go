package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/normalisers/pdf/pdftest"
)

func TestNew(t *testing.T) {
	e := New()
	require.NotNil(t, e)
	assert.Equal(t, []string{".pdf"}, e.Extensions())
}

func TestExtract_PerPageRecords(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "paper.pdf",
		"Transformers use attention.",
		"Second page line one\nSecond page line two",
	)

	records, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "paper.pdf", records[0].Provenance.Source)
	assert.Equal(t, domain.PageNumber(1), records[0].Provenance.Page)
	assert.Contains(t, records[0].Text, "Transformers use attention.")

	assert.Equal(t, domain.PageNumber(2), records[1].Provenance.Page)
	assert.Contains(t, records[1].Text, "Second page line one")
	assert.Contains(t, records[1].Text, "Second page line two")
	assert.NotContains(t, records[1].Text, "attention")
}

func TestExtract_EscapedCharacters(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "esc.pdf", `f(x) = a \ b`)

	records, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, `f(x) = a \ b`, strings.TrimSpace(records[0].Text))
}

func TestExtract_BlankPageKept(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "blank.pdf", "first", "", "third")

	records, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Empty(t, strings.TrimSpace(records[1].Text))
	assert.Equal(t, domain.PageNumber(3), records[2].Provenance.Page)
}

func TestExtract_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := New().Extract(context.Background(), filepath.Join(dir, "nope.pdf"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrExtraction))
		assert.True(t, errors.Is(err, domain.ErrCollaborator))
		assert.Contains(t, err.Error(), "nope.pdf")
	})

	t.Run("not a pdf", func(t *testing.T) {
		path := filepath.Join(dir, "fake.pdf")
		require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o600))

		_, err := New().Extract(context.Background(), path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrExtraction))
		assert.Contains(t, err.Error(), "fake.pdf")
	})
}

func TestExtract_CancelledContext(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "paper.pdf", "page")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = New()
}
