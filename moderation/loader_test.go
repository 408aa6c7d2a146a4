package moderation

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/require"

	"telechat/errors"
)

//go:embed testdata/*.txt
var testFolder embed.FS

//go:embed testdata/empty/*
var emptyFolder embed.FS

func Test_LoadAll_Merges_Languages_And_Dedupes(t *testing.T) {
	req := require.New(t)
	loader := NewLoader(testFolder)

	// When loading both dictionaries
	data, err := loader.LoadAll("testdata")

	// Then languages are tracked and duplicates collapse
	req.NoError(err)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)
	req.ElementsMatch([]string{"badword", "slur", "grosmot"}, data.Words)
}

func Test_LoadAll_Empty_Folder(t *testing.T) {
	req := require.New(t)
	loader := NewLoader(emptyFolder)

	_, err := loader.LoadAll("testdata/empty")
	req.ErrorIs(err, errors.ErrEmptyWordList)
}

func Test_LoadAll_Unknown_Path(t *testing.T) {
	req := require.New(t)
	loader := NewLoader(testFolder)

	_, err := loader.LoadAll("missing")
	req.Error(err)
}
