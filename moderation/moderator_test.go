package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_Censors_Listed_Word(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badword"}, '*')
	req.NoError(err)

	// When censoring a message containing a listed word
	out, found := mod.Censor("this is a badword in a sentence")

	// Then the word is masked and reported
	req.Equal("this is a ******* in a sentence", out)
	req.Equal([]string{"badword"}, found)
}

func TestModerator_Censors_Leet_Speak_Variant(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badword"}, '*')
	req.NoError(err)

	// Given a leet-speak obfuscated variant
	out, found := mod.Censor("b4dw0rd alert")

	// Then normalization still catches it
	req.Equal("******* alert", out)
	req.Len(found, 1)
}

func TestModerator_Leaves_Clean_Text_Untouched(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badword"}, '*')
	req.NoError(err)

	in := "please take your medication twice a day"
	out, found := mod.Censor(in)

	req.Equal(in, out)
	req.Empty(found)
}

func TestModerator_Empty_Input(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badword"}, '*')
	req.NoError(err)

	out, found := mod.Censor("")
	req.Equal("", out)
	req.Empty(found)
}

func TestDetectLanguage_English(t *testing.T) {
	req := require.New(t)

	code := DetectLanguage("the patient reported mild symptoms this morning")
	req.Equal("en", code)
}
