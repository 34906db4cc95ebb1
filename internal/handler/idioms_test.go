package handler

import (
	"testing"

	"idioviet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

func uniques(markup *tele.ReplyMarkup) [][]string {
	out := make([][]string, 0, len(markup.InlineKeyboard))
	for _, row := range markup.InlineKeyboard {
		var r []string
		for _, btn := range row {
			r = append(r, btn.Unique)
		}
		out = append(out, r)
	}
	return out
}

func TestCardText(t *testing.T) {
	idiom := testutil.NewTestIdiom(2, "Ăn quả nhớ kẻ trồng cây", "Ăn quả", "nhớ kẻ trồng cây")

	text := cardText(idiom, 2, 25)

	assert.Contains(t, text, "📖 Ăn quả nhớ kẻ trồng cây")
	assert.Contains(t, text, "Ăn quả · nhớ kẻ trồng cây")
	assert.Contains(t, text, "2/25")
	assert.NotContains(t, text, "🗺")

	idiom.Dialect = "Southern"
	assert.Contains(t, cardText(idiom, 2, 25), "🗺 Southern")
}

func TestDetailsText(t *testing.T) {
	idiom := testutil.NewTestIdiom(1, "Càng đông, càng vui", "Càng đông,", "càng vui")

	text := detailsText(idiom)

	assert.Contains(t, text, "Literally: literal Càng đông, càng vui")
	assert.Contains(t, text, "Meaning: meaning Càng đông, càng vui")
	assert.Contains(t, text, "🇻🇳 Càng đông, càng vui.")
	assert.Contains(t, text, "🇬🇧 example Càng đông, càng vui")
}

func TestCardMarkup(t *testing.T) {
	cat := testutil.NewTestCatalog(t)
	idiom, ok := cat.Get(1)
	require.True(t, ok)

	markup := cardMarkup(idiom, false, cat)

	assert.Equal(t, [][]string{
		{"say_1"},
		{"chunk_1_0", "chunk_1_1"},
		{"save_1", "info_1"},
		{"card_3", "main_menu", "card_2"},
	}, uniques(markup))
	assert.Equal(t, "☆ Save", markup.InlineKeyboard[2][0].Text)
	assert.Equal(t, "▶️ càng vui", markup.InlineKeyboard[1][1].Text)

	saved := cardMarkup(idiom, true, cat)
	assert.Equal(t, "⭐ Saved", saved.InlineKeyboard[2][0].Text)
}

func TestCardMarkup_OddChunkCount(t *testing.T) {
	cat := testutil.NewTestCatalog(t)
	idiom := testutil.NewTestIdiom(3, "a b c", "a", "b", "c")

	markup := cardMarkup(idiom, false, cat)

	rows := uniques(markup)
	assert.Equal(t, []string{"chunk_3_0", "chunk_3_1"}, rows[1])
	assert.Equal(t, []string{"chunk_3_2"}, rows[2])
	assert.Equal(t, []string{"card_2", "main_menu", "card_1"}, rows[4])
}

func TestPosition(t *testing.T) {
	cat := testutil.NewTestCatalog(t)

	assert.Equal(t, 1, position(cat, 1))
	assert.Equal(t, 3, position(cat, 3))
	assert.Equal(t, 0, position(cat, 42))
}

func TestIdiomArg(t *testing.T) {
	h := &Handler{catalog: testutil.NewTestCatalog(t)}

	idiom, ok := h.idiomArg([]string{"2"}, 0)
	require.True(t, ok)
	assert.Equal(t, "Ăn quả nhớ kẻ trồng cây", idiom.Phrase)

	_, ok = h.idiomArg([]string{"99"}, 0)
	assert.False(t, ok)

	_, ok = h.idiomArg([]string{"x"}, 0)
	assert.False(t, ok)
}
