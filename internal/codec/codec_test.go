package codec

import (
	"bytes"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battleship-ai/internal/game"
	"battleship-ai/internal/merkle"
)

func TestParseHex(t *testing.T) {
	for _, s := range []string{"0x1f", "0X1f", "1f", " 0x1F "} {
		n, err := ParseHex(s)
		require.NoError(t, err, s)
		assert.Equal(t, int64(31), n.Int64())
	}
	for _, s := range []string{"", "0x", "0xzz"} {
		_, err := ParseHex(s)
		assert.Error(t, err, s)
	}
	assert.Equal(t, "0xff", FormatHex(big.NewInt(255)))
}

func TestSecretRoot(t *testing.T) {
	tree, err := merkle.Build(make([]uint8, 100))
	require.NoError(t, err)
	sec := Secret{Tree: tree, SaltHex: "0x2a"}
	root, err := sec.Root()
	require.NoError(t, err)
	assert.Equal(t, merkle.SaltedRoot(big.NewInt(42), tree.Root()), root)

	_, err = Secret{Tree: tree}.Root()
	assert.Error(t, err)
	_, err = Secret{SaltHex: "0x2a"}.Root()
	assert.Error(t, err)
}

type sample struct {
	ID    string       `json:"id"`
	Cells []game.Coord `json:"cells"`
	Won   bool         `json:"won"`
}

func TestRecordsRoundTrip(t *testing.T) {
	recs := []sample{
		{ID: "a", Cells: []game.Coord{{Row: 1, Col: 2}}, Won: true},
		{ID: "b", Cells: []game.Coord{{Row: 9, Col: 9}, {Row: 0, Col: 0}}},
	}
	for _, f := range []Format{FormatJSON, FormatCBOR} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteRecords(&buf, f, recs))
			got, err := ReadRecords[sample](&buf, f)
			require.NoError(t, err)
			assert.Equal(t, recs, got)
		})
	}
}

func TestCBORIsSmaller(t *testing.T) {
	recs := make([]sample, 20)
	for i := range recs {
		recs[i] = sample{ID: "game", Cells: []game.Coord{{Row: i % 10, Col: i / 2}}}
	}
	var j, c bytes.Buffer
	require.NoError(t, WriteRecords(&j, FormatJSON, recs))
	require.NoError(t, WriteRecords(&c, FormatCBOR, recs))
	assert.Less(t, c.Len(), j.Len())
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteRecords(&buf, Format("xml"), []sample{}))
	_, err := ReadRecords[sample](&buf, Format("xml"))
	assert.Error(t, err)
}

func TestSaveRecordsByExtension(t *testing.T) {
	assert.Equal(t, FormatCBOR, FormatFor("games.CBOR"))
	assert.Equal(t, FormatJSON, FormatFor("games.json"))
	assert.Equal(t, FormatJSON, FormatFor("games"))

	path := filepath.Join(t.TempDir(), "games.cbor")
	recs := []sample{{ID: "x"}}
	require.NoError(t, SaveRecords(path, recs))

	var decoded []sample
	assert.Error(t, LoadJSON(path, &decoded), "cbor file is not json")
}
