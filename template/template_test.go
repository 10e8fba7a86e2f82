package template

import (
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

func TestParseFlatTile(t *testing.T) {
	is := is.New(t)

	rt, err := ParseFlatTile("1b,3", 4)
	is.NoErr(err)
	is.Equal(rt, RequiredTile{Code: "1B", GroupSize: 3, Position: 4})

	rt, err = ParseFlatTile(" Db , 1 ", 0)
	is.NoErr(err)
	is.Equal(rt, RequiredTile{Code: "Db", GroupSize: 1, Position: 0})

	rt, err = ParseFlatTile("F", 2)
	is.NoErr(err)
	is.Equal(rt.GroupSize, 1)

	_, err = ParseFlatTile("", 0)
	is.True(err != nil)
	_, err = ParseFlatTile(",3", 0)
	is.True(err != nil)
	_, err = ParseFlatTile("1b,three", 0)
	is.True(err != nil)
	_, err = ParseFlatTile("1b,0", 0)
	is.True(err != nil)
}

func TestVariantCopyDoesNotAlias(t *testing.T) {
	is := is.New(t)
	v := MustVariant("v1", "one", "1b,3", "1b,3", "1b,3")
	c := v.Copy()
	c.RequiredTiles[0].Code = "9C"
	is.Equal(v.RequiredTiles[0].Code, "1B")
	is.Equal(c.ID, v.ID)
	is.Equal(v.String(), "1B 1B 1B")
}

func TestLoadLibraryJSON(t *testing.T) {
	is := is.New(t)
	lib, err := LoadLibrary("testdata/small.json")
	is.NoErr(err)
	is.Equal(lib.Version, "1.0.0")
	is.Equal(len(lib.Templates), 2)
	is.Equal(lib.NumVariations(), 2)

	pungs, ok := lib.ByID("pungs")
	is.True(ok)
	is.Equal(pungs.Image, "111 222 33")
	is.Equal(pungs.CatID, "test")
	is.Equal(pungs.Variations[0].ID, "pungs-v1")
	is.Equal(pungs.Variations[0].Name, "Variation 1")
	is.Equal(pungs.Variations[0].NumTiles(), 8)
	is.Equal(pungs.Variations[1].ID, "pungs-dragons")
	is.Equal(pungs.Variations[1].Name, "Dragons")
	is.Equal(pungs.Variations[1].RequiredTiles[3], RequiredTile{Code: "Dc", GroupSize: 1, Position: 3})

	_, ok = lib.ByID("nope")
	is.True(!ok)
}

func TestLoadLibraryYAMLMatchesJSON(t *testing.T) {
	is := is.New(t)
	fromJSON, err := LoadLibrary("testdata/small.json")
	is.NoErr(err)
	fromYAML, err := LoadLibrary("testdata/small.yaml")
	is.NoErr(err)
	assert.Equal(t, fromJSON, fromYAML)
}

func TestLoadLibraryErrors(t *testing.T) {
	is := is.New(t)

	_, err := LoadLibrary("testdata/bad_schema.json")
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "schema"))

	_, err = LoadLibrary("testdata/bad_size.yaml")
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "broken"))

	_, err = LoadLibrary("testdata/small.txt")
	is.True(err != nil)

	_, err = ReadJSON(strings.NewReader(`{"version": "1"}`))
	is.True(err != nil)
}

func TestReadYAMLEmpty(t *testing.T) {
	is := is.New(t)
	lib, err := ReadYAML(strings.NewReader(""))
	is.NoErr(err)
	is.Equal(len(lib.Templates), 0)
}

func TestValidate(t *testing.T) {
	lib, err := LoadLibrary("testdata/small.json")
	assert.NoError(t, err)

	warnings := lib.Validate()
	msgs := make([]string, len(warnings))
	for i, w := range warnings {
		msgs[i] = w.String()
	}
	assert.Equal(t, []string{
		"pungs/pungs-v1: has 8 tiles, expected 14",
		"pungs/pungs-dragons: has 5 tiles, expected 14",
		"empty: no variations",
	}, msgs)
	assert.Equal(t, []string{"empty"}, lib.EmptyTemplates())
}

func TestValidateGroupRuns(t *testing.T) {
	lib := &Library{Templates: []HandTemplate{{
		ID: "t",
		Variations: []Variant{
			MustVariant("v", "v", "1b,3", "1b,3", "2b,4", "2b,4", "2b,4", "2b,4",
				"3b,1", "4b,1", "5b,1", "6b,1", "7b,1", "8b,1", "9b,1", "F,1"),
		},
	}}}
	warnings := lib.Validate()
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "run of 2 1B tiles")
}

func TestLibraryFixture(t *testing.T) {
	is := is.New(t)
	lib, err := LoadLibrary("../testdata/library.json")
	is.NoErr(err)
	is.Equal(len(lib.Templates), 5)
	// Only the placeholder template is flagged; every real variation lists 14
	// tiles in whole groups.
	is.Equal(len(lib.Validate()), 1)
}
