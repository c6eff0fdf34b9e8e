package lexicon

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/wordduel/config"
)

const (
	kwgAccepts = 0x800000
	kwgIsEnd   = 0x400000
)

func kwgNode(tile byte, arc uint32, flags uint32) uint32 {
	return uint32(tile)<<24 | flags | arc
}

// writeTinyLexicon lays out a data directory holding an english letter
// distribution and a word graph that accepts only AT and CAT.
func writeTinyLexicon(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()

	var dist strings.Builder
	dist.WriteString("?,2,0,0\n")
	for c := 'A'; c <= 'Z'; c++ {
		fmt.Fprintf(&dist, "%c,1,1,0\n", c)
	}
	ldDir := filepath.Join(dir, "letterdistributions")
	if err := os.MkdirAll(ldDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ldDir, "english"), []byte(dist.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	// A=1, C=3, T=20 once the blank takes 0.
	nodes := []uint32{
		kwgNode(0, 2, kwgIsEnd),             // dawg root
		kwgNode(0, 0, kwgIsEnd),             // gaddag root, unused
		kwgNode(1, 4, 0),                    // A
		kwgNode(3, 5, kwgIsEnd),             // C
		kwgNode(20, 0, kwgAccepts|kwgIsEnd), // AT
		kwgNode(1, 6, kwgIsEnd),             // CA
		kwgNode(20, 0, kwgAccepts|kwgIsEnd), // CAT
	}
	gdDir := filepath.Join(dir, "lexica", "gaddag")
	if err := os.MkdirAll(gdDir, 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(gdDir, name+".kwg"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, nodes); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadKWG(t *testing.T) {
	is := is.New(t)
	name := "NWL_WORDDUEL_KWG"
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigDataPath, writeTinyLexicon(t, name))

	lex, err := LoadKWG(cfg.WGLConfig(), name)
	is.NoErr(err)
	is.Equal(lex.Name(), name)
	is.True(lex.IsValid("CAT"))
	is.True(lex.IsValid("AT"))
	is.True(!lex.IsValid("CA"))
	is.True(!lex.IsValid("TAC"))
	is.True(!lex.IsValid("C4T"))

	v := ValidateWords(lex, []string{"CAT", "ACT"})
	is.Equal(v.InvalidWords, []string{"ACT"})
}

func TestFromConfigLoadsKWG(t *testing.T) {
	is := is.New(t)
	name := "NWL_WORDDUEL_CFG"
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigDataPath, writeTinyLexicon(t, name))
	cfg.Set(config.ConfigKWGLexicon, name)

	lex, err := FromConfig(cfg)
	is.NoErr(err)
	is.Equal(lex.Name(), name)
	is.True(lex.IsValid("AT"))
}
