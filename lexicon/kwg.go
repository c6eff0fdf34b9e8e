package lexicon

import (
	"fmt"

	wglconfig "github.com/domino14/word-golib/config"
	"github.com/domino14/word-golib/kwg"
	"github.com/domino14/word-golib/tilemapping"
)

// KWGLexicon checks words against a compiled word graph loaded through
// word-golib.
type KWGLexicon struct {
	name string
	lex  kwg.Lexicon
	alph *tilemapping.TileMapping
}

// LoadKWG loads the named lexicon from the data path in cfg. The letter
// distribution is guessed from the lexicon name, so NWL23 needs an english
// distribution file alongside it.
func LoadKWG(cfg *wglconfig.Config, name string) (*KWGLexicon, error) {
	k, err := kwg.GetKWG(cfg, name)
	if err != nil {
		return nil, fmt.Errorf("loading kwg %s: %w", name, err)
	}
	return &KWGLexicon{
		name: name,
		lex:  kwg.Lexicon{KWG: *k},
		alph: k.GetAlphabet(),
	}, nil
}

func (l *KWGLexicon) Name() string {
	return l.name
}

func (l *KWGLexicon) IsValid(word string) bool {
	mw, err := tilemapping.ToMachineWord(word, l.alph)
	if err != nil {
		return false
	}
	return l.lex.HasWord(mw)
}
