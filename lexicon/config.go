package lexicon

import (
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordduel/config"
)

// FromConfig loads the lexicon the configuration names. A word list file
// takes precedence over a KWG; with neither, every word is accepted.
func FromConfig(cfg *config.Config) (Lexicon, error) {
	if path := cfg.GetString(config.ConfigLexiconPath); path != "" {
		return LoadWordList(path)
	}
	if name := cfg.GetString(config.ConfigKWGLexicon); name != "" {
		return LoadKWG(cfg.WGLConfig(), name)
	}
	log.Warn().Msg("no-lexicon-configured-accepting-all-words")
	return AcceptAll{}, nil
}
