package catalog

import "strings"

// CardType classifies a catalog entry.
type CardType string

const (
	TypeLeader    CardType = "LEADER"
	TypeCharacter CardType = "CHARACTER"
	TypeEvent     CardType = "EVENT"
	TypeStage     CardType = "STAGE"
)

// Keyword is a printed or granted ability keyword.
type Keyword string

const (
	KeywordRush         Keyword = "RUSH"
	KeywordBlocker      Keyword = "BLOCKER"
	KeywordDoubleAttack Keyword = "DOUBLE_ATTACK"
	KeywordBanish       Keyword = "BANISH"
	KeywordTrigger      Keyword = "TRIGGER"
)

// Definition is the static, read-only description of a card.
// Runtime state (rest, modifiers, granted keywords) lives on the game card,
// never here.
type Definition struct {
	ID           string      `yaml:"id"`
	Name         string      `yaml:"name"`
	Type         CardType    `yaml:"type"`
	Color        string      `yaml:"color"`
	Cost         int         `yaml:"cost"`
	Power        int         `yaml:"power"`
	CounterValue int         `yaml:"counter"`
	Life         int         `yaml:"life"` // leaders only
	Keywords     []Keyword   `yaml:"keywords"`
	Effects      []EffectDef `yaml:"effects"`
}

// HasKeyword reports whether the printed keyword list contains kw.
func (d *Definition) HasKeyword(kw Keyword) bool {
	for _, k := range d.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// Lookup resolves catalog identifiers to static definitions.
// A miss is not an error: the engine treats unknown cards as vanilla.
type Lookup interface {
	GetCard(catalogID string) (*Definition, bool)
}

// Static is an in-memory catalog, used for tests and for catalogs
// loaded from disk.
type Static map[string]*Definition

// GetCard implements Lookup.
func (s Static) GetCard(catalogID string) (*Definition, bool) {
	def, ok := s[strings.TrimSpace(catalogID)]
	return def, ok
}

// NewStatic builds a Static catalog from definitions, keyed by ID.
func NewStatic(defs ...*Definition) Static {
	s := make(Static, len(defs))
	for _, d := range defs {
		if d != nil && d.ID != "" {
			s[d.ID] = d
		}
	}
	return s
}
