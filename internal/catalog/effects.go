package catalog

// EffectTiming describes when a card effect wants to run.
type EffectTiming string

const (
	TimingOnPlay        EffectTiming = "ON_PLAY"
	TimingWhenAttacking EffectTiming = "WHEN_ATTACKING"
	TimingOnBlock       EffectTiming = "ON_BLOCK"
	TimingOnKO          EffectTiming = "ON_KO"
	TimingActivateMain  EffectTiming = "ACTIVATE_MAIN"
	TimingCounter       EffectTiming = "COUNTER"
	TimingTrigger       EffectTiming = "TRIGGER" // life card reveal
	TimingStartOfTurn   EffectTiming = "START_OF_TURN"
	TimingEndOfTurn     EffectTiming = "END_OF_TURN"
	TimingPreGame       EffectTiming = "PRE_GAME"
)

// EffectOp enumerates the structured operations the engine can execute.
type EffectOp string

const (
	OpPowerBoost    EffectOp = "POWER_BOOST"     // +Amount power until end of turn
	OpKOCharacter   EffectOp = "KO_CHARACTER"    // KO characters matching Filter
	OpDrawCards     EffectOp = "DRAW_CARDS"      // draw Amount
	OpRestCharacter EffectOp = "REST_CHARACTER"  // rest characters matching Filter
	OpReadyDon      EffectOp = "READY_DON"       // set Amount rested DON active
	OpDeckReveal    EffectOp = "DECK_REVEAL"     // reveal top Amount, pick matching cards to hand
	OpTrashFromHand EffectOp = "TRASH_FROM_HAND" // owner trashes hand cards
	OpReturnToHand  EffectOp = "RETURN_TO_HAND"  // bounce characters matching Filter
	OpGrantKeyword  EffectOp = "GRANT_KEYWORD"   // grant Keyword until end of turn
	OpChooseOption  EffectOp = "CHOOSE_OPTION"   // modal: pick one of Options
	OpTakeCard      EffectOp = "TAKE_CARD"       // pre-game: move one of the valid cards to hand
)

// CostType describes an optional additional cost gating an effect.
type CostType string

const (
	CostRestDon   CostType = "REST_DON"
	CostTrashHand CostType = "TRASH_HAND"
)

// CostDef is an additional cost the owner may pay or decline.
type CostDef struct {
	Type   CostType `yaml:"type"`
	Amount int      `yaml:"amount"`
}

// TargetFilter narrows which cards an effect may touch.
// Zero values mean "no restriction".
type TargetFilter struct {
	Owner    string   `yaml:"owner"` // "SELF", "OPPONENT", "" = any
	Type     CardType `yaml:"type"`
	MaxCost  int      `yaml:"max_cost"`
	MaxPower int      `yaml:"max_power"`
	Rested   bool     `yaml:"rested"` // only RESTED cards
}

// OptionDef is one branch of a modal effect.
type OptionDef struct {
	ID     string   `yaml:"id"`
	Label  string   `yaml:"label"`
	Op     EffectOp `yaml:"op"`
	Amount int      `yaml:"amount"`
}

// EffectDef is a structured effect a card carries. The engine turns these
// into pending decisions when player input is required.
type EffectDef struct {
	Timing     EffectTiming `yaml:"timing"`
	Op         EffectOp     `yaml:"op"`
	Amount     int          `yaml:"amount"`
	Keyword    Keyword      `yaml:"keyword"`
	MinTargets int          `yaml:"min_targets"`
	MaxTargets int          `yaml:"max_targets"`
	Optional   bool         `yaml:"optional"`
	Filter     TargetFilter `yaml:"filter"`
	Cost       *CostDef     `yaml:"cost"`
	Options    []OptionDef  `yaml:"options"`
}
