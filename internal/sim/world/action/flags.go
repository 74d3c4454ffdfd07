package action

// Flags modify how a command runs. Only FlagApply changes what Run does; the
// rest are carried for nested commands and the finance layer.
type Flags uint32

const (
	FlagApply Flags = 1 << iota
	FlagGhost
	FlagNoSpend
	// FlagNetworked marks commands that arrived over a session.
	FlagNetworked
	// FlagAllowWhilePaused lets a command through while the park is paused.
	FlagAllowWhilePaused
	// FlagFromReplay marks commands re-run from a tick log.
	FlagFromReplay
	// FlagFromTrackDesign marks path pieces laid by a ride blueprint.
	FlagFromTrackDesign
	// FlagEditorOnly refuses the command outside editor mode.
	FlagEditorOnly
)

func (f Flags) Has(x Flags) bool { return f&x != 0 }

func (f Flags) Apply() bool { return f&FlagApply != 0 }

func (f Flags) Ghost() bool { return f&FlagGhost != 0 }

// Query strips the apply bit.
func (f Flags) Query() Flags { return f &^ FlagApply }

// Execute sets the apply bit.
func (f Flags) Execute() Flags { return f | FlagApply }
