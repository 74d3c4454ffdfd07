package action

import "parkcraft.ai/internal/sim/world/kernel/model"

type Status uint8

const (
	StatusOK Status = iota
	StatusInvalidParameters
	StatusDisallowed
	StatusNoFreeElements
	StatusItemAlreadyPlaced
	StatusNotInEditorMode
	StatusInsufficientFunds
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInvalidParameters:
		return "INVALID_PARAMETERS"
	case StatusDisallowed:
		return "DISALLOWED"
	case StatusNoFreeElements:
		return "NO_FREE_ELEMENTS"
	case StatusItemAlreadyPlaced:
		return "ITEM_ALREADY_PLACED"
	case StatusNotInEditorMode:
		return "NOT_IN_EDITOR_MODE"
	case StatusInsufficientFunds:
		return "INSUFFICIENT_FUNDS"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of a Query or Execute. On failure ErrorTitle and
// ErrorMessage are both set.
type Result struct {
	Status       Status
	ErrorTitle   StringID
	ErrorMessage StringID
	// ErrorArg names the blocking object for *_IN_THE_WAY messages.
	ErrorArg    string
	Cost        model.Money
	Expenditure model.ExpenditureType
	Position    model.Position
	Payload     Payload
}

func Success() Result { return Result{Status: StatusOK} }

func Fail(status Status, title, msg StringID) Result {
	return Result{Status: status, ErrorTitle: title, ErrorMessage: msg}
}

func (r Result) IsOK() bool { return r.Status == StatusOK }

// WithTitle replaces the failure title, used when a parent command reports a
// nested failure under its own heading.
func (r Result) WithTitle(title StringID) Result {
	if r.Status != StatusOK {
		r.ErrorTitle = title
	}
	return r
}

// Payload is a typed extra carried by a result.
type Payload interface {
	payload()
}

type GroundFlags uint8

const (
	GroundAbove GroundFlags = 1 << iota
	GroundUnder
	GroundUnderwater
)

func (g GroundFlags) Has(x GroundFlags) bool { return g&x != 0 }

// ClearancePayload reports where a construction volume sits relative to the
// surface and water.
type ClearancePayload struct {
	GroundFlags GroundFlags
}

func (ClearancePayload) payload() {}

// PathPayload identifies the path element a placement created or updated.
type PathPayload struct {
	Tile    model.TileXY
	Height  int
	Created bool
}

func (PathPayload) payload() {}
