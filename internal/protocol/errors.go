package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Rule/command layer.
	ErrBadRequest   = "E_BAD_REQUEST"
	ErrNoPermission = "E_NO_PERMISSION"
	ErrNoResource   = "E_NO_RESOURCE"
	ErrConflict     = "E_CONFLICT"
	ErrBlocked      = "E_BLOCKED"
	ErrNotEditor    = "E_NOT_EDITOR"
	ErrNoFunds      = "E_NO_FUNDS"
	ErrInternal     = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrNoPermission:    {},
	ErrNoResource:      {},
	ErrConflict:        {},
	ErrBlocked:         {},
	ErrNotEditor:       {},
	ErrNoFunds:         {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
