package world

import (
	"fmt"

	"parkcraft.ai/internal/protocol"
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/feature/footpath"
	"parkcraft.ai/internal/sim/world/feature/landrights"
	"parkcraft.ai/internal/sim/world/feature/landscape"
	"parkcraft.ai/internal/sim/world/feature/water"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/slope"
)

// command is any editing command the world can dispatch.
type command interface {
	Query(env edit.Env, flags action.Flags) action.Result
	Execute(env edit.Env, flags action.Flags) action.Result
}

type decodeError struct {
	msg action.StringID
	why string
}

func (e *decodeError) Error() string { return e.why }

func badParam(msg action.StringID, format string, args ...any) error {
	return &decodeError{msg: msg, why: fmt.Sprintf(format, args...)}
}

func (w *World) decodeCommand(c protocol.CmdMsg) (command, error) {
	tile := model.TileXY{X: c.X, Y: c.Y}
	area := func() model.TileRange {
		if c.X2 == 0 && c.Y2 == 0 {
			return model.NewTileRange(c.X, c.Y, c.X, c.Y)
		}
		return model.NewTileRange(c.X, c.Y, c.X2, c.Y2)
	}
	sel := slope.Selection(c.Selection)

	switch c.Kind {
	case protocol.CmdLandSetHeight:
		return landscape.SetHeight{Tile: tile, Height: c.Height, Slope: c.Slope}, nil
	case protocol.CmdLandRaise:
		return landscape.Raise{Range: area(), Selection: sel}, nil
	case protocol.CmdLandLower:
		return landscape.Lower{Range: area(), Selection: sel}, nil
	case protocol.CmdLandSmooth:
		return landscape.Smooth{Range: area(), Selection: sel, Lowering: c.Lowering}, nil
	case protocol.CmdLandSetRights:
		setting, ok := landrights.ParseSetting(c.Setting)
		if !ok {
			return nil, badParam(action.StrInvalidOwnershipSetting, "unknown setting %q", c.Setting)
		}
		return landrights.SetRights{Range: area(), Setting: setting, Ownership: c.Ownership}, nil
	case protocol.CmdWaterSetHeight:
		return water.SetHeight{Tile: tile, Height: c.Height}, nil
	case protocol.CmdWaterRaise:
		return water.Raise{Range: area()}, nil
	case protocol.CmdWaterLower:
		return water.Lower{Range: area()}, nil
	case protocol.CmdFootpathPlace, protocol.CmdFootpathLayoutPlace:
		idx, ok := w.catalogs.Footpaths.Index[c.PathType]
		if !ok || idx > 0xFF {
			return nil, badParam(action.StrInvalidPathType, "unknown path type %q", c.PathType)
		}
		if c.Kind == protocol.CmdFootpathLayoutPlace {
			return footpath.LayoutPlace{
				Tile: tile, Height: c.Height, Type: uint8(idx), Railings: c.Railings,
				Slope: c.Slope, Edges: c.Edges, Queue: c.Queue,
			}, nil
		}
		dir := model.InvalidDirection
		if c.Direction != nil {
			dir = model.Direction(*c.Direction)
		}
		return footpath.Place{
			Tile: tile, Height: c.Height, Type: uint8(idx), Railings: c.Railings,
			Direction: dir, Slope: c.Slope, Queue: c.Queue,
		}, nil
	default:
		return nil, badParam(action.StrUnknownCommand, "unknown command kind %q", c.Kind)
	}
}

type commandOutcome struct {
	OK   bool
	cost model.Money
	msg  protocol.ResultMsg
}

// commandFlags maps the wire switches of c onto run flags.
func commandFlags(c protocol.CmdMsg, replay bool) action.Flags {
	flags := action.FlagNetworked
	if c.Ghost {
		flags |= action.FlagGhost
	}
	if c.NoSpend {
		flags |= action.FlagNoSpend
	}
	if c.AllowWhilePaused {
		flags |= action.FlagAllowWhilePaused
	}
	if c.TrackDesign {
		flags |= action.FlagFromTrackDesign
	}
	if c.EditorOnly {
		flags |= action.FlagEditorOnly
	}
	if replay {
		flags |= action.FlagFromReplay
	}
	return flags
}

// runCommand prices the command, checks funds, then executes and pays for it.
// A query-only session never gets past pricing.
func (w *World) runCommand(nowTick uint64, sessionID string, c protocol.CmdMsg, queryOnly, replay bool) commandOutcome {
	w.sounds = w.sounds[:0]

	cmd, err := w.decodeCommand(c)
	if err != nil {
		msg := action.StrCantDoThis
		if de, ok := err.(*decodeError); ok {
			msg = de.msg
		}
		return w.outcome(nowTick, c, action.Fail(action.StatusInvalidParameters, action.StrCantDoThis, msg))
	}

	flags := commandFlags(c, replay)
	if w.stepPaused && !flags.Has(action.FlagAllowWhilePaused) {
		return w.outcome(nowTick, c, action.Fail(action.StatusDisallowed, action.StrCantDoThis, action.StrGamePaused))
	}
	if flags.Has(action.FlagEditorOnly) && !w.cfg.Rules.EditorMode {
		return w.outcome(nowTick, c, action.Fail(action.StatusNotInEditorMode, action.StrCantDoThis, action.StrNotInEditorMode))
	}

	res := cmd.Query(w.newEnv(), flags)
	if res.IsOK() && !w.canAfford(res.Cost, flags) {
		res = insufficientFunds(res)
	}
	if !res.IsOK() || c.Query || queryOnly {
		return w.outcome(nowTick, c, res)
	}

	env := w.newEnv()
	res = cmd.Execute(env, flags)
	w.auditSession(nowTick, sessionID, c, env.sess, flags.Has(action.FlagFromReplay))
	if res.IsOK() {
		w.spend(res, flags)
	}
	return w.outcome(nowTick, c, res)
}

func insufficientFunds(res action.Result) action.Result {
	out := action.Fail(action.StatusInsufficientFunds, action.StrCantDoThis, action.StrNotEnoughCash)
	out.ErrorArg = res.Cost.String()
	out.Cost = res.Cost
	out.Expenditure = res.Expenditure
	out.Position = res.Position
	return out
}

func (w *World) outcome(nowTick uint64, c protocol.CmdMsg, res action.Result) commandOutcome {
	msg := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		CmdID:           c.ID,
		OK:              res.IsOK(),
		Code:            ResultCode(res),
		Status:          res.Status.String(),
		ErrorTitle:      string(res.ErrorTitle),
		ErrorMessage:    string(res.ErrorMessage),
		ErrorArg:        res.ErrorArg,
		Cost:            res.Cost.String(),
		Position:        [3]int{res.Position.X, res.Position.Y, res.Position.Z},
		Cash:            w.cash.String(),
	}
	if res.Expenditure != model.ExpenditureNone {
		msg.Expenditure = res.Expenditure.String()
	}
	for _, s := range w.sounds {
		msg.Sounds = append(msg.Sounds, s.String())
	}
	return commandOutcome{OK: res.IsOK(), cost: res.Cost, msg: msg}
}

// ResultCode maps a command outcome onto the wire error codes.
func ResultCode(res action.Result) string {
	switch res.Status {
	case action.StatusOK:
		return ""
	case action.StatusInvalidParameters:
		return protocol.ErrBadRequest
	case action.StatusDisallowed:
		switch res.ErrorMessage {
		case action.StrLandNotOwnedByPark, action.StrForbiddenByLocalAuth,
			action.StrLandNotForSale, action.StrRightsNotForSale:
			return protocol.ErrNoPermission
		}
		return protocol.ErrBlocked
	case action.StatusNoFreeElements:
		return protocol.ErrNoResource
	case action.StatusItemAlreadyPlaced:
		return protocol.ErrConflict
	case action.StatusNotInEditorMode:
		return protocol.ErrNotEditor
	case action.StatusInsufficientFunds:
		return protocol.ErrNoFunds
	default:
		return protocol.ErrInternal
	}
}

func (w *World) auditSession(nowTick uint64, actor string, c protocol.CmdMsg, sess *edit.Session, replay bool) {
	if w.auditLogger == nil {
		return
	}
	for _, xy := range sess.TouchedTiles() {
		sf := w.tiles.SurfaceAt(xy)
		if sf == nil {
			continue
		}
		_ = w.auditLogger.WriteAudit(AuditEntry{
			Tick:      nowTick,
			Actor:     actor,
			Action:    c.Kind,
			CmdID:     c.ID,
			Tile:      [2]int{xy.X, xy.Y},
			Base:      sf.BaseHeight,
			Slope:     sf.Slope,
			Water:     sf.WaterHeight,
			Ownership: sf.Ownership,
			Elements:  len(w.tiles.Elements(xy)),
			Reason:    sess.Reason(xy),
			Replay:    replay,
		})
	}
}
