package protocol

// Command kinds carried by CMD.
const (
	CmdLandSetHeight       = "LAND_SET_HEIGHT"
	CmdLandRaise           = "LAND_RAISE"
	CmdLandLower           = "LAND_LOWER"
	CmdLandSmooth          = "LAND_SMOOTH"
	CmdLandSetRights       = "LAND_SET_RIGHTS"
	CmdWaterSetHeight      = "WATER_SET_HEIGHT"
	CmdWaterRaise          = "WATER_RAISE"
	CmdWaterLower          = "WATER_LOWER"
	CmdFootpathPlace       = "FOOTPATH_PLACE"
	CmdFootpathLayoutPlace = "FOOTPATH_LAYOUT_PLACE"
)

// CMD (client -> server). Parameters are flat; each kind reads the fields it
// needs. Single-tile kinds use X,Y; area kinds use X,Y to X2,Y2.
type CmdMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Kind            string `json:"kind"`

	// Query prices the command without applying it.
	Query   bool `json:"query,omitempty"`
	Ghost   bool `json:"ghost,omitempty"`
	NoSpend bool `json:"no_spend,omitempty"`
	// AllowWhilePaused runs the command even when the park is paused.
	AllowWhilePaused bool `json:"allow_while_paused,omitempty"`
	// TrackDesign marks footpath layout pieces that belong to a ride blueprint.
	TrackDesign bool `json:"track_design,omitempty"`
	// EditorOnly refuses the command unless the park is in editor mode.
	EditorOnly bool `json:"editor_only,omitempty"`

	X  int `json:"x"`
	Y  int `json:"y"`
	X2 int `json:"x2,omitempty"`
	Y2 int `json:"y2,omitempty"`

	Height    int    `json:"height,omitempty"`
	Slope     uint8  `json:"slope,omitempty"`
	Selection uint8  `json:"selection,omitempty"`
	Lowering  bool   `json:"lowering,omitempty"`
	Setting   string `json:"setting,omitempty"`
	Ownership uint8  `json:"ownership,omitempty"`

	PathType  string `json:"path_type,omitempty"`
	Railings  uint8  `json:"railings,omitempty"`
	Direction *uint8 `json:"direction,omitempty"`
	Edges     uint8  `json:"edges,omitempty"`
	Queue     bool   `json:"queue,omitempty"`
}

// RESULT (server -> client), one per CMD.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	CmdID           string `json:"cmd_id"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Status          string `json:"status"`
	ErrorTitle      string `json:"error_title,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`
	ErrorArg        string `json:"error_arg,omitempty"`
	Cost            string `json:"cost"`
	Expenditure     string `json:"expenditure,omitempty"`
	Position        [3]int `json:"position"`
	Cash            string `json:"cash"`
	// Sounds are feedback cues for the client, in play order.
	Sounds []string `json:"sounds,omitempty"`
}
