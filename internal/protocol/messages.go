package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ClientName      string            `json:"client_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
	Auth            *HelloAuth        `json:"auth,omitempty"`
}

type HelloCapabilities struct {
	// QueryOnly clients may price commands but never apply them.
	QueryOnly bool `json:"query_only,omitempty"`
	MaxQueue  int  `json:"max_queue,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	WorldID         string         `json:"world_id"`
	Tick            uint64         `json:"tick"`
	QueryOnly       bool           `json:"query_only,omitempty"`
	WorldParams     WorldParams    `json:"world_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type WorldParams struct {
	TickRateHz int    `json:"tick_rate_hz"`
	MapSize    int    `json:"map_size"`
	EditorMode bool   `json:"editor_mode,omitempty"`
	Sandbox    bool   `json:"sandbox,omitempty"`
	NoMoney    bool   `json:"no_money,omitempty"`
	Cash       string `json:"cash"`
}

type CatalogDigests struct {
	RideTypes     DigestRef `json:"ride_types"`
	SmallScenery  DigestRef `json:"small_scenery"`
	Footpaths     DigestRef `json:"footpaths"`
	PathAdditions DigestRef `json:"path_additions"`
	Walls         DigestRef `json:"walls"`
	TuningDigest  string    `json:"tuning_digest,omitempty"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}
