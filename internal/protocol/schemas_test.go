package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"parkcraft.ai/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	cmdSchema := compile("cmd.schema.json")
	resultSchema := compile("result.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "client_name":"editor1",
	  "capabilities":{"query_only":true,"max_queue":8}
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "session_id":"4f1c2b0e-9d7a-4c52-8f1e-2a6b1d3c9e70",
	  "world_id":"park_1",
	  "tick":12,
	  "world_params":{"tick_rate_hz":20,"map_size":128,"cash":"10000.00"},
	  "catalogs":{
	    "ride_types":{"digest":"deadbeef","count":3},
	    "small_scenery":{"digest":"deadbeef","count":2},
	    "footpaths":{"digest":"deadbeef","count":3},
	    "path_additions":{"digest":"deadbeef","count":2},
	    "walls":{"digest":"deadbeef","count":1}
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var cmd any
	_ = json.Unmarshal([]byte(`{
	  "type":"CMD",
	  "protocol_version":"1.0",
	  "id":"C1",
	  "kind":"FOOTPATH_PLACE",
	  "x":10,"y":10,"height":14,
	  "path_type":"TARMAC",
	  "direction":2
	}`), &cmd)
	validate(cmdSchema, cmd)

	var result any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "protocol_version":"1.0",
	  "tick":3,
	  "cmd_id":"C1",
	  "ok":false,
	  "code":"E_NO_FUNDS",
	  "status":"INSUFFICIENT_FUNDS",
	  "error_title":"CANT_BUILD_FOOTPATH_HERE",
	  "error_message":"NOT_ENOUGH_CASH_REQUIRES",
	  "cost":"12.00",
	  "position":[336,336,112],
	  "cash":"0.00"
	}`), &result)
	validate(resultSchema, result)
}

func TestSchemas_ValidateEncodedMessages(t *testing.T) {
	cmdSchema, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", "cmd.schema.json"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	resultSchema, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", "result.schema.json"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	roundTrip := func(s *jsonschema.Schema, msg any) {
		t.Helper()
		b, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate %s: %v", b, err)
		}
	}

	roundTrip(cmdSchema, protocol.CmdMsg{
		Type: protocol.TypeCmd, ProtocolVersion: protocol.Version, ID: "C2",
		Kind: protocol.CmdLandSetRights, X: 1, Y: 1, X2: 4, Y2: 4,
		Setting: "SET_OWNERSHIP_WITH_CHECKS", Ownership: 0x20,
	})
	roundTrip(cmdSchema, protocol.CmdMsg{
		Type: protocol.TypeCmd, ProtocolVersion: protocol.Version, ID: "C3",
		Kind: protocol.CmdFootpathLayoutPlace, X: 5, Y: 5, Height: 14, PathType: "TARMAC", Edges: 0x05,
		AllowWhilePaused: true, TrackDesign: true, EditorOnly: true,
	})
	roundTrip(resultSchema, protocol.ResultMsg{
		Type: protocol.TypeResult, ProtocolVersion: protocol.Version, CmdID: "C2",
		OK: true, Status: "OK", Cost: "80.00", Expenditure: "LAND_PURCHASE", Cash: "9920.00",
	})
}
