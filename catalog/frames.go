// Package catalog is the static registry of robot frame types that are
// exposed as built-in parameterized commands.
package catalog

import "github.com/aallbrig/swarmui/models"

// FieldKind is the declared value kind of a frame field.
type FieldKind string

const (
	Int    FieldKind = "int"
	Float  FieldKind = "float"
	Bool   FieldKind = "bool"
	String FieldKind = "string"
	Bytes  FieldKind = "bytes"
)

// Field is one named, typed payload field of a frame.
type Field struct {
	Name string
	Kind FieldKind
}

// Descriptor declares one frame type. Only descriptors with a description
// become commands.
type Descriptor struct {
	Type        string
	Description string
	Fields      []Field
}

// TypePrefix is stripped from a frame type to form its command name.
const TypePrefix = "Frame"

// TypePrefixLen is the fixed number of leading characters stripped.
const TypePrefixLen = len(TypePrefix)

// Frames lists every frame type the robots understand, in declaration order.
var Frames = []Descriptor{
	{
		Type:        "FrameMove",
		Description: "Drive the robot by a relative offset in millimetres",
		Fields:      []Field{{"x", Int}, {"y", Int}},
	},
	{
		Type:        "FrameRotate",
		Description: "Rotate in place by the given angle in degrees",
		Fields:      []Field{{"angle", Float}},
	},
	{
		Type:        "FrameSpeed",
		Description: "Set left and right motor speed",
		Fields:      []Field{{"left", Int}, {"right", Int}},
	},
	{
		Type:        "FrameLed",
		Description: "Set the status LED colour",
		Fields:      []Field{{"red", Int}, {"green", Int}, {"blue", Int}},
	},
	{
		Type:        "FrameBuzzer",
		Description: "Sound the buzzer",
		Fields:      []Field{{"frequency", Int}, {"duration", Int}},
	},
	{
		Type:        "FrameSensor",
		Description: "Request a single sensor reading",
		Fields:      []Field{{"sensor", String}},
	},
	{
		Type:        "FrameDock",
		Description: "Return to the charging dock",
		Fields:      []Field{{"station", Int}, {"reverse", Bool}},
	},
	{
		Type:        "FrameHalt",
		Description: "Cut power to all motors",
	},
	// Link-level frames, never typed by an operator.
	{
		Type:   "FrameHeartbeat",
		Fields: []Field{{"sequence", Int}},
	},
	{
		Type:   "FrameTelemetry",
		Fields: []Field{{"payload", Bytes}},
	},
}

// Commands returns the descriptors that carry a description, order kept.
func Commands(descs []Descriptor) []Descriptor {
	var out []Descriptor
	for _, d := range descs {
		if d.Description != "" {
			out = append(out, d)
		}
	}
	return out
}

// CommandName strips the fixed-length type prefix.
func CommandName(d Descriptor) string {
	if len(d.Type) <= TypePrefixLen {
		return d.Type
	}
	return d.Type[TypePrefixLen:]
}

// Schema derives the ordered parameter schema from the frame's fields.
func Schema(d Descriptor) []models.Param {
	params := make([]models.Param, 0, len(d.Fields))
	for _, f := range d.Fields {
		params = append(params, models.Param{Name: f.Name, Kind: string(f.Kind)})
	}
	return params
}
