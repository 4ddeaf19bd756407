package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aallbrig/swarmui/catalog"
	"github.com/aallbrig/swarmui/models"
)

func TestCommands_skipsUndescribed(t *testing.T) {
	cmds := catalog.Commands(catalog.Frames)
	for _, d := range cmds {
		assert.NotEmpty(t, d.Description, d.Type)
		assert.NotEqual(t, "FrameHeartbeat", d.Type)
		assert.NotEqual(t, "FrameTelemetry", d.Type)
	}
	assert.Len(t, cmds, len(catalog.Frames)-2)
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "Move", catalog.CommandName(catalog.Descriptor{Type: "FrameMove"}))
	assert.Equal(t, "Frame", catalog.CommandName(catalog.Descriptor{Type: "Frame"}))
}

func TestCommandNames_notReserved(t *testing.T) {
	for _, d := range catalog.Commands(catalog.Frames) {
		assert.False(t, models.IsReserved(catalog.CommandName(d)), d.Type)
	}
}

func TestSchema(t *testing.T) {
	d := catalog.Descriptor{Type: "FrameMove", Fields: []catalog.Field{{Name: "x", Kind: catalog.Int}, {Name: "y", Kind: catalog.Int}}}
	assert.Equal(t, []models.Param{{Name: "x", Kind: "int"}, {Name: "y", Kind: "int"}}, catalog.Schema(d))
	assert.Empty(t, catalog.Schema(catalog.Descriptor{Type: "FrameHalt"}))
}
