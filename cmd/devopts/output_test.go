package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOutput(t *testing.T) {
	l := listing{
		Skin:  "two_items",
		Slots: 1,
		Options: []optionInfo{
			{Name: "wifi", ID: 300, Class: "half", Text: "Wi-Fi", Enabled: true, On: true},
			{Name: "sound", ID: 400, Class: "half", Text: "Sound", SubText: "Mute", Enabled: false},
		},
		Gated: []string{"accessibility"},
	}

	tests := []struct {
		format string
		want   []string
	}{
		{formatText, []string{"Skin: two_items (1 rows)", "wifi", "Wi-Fi", "Sound / Mute", "off (unavailable)", "Gated off: [accessibility]"}},
		{formatJSON, []string{`"skin": "two_items"`, `"name": "wifi"`, `"subtext": "Mute"`, `"gated": [`}},
		{formatYAML, []string{"skin: two_items", "- name: wifi", "subtext: Mute", "gated:"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeOutput(&buf, tt.format, l, func(w io.Writer) error {
				return writeListText(w, l)
			})
			require.NoError(t, err)
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	err := writeOutput(io.Discard, "xml", nil, nil)
	assert.ErrorContains(t, err, "unknown output format")
}

func TestWriteAssets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAssets(&buf, []assetInfo{
		{Name: "default", Bundled: true, Active: true},
		{Name: "mine", Path: "/tmp/mine.css"},
	}))

	out := buf.String()
	assert.Contains(t, out, "bundled")
	assert.Contains(t, out, "/tmp/mine.css")
	assert.Contains(t, out, "*")
}
