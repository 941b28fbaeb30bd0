package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"ekiroute/pkg/batch"
	"ekiroute/pkg/ekispert"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bom = "\uFEFF"

func TestReadRows_Template(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(Template))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, batch.Row{
		ID:         "1",
		OriginName: "福岡市役所",
		OriginLat:  "33.5902",
		OriginLng:  "130.4017",
		DestName:   "博多駅",
		DestLat:    "33.5903",
		DestLng:    "130.4208",
	}, rows[0])
}

func TestReadRows_BOMBlankLinesAndOptionalColumns(t *testing.T) {
	input := bom + "dest_lng, origin_lat,origin_lng,dest_lat\r\n" +
		"130.4208 , 33.5902,130.4017,33.5903\r\n" +
		"\r\n" +
		"130.3009,33.2494,,33.2637\r\n"

	rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "33.5902", rows[0].OriginLat)
	assert.Equal(t, "130.4208", rows[0].DestLng)
	assert.Equal(t, "", rows[0].ID)
	assert.Equal(t, "", rows[0].OriginName)
	assert.Equal(t, "", rows[1].OriginLng)
	assert.False(t, rows[1].HasCoordinates())
}

func TestReadRows_MissingColumns(t *testing.T) {
	_, err := ReadRows(strings.NewReader("id,origin_lat,dest_lat\n1,33.5,33.6\n"))

	var mc *MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, []string{"origin_lng", "dest_lng"}, mc.Columns)
	assert.Equal(t, "missing required columns: origin_lng, dest_lng", err.Error())
}

func TestReadRows_Empty(t *testing.T) {
	_, err := ReadRows(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = ReadRows(strings.NewReader("origin_lat,origin_lng,dest_lat,dest_lng\n\n"))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestWriteResults(t *testing.T) {
	results := []batch.Result{
		{
			ID:          "1",
			OriginName:  "福岡市役所",
			DestName:    "博多駅",
			DistanceKm:  4.5,
			DurationMin: 22,
			CostYen:     260,
			DebugURL:    "https://api.example.test/?a=1&b=2",
			Segments:    []ekispert.Segment{{Mode: "Walk"}},
		},
		{
			ID:         "2",
			OriginName: "Tenjin, Fukuoka",
			DestName:   batch.UnsetName,
			Err:        batch.ErrMissingCoordinates,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, results))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, bom), "export should start with a BOM")

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, bom))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, ResultColumns, records[0])
	assert.Equal(t, []string{"1", "福岡市役所", "博多駅", "4.50", "22", "260", "Success", "https://api.example.test/?a=1&b=2"}, records[1])
	assert.Equal(t, []string{"2", "Tenjin, Fukuoka", "not set", "-", "-", "-", "Error: missing coordinates", ""}, records[2])
	assert.NotContains(t, out, "Walk")
}

func TestWriteTemplate_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), bom))

	rows, err := ReadRows(&buf)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
