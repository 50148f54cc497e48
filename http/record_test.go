package http

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpredictor/ml"
)

func TestDecodeRecord(t *testing.T) {
	record, err := decodeRecord(strings.NewReader(`{"Open":1.5,"High":"2","Low":"-Inf","Close":"NaN","Volume":1e6}` + "\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.5, record["Open"])
	assert.Equal(t, 2.0, record["High"])
	assert.True(t, math.IsInf(record["Low"], -1))
	assert.True(t, math.IsNaN(record["Close"]))
	assert.Equal(t, 1e6, record["Volume"])

	record, err = decodeRecord(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, ml.Record{}, record)
}

func TestDecodeRecordRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "null value", body: `{"Open":1,"Close":null}`, want: "Close: value is null"},
		{name: "text value", body: `{"Close":"ten"}`, want: `Close: "ten" is not a number`},
		{name: "bool value", body: `{"Close":true}`, want: "Close: true is not a number"},
		{name: "trailing data", body: `{"Close":7} garbage`, want: "unexpected data after record"},
		{name: "second object", body: `{"Close":7}{"Close":8}`, want: "unexpected data after record"},
		{name: "null record", body: `null`, want: "record must be a JSON object"},
		{name: "array", body: `[1,2,3]`},
		{name: "empty", body: ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRecord(strings.NewReader(tt.body))
			require.Error(t, err)
			if tt.want != "" {
				assert.EqualError(t, err, tt.want)
			}
		})
	}
}
