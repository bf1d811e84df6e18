package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSchemaClassifiesColumns(t *testing.T) {
	schema, err := InferSchema([]byte(riverFlowCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, schema.NumRows)
	assert.Equal(t, []Column{
		{Name: "id", DataType: NumberType},
		{Name: "value", DataType: NumberType},
		{Name: "observed_at", DataType: DatetimeType},
	}, schema.Columns)
}

func TestInferSchemaIsIdempotent(t *testing.T) {
	raw := []byte(riverFlowCSV)

	first, err := InferSchema(raw)
	require.NoError(t, err)
	second, err := InferSchema(raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, riverFlowCSV, string(raw))
}

func TestInferSchemaFallsBackToString(t *testing.T) {
	raw := "station,reading,when\nupper bridge,1.5,2021-03-01 12:00\nlower bridge,not measured,2021-03-01 12:10\nweir,2,not recorded\n"

	schema, err := InferSchema([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, 3, schema.NumRows)
	assert.Equal(t, StringType, schema.Columns[0].DataType)
	assert.Equal(t, StringType, schema.Columns[1].DataType)
	assert.Equal(t, StringType, schema.Columns[2].DataType)
}

func TestInferSchemaIgnoresNullValues(t *testing.T) {
	raw := "t,v,empty\n2020-01-01T00:00:00Z,,\n,NaN,NA\n2020-01-01T01:00:00Z,7,\n"

	schema, err := InferSchema([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, []Column{
		{Name: "t", DataType: DatetimeType},
		{Name: "v", DataType: NumberType},
		{Name: "empty", DataType: StringType},
	}, schema.Columns)
}

func TestInferSchemaSniffsSemicolonDelimiter(t *testing.T) {
	raw := "date;level\n01.02.2020;1,5\n02.02.2020;1,7\n"

	schema, err := InferSchema([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, 2, schema.NumRows)
	assert.Equal(t, "date", schema.Columns[0].Name)
	assert.Equal(t, "level", schema.Columns[1].Name)
}

func TestInferSchemaHeaderOnly(t *testing.T) {
	schema, err := InferSchema([]byte("a,b\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, schema.NumRows)
	assert.Equal(t, []Column{{Name: "a", DataType: StringType}, {Name: "b", DataType: StringType}}, schema.Columns)
}

func TestInferSchemaNamesBlankAndDuplicateHeaders(t *testing.T) {
	schema, err := InferSchema([]byte("a,,a\n1,2,3\n"))
	require.NoError(t, err)

	assert.Equal(t, "a", schema.Columns[0].Name)
	assert.Equal(t, "Unnamed: 1", schema.Columns[1].Name)
	assert.Equal(t, "a.1", schema.Columns[2].Name)
}

func TestInferSchemaRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"whitespace":      "  \n ",
		"ragged rows":     "a,b\n1,2\n3\n",
		"unbalanced quote": "a,b\n\"1,2\n",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := InferSchema([]byte(raw))
			require.Error(t, err)

			var inferenceErr *SchemaInferenceError
			assert.True(t, errors.As(err, &inferenceErr))
		})
	}
}

func TestInferSchemaStripsByteOrderMark(t *testing.T) {
	schema, err := InferSchema([]byte("\xef\xbb\xbfid\n1\n"))
	require.NoError(t, err)

	assert.Equal(t, "id", schema.Columns[0].Name)
}

func TestParseDatetimeRejectsBareNumbers(t *testing.T) {
	for _, v := range []string{"1", "2020", "20200101", "1577836800", "3.5"} {
		_, ok := ParseDatetime(v)
		assert.False(t, ok, v)
	}

	parsed, ok := ParseDatetime("2020-01-02")
	require.True(t, ok)
	assert.True(t, parsed.Equal(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)))
}
