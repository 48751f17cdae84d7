package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFirstValue_ObjectWithPrefix(t *testing.T) {
	value, err := DecodeFirstValue(`[UnityCrossThreadLogger]Some label: {"a": 1, "b": "two"}`)
	require.NoError(t, err)

	obj, ok := value.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), obj["a"])
	assert.Equal(t, "two", obj["b"])
}

func TestDecodeFirstValue_TrailingTextTolerated(t *testing.T) {
	value, err := DecodeFirstValue(`prefix {"a": 1} trailing garbage that is not JSON`)
	require.NoError(t, err)

	obj, ok := value.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, obj, 1)
}

func TestDecodeFirstValue_Array(t *testing.T) {
	value, err := DecodeFirstValue(`result: [1, 2, 3]`)
	require.NoError(t, err)

	arr, ok := value.([]interface{})
	require.True(t, ok)
	assert.Len(t, arr, 3)
}

func TestDecodeFirstValue_NoPayload(t *testing.T) {
	_, err := DecodeFirstValue("plain text entry without any JSON")
	assert.ErrorIs(t, err, ErrNoPayload)
}

func TestDecodeFirstValue_Malformed(t *testing.T) {
	_, err := DecodeFirstValue(`entry {"a": `)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoPayload)
}

func TestDecodeFirstValue_PreservesNumericText(t *testing.T) {
	value, err := DecodeFirstValue(`{"percentile": 0.0, "count": 17}`)
	require.NoError(t, err)

	obj := value.(map[string]interface{})
	assert.Equal(t, "0.0", obj["percentile"].(json.Number).String())
	assert.Equal(t, "17", obj["count"].(json.Number).String())
}

func TestUnwrap_NoID(t *testing.T) {
	obj := map[string]interface{}{"messageName": "Client.Connected"}
	assert.Equal(t, obj, Unwrap(obj))
}

func TestUnwrap_Payload(t *testing.T) {
	payload := map[string]interface{}{"inner": true}
	obj := map[string]interface{}{"id": "123", "payload": payload}
	assert.Equal(t, payload, Unwrap(obj))
}

func TestUnwrap_NestedRequest(t *testing.T) {
	obj := map[string]interface{}{
		"id":      "123",
		"request": `{"Pack": 1, "Pick": 2}`,
	}

	nested, ok := Unwrap(obj).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), nested["Pack"])
	assert.Equal(t, json.Number("2"), nested["Pick"])
}

func TestUnwrap_BadRequestFallsBack(t *testing.T) {
	obj := map[string]interface{}{
		"id":      "123",
		"request": "not json at all",
	}
	assert.Equal(t, obj, Unwrap(obj))
}

func TestExtractMessage_FullPipeline(t *testing.T) {
	text := `[UnityCrossThreadLogger]==> Draft.MakePick {"id": "77", "request": "{\"DraftId\": \"abc\"}"}`

	msg, ok, err := ExtractMessage(text)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", msg["DraftId"])
}

func TestExtractMessage_NoPayloadIsNotAnError(t *testing.T) {
	msg, ok, err := ExtractMessage("plain status line")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, msg)
}

func TestExtractMessage_ScalarPayloadIgnored(t *testing.T) {
	msg, ok, err := ExtractMessage(`count: [1, 2, 3]`)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, msg)
}

func TestExtractMessage_MalformedReportsError(t *testing.T) {
	_, ok, err := ExtractMessage(`data: {"broken": `)
	assert.Error(t, err)
	assert.False(t, ok)
}
