package netbox_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue_NestedObjects(t *testing.T) {
	t.Parallel()

	value, err := netbox.ParseValue([]byte(`{"id": 7, "device_role": {"id": 1, "name": "x"}, "tags": ["a", "b"], "primary_ip": null}`))
	require.NoError(t, err)
	require.Equal(t, netbox.KindObject, value.Kind())

	role, err := value.Field("device_role")
	require.NoError(t, err)

	id, err := role.Field("id")
	require.NoError(t, err)

	n, err := id.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	name, err := role.Field("name")
	require.NoError(t, err)
	assert.Equal(t, "x", name.String())

	tags, err := value.Field("tags")
	require.NoError(t, err)
	require.Len(t, tags.List(), 2)
	assert.Equal(t, "b", tags.List()[1].String())

	ip, err := value.Field("primary_ip")
	require.NoError(t, err)
	assert.True(t, ip.IsNull())
}

func TestParseValue_KeyNormalization(t *testing.T) {
	t.Parallel()

	value, err := netbox.ParseValue([]byte(`{"Display Name": "edge", "Status": "active"}`))
	require.NoError(t, err)

	object := value.Object()
	require.NotNil(t, object)
	assert.Equal(t, []string{"display_name", "status"}, object.Keys())

	for _, key := range []string{"display_name", "Display_Name", "display name", "DISPLAY NAME"} {
		got, err := value.Field(key)
		require.NoError(t, err, key)
		assert.Equal(t, "edge", got.String())
	}
}

func TestParseValue_NumbersKeepLiteral(t *testing.T) {
	t.Parallel()

	value, err := netbox.ParseValue([]byte(`{"id": 4010, "weight": 1.50, "big": 12345678901234567890}`))
	require.NoError(t, err)

	data, err := json.Marshal(value)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 4010, "weight": 1.50, "big": 12345678901234567890}`, string(data))

	weight, err := value.Field("weight")
	require.NoError(t, err)

	f, err := weight.Float()
	require.NoError(t, err)
	assert.InDelta(t, 1.5, f, 0.0001)
}

func TestParseValue_Invalid(t *testing.T) {
	t.Parallel()

	_, err := netbox.ParseValue([]byte(""))
	require.Error(t, err)

	_, err = netbox.ParseValue([]byte("<html>"))
	require.Error(t, err)
}

func TestValue_MissingField(t *testing.T) {
	t.Parallel()

	value, err := netbox.ParseValue([]byte(`{"id": 1}`))
	require.NoError(t, err)

	_, err = value.Field("name")
	require.Error(t, err)

	var missing *netbox.MissingAttributeError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "name", missing.Attribute)

	id, err := value.Field("id")
	require.NoError(t, err)

	_, err = id.Field("anything")
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "number", missing.Resource)
}

func TestObject_MarshalKeepsOrderAndRawKeys(t *testing.T) {
	t.Parallel()

	value, err := netbox.ParseValue([]byte(`{"zeta":1,"Alpha Beta":"x","mid":[true,false,null]}`))
	require.NoError(t, err)

	data, err := value.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"Alpha Beta":"x","mid":[true,false,null]}`, string(data))
}

func TestObject_LaterDuplicateOverwrites(t *testing.T) {
	t.Parallel()

	object := netbox.NewObject("thing")
	object.Set("Name", netbox.StringValue("first"))
	object.Set("name", netbox.StringValue("second"))

	assert.Equal(t, 1, object.Len())

	got, ok := object.Get("NAME")
	require.True(t, ok)
	assert.Equal(t, "second", got.String())
}

func TestValue_Interface(t *testing.T) {
	t.Parallel()

	value, err := netbox.ParseValue([]byte(`{"id": 3, "name": "a", "tags": ["x"], "nested": {"ok": true}}`))
	require.NoError(t, err)

	plain, ok := value.Interface().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, json.Number("3"), plain["id"])
	assert.Equal(t, "a", plain["name"])
	assert.Equal(t, []interface{}{"x"}, plain["tags"])
	assert.Equal(t, map[string]interface{}{"ok": true}, plain["nested"])
}

func TestValueOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{name: "nil", in: nil, want: `null`},
		{name: "int", in: 42, want: `42`},
		{name: "float", in: 2.5, want: `2.5`},
		{name: "string", in: "edge", want: `"edge"`},
		{name: "bool", in: true, want: `true`},
		{name: "map sorted", in: map[string]interface{}{"b": 1, "a": "x"}, want: `{"a":"x","b":1}`},
		{name: "payload", in: netbox.Payload{"id": 1}, want: `{"id":1}`},
		{name: "list", in: []interface{}{1, "a"}, want: `[1,"a"]`},
		{name: "struct", in: struct {
			Name string `json:"name"`
		}{Name: "n"}, want: `{"name":"n"}`},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			data, err := netbox.ValueOf(testCase.in).MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, testCase.want, string(data))
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "device_role", netbox.NormalizeKey("Device Role"))
	assert.Equal(t, "id", netbox.NormalizeKey("ID"))
	assert.Equal(t, "already_ok", netbox.NormalizeKey("already_ok"))
}
