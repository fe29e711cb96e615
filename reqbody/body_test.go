package reqbody_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oastrace/oastrace/reqbody"
	"github.com/oastrace/oastrace/typeoracle"
)

type pet struct {
	Name string `json:"name"`
}

func TestJSONEncodesAndDescribes(t *testing.T) {
	enc, err := reqbody.JSON(typeoracle.NewReflectOracle(), pet{Name: "fido"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", enc.ContentType)
	assert.JSONEq(t, `{"name":"fido"}`, string(enc.Bytes))
	assert.Equal(t, "pet", strings.ToLower(enc.SchemaName))
	assert.Contains(t, enc.SchemaTree, enc.SchemaName)
}

func TestFormEncodesMapStringString(t *testing.T) {
	enc, err := reqbody.Form(nil, map[string]string{"username": "fido"})
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", enc.ContentType)
	assert.Equal(t, "username=fido", string(enc.Bytes))
}

func TestFormRejectsUnsupportedType(t *testing.T) {
	_, err := reqbody.Form(nil, 42)
	require.Error(t, err)
}

type signupForm struct {
	Username string `json:"username"`
	Age      int    `json:"age"`
	Referral string `json:"-"`
	Tags     []string
}

func TestFormFlattensStructExportedFields(t *testing.T) {
	enc, err := reqbody.Form(nil, signupForm{Username: "fido", Age: 3, Referral: "omitted", Tags: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", enc.ContentType)
	assert.Equal(t, "Tags=a&Tags=b&age=3&username=fido", string(enc.Bytes))
}

func TestFormStructHonorsFormTagOverJSONTag(t *testing.T) {
	type shipping struct {
		Zip string `form:"postal_code" json:"zip"`
	}
	enc, err := reqbody.Form(nil, shipping{Zip: "94103"})
	require.NoError(t, err)
	assert.Equal(t, "postal_code=94103", string(enc.Bytes))
}

func TestFormRejectsStructFieldThatDoesNotFlattenToScalar(t *testing.T) {
	type nested struct {
		Meta map[string]string
	}
	_, err := reqbody.Form(nil, nested{Meta: map[string]string{"a": "b"}})
	require.Error(t, err)
}

func TestNDJSONJoinsLinesWithNewline(t *testing.T) {
	enc, err := reqbody.NDJSON(nil, []any{map[string]any{"a": 1}, map[string]any{"a": 2}})
	require.NoError(t, err)
	assert.Equal(t, "application/x-ndjson", enc.ContentType)
	lines := strings.Split(strings.TrimRight(string(enc.Bytes), "\n"), "\n")
	assert.Len(t, lines, 2)
}

func TestMultipartProducesBoundaryContentType(t *testing.T) {
	enc, err := reqbody.Multipart([]reqbody.Part{
		{Name: "file", Filename: "a.txt", Raw: []byte("hello")},
		{Name: "meta", Value: map[string]string{"k": "v"}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc.ContentType, "multipart/form-data; boundary="))
	assert.Contains(t, string(enc.Bytes), "hello")
}

func TestTextAndBytes(t *testing.T) {
	text := reqbody.Text("hello")
	assert.Equal(t, "text/plain; charset=utf-8", text.ContentType)

	raw := reqbody.Bytes([]byte{0x01, 0x02}, "application/octet-stream")
	assert.Equal(t, "application/octet-stream", raw.ContentType)
	assert.Equal(t, []byte{0x01, 0x02}, raw.Bytes)
}
