package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unencodable struct {
	Name string `json:"name"`
}

func (unencodable) MarshalJSON() ([]byte, error) { return nil, errors.New("cannot encode") }

func TestJSONScanRefusesValueThatWillNotEncode(t *testing.T) {
	var c JSON[unencodable]
	err := c.Scan(`{"name": "x"}`)
	assert.ErrorIs(t, err, ErrWrongType)
	assert.False(t, c.Valid)

	c.V = unencodable{Name: "x"}
	c.Valid = true
	assert.Equal(t, "{Name:x}", c.String())
}

func TestJSONString(t *testing.T) {
	var c JSON[ContactData]
	require.NoError(t, c.Scan([]byte(`{"phone": "+70110137563"}`)))
	assert.Equal(t, `{"email":null,"phone":"+70110137563"}`, c.String())
}
