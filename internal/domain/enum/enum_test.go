package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

var colors = New("color",
	Entry[color]{"red", "Красный"},
	Entry[color]{"green", "Зелёный"},
)

func TestSet(t *testing.T) {
	v, err := colors.Parse(" red ")
	require.NoError(t, err)
	assert.Equal(t, color("red"), v)
	assert.Equal(t, "Красный", colors.Label(v))

	_, err = colors.Parse("blue")
	assert.EqualError(t, err, `unknown color "blue"`)

	assert.Equal(t, []string{"red", "green"}, colors.Strings())
	assert.Empty(t, colors.Label("blue"))

	var c color
	require.Error(t, colors.Unmarshal(&c, []byte("")))
	require.NoError(t, colors.Unmarshal(&c, []byte("green")))
	assert.Equal(t, color("green"), c)
}
