package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionBuilders(t *testing.T) {
	base := NewAction("find.type").WithArg("text", "a")
	a := base.WithText("foo").WithSource(SourceScript).WithArg("text", "b")

	assert.Equal(t, "foo", a.Text)
	assert.Equal(t, SourceScript, a.Source)
	assert.Equal(t, "b", a.StringArg("text"))
	assert.Equal(t, "a", base.StringArg("text"), "WithArg copies the argument map")
	assert.Equal(t, SourceKeyboard, base.Source)

	_, ok := a.Arg("missing")
	assert.False(t, ok)
	assert.Empty(t, a.WithArg("n", 3).StringArg("n"))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "find.next (keyboard)", NewAction("find.next").String())
	assert.Equal(t, `find.type "x" (plugin)`, NewAction("find.type").WithText("x").WithSource(SourcePlugin).String())
	assert.Equal(t, "source(9)", Source(9).String())
}
