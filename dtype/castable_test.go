package dtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCastable_NumericWidening(t *testing.T) {
	assert.True(t, IsCastable(Global().Lookup("int"), Global().Lookup("float")))
	assert.True(t, IsCastable(Global().Lookup("int"), Global().Lookup("any")))
	assert.False(t, IsCastable(Global().Lookup("float"), Global().Lookup("int")))
}

func TestIsCastable_FileFormats(t *testing.T) {
	assert.True(t, IsCastable(Global().Lookup("csv"), Global().Lookup("xls")))
	assert.True(t, IsCastable(Global().Lookup("xls"), Global().Lookup("csv")))
	assert.True(t, IsCastable(Global().Lookup("gz"), Global().Lookup("csv")))
	assert.False(t, IsCastable(Global().Lookup("csv"), Global().Lookup("png")))
	assert.False(t, IsCastable(Global().Lookup("csv"), Global().Lookup("gz")))
}

func TestIsCastable_Reflexive(t *testing.T) {
	assert.True(t, IsCastable(Global().Lookup("csv"), Global().Lookup("csv")))
}

func TestIsCastable_DynamicAlwaysCastable(t *testing.T) {
	assert.True(t, IsCastable(Global().Lookup("any"), Global().Lookup("csv")))
	assert.True(t, IsCastable(Global().Lookup("anyfile"), Global().Lookup("png")))
}

func TestUnify_ConcreteWinsOverDynamic(t *testing.T) {
	src := &Type{Id: "anyfile", Kind: Dynamic}
	dst := &Type{Id: "csv", Kind: File}
	mutated := Unify(src, dst)
	assert.True(t, mutated)
	assert.Equal(t, "csv", src.Id)
	assert.Equal(t, "csv", dst.Id)
}

func TestUnify_BothDynamicNoMutation(t *testing.T) {
	src := &Type{Id: "any", Kind: Dynamic}
	dst := &Type{Id: "anyfile", Kind: Dynamic}
	mutated := Unify(src, dst)
	assert.False(t, mutated)
	assert.Equal(t, "any", src.Id)
	assert.Equal(t, "anyfile", dst.Id)
}

func TestUnify_BothConcreteNoMutation(t *testing.T) {
	src := &Type{Id: "csv", Kind: File}
	dst := &Type{Id: "xls", Kind: File}
	mutated := Unify(src, dst)
	assert.False(t, mutated)
}
