package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"warehouse-inventory-api/internal/model"
)

func testIndex() *ReferenceIndex {
	return NewReferenceIndex(model.ReferenceTables{
		Mappings: []model.BoxMapping{
			{BoxID: "A1", ItemCode: "P-100", Quantity: 12},
			{BoxID: " b2 ", ItemCode: "p-200", Quantity: 4},
			{BoxID: "D4", ItemCode: "P-999", Quantity: 1},
		},
		Items: []model.ItemMaster{
			{ItemCode: "P-100", Name: "Hex bolt", Spec: "M8x40", Supplier: "Acme", Category: "Fastener", Barcode: "880100"},
			{ItemCode: "P-200", Name: "Washer", Spec: "M8", Supplier: "Acme"},
		},
		Aliases: []model.AliasEntry{
			{BoxID: "A1", ItemCode: "P-100", AliasCode: "x9"},
			{BoxID: "B2", AliasCode: "A1"},
		},
	})
}

func TestResolve_BoxIDTakesPrecedenceOverAlias(t *testing.T) {
	ix := testIndex()

	res := ix.Resolve("A1")
	assert.Equal(t, "A1", res.BoxID)
	assert.False(t, res.WasAlias)
	assert.True(t, res.Known)
}

func TestResolve_Alias(t *testing.T) {
	ix := testIndex()

	res := ix.Resolve("X9")
	assert.Equal(t, "A1", res.BoxID)
	assert.Equal(t, "X9", res.Code)
	assert.True(t, res.WasAlias)
	assert.Empty(t, res.Warnings())
}

func TestResolve_NormalizesInput(t *testing.T) {
	ix := testIndex()

	assert.Equal(t, "A1", ix.Resolve("  x9\t").BoxID)
	assert.Equal(t, "B2", ix.Resolve("b2").BoxID)
}

func TestResolve_UnknownCodeIsNewBox(t *testing.T) {
	ix := testIndex()

	res := ix.Resolve(" new-box-7 ")
	assert.Equal(t, "NEW-BOX-7", res.BoxID)
	assert.False(t, res.WasAlias)
	assert.False(t, res.Known)
	assert.Equal(t, []string{WarnUnknownAlias}, res.Warnings())
}

func TestResolve_Idempotent(t *testing.T) {
	ix := testIndex()

	for _, code := range []string{"A1", "X9", "b2", "ZZZ", ""} {
		first := ix.Resolve(code)
		second := ix.Resolve(first.BoxID)
		assert.Equal(t, first.BoxID, second.BoxID, "code %q", code)
		assert.False(t, second.WasAlias, "code %q", code)
	}
}

func TestResolve_NilIndex(t *testing.T) {
	var ix *ReferenceIndex

	res := ix.Resolve("a1")
	assert.Equal(t, "A1", res.BoxID)
	assert.False(t, res.Known)
}

func TestNewReferenceIndex_LastRowWins(t *testing.T) {
	ix := NewReferenceIndex(model.ReferenceTables{
		Mappings: []model.BoxMapping{
			{BoxID: "A1", ItemCode: "P-1", Quantity: 1},
			{BoxID: "a1", ItemCode: "P-2", Quantity: 2},
			{BoxID: "  ", ItemCode: "P-3"},
		},
		Aliases: []model.AliasEntry{
			{BoxID: "A1", AliasCode: "Q"},
			{BoxID: "B1", AliasCode: "q"},
		},
	})

	m, ok := ix.Mapping("A1")
	assert.True(t, ok)
	assert.Equal(t, "P-2", m.ItemCode)
	assert.Equal(t, 2, m.Quantity)

	owner, _ := ix.AliasOwner("Q")
	assert.Equal(t, "B1", owner)
	assert.Equal(t, IndexStats{Mappings: 1, Items: 0, Aliases: 1}, ix.Stats())
}
