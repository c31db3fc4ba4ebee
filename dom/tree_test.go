package dom

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) *Tree {
	t.Helper()
	tree := NewTree(zerolog.Nop())
	repaint, relayout := tree.Apply(Mutations{
		CreateElement{ID: 2, Parent: RootID, Tag: TagRect, Index: -1},
		CreateElement{ID: 3, Parent: 2, Tag: TagParagraph, Index: -1},
		CreateText{ID: 4, Parent: 3, Text: "hello", Index: -1},
		CreateElement{ID: 5, Parent: RootID, Tag: TagRect, Index: -1},
	})
	require.True(t, repaint)
	require.True(t, relayout)
	return tree
}

func TestApplyEmptyBatch(t *testing.T) {
	tree := NewTree(zerolog.Nop())

	repaint, relayout := tree.Apply(nil)
	assert.False(t, repaint)
	assert.False(t, relayout)

	repaint, relayout = tree.Apply(Mutations{})
	assert.False(t, repaint)
	assert.False(t, relayout)
}

func TestApplyClassifiesChanges(t *testing.T) {
	tests := []struct {
		name         string
		batch        Mutations
		wantRepaint  bool
		wantRelayout bool
	}{
		{
			name:         "text content change",
			batch:        Mutations{SetText{ID: 4, Text: "world"}},
			wantRepaint:  true,
			wantRelayout: true,
		},
		{
			name:         "unchanged text",
			batch:        Mutations{SetText{ID: 4, Text: "hello"}},
			wantRepaint:  false,
			wantRelayout: false,
		},
		{
			name:         "visual only attribute",
			batch:        Mutations{SetAttribute{ID: 2, Name: AttrBackground, Value: "red"}},
			wantRepaint:  true,
			wantRelayout: false,
		},
		{
			name:         "opacity",
			batch:        Mutations{SetAttribute{ID: 2, Name: AttrOpacity, Value: "0.5"}},
			wantRepaint:  true,
			wantRelayout: false,
		},
		{
			name:         "size attribute",
			batch:        Mutations{SetAttribute{ID: 2, Name: AttrWidth, Value: "120"}},
			wantRepaint:  true,
			wantRelayout: true,
		},
		{
			name:         "removal",
			batch:        Mutations{Remove{ID: 5}},
			wantRepaint:  true,
			wantRelayout: true,
		},
		{
			name:         "unknown node is skipped",
			batch:        Mutations{SetAttribute{ID: 99, Name: AttrWidth, Value: "1"}},
			wantRepaint:  false,
			wantRelayout: false,
		},
		{
			name:         "invalid value is skipped",
			batch:        Mutations{SetAttribute{ID: 2, Name: AttrOpacity, Value: "half"}},
			wantRepaint:  false,
			wantRelayout: false,
		},
		{
			name:         "scale with one bad field is skipped",
			batch:        Mutations{SetAttribute{ID: 2, Name: AttrScale, Value: "2 x"}},
			wantRepaint:  false,
			wantRelayout: false,
		},
		{
			name:         "translate with one bad field is skipped",
			batch:        Mutations{SetAttribute{ID: 2, Name: AttrTranslate, Value: "3 y"}},
			wantRepaint:  false,
			wantRelayout: false,
		},
		{
			name:         "non-finite opacity is skipped",
			batch:        Mutations{SetAttribute{ID: 2, Name: AttrOpacity, Value: "NaN"}},
			wantRepaint:  false,
			wantRelayout: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := buildTree(t)
			repaint, relayout := tree.Apply(tt.batch)
			assert.Equal(t, tt.wantRepaint, repaint, "repaint")
			assert.Equal(t, tt.wantRelayout, relayout, "relayout")
		})
	}
}

func TestTextGroups(t *testing.T) {
	tree := buildTree(t)
	tree.TakeDirtyTextGroups()

	para, ok := tree.Get(3)
	require.True(t, ok)
	text, ok := tree.Get(4)
	require.True(t, ok)
	require.NotEqual(t, uuid.Nil, para.TextGroup)
	assert.Equal(t, para.TextGroup, text.TextGroup)
	assert.Equal(t, []NodeID{3, 4}, tree.TextGroup(para.TextGroup))

	tree.Apply(Mutations{SetText{ID: 4, Text: "bye"}})
	assert.Equal(t, []uuid.UUID{para.TextGroup}, tree.TakeDirtyTextGroups())
	assert.Nil(t, tree.TakeDirtyTextGroups())

	tree.Apply(Mutations{Remove{ID: 2}})
	assert.Nil(t, tree.TextGroup(para.TextGroup))
	assert.Equal(t, 0, tree.TextGroupCount())
	_, ok = tree.Get(4)
	assert.False(t, ok, "subtree must be removed")
}

func TestInsertAtIndex(t *testing.T) {
	tree := buildTree(t)
	tree.Apply(Mutations{CreateElement{ID: 6, Parent: RootID, Tag: TagRect, Index: 0}})
	assert.Equal(t, []NodeID{6, 2, 5}, tree.Root().Children)
}

func TestLayers(t *testing.T) {
	tree := buildTree(t)
	tree.Apply(Mutations{
		SetAttribute{ID: 2, Name: AttrLayer, Value: "2"},
		SetAttribute{ID: 5, Name: AttrLayer, Value: "-1"},
	})

	layers := tree.Layers()
	assert.Equal(t, 3, layers.Len())
	assert.Equal(t, 2, layers.LayerOf(4), "layers accumulate from ancestors")
	assert.Equal(t, -1, layers.LayerOf(5))

	var order []NodeID
	layers.Ascending(func(_ int, ids []NodeID) { order = append(order, ids...) })
	assert.Equal(t, []NodeID{5, RootID, 2, 3, 4}, order)

	var top []int
	layers.Descending(func(layer int, _ []NodeID) { top = append(top, layer) })
	assert.Equal(t, []int{2, 0, -1}, top)
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want Length
		ok   bool
	}{
		{"auto", Length{Kind: LengthAuto}, true},
		{"fill", Fill(), true},
		{"50%", Percent(50), true},
		{"120", Pixels(120), true},
		{"wide", Length{}, false},
		{"NaN", Length{}, false},
		{"Inf%", Length{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLength(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformAttributes(t *testing.T) {
	tree := buildTree(t)
	tree.Apply(Mutations{
		SetAttribute{ID: 2, Name: AttrRotate, Value: "90deg"},
		SetAttribute{ID: 5, Name: AttrA11yID, Value: "0"},
	})
	n, _ := tree.Get(2)
	assert.Equal(t, float32(90), n.Rotate)
	assert.True(t, n.HasTransform())

	other, _ := tree.Get(5)
	assert.False(t, other.Accessible, "root accessibility id is reserved")
}

func TestRejectedValuesLeaveNodeUntouched(t *testing.T) {
	tests := []struct {
		name  string
		attr  string
		value string
	}{
		{"scale second field", AttrScale, "2 x"},
		{"scale first field", AttrScale, "x 2"},
		{"translate second field", AttrTranslate, "3 y"},
		{"translate arity", AttrTranslate, "3"},
		{"opacity NaN", AttrOpacity, "NaN"},
		{"opacity infinity", AttrOpacity, "Inf"},
		{"rotate infinity", AttrRotate, "-Inf"},
		{"padding NaN", AttrPadding, "nan"},
		{"width NaN", AttrWidth, "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := buildTree(t)
			before, ok := tree.Get(2)
			require.True(t, ok)
			want := *before

			tree.Apply(Mutations{SetAttribute{ID: 2, Name: tt.attr, Value: tt.value}})

			got, _ := tree.Get(2)
			assert.Equal(t, want.ScaleX, got.ScaleX)
			assert.Equal(t, want.ScaleY, got.ScaleY)
			assert.Equal(t, want.TranslateX, got.TranslateX)
			assert.Equal(t, want.TranslateY, got.TranslateY)
			assert.Equal(t, want.Opacity, got.Opacity)
			assert.Equal(t, want.Rotate, got.Rotate)
			assert.Equal(t, want.Padding, got.Padding)
			assert.Equal(t, want.Width, got.Width)
			assert.False(t, got.HasTransform())
		})
	}
}

func TestTwoFieldTransforms(t *testing.T) {
	tree := buildTree(t)
	tree.Apply(Mutations{
		SetAttribute{ID: 2, Name: AttrScale, Value: "2 3"},
		SetAttribute{ID: 5, Name: AttrTranslate, Value: "4 -1"},
	})
	n, _ := tree.Get(2)
	assert.Equal(t, float32(2), n.ScaleX)
	assert.Equal(t, float32(3), n.ScaleY)

	other, _ := tree.Get(5)
	assert.Equal(t, float32(4), other.TranslateX)
	assert.Equal(t, float32(-1), other.TranslateY)
}
