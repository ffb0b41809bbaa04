package blocks_test

import (
	"testing"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestMirrorGroupSynthesizesMissingChildren(t *testing.T) {
	list := uuid.New()
	title := &fields.Node{ID: uuid.New(), ParentID: &list, Type: fields.TypeTitle, Keyname: "title", Position: 0}
	body := &fields.Node{ID: uuid.New(), ParentID: &list, Type: fields.TypeTextarea, Keyname: "body", Position: 1}
	tree, err := fields.NewTree([]*fields.Node{{ID: list, Type: fields.TypeList, Keyname: "items"}, body, title})
	if err != nil {
		t.Fatalf("new tree: %v", err)
	}
	owner, _ := tree.Node(list)

	stored := &blocks.FieldValue{ID: uuid.New(), FieldID: body.ID}
	stale := &blocks.FieldValue{ID: uuid.New(), FieldID: uuid.New()}
	group := &blocks.FieldValueGroup{ID: uuid.New(), Values: []*blocks.FieldValue{stored, stale}}

	mirrored, mirror := blocks.MirrorGroup(tree, owner, group)

	keynames := make([]string, 0, len(mirrored.Values))
	for _, value := range mirrored.Values {
		node, ok := tree.Node(value.FieldID)
		if !ok {
			t.Fatalf("mirrored value references unknown field %s", value.FieldID)
		}
		keynames = append(keynames, node.Keyname)
	}
	if diff := cmp.Diff([]string{"title", "body"}, keynames); diff != "" {
		t.Fatalf("unexpected mirrored keynames (-want +got):\n%s", diff)
	}
	if mirrored.Values[1] != stored {
		t.Fatalf("expected stored value to be reused")
	}
	if len(mirror.Synthesized) != 1 || mirror.Synthesized[0].ID != title.ID {
		t.Fatalf("expected title to be synthesized")
	}
	if len(mirror.Stale) != 1 || mirror.Stale[0] != stale {
		t.Fatalf("expected the unknown value to be reported stale")
	}
	if len(group.Values) != 2 {
		t.Fatalf("source group was mutated")
	}

	again, _ := blocks.MirrorGroup(tree, owner, group)
	if again.Values[0].ID != mirrored.Values[0].ID {
		t.Fatalf("expected synthesized ids to be stable across calls")
	}
}
