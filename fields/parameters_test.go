package fields_test

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/google/uuid"
)

func TestDecodeParametersProducesTypedVariants(t *testing.T) {
	params, err := fields.DecodeParameters(fields.TypeTitle, map[string]any{"tags": []any{"h1", "h2"}})
	if err != nil {
		t.Fatalf("decode title: %v", err)
	}
	title, ok := params.(fields.TitleParams)
	if !ok {
		t.Fatalf("expected TitleParams, got %T", params)
	}
	if title.DefaultTag() != "h1" || len(title.Tags) != 2 {
		t.Fatalf("unexpected title params %+v", title)
	}

	params, err = fields.DecodeParameters(fields.TypeList, map[string]any{"min": float64(1), "max": float64(3)})
	if err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list := params.(fields.ListParams); list.Min != 1 || list.Max != 3 {
		t.Fatalf("unexpected list params %+v", list)
	}

	params, err = fields.DecodeParameters(fields.TypeSwitch, nil)
	if err != nil {
		t.Fatalf("decode switch: %v", err)
	}
	if params.TypeTag() != fields.TypeSwitch {
		t.Fatalf("expected switch params, got %s", params.TypeTag())
	}
}

func TestDecodeParametersRejectsInvalidBag(t *testing.T) {
	if _, err := fields.DecodeParameters(fields.TypeText, map[string]any{"subtype": "money"}); err == nil {
		t.Fatalf("expected invalid subtype to fail")
	}
}

func TestNodeJSONRoundTripKeepsChoiceOrder(t *testing.T) {
	original := fields.Node{
		ID:      uuid.MustParse("00000000-0000-0000-0000-000000000010"),
		Type:    fields.TypeChoice,
		Keyname: "color",
		Parameters: fields.ChoiceParams{Choices: []fields.Choice{
			{Value: "red", Label: "Red"},
			{Value: "blue", Label: "Blue"},
		}},
	}
	encoded, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded fields.Node
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	choices := decoded.Params().(fields.ChoiceParams).Choices
	if len(choices) != 2 || choices[0].Value != "red" || choices[1].Value != "blue" {
		t.Fatalf("expected ordered choices, got %+v", choices)
	}
}

func TestNodeUnmarshalRejectsUnknownTag(t *testing.T) {
	var decoded fields.Node
	err := json.Unmarshal([]byte(`{"id":"00000000-0000-0000-0000-000000000010","type":"carousel","keyname":"x"}`), &decoded)
	if err == nil {
		t.Fatalf("expected unknown tag to fail")
	}
}

func TestCloneParametersDoesNotShareSlices(t *testing.T) {
	source := fields.TitleParams{Tags: []string{"h1"}}
	cloned := fields.CloneParameters(source).(fields.TitleParams)
	cloned.Tags[0] = "h3"
	if source.Tags[0] != "h1" {
		t.Fatalf("expected clone to own its tags")
	}
}
