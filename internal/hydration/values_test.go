package hydration_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/hydration"
	"github.com/goliatone/go-content-blocks/internal/identity"
	"github.com/goliatone/go-content-blocks/internal/media"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

type stubEntities map[string]any

func (s stubEntities) Resolve(_ context.Context, entityClass, id string) (any, error) {
	if entityClass == "broken" {
		return nil, errors.New("lookup failed")
	}
	return s[entityClass+"::"+id], nil
}

type stubParams struct{}

func (stubParams) ResolveURLParameter(_ context.Context, entityClass, id string) (any, error) {
	return map[string]string{"class": entityClass, "id": id}, nil
}

func str(value string) *string { return &value }

func resolve(t *testing.T, engine *hydration.Engine, nodes []*fields.Node, values []*blocks.FieldValue) (hydration.Values, uuid.UUID) {
	t.Helper()
	tree, err := fields.NewTree(nodes)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	owner := uuid.New()
	return engine.ResolveValues(context.Background(), tree, tree.Roots(), owner, values), owner
}

func entry(t *testing.T, values hydration.Values, key string) hydration.Values {
	t.Helper()
	raw, ok := values.Get(key)
	if !ok {
		t.Fatalf("expected key %q in %v", key, values.Keys())
	}
	resolved, ok := raw.(hydration.Values)
	if !ok {
		t.Fatalf("expected %q to resolve to values, got %T", key, raw)
	}
	return resolved
}

func get(t *testing.T, values hydration.Values, key string) any {
	t.Helper()
	value, ok := values.Get(key)
	if !ok {
		t.Fatalf("expected key %q in %v", key, values.Keys())
	}
	return value
}

func TestResolveValuesSchemaOrderAndSynthesis(t *testing.T) {
	engine := hydration.NewEngine(hydration.DefaultConfig())
	heading := &fields.Node{ID: uuid.New(), Type: fields.TypeTitle, Keyname: "heading", Parameters: fields.TitleParams{Tags: []string{"h2", "h3"}}}
	body := &fields.Node{ID: uuid.New(), Type: fields.TypeTextarea, Keyname: "body", Position: 1, Parameters: fields.TextareaParams{IsWysiwyg: true}}
	stored := &blocks.FieldValue{ID: uuid.New(), FieldID: body.ID, Content: str("<p>hi</p>")}
	stale := &blocks.FieldValue{ID: uuid.New(), FieldID: uuid.New(), Content: str("removed field")}

	values, owner := resolve(t, engine, []*fields.Node{body, heading}, []*blocks.FieldValue{stale, stored})

	if diff := cmp.Diff([]string{"heading", "body"}, values.Keys()); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}
	synthesized := entry(t, values, "heading")
	if got := get(t, synthesized, "id"); got != identity.SyntheticValueUUID(owner, heading.ID) {
		t.Fatalf("expected deterministic synthesized id, got %v", got)
	}
	if tag := get(t, synthesized, "tag").(*string); tag == nil || *tag != "h2" {
		t.Fatalf("expected default tag h2, got %v", tag)
	}
	if got := get(t, entry(t, values, "body"), "isWysiwyg"); got != true {
		t.Fatalf("expected isWysiwyg, got %v", got)
	}
}

func TestResolveValuesTitleTagAndClassCSS(t *testing.T) {
	engine := hydration.NewEngine(hydration.DefaultConfig())
	heading := &fields.Node{ID: uuid.New(), Type: fields.TypeTitle, Keyname: "heading", CSSClass: "title", Parameters: fields.TitleParams{Tags: []string{"h2"}}}
	subtitle := &fields.Node{ID: uuid.New(), Type: fields.TypeTitle, Keyname: "subtitle", Position: 1}
	values, _ := resolve(t, engine, []*fields.Node{heading, subtitle}, []*blocks.FieldValue{
		{ID: uuid.New(), FieldID: heading.ID, Content: str("Hello"), Options: blocks.ValueOptions{Tag: "h4", ClassCSS: "big"}},
		{ID: uuid.New(), FieldID: subtitle.ID},
	})

	resolved := entry(t, values, "heading")
	if tag := get(t, resolved, "tag").(*string); *tag != "h4" {
		t.Fatalf("expected tag override, got %s", *tag)
	}
	if class := get(t, resolved, "classCss").(*string); *class != "big" {
		t.Fatalf("expected class override, got %s", *class)
	}
	plain := entry(t, values, "subtitle")
	if class := get(t, plain, "classCss").(*string); class != nil {
		t.Fatalf("expected nil classCss, got %s", *class)
	}
	if tag := get(t, plain, "tag").(*string); tag != nil {
		t.Fatalf("expected nil tag, got %s", *tag)
	}
}

func TestResolveValuesTextCoercion(t *testing.T) {
	engine := hydration.NewEngine(hydration.DefaultConfig())
	cases := []struct {
		name    string
		subtype fields.TextSubtype
		content string
		want    any
	}{
		{name: "integer", subtype: fields.SubtypeInteger, content: "42", want: int64(42)},
		{name: "integer fallback", subtype: fields.SubtypeInteger, content: "forty", want: "forty"},
		{name: "number", subtype: fields.SubtypeNumber, content: "3.5", want: 3.5},
		{name: "date", subtype: fields.SubtypeDate, content: "2024-03-01", want: "2024-03-01T00:00:00Z"},
		{name: "string", subtype: "", content: " keep ", want: " keep "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			node := &fields.Node{ID: uuid.New(), Type: fields.TypeText, Keyname: "value", Parameters: fields.TextParams{Subtype: tc.subtype}}
			values, _ := resolve(t, engine, []*fields.Node{node}, []*blocks.FieldValue{
				{ID: uuid.New(), FieldID: node.ID, Content: str(tc.content)},
			})
			if diff := cmp.Diff(tc.want, get(t, entry(t, values, "value"), "value")); diff != "" {
				t.Fatalf("unexpected value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveValuesSwitchChoiceAndMedia(t *testing.T) {
	engine := hydration.NewEngine(hydration.DefaultConfig())
	toggle := &fields.Node{ID: uuid.New(), Type: fields.TypeSwitch, Keyname: "toggle"}
	choice := &fields.Node{ID: uuid.New(), Type: fields.TypeChoice, Keyname: "size", Position: 1}
	image := &fields.Node{ID: uuid.New(), Type: fields.TypeImage, Keyname: "image", Position: 2}
	movie := &fields.Node{ID: uuid.New(), Type: fields.TypeMovie, Keyname: "movie", Position: 3, Parameters: fields.MovieParams{IsIframe: true}}
	imageValue := &blocks.FieldValue{ID: uuid.New(), FieldID: image.ID, Image: str("media/42")}

	values, _ := resolve(t, engine, []*fields.Node{toggle, choice, image, movie}, []*blocks.FieldValue{
		{ID: uuid.New(), FieldID: toggle.ID, Content: str("true")},
		{ID: uuid.New(), FieldID: choice.ID, Options: blocks.ValueOptions{Choice: "large"}},
		imageValue,
		{ID: uuid.New(), FieldID: movie.ID, Content: str("https://www.youtube.com/watch?v=abc-123")},
	})

	if got := get(t, entry(t, values, "toggle"), "value"); got != true {
		t.Fatalf("expected switch true, got %v", got)
	}
	if got := get(t, entry(t, values, "size"), "value").(*string); *got != "large" {
		t.Fatalf("expected choice large, got %s", *got)
	}
	if got := get(t, values, "image"); got != imageValue {
		t.Fatalf("expected raw image value, got %#v", got)
	}
	video, ok := get(t, entry(t, values, "movie"), "video").(media.Video)
	if !ok || video.Type != media.ProviderYouTube || video.Key != "abc-123" {
		t.Fatalf("unexpected video %#v", video)
	}
}

func TestResolveValuesObjects(t *testing.T) {
	engine := hydration.NewEngine(hydration.DefaultConfig(), hydration.WithEntityLookup(stubEntities{
		"article::7": "Article 7",
		"product::9": "Product 9",
	}))
	article := &fields.Node{ID: uuid.New(), Type: fields.TypeObject, Keyname: "article", Parameters: fields.ObjectParams{EntityClass: "article"}}
	mixed := &fields.Node{ID: uuid.New(), Type: fields.TypeObject, Keyname: "any", Position: 1, Parameters: fields.ObjectParams{EntityClass: fields.EntityClassAll}}
	broken := &fields.Node{ID: uuid.New(), Type: fields.TypeObject, Keyname: "broken", Position: 2, Parameters: fields.ObjectParams{EntityClass: "broken"}}

	values, _ := resolve(t, engine, []*fields.Node{article, mixed, broken}, []*blocks.FieldValue{
		{ID: uuid.New(), FieldID: article.ID, Options: blocks.ValueOptions{ObjectID: "7"}},
		{ID: uuid.New(), FieldID: mixed.ID, Options: blocks.ValueOptions{ObjectID: "product::9"}},
		{ID: uuid.New(), FieldID: broken.ID, Options: blocks.ValueOptions{ObjectID: "1"}},
	})

	cases := map[string]struct {
		key    string
		object any
	}{
		"article": {key: "article::7", object: "Article 7"},
		"any":     {key: "product::9", object: "Product 9"},
		"broken":  {key: "broken::1", object: nil},
	}
	for keyname, want := range cases {
		resolved := entry(t, values, keyname)
		if got := get(t, resolved, "objectId").(*string); got == nil || *got != want.key {
			t.Fatalf("%s: unexpected objectId %v", keyname, got)
		}
		if got := get(t, resolved, "object"); got != want.object {
			t.Fatalf("%s: expected object %v, got %v", keyname, want.object, got)
		}
	}
}

func TestResolveValuesEmptyListHasNoChildren(t *testing.T) {
	engine := hydration.NewEngine(hydration.DefaultConfig())
	list := &fields.Node{ID: uuid.New(), Type: fields.TypeList, Keyname: "items"}
	label := &fields.Node{ID: uuid.New(), ParentID: &list.ID, Type: fields.TypeText, Keyname: "label"}

	values, _ := resolve(t, engine, []*fields.Node{list, label}, []*blocks.FieldValue{
		{ID: uuid.New(), FieldID: list.ID},
	})

	children, ok := get(t, entry(t, values, "items"), "children").([]hydration.Values)
	if !ok || children == nil || len(children) != 0 {
		t.Fatalf("expected an empty, non-nil children slice, got %#v", children)
	}
}

func TestResolveValuesListAndGroup(t *testing.T) {
	engine := hydration.NewEngine(hydration.DefaultConfig())
	list := &fields.Node{ID: uuid.New(), Type: fields.TypeList, Keyname: "items"}
	group := &fields.Node{ID: uuid.New(), Type: fields.TypeGroup, Keyname: "cta", Position: 1}
	label := &fields.Node{ID: uuid.New(), ParentID: &list.ID, Type: fields.TypeText, Keyname: "label"}
	icon := &fields.Node{ID: uuid.New(), ParentID: &list.ID, Type: fields.TypeText, Keyname: "icon", Position: 1}
	caption := &fields.Node{ID: uuid.New(), ParentID: &group.ID, Type: fields.TypeText, Keyname: "caption"}

	repetition := func(position int, text string) *blocks.FieldValueGroup {
		return &blocks.FieldValueGroup{ID: uuid.New(), Position: position, Values: []*blocks.FieldValue{
			{ID: uuid.New(), FieldID: label.ID, Content: str(text)},
		}}
	}
	groupValue := &blocks.FieldValue{ID: uuid.New(), FieldID: group.ID}
	values, _ := resolve(t, engine, []*fields.Node{list, group, label, icon, caption}, []*blocks.FieldValue{
		{ID: uuid.New(), FieldID: list.ID, Groups: []*blocks.FieldValueGroup{
			repetition(2, "third"), repetition(0, "first"), repetition(1, "second"),
		}},
		groupValue,
	})

	children, ok := get(t, entry(t, values, "items"), "children").([]hydration.Values)
	if !ok || len(children) != 3 {
		t.Fatalf("expected three list children, got %#v", children)
	}
	var labels []any
	for _, child := range children {
		if diff := cmp.Diff([]string{"label", "icon"}, child.Keys()); diff != "" {
			t.Fatalf("unexpected child keys (-want +got):\n%s", diff)
		}
		labels = append(labels, get(t, entry(t, child, "label"), "value"))
	}
	if diff := cmp.Diff([]any{"first", "second", "third"}, labels); diff != "" {
		t.Fatalf("unexpected list order (-want +got):\n%s", diff)
	}

	flattened, ok := get(t, entry(t, values, "cta"), "children").(hydration.Values)
	if !ok {
		t.Fatalf("expected group children to be a single values object")
	}
	groupID := identity.SyntheticGroupUUID(groupValue.ID)
	if got := get(t, entry(t, flattened, "caption"), "id"); got != identity.SyntheticValueUUID(groupID, caption.ID) {
		t.Fatalf("expected synthesized caption under synthetic group, got %v", got)
	}
}

func TestResolveLinkDescriptors(t *testing.T) {
	engine := hydration.NewEngine(hydration.DefaultConfig(), hydration.WithURLParameterResolver(stubParams{}))
	cases := []struct {
		name  string
		value blocks.FieldValue
		url   string
		extra string
	}{
		{name: "internal", value: blocks.FieldValue{LinkType: blocks.LinkInternal, LinkEntityKey: "page::12"}, url: "#INTERNAL_LINK_page::12#", extra: "urlParameter"},
		{name: "internal legacy separator", value: blocks.FieldValue{LinkType: blocks.LinkInternal, LinkEntityKey: "page:12"}, url: "#INTERNAL_LINK_page:12#", extra: "urlParameter"},
		{name: "internal without key", value: blocks.FieldValue{LinkType: blocks.LinkInternal, LinkURL: "/about"}, url: "/about"},
		{name: "external bare", value: blocks.FieldValue{LinkType: blocks.LinkExternal, LinkURL: "example.com"}, url: "//example.com"},
		{name: "external scheme", value: blocks.FieldValue{LinkType: blocks.LinkExternal, LinkURL: "HTTPS://example.com"}, url: "HTTPS://example.com"},
		{name: "file", value: blocks.FieldValue{LinkType: blocks.LinkFile, File: str("media/1")}, url: "", extra: "file"},
		{name: "phone", value: blocks.FieldValue{LinkType: blocks.LinkPhone, LinkPhone: "+33100"}, url: "tel:+33100"},
		{name: "email", value: blocks.FieldValue{LinkType: blocks.LinkEmail, LinkEmail: "a@b.c"}, url: "mailto:a@b.c"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value := tc.value
			value.Options.Target = "_blank"
			link := engine.ResolveLink(context.Background(), &value)

			want := []string{"type", "url", "anchor", "target"}
			if tc.extra != "" {
				want = append(want, tc.extra)
			}
			if diff := cmp.Diff(want, link.Keys()); diff != "" {
				t.Fatalf("unexpected keys (-want +got):\n%s", diff)
			}
			if got := get(t, link, "url"); got != tc.url {
				t.Fatalf("expected url %q, got %v", tc.url, got)
			}
			if target := get(t, link, "target").(*string); *target != "_blank" {
				t.Fatalf("expected target _blank, got %s", *target)
			}
		})
	}

	param := get(t, engine.ResolveLink(context.Background(), &blocks.FieldValue{LinkType: blocks.LinkInternal, LinkEntityKey: "page::12"}), "urlParameter")
	if diff := cmp.Diff(map[string]string{"class": "page", "id": "12"}, param); diff != "" {
		t.Fatalf("unexpected url parameter (-want +got):\n%s", diff)
	}
}

func TestResolveLinkAcceptsLegacyTypes(t *testing.T) {
	engine := hydration.NewEngine(hydration.DefaultConfig())

	var decoded blocks.FieldValue
	if err := json.Unmarshal([]byte(`{"linkType":"externe","linkUrl":"example.com"}`), &decoded); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if decoded.LinkType != blocks.LinkExternal {
		t.Fatalf("expected decoded link type external, got %q", decoded.LinkType)
	}

	cases := []struct {
		name  string
		value blocks.FieldValue
		typ   string
		url   string
	}{
		{name: "decoded", value: decoded, typ: "external", url: "//example.com"},
		{name: "stored externe", value: blocks.FieldValue{LinkType: "externe", LinkURL: "example.com"}, typ: "external", url: "//example.com"},
		{name: "stored interne", value: blocks.FieldValue{LinkType: "Interne", LinkURL: "/about"}, typ: "internal", url: "/about"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value := tc.value
			if !value.HasLink() {
				t.Fatalf("expected %q to carry a link", value.LinkType)
			}
			link := engine.ResolveLink(context.Background(), &value)
			if got := get(t, link, "type"); got != tc.typ {
				t.Fatalf("expected type %q, got %v", tc.typ, got)
			}
			if got := get(t, link, "url"); got != tc.url {
				t.Fatalf("expected url %q, got %v", tc.url, got)
			}
		})
	}

	if (&blocks.FieldValue{LinkType: "carrier-pigeon"}).HasLink() {
		t.Fatalf("expected unknown link types to carry no link")
	}
}

func TestResolveValuesAttachesLinks(t *testing.T) {
	engine := hydration.NewEngine(hydration.DefaultConfig())
	button := &fields.Node{ID: uuid.New(), Type: fields.TypeButton, Keyname: "cta", CanHasLink: true}
	values, _ := resolve(t, engine, []*fields.Node{button}, []*blocks.FieldValue{
		{ID: uuid.New(), FieldID: button.ID, Content: str("Go"), LinkType: blocks.LinkExternal, LinkURL: "example.com", LinkPicto: "arrow"},
	})

	resolved := entry(t, values, "cta")
	if diff := cmp.Diff([]string{"id", "type", "classCss", "value", "linkPicto", "link"}, resolved.Keys()); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}
}
