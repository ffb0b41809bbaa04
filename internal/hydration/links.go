package hydration

import (
	"context"
	"strings"

	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/logging"
)

// ResolveLink builds the link descriptor of value. Keys are emitted as type,
// url, anchor, target followed by the type specific extras.
func (e *Engine) ResolveLink(ctx context.Context, value *blocks.FieldValue) Values {
	linkType := blocks.ParseLinkType(string(value.LinkType))
	link := Values{
		{Key: "type", Value: string(linkType)},
		{Key: "url", Value: ""},
		{Key: "anchor", Value: optional(value.Options.Anchor)},
		{Key: "target", Value: optional(value.Options.Target)},
	}

	switch linkType {
	case blocks.LinkInternal:
		key := strings.TrimSpace(value.LinkEntityKey)
		if key == "" {
			link.Set("url", strings.TrimSpace(value.LinkURL))
			break
		}
		link.Set("url", "#INTERNAL_LINK_"+key+"#")
		link.Set("urlParameter", e.resolveURLParameter(ctx, key))
	case blocks.LinkExternal:
		link.Set("url", externalURL(value.LinkURL))
	case blocks.LinkFile:
		link.Set("url", strings.TrimSpace(value.LinkURL))
		link.Set("file", value)
	case blocks.LinkPhone:
		link.Set("url", "tel:"+strings.TrimSpace(value.LinkPhone))
	case blocks.LinkEmail:
		link.Set("url", "mailto:"+strings.TrimSpace(value.LinkEmail))
	}
	return link
}

func (e *Engine) resolveURLParameter(ctx context.Context, key string) any {
	if e.params == nil {
		return nil
	}
	entityClass, id, ok := splitEntityKey(key)
	if !ok {
		return nil
	}
	param, err := e.params.ResolveURLParameter(ctx, entityClass, id)
	if err != nil {
		logging.WithFields(logging.FromContext(ctx, e.logger), map[string]any{
			"entity_key": key,
			"error":      err.Error(),
		}).Warn("hydration.link.url_parameter_failed")
		return nil
	}
	return param
}

// splitEntityKey splits "<class>::<id>" or the legacy "<class>:<id>".
func splitEntityKey(key string) (string, string, bool) {
	separator := ":"
	if strings.Contains(key, "::") {
		separator = "::"
	}
	class, id, ok := strings.Cut(key, separator)
	if !ok || class == "" || id == "" {
		return "", "", false
	}
	return class, id, true
}

func externalURL(raw string) string {
	url := strings.TrimSpace(raw)
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return url
	}
	return "//" + url
}
