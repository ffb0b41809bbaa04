package blocks

import (
	"fmt"
	"sort"
	"strings"
)

// RestrictionAll matches every host id or every slot.
const RestrictionAll = "all"

// RestrictionTable is the compiled form of a rule list.
type RestrictionTable struct {
	rules        map[string]bool
	defaultAllow *bool
}

// CompileRestrictions scans rules in position order. An include rule sets a
// deny-by-default fallback, an exclude rule an allow-by-default fallback; the
// first rule to set the fallback wins.
func CompileRestrictions(rules []RestrictionRule) *RestrictionTable {
	ordered := append([]RestrictionRule(nil), rules...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	table := &RestrictionTable{rules: make(map[string]bool, len(ordered))}
	for _, rule := range ordered {
		key := restrictionKey(strings.TrimSpace(rule.Value), normalizeContainer(rule.ContainerName))
		switch RestrictionCondition(strings.ToLower(strings.TrimSpace(string(rule.Condition)))) {
		case RestrictionInclude:
			table.setDefault(false)
			table.rules[key] = true
		case RestrictionExclude:
			table.setDefault(true)
			table.rules[key] = false
		}
	}
	return table
}

func (t *RestrictionTable) setDefault(value bool) {
	if t.defaultAllow == nil {
		t.defaultAllow = &value
	}
}

// Allows resolves a concrete host and slot. Keys are tried from the most
// specific ("<class>:<id>_<slot>") to the class wide ("<class>:all_<slot>").
func (t *RestrictionTable) Allows(hostClass, hostID, slot string) bool {
	if t == nil {
		return true
	}
	class := strings.TrimSpace(hostClass)
	id := strings.TrimSpace(hostID)
	slot = normalizeContainer(slot)

	candidates := []string{
		restrictionKey(class+":"+id, slot),
		restrictionKey(class+":"+id, RestrictionAll),
		restrictionKey(class+":"+RestrictionAll, RestrictionAll),
		restrictionKey(class+":"+RestrictionAll, slot),
	}
	for _, key := range candidates {
		if allowed, ok := t.rules[key]; ok {
			return allowed
		}
	}
	if t.defaultAllow == nil {
		return true
	}
	return *t.defaultAllow
}

// IsOfferable reports whether rules allow placement on the host slot.
func IsOfferable(rules []RestrictionRule, hostClass, hostID, slot string) bool {
	if len(rules) == 0 {
		return true
	}
	return CompileRestrictions(rules).Allows(hostClass, hostID, slot)
}

func restrictionKey(value, container string) string {
	return fmt.Sprintf("%s_%s", value, container)
}

func normalizeContainer(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return RestrictionAll
	}
	return trimmed
}
