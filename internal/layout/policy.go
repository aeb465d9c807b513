package layout

import "fmt"

// Skin selects the visual arrangement of the option list.
type Skin int

const (
	// SkinDefault is the scrolling list used for long lists.
	SkinDefault Skin = iota
	// SkinTwoItems fits up to two rows without scrolling.
	SkinTwoItems
	// SkinThreeItems fits exactly three rows without scrolling.
	SkinThreeItems
)

// String returns the template name of the skin.
func (s Skin) String() string {
	switch s {
	case SkinDefault:
		return "default"
	case SkinTwoItems:
		return "two_items"
	case SkinThreeItems:
		return "three_items"
	default:
		return fmt.Sprintf("skin(%d)", int(s))
	}
}

// ParseSkin returns the skin with the given template name.
func ParseSkin(name string) (Skin, error) {
	switch name {
	case "default", "":
		return SkinDefault, nil
	case "two_items":
		return SkinTwoItems, nil
	case "three_items":
		return SkinThreeItems, nil
	default:
		return SkinDefault, fmt.Errorf("unknown skin: %s", name)
	}
}

// Rule maps slot counts up to and including MaxSlots to a skin.
type Rule struct {
	MaxSlots int
	Skin     Skin
}

// AdaptiveTable is the compact-skin table: at most two slots use the two-row
// skin, three slots the three-row skin, anything longer the default list.
func AdaptiveTable() []Rule {
	return []Rule{
		{MaxSlots: 2, Skin: SkinTwoItems},
		{MaxSlots: 3, Skin: SkinThreeItems},
	}
}

// Policy chooses a skin from the number of slots in the popup.
type Policy struct {
	table []Rule
}

// NewPolicy creates a policy from table. Rules are tried in order and the
// first rule whose MaxSlots is not exceeded wins. A nil table always yields
// SkinDefault.
func NewPolicy(table []Rule) *Policy {
	return &Policy{table: table}
}

// Choose returns the skin for slotCount. It is total: every count maps to
// a skin.
func (p *Policy) Choose(slotCount int) Skin {
	if p == nil {
		return SkinDefault
	}
	for _, r := range p.table {
		if slotCount <= r.MaxSlots {
			return r.Skin
		}
	}
	return SkinDefault
}

// Adaptive reports whether the policy has any compact skins.
func (p *Policy) Adaptive() bool {
	return p != nil && len(p.table) > 0
}
