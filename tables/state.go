/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tables

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

type ItemKind uint8

const (
	ItemIcon ItemKind = iota
	ItemNum
	ItemStr
)

// Item is one value held in element state: an icon reference, a number or a
// string. Items are comparable, so they can be used as map keys and set
// members, and Compare gives them a total order.
type Item struct {
	Kind ItemKind
	Pack uint32
	Icon uint32
	Num  int64
	Str  string
}

func IconItem(pack, icon uint32) Item { return Item{Kind: ItemIcon, Pack: pack, Icon: icon} }

func NumItem(n int64) Item { return Item{Kind: ItemNum, Num: n} }

func StrItem(s string) Item { return Item{Kind: ItemStr, Str: s} }

// Compare orders items by kind (icon, number, string) and then by value.
func Compare(a, b Item) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	switch a.Kind {
	case ItemIcon:
		if c := cmp.Compare(a.Pack, b.Pack); c != 0 {
			return c
		}
		return cmp.Compare(a.Icon, b.Icon)
	case ItemNum:
		return cmp.Compare(a.Num, b.Num)
	default:
		return cmp.Compare(a.Str, b.Str)
	}
}

type iconRef struct {
	Pack uint32 `json:"icon_pack"`
	Icon uint32 `json:"icon_id"`
}

type itemJSON struct {
	Icon *iconRef `json:"Icon,omitempty"`
	Num  *int64   `json:"Num,omitempty"`
	Str  *string  `json:"Str,omitempty"`
}

func (i Item) MarshalJSON() ([]byte, error) {
	var out itemJSON
	switch i.Kind {
	case ItemIcon:
		out.Icon = &iconRef{Pack: i.Pack, Icon: i.Icon}
	case ItemNum:
		out.Num = &i.Num
	case ItemStr:
		out.Str = &i.Str
	default:
		return nil, fmt.Errorf("unknown item kind %d", i.Kind)
	}
	return json.Marshal(out)
}

func (i *Item) UnmarshalJSON(b []byte) error {
	var in itemJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch {
	case in.Icon != nil:
		*i = IconItem(in.Icon.Pack, in.Icon.Icon)
	case in.Num != nil:
		*i = NumItem(*in.Num)
	case in.Str != nil:
		*i = StrItem(*in.Str)
	default:
		return fmt.Errorf("item has no variant: %s", b)
	}
	return nil
}

type PropertyKind uint8

const (
	PropertySingle PropertyKind = iota
	PropertyList
	PropertyObj
)

// Property is a named piece of element state: a single item, a set of items,
// or a mapping of names to items.
type Property struct {
	Kind   PropertyKind
	Single Item
	List   map[Item]struct{}
	Obj    map[string]Item
}

func SingleProperty(item Item) Property {
	return Property{Kind: PropertySingle, Single: item}
}

func ListProperty(items ...Item) Property {
	set := make(map[Item]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return Property{Kind: PropertyList, List: set}
}

func ObjProperty(obj map[string]Item) Property {
	return Property{Kind: PropertyObj, Obj: maps.Clone(obj)}
}

// Items returns the members of a list property in sorted order.
func (p Property) Items() []Item {
	items := slices.Collect(maps.Keys(p.List))
	slices.SortFunc(items, Compare)
	return items
}

func (p Property) Clone() Property {
	return Property{
		Kind:   p.Kind,
		Single: p.Single,
		List:   maps.Clone(p.List),
		Obj:    maps.Clone(p.Obj),
	}
}

func (p Property) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PropertySingle:
		return json.Marshal(map[string]Item{"Single": p.Single})
	case PropertyList:
		items := p.Items()
		if items == nil {
			items = []Item{}
		}
		return json.Marshal(map[string][]Item{"List": items})
	case PropertyObj:
		obj := p.Obj
		if obj == nil {
			obj = map[string]Item{}
		}
		return json.Marshal(map[string]map[string]Item{"Obj": obj})
	default:
		return nil, fmt.Errorf("unknown property kind %d", p.Kind)
	}
}

func (p *Property) UnmarshalJSON(b []byte) error {
	var in map[string]json.RawMessage
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if len(in) != 1 {
		return fmt.Errorf("property must have exactly one variant: %s", b)
	}

	for tag, body := range in {
		switch tag {
		case "Single":
			var item Item
			if err := json.Unmarshal(body, &item); err != nil {
				return err
			}
			*p = SingleProperty(item)
		case "List":
			var items []Item
			if err := json.Unmarshal(body, &items); err != nil {
				return err
			}
			*p = ListProperty(items...)
		case "Obj":
			var obj map[string]Item
			if err := json.Unmarshal(body, &obj); err != nil {
				return err
			}
			*p = Property{Kind: PropertyObj, Obj: obj}
		default:
			return fmt.Errorf("unknown property variant %q", tag)
		}
	}
	return nil
}

type ActionKind uint8

const (
	ActionDraw ActionKind = iota
	ActionSelect
)

// Action describes an interactive behaviour of an element, such as drawing
// from a deck. Actions are stored but not yet executed.
type Action struct {
	Kind   ActionKind
	Target string
}

func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ActionDraw:
		return json.Marshal(map[string]string{"Draw": a.Target})
	case ActionSelect:
		return json.Marshal(map[string]string{"Select": a.Target})
	default:
		return nil, fmt.Errorf("unknown action kind %d", a.Kind)
	}
}
