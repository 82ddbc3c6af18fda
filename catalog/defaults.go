/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import "fmt"

// Pack is a complete catalog entry, used for seeding and by the memory store.
type Pack struct {
	Info  PackInfo
	Icons []Icon
}

var (
	suits = []string{"Spades", "Hearts", "Diamonds", "Clubs"}
	ranks = []string{"Ace", "2", "3", "4", "5", "6", "7", "8", "9", "10", "Jack", "Queen", "King"}
)

var tokenIcons = []struct {
	name  string
	class string
}{
	{"Pawn", "fa-solid fa-chess-pawn"},
	{"Knight", "fa-solid fa-chess-knight"},
	{"Bishop", "fa-solid fa-chess-bishop"},
	{"Rook", "fa-solid fa-chess-rook"},
	{"Queen", "fa-solid fa-chess-queen"},
	{"King", "fa-solid fa-chess-king"},
	{"Die One", "fa-solid fa-dice-one"},
	{"Die Two", "fa-solid fa-dice-two"},
	{"Die Three", "fa-solid fa-dice-three"},
	{"Die Four", "fa-solid fa-dice-four"},
	{"Die Five", "fa-solid fa-dice-five"},
	{"Die Six", "fa-solid fa-dice-six"},
	{"Coin", "fa-solid fa-coins"},
	{"Heart", "fa-solid fa-heart"},
	{"Star", "fa-solid fa-star"},
	{"Flag", "fa-solid fa-flag"},
}

// DefaultPacks returns the packs every new catalog starts with: a 52 card
// deck with both jokers, and a set of generic tokens.
func DefaultPacks() []Pack {
	cards := Pack{
		Info: PackInfo{
			ID:      1,
			Name:    "cards",
			Desc:    "A 52 pack of cards, along with the jokers",
			Author:  "Loading_M_",
			Default: true,
		},
	}
	var id uint32 = 1
	for _, suit := range suits {
		for _, rank := range ranks {
			cards.Icons = append(cards.Icons, Icon{
				Type: IconSvg,
				ID:   id,
				Name: rank + " of " + suit,
				Src:  fmt.Sprintf("/static/cards/%s_%s.svg", rank, suit),
			})
			id++
		}
	}
	for _, color := range []string{"Red", "Black"} {
		cards.Icons = append(cards.Icons, Icon{
			Type: IconSvg,
			ID:   id,
			Name: color + " Joker",
			Src:  fmt.Sprintf("/static/cards/%s_Joker.svg", color),
		})
		id++
	}

	icons := Pack{
		Info: PackInfo{
			ID:     2,
			Name:   "icons",
			Desc:   "A wide variety of icons",
			Author: "Loading_M_",
		},
	}
	for i, t := range tokenIcons {
		icons.Icons = append(icons.Icons, Icon{
			Type: IconFont,
			ID:   uint32(i + 1),
			Name: t.name,
			Src:  t.class,
		})
	}

	return []Pack{cards, icons}
}
