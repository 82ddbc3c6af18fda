/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tables

import (
	"encoding/json"
	"fmt"
)

type UpdateType string

const (
	UpdatePosition      UpdateType = "position"
	UpdateIconpackLoad  UpdateType = "iconpack_load"
	UpdateElementCreate UpdateType = "element_create"
	UpdateElementDelete UpdateType = "element_delete"
	UpdateAction        UpdateType = "action"
)

// Update is one message on a table's live channel, in either direction.
// Only the fields of its Type are meaningful.
type Update struct {
	Type     UpdateType
	ID       uint32
	Top      float64
	Left     float64
	Pack     uint32
	IconPack uint32
	IconID   uint32
	Act      string
}

type updateJSON struct {
	Type     UpdateType `json:"t"`
	ID       *uint32    `json:"id,omitempty"`
	Top      *float64   `json:"top,omitempty"`
	Left     *float64   `json:"left,omitempty"`
	Pack     *uint32    `json:"pack,omitempty"`
	IconPack *uint32    `json:"icon_pack,omitempty"`
	IconID   *uint32    `json:"icon_id,omitempty"`
	Act      *string    `json:"act,omitempty"`
}

// DecodeUpdate parses a live message. Every field of the variant is
// required, except the id of element_create, which the server assigns.
func DecodeUpdate(b []byte) (Update, error) {
	var in updateJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return Update{}, fmt.Errorf("%w: %v", ErrMalformedUpdate, err)
	}

	missing := func(field string) error {
		return fmt.Errorf("%w: %s requires %q", ErrMalformedUpdate, in.Type, field)
	}

	u := Update{Type: in.Type}
	switch in.Type {
	case UpdatePosition:
		if in.ID == nil {
			return Update{}, missing("id")
		}
		if in.Top == nil {
			return Update{}, missing("top")
		}
		if in.Left == nil {
			return Update{}, missing("left")
		}
		u.ID, u.Top, u.Left = *in.ID, *in.Top, *in.Left
	case UpdateIconpackLoad:
		if in.Pack == nil {
			return Update{}, missing("pack")
		}
		u.Pack = *in.Pack
	case UpdateElementCreate:
		if in.IconPack == nil {
			return Update{}, missing("icon_pack")
		}
		if in.IconID == nil {
			return Update{}, missing("icon_id")
		}
		if in.Top == nil {
			return Update{}, missing("top")
		}
		if in.Left == nil {
			return Update{}, missing("left")
		}
		u.IconPack, u.IconID, u.Top, u.Left = *in.IconPack, *in.IconID, *in.Top, *in.Left
	case UpdateElementDelete:
		if in.ID == nil {
			return Update{}, missing("id")
		}
		u.ID = *in.ID
	case UpdateAction:
		if in.Act == nil {
			return Update{}, missing("act")
		}
		u.Act = *in.Act
	default:
		return Update{}, fmt.Errorf("%w %q", ErrUnknownUpdate, in.Type)
	}

	return u, nil
}

func (u Update) MarshalJSON() ([]byte, error) {
	out := updateJSON{Type: u.Type}
	switch u.Type {
	case UpdatePosition:
		out.ID, out.Top, out.Left = &u.ID, &u.Top, &u.Left
	case UpdateIconpackLoad:
		out.Pack = &u.Pack
	case UpdateElementCreate:
		out.ID, out.IconPack, out.IconID, out.Top, out.Left = &u.ID, &u.IconPack, &u.IconID, &u.Top, &u.Left
	case UpdateElementDelete:
		out.ID = &u.ID
	case UpdateAction:
		out.Act = &u.Act
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownUpdate, u.Type)
	}
	return json.Marshal(out)
}
