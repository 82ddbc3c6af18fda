/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tables

import (
	"encoding/json"
	"fmt"
)

type SharingKind uint8

const (
	SharingPublic SharingKind = iota
	SharingPassword
	SharingWhitelist
)

func (k SharingKind) String() string {
	switch k {
	case SharingPublic:
		return "public"
	case SharingPassword:
		return "password"
	case SharingWhitelist:
		return "whitelist"
	default:
		return "unknown"
	}
}

// Sharing records who a table is meant to be shared with. It is carried with
// the session but enforced elsewhere.
type Sharing struct {
	Kind     SharingKind
	Password string
}

func PublicSharing() Sharing { return Sharing{Kind: SharingPublic} }

func PasswordSharing(secret string) Sharing {
	return Sharing{Kind: SharingPassword, Password: secret}
}

func WhitelistSharing() Sharing { return Sharing{Kind: SharingWhitelist} }

// UnmarshalJSON accepts {"type":"public"}, {"type":"password","password":"…"}
// and {"type":"whitelist"}. Without a type, a password implies password
// sharing and anything else is public.
func (s *Sharing) UnmarshalJSON(b []byte) error {
	var in struct {
		Type     string `json:"type"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	switch in.Type {
	case "":
		if in.Password != "" {
			*s = PasswordSharing(in.Password)
		} else {
			*s = PublicSharing()
		}
	case "public":
		*s = PublicSharing()
	case "password":
		if in.Password == "" {
			return fmt.Errorf("password sharing requires a password")
		}
		*s = PasswordSharing(in.Password)
	case "whitelist":
		*s = WhitelistSharing()
	default:
		return fmt.Errorf("unknown sharing type %q", in.Type)
	}
	return nil
}
