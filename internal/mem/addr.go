// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package mem

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Addr is a physical address that is written to JSON as a hex string and
// read from either a number or a string in any strconv base notation.
type Addr uint64

func ParseAddr(s string) (Addr, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	return Addr(v), err
}

func (a Addr) String() string { return fmt.Sprintf("%#x", uint64(a)) }

func (a Addr) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Addr) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var v uint64
		if err = json.Unmarshal(b, &v); err != nil {
			return err
		}
		*a = Addr(v)
		return nil
	}
	v, err := ParseAddr(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
