// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package axp

const (
	axp1530Addr = 0x36

	regVersion       = 0x03
	regOnOff         = 0x10
	regDC1Out        = 0x13
	regDC2Out        = 0x14
	regDC3Out        = 0x15
	regALDO1Out      = 0x16
	regDLDO1Out      = 0x17
	regPowerDownSeq  = 0x1a
	regOutputMonitor = 0x1d
	regDCDCModeCtrl2 = 0x1f

	idMask    = 0xcf
	idAXP1530 = 0x48
	idAXP313A = 0x4b
	idAXP313B = 0x4c
	idAXP323  = 0x4d

	// over temperature shutdown enable in regPowerDownSeq
	otpShutdownBit = 1
)

// AXP1530 also drives the AXP313A, AXP313B and AXP323 which share its
// register map.
var AXP1530 = Chip{
	Name:       "AXP1530",
	Addr:       axp1530Addr,
	VersionReg: regVersion,
	IDMask:     idMask,
	Variants: []Variant{
		{idAXP1530, "AXP1530"},
		{idAXP313A, "AXP313A"},
		{idAXP313B, "AXP313B"},
		{idAXP323, "AXP323"},
	},
	Shutdown: Bit{regPowerDownSeq, otpShutdownBit},
	DualPhase: DualPhase{
		ID: idAXP323,
		Writes: []RegWrite{
			{regOutputMonitor, 0x1e},
			{regDCDCModeCtrl2, 0x02},
			{regPowerDownSeq, 0x22},
		},
	},
	Rails: Table{
		{
			Name:    "dcdc1",
			MinMV:   500,
			MaxMV:   3400,
			CfgReg:  regDC1Out,
			CfgMask: 0x7f,
			CtrlReg: regOnOff,
			CtrlBit: 0,
			Segments: Segments{
				{Min: 500, Max: 1200, Step: 10},
				{Min: 1220, Max: 1540, Step: 20},
				{Min: 1600, Max: 3400, Step: 100},
			},
		},
		{
			Name:    "dcdc2",
			MinMV:   500,
			MaxMV:   1540,
			CfgReg:  regDC2Out,
			CfgMask: 0x7f,
			CtrlReg: regOnOff,
			CtrlBit: 1,
			Segments: Segments{
				{Min: 500, Max: 1200, Step: 10},
				{Min: 1220, Max: 1540, Step: 20},
			},
		},
		{
			Name:    "dcdc3",
			MinMV:   500,
			MaxMV:   1840,
			CfgReg:  regDC3Out,
			CfgMask: 0x7f,
			CtrlReg: regOnOff,
			CtrlBit: 2,
			Segments: Segments{
				{Min: 500, Max: 1200, Step: 10},
				{Min: 1220, Max: 1840, Step: 20},
			},
		},
		{
			Name:     "aldo1",
			MinMV:    500,
			MaxMV:    3500,
			CfgReg:   regALDO1Out,
			CfgMask:  0x1f,
			CtrlReg:  regOnOff,
			CtrlBit:  3,
			Segments: Segments{{Min: 500, Max: 3500, Step: 100}},
		},
		{
			Name:     "dldo1",
			MinMV:    500,
			MaxMV:    3500,
			CfgReg:   regDLDO1Out,
			CfgMask:  0x1f,
			CtrlReg:  regOnOff,
			CtrlBit:  4,
			Segments: Segments{{Min: 500, Max: 3500, Step: 100}},
		},
	},
}
