package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths and page sizes.

// Unit represents the original unit of a length value as written in configuration.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, treated as mm
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM converts the length to millimeters. Unit-less values are already mm.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ToPT converts the length to points.
func (l Length) ToPT() float64 {
	if l.Unit == UnitPT {
		return l.Value
	}
	return l.ToMM() * MmToPt
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseLength parses a length such as "15mm", "10pt" or "-1.5".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"A6":     {105, 148},
	"LETTER": {215.9, 279.4},
}

// ParsePageSize 解析纸张尺寸，支持预设名（A5、A4 landscape）或 "宽x高" 形式（148x210mm）。
// 返回值单位为 mm。
func ParsePageSize(value string) (float64, float64, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("纸张尺寸为空")
	}
	var width, height float64
	if base, ok := pagePresets[strings.ToUpper(fields[0])]; ok {
		width, height = base[0], base[1]
	} else {
		w, h, found := strings.Cut(strings.ToLower(fields[0]), "x")
		if !found {
			return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", value)
		}
		hl, err := ParseLength(h)
		if err != nil {
			return 0, 0, err
		}
		wl, err := ParseLength(w)
		if err != nil {
			return 0, 0, err
		}
		if wl.Unit == UnitNone {
			wl.Unit = hl.Unit
		}
		width, height = wl.ToMM(), hl.ToMM()
	}
	for _, token := range fields[1:] {
		if strings.EqualFold(token, "landscape") {
			width, height = height, width
		}
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("纸张尺寸无效：%s", value)
	}
	return width, height, nil
}
