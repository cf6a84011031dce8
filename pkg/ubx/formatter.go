// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"fmt"
	"strings"
	"time"
)

// FormatMessage formats a message into a human-readable string
func FormatMessage(m Message, ts time.Time) string {
	timestamp := ts.Format("15:04:05.000")

	switch msg := m.(type) {
	case *NavPosLLH:
		result := fmt.Sprintf("[%s] %s (0x%02X 0x%02X) iTOW=%d\n", timestamp, msg.Kind(), msg.Class, msg.ID, msg.ITOW)
		result += fmt.Sprintf("  Position: %.7f, %.7f\n", msg.LatDegrees(), msg.LonDegrees())
		result += fmt.Sprintf("  Height: %.3f m (MSL %.3f m)\n", float64(msg.Height)/1000, float64(msg.HMSL)/1000)
		result += fmt.Sprintf("  Accuracy: h=%.3f m, v=%.3f m\n", float64(msg.HAcc)/1000, float64(msg.VAcc)/1000)
		return result

	case *NavStatus:
		result := fmt.Sprintf("[%s] %s (0x%02X 0x%02X) iTOW=%d\n", timestamp, msg.Kind(), msg.Class, msg.ID, msg.ITOW)
		result += fmt.Sprintf("  Fix: %s (%d), fixOk=%t\n", msg.GPSFix, msg.GPSFix, msg.FixOK())
		result += fmt.Sprintf("  Flags: 0x%02X, fixStat: 0x%02X, flags2: 0x%02X\n", msg.Flags, msg.FixStat, msg.Flags2)
		result += fmt.Sprintf("  TTFF: %s, uptime: %s\n", formatMillis(msg.TTFF), formatMillis(msg.MSSS))
		return result

	case *NavDOP:
		result := fmt.Sprintf("[%s] %s (0x%02X 0x%02X) iTOW=%d\n", timestamp, msg.Kind(), msg.Class, msg.ID, msg.ITOW)
		result += fmt.Sprintf("  gDOP=%s pDOP=%s tDOP=%s\n", formatDOP(msg.GDOP), formatDOP(msg.PDOP), formatDOP(msg.TDOP))
		result += fmt.Sprintf("  vDOP=%s hDOP=%s nDOP=%s eDOP=%s\n", formatDOP(msg.VDOP), formatDOP(msg.HDOP), formatDOP(msg.NDOP), formatDOP(msg.EDOP))
		return result

	default:
		return fmt.Sprintf("[%s] %s\n", timestamp, m.Kind())
	}
}

// FormatTag returns the human-readable name for a class/id pair
func FormatTag(class, id byte) string {
	switch class {
	case ClassNAV:
		switch id {
		case IDNavPosLLH:
			return "NAV-POSLLH"
		case IDNavStatus:
			return "NAV-STATUS"
		case IDNavDOP:
			return "NAV-DOP"
		case IDNavSol:
			return "NAV-SOL"
		case IDNavVelNED:
			return "NAV-VELNED"
		}
	case ClassACK:
		switch id {
		case 0x00:
			return "ACK-NAK"
		case 0x01:
			return "ACK-ACK"
		}
	case ClassCFG:
		switch id {
		case IDCfgMsg:
			return "CFG-MSG"
		case IDCfgRate:
			return "CFG-RATE"
		}
	case ClassNMEA:
		return "NMEA"
	}
	return "UNKNOWN"
}

// FormatHex formats raw bytes as rows of 16 hex values
func FormatHex(data []byte) string {
	var sb strings.Builder
	for i, b := range data {
		if i > 0 && i%16 == 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%02X ", b)
	}
	return strings.TrimRight(sb.String(), " ")
}

func formatDOP(v uint16) string {
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}

func formatMillis(ms uint32) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
