// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import "encoding/binary"

// Port indexes in the CFG-MSG per-port rate array.
const (
	PortDDC = iota
	PortUART1
	PortUART2
	PortUSB
	PortSPI
	portReserved
	portCount
)

var defaultNMEA = []byte{IDNmeaGGA, IDNmeaGLL, IDNmeaGSA, IDNmeaGSV, IDNmeaRMC, IDNmeaVTG}

// SetMessageRate builds a CFG-MSG command setting the output rate of one
// message on one port. Rate 0 disables the message; rate n sends it on every
// nth navigation solution.
func SetMessageRate(class, id byte, port int, rate uint8) []byte {
	payload := make([]byte, 2+portCount)
	payload[0] = class
	payload[1] = id
	if port >= 0 && port < portCount {
		payload[2+port] = rate
	}
	return MustEncodePacket(ClassCFG, IDCfgMsg, payload)
}

// SetMeasurementRate builds a CFG-RATE command. Navigation solutions are
// computed every measMs milliseconds, aligned to GPS time.
func SetMeasurementRate(measMs uint16) []byte {
	payload := make([]byte, 6)
	binary.LittleEndian.PutUint16(payload[0:2], measMs)
	binary.LittleEndian.PutUint16(payload[2:4], 1) // one solution per measurement
	binary.LittleEndian.PutUint16(payload[4:6], 1) // GPS time
	return MustEncodePacket(ClassCFG, IDCfgRate, payload)
}

// InitSequence returns the byte sequence that configures a receiver on UART1
// to send only the registered NAV messages: default NMEA output is switched
// off, every kind in the default registry is enabled at rate 1, and the
// measurement period is set to measMs (skipped when zero).
func InitSequence(measMs uint16) []byte {
	var seq []byte
	for _, id := range defaultNMEA {
		seq = append(seq, SetMessageRate(ClassNMEA, id, PortUART1, 0)...)
	}
	for _, e := range defaultRegistry {
		seq = append(seq, SetMessageRate(e.Tag[0], e.Tag[1], PortUART1, 1)...)
	}
	if measMs > 0 {
		seq = append(seq, SetMeasurementRate(measMs)...)
	}
	return seq
}
