// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// MPU6050-family register addresses. The accelerometer path used here
// is identical across the 6050/6500/9250 parts.
const (
	regConfig      = 0x1A // DLPF_CFG in bits 2:0
	regAccelConfig = 0x1C // ACCEL_FS_SEL in bits 4:3
	regAccelXoutH  = 0x3B // start of the 6-byte accel burst
	regPwrMgmt1    = 0x6B
	regWhoAmI      = 0x75
)

// MPU reads the accelerometer of an MPU6050/6500/9250 over I2C.
type MPU struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// NewMPU opens the I2C bus, probes the device and wakes it with a 41Hz
// low-pass filter and the ±2g accelerometer range. busName may be empty
// to use the first available bus.
func NewMPU(busName string, addr uint16) (*MPU, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open I2C bus %q: %w", busName, err)
	}

	m := &MPU{bus: bus, dev: i2c.Dev{Bus: bus, Addr: addr}}

	id, err := m.readReg(regWhoAmI)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("WHO_AM_I read at 0x%02X: %w", addr, err)
	}
	switch id {
	case 0x68, 0x70, 0x71, 0x73: // MPU6050, 6500, 9250, 9255
		log.Printf("sensors: IMU WHO_AM_I = 0x%02X", id)
	default:
		log.Printf("sensors: WARNING: unexpected WHO_AM_I 0x%02X, continuing anyway", id)
	}

	if err := m.writeReg(regPwrMgmt1, 0x00); err != nil {
		bus.Close()
		return nil, fmt.Errorf("wake device: %w", err)
	}
	if err := m.writeReg(regConfig, 0x03); err != nil {
		bus.Close()
		return nil, fmt.Errorf("set DLPF: %w", err)
	}
	if err := m.writeReg(regAccelConfig, 0x00); err != nil {
		bus.Close()
		return nil, fmt.Errorf("set accel range: %w", err)
	}

	return m, nil
}

// ReadAccel reads the three accelerometer axes in one burst.
func (m *MPU) ReadAccel() (int16, int16, int16, error) {
	var buf [6]byte
	if err := m.dev.Tx([]byte{regAccelXoutH}, buf[:]); err != nil {
		return 0, 0, 0, fmt.Errorf("accel burst read: %w", err)
	}
	x := int16(uint16(buf[0])<<8 | uint16(buf[1]))
	y := int16(uint16(buf[2])<<8 | uint16(buf[3]))
	z := int16(uint16(buf[4])<<8 | uint16(buf[5]))
	return x, y, z, nil
}

func (m *MPU) Close() error {
	return m.bus.Close()
}

func (m *MPU) readReg(reg byte) (byte, error) {
	var b [1]byte
	if err := m.dev.Tx([]byte{reg}, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *MPU) writeReg(reg, val byte) error {
	return m.dev.Tx([]byte{reg, val}, nil)
}
