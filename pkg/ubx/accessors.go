// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import "context"

// WaitKind reads messages until one of kind k arrives.
//
// Messages of other kinds are fully decoded and then dropped; their values are
// never returned to the caller. Like Next, WaitKind has no timeout of its own.
func WaitKind(ctx context.Context, d *Decoder, k Kind) (Message, error) {
	for {
		msg, err := d.NextContext(ctx)
		if err != nil {
			return nil, err
		}
		if msg.Kind() == k {
			return msg, nil
		}
	}
}

// WaitStatus blocks until a NAV-STATUS message is decoded.
func WaitStatus(d *Decoder) (*NavStatus, error) {
	return WaitStatusContext(context.Background(), d)
}

// WaitStatusContext is WaitStatus with cancellation.
func WaitStatusContext(ctx context.Context, d *Decoder) (*NavStatus, error) {
	for {
		msg, err := WaitKind(ctx, d, KindNavStatus)
		if err != nil {
			return nil, err
		}
		if m, ok := msg.(*NavStatus); ok {
			return m, nil
		}
	}
}

// WaitPosition blocks until a NAV-POSLLH message is decoded.
func WaitPosition(d *Decoder) (*NavPosLLH, error) {
	return WaitPositionContext(context.Background(), d)
}

// WaitPositionContext is WaitPosition with cancellation.
func WaitPositionContext(ctx context.Context, d *Decoder) (*NavPosLLH, error) {
	for {
		msg, err := WaitKind(ctx, d, KindNavPosLLH)
		if err != nil {
			return nil, err
		}
		if m, ok := msg.(*NavPosLLH); ok {
			return m, nil
		}
	}
}

// WaitDOP blocks until a NAV-DOP message is decoded.
func WaitDOP(d *Decoder) (*NavDOP, error) {
	return WaitDOPContext(context.Background(), d)
}

// WaitDOPContext is WaitDOP with cancellation.
func WaitDOPContext(ctx context.Context, d *Decoder) (*NavDOP, error) {
	for {
		msg, err := WaitKind(ctx, d, KindNavDOP)
		if err != nil {
			return nil, err
		}
		if m, ok := msg.(*NavDOP); ok {
			return m, nil
		}
	}
}
