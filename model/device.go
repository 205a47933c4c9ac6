package model

import (
	"gonum.org/v1/gonum/mat"
	"golang.org/x/xerrors"
)

/*
Device is a compute placement for batches
*/
type Device interface {
	Name() string
	// Put moves matrix to the device memory
	Put(m *mat.Dense) (*mat.Dense, error)
}

type cpu struct{}

func (cpu) Name() string                         { return "cpu" }
func (cpu) Put(m *mat.Dense) (*mat.Dense, error) { return m, nil }

// CPU is the host device
var CPU Device = cpu{}

/*
NewDevice returns the preferred device, there is no accelerator backend
so requesting cuda fails with ErrResourceExhaustion
*/
func NewDevice(useCuda bool) (Device, error) {
	if useCuda {
		return nil, xerrors.Errorf("cuda device is not available: %w", ErrResourceExhaustion)
	}
	return CPU, nil
}
