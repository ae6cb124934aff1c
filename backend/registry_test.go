package backend_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/bedrock/backend"
	"github.com/gogpu/bedrock/backend/software"
	"github.com/gogpu/bedrock/gpucore"
)

func TestRegistrySoftwareRegistered(t *testing.T) {
	// Software backend is auto-registered via init()
	if !backend.IsRegistered(backend.BackendSoftware) {
		t.Fatal("software backend should be auto-registered")
	}
	if !slices.Contains(backend.Available(), backend.BackendSoftware) {
		t.Error("Available() should include 'software'")
	}

	dev, err := backend.Open(backend.BackendSoftware)
	if err != nil {
		t.Fatalf("Open(software) error = %v", err)
	}
	defer dev.Close()
	if _, ok := dev.(*software.Device); !ok {
		t.Errorf("Open(software) = %T, want *software.Device", dev)
	}
}

func TestRegistryOpenUnregistered(t *testing.T) {
	if _, err := backend.Open("nonexistent"); !errors.Is(err, backend.ErrBackendNotAvailable) {
		t.Errorf("Open(nonexistent) error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestRegistryOpenDefaultFallsBack(t *testing.T) {
	backend.Register(backend.BackendNative, func() (gpucore.Device, error) {
		return nil, errors.New("no adapter")
	})
	t.Cleanup(func() { backend.Unregister(backend.BackendNative) })

	dev, name, err := backend.OpenDefault()
	if err != nil {
		t.Fatalf("OpenDefault() error = %v", err)
	}
	defer dev.Close()
	if name != backend.BackendSoftware {
		t.Errorf("OpenDefault() picked %q, want software after native failed", name)
	}
}

func TestRegistryUnregister(t *testing.T) {
	backend.Register("test-backend", func() (gpucore.Device, error) { return software.New(), nil })
	if !backend.IsRegistered("test-backend") {
		t.Error("test-backend should be registered")
	}
	backend.Unregister("test-backend")
	if backend.IsRegistered("test-backend") {
		t.Error("test-backend should be unregistered")
	}
}
