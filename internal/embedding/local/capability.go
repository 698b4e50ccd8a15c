package local

// Capability reports the device facts the local backend's availability
// gate depends on. A host environment supplies a concrete implementation;
// tests can stub it directly.
type Capability interface {
	// Is64BitARM reports whether the process is running on a 64-bit
	// ARM-class CPU.
	Is64BitARM() bool

	// PhysicalMemoryBytes reports total physical RAM in bytes.
	PhysicalMemoryBytes() uint64
}

const minPhysicalMemoryBytes = 8 * 1024 * 1024 * 1024 // 8 GiB

// IsAvailable reports whether the local backend may be used: the native
// runtime must have loaded, the CPU must be 64-bit ARM-class, and physical
// memory must be at least 8 GiB.
func IsAvailable(engine NativeEngine, cap Capability) bool {
	if engine == nil || !engine.Loaded() {
		return false
	}
	if cap == nil {
		return false
	}
	return cap.Is64BitARM() && cap.PhysicalMemoryBytes() >= minPhysicalMemoryBytes
}
