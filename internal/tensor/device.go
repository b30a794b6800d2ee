package tensor

// Device is an opaque tag naming where a tensor's kernels run.
// Storage is always host memory; the tag selects kernels at dispatch time and
// two tensors with different tags never combine.
type Device int

// Known device tags.
const (
	CPU Device = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Vulkan:
		return "Vulkan"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}
