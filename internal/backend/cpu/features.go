package cpu

import (
	"runtime"
	"strings"

	xcpu "golang.org/x/sys/cpu"
)

// Features lists the host CPU capabilities relevant to numeric kernels.
type Features struct {
	Arch    string
	AVX2    bool
	AVX512F bool
	FMA     bool
	NEON    bool
}

// DetectFeatures probes the host CPU.
func DetectFeatures() Features {
	return Features{
		Arch:    runtime.GOARCH,
		AVX2:    xcpu.X86.HasAVX2,
		AVX512F: xcpu.X86.HasAVX512F,
		FMA:     xcpu.X86.HasFMA,
		NEON:    xcpu.ARM64.HasASIMD,
	}
}

// String lists the detected features, e.g. "amd64 avx2 fma".
func (f Features) String() string {
	parts := []string{f.Arch}
	for _, feat := range []struct {
		name string
		on   bool
	}{
		{"avx2", f.AVX2},
		{"avx512f", f.AVX512F},
		{"fma", f.FMA},
		{"neon", f.NEON},
	} {
		if feat.on {
			parts = append(parts, feat.name)
		}
	}
	return strings.Join(parts, " ")
}
