package dispatch_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// addOnes is a toy kernel that ignores b and writes a+1, so tests can tell
// which registration served a call.
func addOnes(dst, a, _ *tensor.RawTensor) {
	i := 0
	vals := a.Float64s()
	dst.Walk(func(off int) {
		dst.Storage().Store(off, vals[i]+1)
		i++
	})
}

func TestTable_RegisterLookup(t *testing.T) {
	table := dispatch.NewTable()
	assert.False(t, table.Has(dispatch.OpAdd, tensor.Float32, tensor.CPU))

	table.RegisterBinary(dispatch.OpAdd, tensor.Float32, tensor.Vulkan, addOnes)
	assert.True(t, table.Has(dispatch.OpAdd, tensor.Float32, tensor.Vulkan))
	assert.False(t, table.Has(dispatch.OpAdd, tensor.Float32, tensor.CPU))
	assert.Equal(t, 1, table.Len())

	k, ok := table.Lookup(dispatch.Key{Op: dispatch.OpAdd, DType: tensor.Float32, Device: tensor.Vulkan})
	require.True(t, ok)
	assert.IsType(t, dispatch.BinaryKernel(nil), k)
}

func TestTable_KeysSorted(t *testing.T) {
	table := dispatch.NewTable()
	table.RegisterBinary(dispatch.OpSub, tensor.Float64, tensor.CPU, addOnes)
	table.RegisterBinary(dispatch.OpAdd, tensor.Float64, tensor.CPU, addOnes)
	table.RegisterBinary(dispatch.OpMul, tensor.Float32, tensor.CPU, addOnes)

	keys := table.Keys()
	require.Len(t, keys, 3)
	assert.Equal(t, "add[float64@CPU]", keys[0].String())
	assert.Equal(t, "mul[float32@CPU]", keys[1].String())
	assert.Equal(t, "sub[float64@CPU]", keys[2].String())
}

func TestDispatcher_RoutesByDevice(t *testing.T) {
	table := dispatch.NewTable()
	table.RegisterBinary(dispatch.OpAdd, tensor.Float64, tensor.Metal, addOnes)
	d := dispatch.New(table)

	a, err := tensor.FromFloat64s([]float64{1, 2}, tensor.Shape{2}, tensor.Float64, tensor.Metal)
	require.NoError(t, err)
	out, err := d.Add(a, a)
	require.NoError(t, err)
	assert.Equal(t, tensor.Metal, out.Device())
	assert.Equal(t, []float64{2, 3}, out.Float64s())

	c, err := tensor.FromFloat64s([]float64{1, 2}, tensor.Shape{2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	_, err = d.Add(c, c)
	var ke *dispatch.KernelError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, dispatch.Key{Op: dispatch.OpAdd, DType: tensor.Float64, Device: tensor.CPU}, ke.Key)
	assert.ErrorIs(t, err, tensor.ErrUnsupported)
	assert.True(t, d.Supports(dispatch.OpAdd, tensor.Float64, tensor.Metal))
}

func TestDispatcher_ChecksBeforeLookup(t *testing.T) {
	d := dispatch.New(dispatch.NewTable())
	a, err := tensor.Zeros(tensor.Shape{2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	b, err := tensor.Zeros(tensor.Shape{2}, tensor.Float32, tensor.WebGPU)
	require.NoError(t, err)

	_, err = d.Add(a, b)
	var de *tensor.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, tensor.CPU, de.DeviceA)
	assert.Equal(t, tensor.WebGPU, de.DeviceB)

	_, err = d.MatMul(a, b)
	assert.ErrorIs(t, err, tensor.ErrDeviceMismatch)
}

func TestReduceAxes(t *testing.T) {
	shape := tensor.Shape{2, 3, 4}

	mask, err := dispatch.ReduceAxes(dispatch.OpSum, shape, nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, mask)

	mask, err = dispatch.ReduceAxes(dispatch.OpSum, shape, []int{-1, 0})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, mask)
	assert.Equal(t, tensor.Shape{1, 3, 1}, dispatch.KeepDimsShape(shape, mask))

	_, err = dispatch.ReduceAxes(dispatch.OpSum, shape, []int{1, -2})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = dispatch.ReduceAxes(dispatch.OpMax, shape, []int{-4})
	var se *tensor.ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, -4, se.Axis)
}

func TestTable_ConcurrentLookup(t *testing.T) {
	table := dispatch.NewTable()
	table.RegisterBinary(dispatch.OpAdd, tensor.Float32, tensor.CPU, addOnes)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.True(t, table.Has(dispatch.OpAdd, tensor.Float32, tensor.CPU))
			}
		}()
	}
	wg.Wait()
}
