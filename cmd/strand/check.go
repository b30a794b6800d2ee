package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/strand-ml/strand/autodiff"
	"github.com/strand-ml/strand/backend/cpu"
	"github.com/strand-ml/strand/tensor"
)

type checkOptions struct {
	dtype string
	eps   float64
	tol   float64
	seed  uint64
	batch int
	in    int
	out   int
}

func newCheckCmd() *cobra.Command {
	opts := checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify backward against numeric gradients",
		Long: `Builds f(x, W, b) = sum(tanh(x@W + b) * (x@W)) on random inputs and
compares the gradients from a backward pass with central finite differences.
Exits with status 1 when any element disagrees.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.dtype, "dtype", "float64", "Element type (float16, float32, float64)")
	cmd.Flags().Float64Var(&opts.eps, "eps", 0, "Finite-difference step (default depends on --dtype)")
	cmd.Flags().Float64Var(&opts.tol, "tol", 0, "Relative tolerance (default depends on --dtype)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "Random seed for the inputs")
	cmd.Flags().IntVar(&opts.batch, "batch", 4, "Rows of x")
	cmd.Flags().IntVar(&opts.in, "in", 3, "Columns of x and rows of W")
	cmd.Flags().IntVar(&opts.out, "out", 5, "Columns of W")
	return cmd
}

// checkDefaults holds the --eps and --tol used when the flags are not set.
// Finite differences always run in float64; tol absorbs the rounding of the
// analytic pass in the chosen dtype.
var checkDefaults = map[tensor.DataType]struct{ eps, tol float64 }{
	tensor.Float64: {1e-6, 1e-4},
	tensor.Float32: {1e-6, 1e-3},
	tensor.Float16: {1e-6, 5e-2},
}

func runCheck(cmd *cobra.Command, opts checkOptions) error {
	dtype, ok := tensor.ParseDataType(opts.dtype)
	if !ok || !dtype.IsFloat() {
		return fmt.Errorf("--dtype %q: want float16, float32 or float64", opts.dtype)
	}
	def := checkDefaults[dtype]
	if !cmd.Flags().Changed("eps") {
		opts.eps = def.eps
	}
	if !cmd.Flags().Changed("tol") {
		opts.tol = def.tol
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	random := func(shape tensor.Shape) (*tensor.RawTensor, error) {
		data := make([]float64, shape.NumElements())
		for i := range data {
			data[i] = rng.Float64()*2 - 1
		}
		return tensor.FromFloat64s(data, shape, dtype, tensor.CPU)
	}

	shapes := []tensor.Shape{{opts.batch, opts.in}, {opts.in, opts.out}, {opts.out}}
	inputs := make([]*tensor.RawTensor, len(shapes))
	for i, s := range shapes {
		t, err := random(s)
		if err != nil {
			return err
		}
		inputs[i] = t
	}

	log.Debug().
		Str("dtype", dtype.String()).
		Float64("eps", opts.eps).
		Float64("tol", opts.tol).
		Msg("running gradient check")

	err := autodiff.CheckGradients(cpu.New(), buildCheckGraph, inputs, opts.eps, opts.tol)
	if err != nil {
		return fmt.Errorf("gradient check failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "gradient check passed (%s, x%v W%v b%v)\n",
		dtype, shapes[0], shapes[1], shapes[2])
	return nil
}

// buildCheckGraph records sum(tanh(x@W + b) * (x@W)).
func buildCheckGraph(g *autodiff.Graph, in []*autodiff.Node) (*autodiff.Node, error) {
	x, w, b := in[0], in[1], in[2]
	xw, err := g.MatMul(x, w)
	if err != nil {
		return nil, err
	}
	pre, err := g.Add(xw, b)
	if err != nil {
		return nil, err
	}
	act, err := g.Tanh(pre)
	if err != nil {
		return nil, err
	}
	prod, err := g.Mul(act, xw)
	if err != nil {
		return nil, err
	}
	return g.Sum(prod, nil, false)
}
